package provisioning

// Key names one identifier a phase writes into State.
type Key string

// Keys written by the provisioning phases, in the order they are produced.
const (
	KeyBucketName Key = "bucket.name"
	KeyBucketARN  Key = "bucket.arn"

	KeyModelPolicyARN   Key = "policy.model.arn"
	KeyStoragePolicyARN Key = "policy.storage.arn"
	KeyRoleName         Key = "role.name"
	KeyRoleARN          Key = "role.arn"

	KeyCollectionID        Key = "collection.id"
	KeyCollectionARN       Key = "collection.arn"
	KeyCollectionEndpoint  Key = "collection.endpoint"
	KeyCollectionPolicyARN Key = "policy.collection.arn"
	KeyIndexName           Key = "index.name"

	KeyKnowledgeBaseID  Key = "knowledgebase.id"
	KeyKnowledgeBaseARN Key = "knowledgebase.arn"

	KeyDataSourceID   Key = "datasource.id"
	KeyIngestionJobID Key = "ingestion.job.id"
)
