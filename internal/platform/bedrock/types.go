package bedrock

import (
	"fmt"
	"strings"
)

// Knowledge base status values.
const (
	KnowledgeBaseCreating = "CREATING"
	KnowledgeBaseActive   = "ACTIVE"
	KnowledgeBaseFailed   = "FAILED"
)

// Ingestion job status values.
const (
	IngestionStarting   = "STARTING"
	IngestionInProgress = "IN_PROGRESS"
	IngestionComplete   = "COMPLETE"
	IngestionFailed     = "FAILED"
	IngestionStopping   = "STOPPING"
	IngestionStopped    = "STOPPED"
)

// LocationTypeS3 is the retrieved reference location type for S3 documents.
const LocationTypeS3 = "S3"

// KnowledgeBaseInput describes a vector knowledge base backed by an AOSS index.
type KnowledgeBaseInput struct {
	Name               string
	Description        string
	RoleARN            string
	EmbeddingModelARN  string
	EmbeddingDimension int
	CollectionARN      string
	IndexName          string
	VectorField        string
	TextField          string
	MetadataField      string
}

// KnowledgeBase is a created or fetched knowledge base.
type KnowledgeBase struct {
	ID             string
	ARN            string
	Name           string
	Status         string
	FailureReasons []string
}

// DataSourceInput describes an S3 data source with fixed-size chunking.
type DataSourceInput struct {
	KnowledgeBaseID   string
	Name              string
	Description       string
	BucketARN         string
	BucketOwner       string
	ChunkingStrategy  string
	MaxTokens         int
	OverlapPercentage int
}

// DataSource is a created data source.
type DataSource struct {
	ID     string
	Status string
}

// IngestionStatistics counts documents processed by an ingestion job.
type IngestionStatistics struct {
	Scanned         int64 `json:"scanned" yaml:"scanned"`
	NewIndexed      int64 `json:"new_indexed" yaml:"new_indexed"`
	ModifiedIndexed int64 `json:"modified_indexed" yaml:"modified_indexed"`
	Deleted         int64 `json:"deleted" yaml:"deleted"`
	Failed          int64 `json:"failed" yaml:"failed"`
}

func (s IngestionStatistics) String() string {
	return fmt.Sprintf("scanned=%d new=%d modified=%d deleted=%d failed=%d",
		s.Scanned, s.NewIndexed, s.ModifiedIndexed, s.Deleted, s.Failed)
}

// IngestionJob is a started or fetched ingestion job.
type IngestionJob struct {
	ID             string
	Status         string
	FailureReasons []string
	Statistics     IngestionStatistics
}

// Detail summarizes the failure reasons and statistics of a job.
func (j *IngestionJob) Detail() string {
	var b strings.Builder
	b.WriteString(j.Statistics.String())
	if len(j.FailureReasons) > 0 {
		b.WriteString("; reasons: ")
		b.WriteString(strings.Join(j.FailureReasons, "; "))
	}
	return b.String()
}

// RetrieveRequest is one retrieve-and-generate call against a knowledge base.
type RetrieveRequest struct {
	KnowledgeBaseID string
	ModelARN        string
	Text            string
	SessionID       string
}

// Generation is the generated answer and its citations.
type Generation struct {
	Text      string     `json:"text"`
	SessionID string     `json:"sessionId,omitempty"`
	Citations []Citation `json:"citations"`
}

// Citation links part of the generated text to retrieved references.
type Citation struct {
	RetrievedReferences []RetrievedReference `json:"retrievedReferences"`
}

// RetrievedReference is one source chunk used for a citation.
type RetrievedReference struct {
	Content  string    `json:"content,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Location is where a retrieved reference came from.
type Location struct {
	Type       string      `json:"type"`
	S3Location *S3Location `json:"s3Location,omitempty"`
}

// S3Location is an S3 document location.
type S3Location struct {
	URI string `json:"uri"`
}
