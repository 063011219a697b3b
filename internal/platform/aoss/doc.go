// Package aoss provides the OpenSearch Serverless clients for the vector
// search collection.
//
// The control plane (security policies, access policies, collections) goes
// through the AWS SDK. The vector index is created on the collection
// endpoint with opensearch-go, signing requests for the "aoss" service.
package aoss
