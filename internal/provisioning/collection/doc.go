// Package collection provisions the OpenSearch Serverless vector search
// collection and the vector index the knowledge base writes to.
//
// Security policies come first, then the collection itself. Once the
// collection is ACTIVE the execution role is granted data plane access and
// the phase waits for the grant to propagate before creating the index.
package collection
