// Package provisioning provides shared types and orchestration for building a
// knowledge base stack.
//
// # Subpackages
//
//   - storage/ — S3 document bucket and uploads
//   - policy/ — IAM policies and the execution role
//   - collection/ — OpenSearch Serverless collection, access and vector index
//   - knowledgebase/ — Bedrock knowledge base
//   - ingestion/ — data source and ingestion job
//   - destroy/ — best-effort teardown from the resource ledger
//
// # Core Types
//
// Context carries configuration, clients, state, ledger and observer.
// Phase declares the state keys it requires and provides and runs one stage.
// State accumulates the identifiers produced by each phase.
// Ledger records every created resource, in creation order, for teardown.
package provisioning
