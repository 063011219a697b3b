// Package bedrock provides the Bedrock Agent clients: the control plane for
// knowledge bases, data sources and ingestion jobs, and the runtime for
// RetrieveAndGenerate queries.
package bedrock
