// Package ingestion connects the document bucket to the knowledge base as a
// data source, runs one ingestion job and waits for it to complete.
package ingestion
