// Package s3 provides the Amazon S3 client for the knowledge base document bucket.
//
// It handles idempotent bucket creation in the configured region, document
// upload, and emptying and deleting the bucket during teardown.
package s3
