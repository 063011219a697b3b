// Package destroy tears down the resources a run created.
//
// Teardown walks the ledger newest-first so dependents go before what they
// depend on: data source, knowledge base, vector index, IAM attachments and
// policies, collection, collection security policies, role and finally the
// emptied bucket. It is best effort. A failed delete is recorded in the
// report and the walk moves on. Resources that are already gone count as
// deleted, and deletes rejected because a dependent is still being removed
// are retried with exponential backoff.
package destroy
