// Package retry runs an operation again with exponential backoff while it
// fails with a retryable error.
//
// Teardown uses [Do] for AWS deletes that fail while a dependent resource is
// still being released (ConflictException, DeleteConflict). Errors marked with
// [Fatal], or rejected by a [WithRetryIf] predicate, end the loop at once.
package retry
