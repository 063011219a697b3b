// Package awserr classifies AWS API errors into the kbstack error taxonomy.
//
// Every SDK client in internal/platform returns smithy API errors; the
// helpers here map error codes onto conflict, not-found and retryable
// categories so stages and teardown can decide without knowing which
// service produced the error.
package awserr

import (
	"errors"

	"github.com/aws/smithy-go"
)

// ErrConflict is matched by errors for resources that already exist where
// an existing resource cannot be reused.
var ErrConflict = errors.New("resource already exists")

// ErrNotFound is matched by errors for resources that do not exist.
var ErrNotFound = errors.New("resource not found")

// Codes that mean "already exists" across S3, IAM, AOSS and Bedrock.
var conflictCodes = []string{
	"BucketAlreadyExists",
	"EntityAlreadyExists",
	"ConflictException",
	"ResourceAlreadyExistsException",
}

// Codes that mean "does not exist" across S3, IAM, AOSS and Bedrock.
var notFoundCodes = []string{
	"NoSuchBucket",
	"NotFound",
	"NoSuchEntity",
	"ResourceNotFoundException",
	"index_not_found_exception",
}

// Codes returned while a dependent resource is still being released or the
// service is throttling. Deletes that hit them are retried.
var retryableCodes = []string{
	"ConflictException",
	"DeleteConflict",
	"ThrottlingException",
	"Throttling",
	"TooManyRequestsException",
	"ServiceUnavailableException",
	"BucketNotEmpty",
}

// Code returns the API error code of err, or "" if err is not an API error.
func Code(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// HasCode checks if err is an API error with one of the given codes.
func HasCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}
	code := Code(err)
	if code == "" {
		return false
	}
	for _, c := range codes {
		if code == c {
			return true
		}
	}
	return false
}

// IsConflict checks if an error indicates the resource already exists.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || HasCode(err, conflictCodes...)
}

// IsNotFound checks if an error indicates the resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || HasCode(err, notFoundCodes...)
}

// IsRetryable checks if an error is worth retrying during teardown.
func IsRetryable(err error) bool {
	return HasCode(err, retryableCodes...)
}
