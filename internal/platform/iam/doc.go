// Package iam provides the AWS IAM and STS client used to create the
// knowledge base execution role and its policies.
//
// Policy documents are typed structs validated before they are sent, so a
// malformed statement is rejected locally instead of by the IAM API.
package iam
