// Package policy provisions the least-privilege IAM policies and the
// execution role the knowledge base assumes.
package policy
