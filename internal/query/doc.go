// Package query answers questions against a provisioned knowledge base.
//
// [Client] issues one retrieve-and-generate call and reduces the response to
// the generated text plus the S3 locations it cites. [Handler] exposes the
// same operation over HTTP and as an API Gateway Lambda handler. Both catch
// every failure at the boundary and answer with a JSON error body instead.
package query
