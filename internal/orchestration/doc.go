// Package orchestration runs a complete provisioning of one knowledge base
// stack.
//
// The Provisioner resolves the caller identity, names every resource for
// the run and executes the phases in internal/provisioning in order:
//  1. Validation - Pre-flight configuration and document checks
//  2. Storage - Document bucket and uploads
//  3. Policy - Least-privilege IAM policies and the execution role
//  4. Collection - Vector search collection, access grant and index
//  5. KnowledgeBase - Bedrock knowledge base
//  6. Ingestion - Data source and ingestion job
//
// When a phase fails and teardown on failure is enabled, every resource the
// run created is removed again. The state file is written in every case so
// that 'kbstack destroy' and 'kbstack query' can find the stack later.
//
// # Usage
//
//	p := orchestration.NewProvisioner(cfg, clients)
//	result, err := p.Provision(ctx, orchestration.Options{Region: "us-east-1"})
package orchestration
