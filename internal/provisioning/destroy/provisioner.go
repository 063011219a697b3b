package destroy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/kbstack/internal/metrics"
	"github.com/imamik/kbstack/internal/platform/aoss"
	"github.com/imamik/kbstack/internal/platform/awserr"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/util/retry"
)

const phase = "destroy"

// ResourceError is a delete that did not succeed.
type ResourceError struct {
	Resource provisioning.Resource
	Err      error
}

func (e ResourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Resource.Kind, e.Resource.Name, e.Err)
}

func (e ResourceError) Unwrap() error { return e.Err }

// Report lists what teardown removed and what it could not.
type Report struct {
	Deleted []provisioning.Resource
	Errors  []ResourceError
}

// Err joins every delete error, or returns nil if teardown was clean.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return fmt.Errorf("teardown left %d resources behind: %w", len(r.Errors), errors.Join(errs...))
}

// Provisioner handles stack destruction.
type Provisioner struct{}

// NewProvisioner creates a new destroy provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Requires implements the provisioning.Phase interface.
func (p *Provisioner) Requires() []provisioning.Key { return nil }

// Provides implements the provisioning.Phase interface.
func (p *Provisioner) Provides() []provisioning.Key { return nil }

// Provision destroys every resource in the ledger.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	return p.Teardown(ctx).Err()
}

// Teardown deletes the ledger's resources newest-first and reports the result.
func (p *Provisioner) Teardown(ctx *provisioning.Context) *Report {
	resources := ctx.Ledger.Newest()
	report := &Report{}
	ctx.Observer.Printf("[Destroy] Tearing down %d resources...", len(resources))

	for _, r := range resources {
		provisioning.LogResourceDeleting(ctx.Observer, phase, r.Kind, r.Name)
		if err := p.deleteWithRetry(ctx, r); err != nil {
			provisioning.LogResourceDeleteFailed(ctx.Observer, phase, r.Kind, r.Name, err)
			metrics.RecordTeardown(string(r.Kind), "error")
			report.Errors = append(report.Errors, ResourceError{Resource: r, Err: err})
			continue
		}
		provisioning.LogResourceDeleted(ctx.Observer, phase, r.Kind, r.Name)
		metrics.RecordTeardown(string(r.Kind), "deleted")
		report.Deleted = append(report.Deleted, r)
	}

	if len(report.Errors) > 0 {
		ctx.Observer.Printf("[Destroy] %d of %d resources could not be deleted", len(report.Errors), len(resources))
	} else {
		ctx.Observer.Printf("[Destroy] All %d resources deleted", len(resources))
	}
	return report
}

func (p *Provisioner) deleteWithRetry(ctx *provisioning.Context, r provisioning.Resource) error {
	opts := []retry.Option{
		retry.WithRetryIf(awserr.IsRetryable),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			ctx.Observer.Printf("[Destroy] %s %s not deletable yet (attempt %d), retrying in %s: %v", r.Kind, r.Name, attempt, delay, err)
		}),
	}
	deleteTimeout := time.Duration(0)
	if t := ctx.Timeouts; t != nil {
		opts = append(opts, retry.WithMaxAttempts(t.RetryMaxAttempts), retry.WithInitialDelay(t.RetryInitialDelay))
		deleteTimeout = t.Delete
	}

	var dctx context.Context = ctx
	if deleteTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, deleteTimeout)
		defer cancel()
	}

	return retry.Do(dctx, func(attemptCtx context.Context) error {
		err := deleteResource(attemptCtx, ctx.Clients, r)
		if awserr.IsNotFound(err) {
			return nil
		}
		return err
	}, opts...)
}

func deleteResource(ctx context.Context, c provisioning.Clients, r provisioning.Resource) error {
	switch r.Kind {
	case provisioning.ResourceDataSource:
		return c.KnowledgeBases.DeleteDataSource(ctx, r.Parent, r.ID)
	case provisioning.ResourceKnowledgeBase:
		return c.KnowledgeBases.DeleteKnowledgeBase(ctx, r.ID)
	case provisioning.ResourceIndex:
		return c.Indexes.DeleteIndex(ctx, r.Parent, r.Name)
	case provisioning.ResourceAttachment:
		return c.Identity.DetachRolePolicy(ctx, r.Name, r.ID)
	case provisioning.ResourcePolicy:
		return c.Identity.DeletePolicy(ctx, r.ID)
	case provisioning.ResourceRole:
		return c.Identity.DeleteRole(ctx, r.Name)
	case provisioning.ResourceCollection:
		return c.Collections.DeleteCollection(ctx, r.ID)
	case provisioning.ResourceAccessPolicy:
		return c.Collections.DeleteAccessPolicy(ctx, r.Name)
	case provisioning.ResourceEncryptionPolicy:
		return c.Collections.DeleteSecurityPolicy(ctx, r.Name, aoss.PolicyEncryption)
	case provisioning.ResourceNetworkPolicy:
		return c.Collections.DeleteSecurityPolicy(ctx, r.Name, aoss.PolicyNetwork)
	case provisioning.ResourceBucket:
		return c.Storage.DeleteBucket(ctx, r.Name)
	default:
		return retry.Fatal(fmt.Errorf("unknown resource kind %q", r.Kind))
	}
}
