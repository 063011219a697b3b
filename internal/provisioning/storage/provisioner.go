package storage

import (
	"github.com/imamik/kbstack/internal/platform/s3"
	"github.com/imamik/kbstack/internal/provisioning"
)

const phase = "storage"

// Provisioner creates the document bucket and uploads documents.
type Provisioner struct{}

// NewProvisioner creates a new storage provisioner.
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
func (p *Provisioner) Provides() []provisioning.Key {
	return []provisioning.Key{provisioning.KeyBucketName, provisioning.KeyBucketARN}
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	// 1. Bucket
	if err := p.EnsureBucket(ctx); err != nil {
		return err
	}

	// 2. Documents
	return p.UploadDocuments(ctx)
}

// EnsureBucket creates the document bucket, accepting one this caller already owns.
func (p *Provisioner) EnsureBucket(ctx *provisioning.Context) error {
	name := ctx.State.Names.Bucket()
	ctx.Observer.Printf("[Storage] Ensuring bucket %s in %s...", name, ctx.State.Region)
	provisioning.LogResourceCreating(ctx.Observer, phase, provisioning.ResourceBucket, name)

	created, err := ctx.Clients.Storage.EnsureBucket(ctx, name)
	if err != nil {
		return err
	}
	if created {
		ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceBucket, Name: name})
	} else {
		provisioning.LogResourceExists(ctx.Observer, phase, provisioning.ResourceBucket, name)
	}

	ctx.State.Set(provisioning.KeyBucketName, name)
	ctx.State.Set(provisioning.KeyBucketARN, s3.BucketARN(name))
	return nil
}
