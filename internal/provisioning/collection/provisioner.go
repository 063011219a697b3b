package collection

import (
	"fmt"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/platform/aoss"
	"github.com/imamik/kbstack/internal/platform/iam"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/provisioning/policy"
)

const phase = "collection"

// Provisioner creates the vector search collection and its index.
type Provisioner struct{}

// NewProvisioner creates a new collection provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Requires implements the provisioning.Phase interface.
func (p *Provisioner) Requires() []provisioning.Key {
	return []provisioning.Key{provisioning.KeyRoleName, provisioning.KeyRoleARN}
}

// Provides implements the provisioning.Phase interface.
func (p *Provisioner) Provides() []provisioning.Key {
	return []provisioning.Key{
		provisioning.KeyCollectionID,
		provisioning.KeyCollectionARN,
		provisioning.KeyCollectionEndpoint,
		provisioning.KeyCollectionPolicyARN,
		provisioning.KeyIndexName,
	}
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := ctx.State.Require(p.Requires()...); err != nil {
		return err
	}
	if err := config.ValidateDimension(ctx.Config.Models.Embedding, ctx.Config.Models.EmbeddingDimension); err != nil {
		return fmt.Errorf("%w: %w", provisioning.ErrValidation, err)
	}

	// 1. Security policies and collection
	if err := p.CreateCollection(ctx); err != nil {
		return err
	}

	// 2. Wait for ACTIVE
	if err := p.AwaitActive(ctx); err != nil {
		return err
	}

	// 3. Data plane access for the execution role
	if err := p.AttachCollectionPolicy(ctx); err != nil {
		return err
	}
	if err := ctx.Settle(phase, "collection access to propagate", ctx.Timeouts.PolicySettle, config.MinPolicySettle); err != nil {
		return err
	}

	// 4. Vector index
	if err := p.CreateVectorIndex(ctx); err != nil {
		return err
	}
	return ctx.Settle(phase, "vector index to propagate", ctx.Timeouts.IndexSettle, config.MinIndexSettle)
}

// CreateCollection creates the encryption, network and data access policies
// and then the collection.
func (p *Provisioner) CreateCollection(ctx *provisioning.Context) error {
	names := ctx.State.Names
	collection := names.Collection()
	principals := []string{ctx.State.CallerARN, ctx.State.Get(provisioning.KeyRoleARN)}
	if err := aoss.ValidatePrincipals(principals); err != nil {
		return fmt.Errorf("%w: %w", provisioning.ErrValidation, err)
	}
	cm := ctx.Clients.Collections

	ctx.Observer.Printf("[Collection] Creating security policies for %s...", collection)
	if err := cm.CreateEncryptionPolicy(ctx, names.EncryptionPolicy(), collection); err != nil {
		return err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceEncryptionPolicy, Name: names.EncryptionPolicy()})

	if err := cm.CreateNetworkPolicy(ctx, names.NetworkPolicy(), collection); err != nil {
		return err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceNetworkPolicy, Name: names.NetworkPolicy()})

	if err := cm.CreateAccessPolicy(ctx, names.AccessPolicy(), collection, principals); err != nil {
		return err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceAccessPolicy, Name: names.AccessPolicy()})

	ctx.Observer.Printf("[Collection] Creating collection %s...", collection)
	provisioning.LogResourceCreating(ctx.Observer, phase, provisioning.ResourceCollection, collection)
	created, err := cm.CreateCollection(ctx, collection)
	if err != nil {
		return err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceCollection, Name: collection, ID: created.ID})
	ctx.State.Set(provisioning.KeyCollectionID, created.ID)
	ctx.State.Set(provisioning.KeyCollectionARN, created.ARN)
	return nil
}

// AttachCollectionPolicy grants the execution role data plane access to
// exactly this collection.
func (p *Provisioner) AttachCollectionPolicy(ctx *provisioning.Context) error {
	if err := ctx.State.Require(provisioning.KeyCollectionARN, provisioning.KeyRoleName); err != nil {
		return err
	}
	name := ctx.State.Names.CollectionPolicy()

	ctx.Observer.Printf("[Collection] Granting %s access to the collection...", ctx.State.Get(provisioning.KeyRoleName))
	arn, err := policy.CreatePolicy(ctx, phase, name,
		"Allows the knowledge base to read and write its vector collection",
		iam.CollectionAccessPolicy(ctx.State.Get(provisioning.KeyCollectionARN)))
	if err != nil {
		return err
	}
	ctx.State.Set(provisioning.KeyCollectionPolicyARN, arn)
	return policy.Attach(ctx, phase, ctx.State.Get(provisioning.KeyRoleName), arn)
}

// CreateVectorIndex creates the k-NN index inside the active collection.
func (p *Provisioner) CreateVectorIndex(ctx *provisioning.Context) error {
	if err := ctx.State.Require(provisioning.KeyCollectionEndpoint); err != nil {
		return err
	}
	endpoint := ctx.State.Get(provisioning.KeyCollectionEndpoint)
	index := ctx.State.Names.Index()
	spec := IndexSpec(ctx.Config)
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", provisioning.ErrValidation, err)
	}

	ctx.Observer.Printf("[Collection] Creating %d-dimensional vector index %s...", spec.Dimension, index)
	provisioning.LogResourceCreating(ctx.Observer, phase, provisioning.ResourceIndex, index)
	if err := ctx.Clients.Indexes.CreateIndex(ctx, endpoint, index, spec); err != nil {
		return err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceIndex, Name: index, Parent: endpoint})
	ctx.State.Set(provisioning.KeyIndexName, index)
	return nil
}

// IndexSpec builds the index layout from the configuration.
func IndexSpec(cfg *config.Config) aoss.IndexSpec {
	return aoss.IndexSpec{
		Dimension:     cfg.Models.EmbeddingDimension,
		VectorField:   cfg.Index.VectorField,
		TextField:     cfg.Index.TextField,
		MetadataField: cfg.Index.MetadataField,
		Engine:        cfg.Index.Engine,
		SpaceType:     cfg.Index.SpaceType,
		EFSearch:      cfg.Index.EFSearch,
	}
}
