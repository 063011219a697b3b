package knowledgebase

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/util/poll"
)

const phase = "knowledgebase"

// Provisioner creates the knowledge base.
type Provisioner struct{}

// NewProvisioner creates a new knowledge base provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Requires implements the provisioning.Phase interface.
func (p *Provisioner) Requires() []provisioning.Key {
	return []provisioning.Key{provisioning.KeyRoleARN, provisioning.KeyCollectionARN, provisioning.KeyIndexName}
}

// Provides implements the provisioning.Phase interface.
func (p *Provisioner) Provides() []provisioning.Key {
	return []provisioning.Key{provisioning.KeyKnowledgeBaseID, provisioning.KeyKnowledgeBaseARN}
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := ctx.State.Require(p.Requires()...); err != nil {
		return err
	}
	if err := p.CreateKnowledgeBase(ctx); err != nil {
		return err
	}
	return p.AwaitActive(ctx)
}

// CreateKnowledgeBase creates a vector knowledge base mapped onto the index fields.
func (p *Provisioner) CreateKnowledgeBase(ctx *provisioning.Context) error {
	cfg := ctx.Config
	name := ctx.State.Names.KnowledgeBase()

	ctx.Observer.Printf("[KnowledgeBase] Creating knowledge base %s...", name)
	provisioning.LogResourceCreating(ctx.Observer, phase, provisioning.ResourceKnowledgeBase, name)
	kb, err := ctx.Clients.KnowledgeBases.CreateKnowledgeBase(ctx, bedrock.KnowledgeBaseInput{
		Name:               name,
		Description:        "Document knowledge base",
		RoleARN:            ctx.State.Get(provisioning.KeyRoleARN),
		EmbeddingModelARN:  config.FoundationModelARN(ctx.State.Region, cfg.Models.Embedding),
		EmbeddingDimension: cfg.Models.EmbeddingDimension,
		CollectionARN:      ctx.State.Get(provisioning.KeyCollectionARN),
		IndexName:          ctx.State.Get(provisioning.KeyIndexName),
		VectorField:        cfg.Index.VectorField,
		TextField:          cfg.Index.TextField,
		MetadataField:      cfg.Index.MetadataField,
	})
	if err != nil {
		return err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceKnowledgeBase, Name: name, ID: kb.ID})
	ctx.State.Set(provisioning.KeyKnowledgeBaseID, kb.ID)
	ctx.State.Set(provisioning.KeyKnowledgeBaseARN, kb.ARN)
	return nil
}

// AwaitActive polls the knowledge base until it is ACTIVE. FAILED is fatal
// and carries the reported failure reasons.
func (p *Provisioner) AwaitActive(ctx *provisioning.Context) error {
	id := ctx.State.Get(provisioning.KeyKnowledgeBaseID)

	check := func(c context.Context) (poll.Status, error) {
		kb, err := ctx.Clients.KnowledgeBases.GetKnowledgeBase(c, id)
		if err != nil {
			return poll.Status{}, err
		}
		switch kb.Status {
		case bedrock.KnowledgeBaseActive:
			if kb.ARN != "" {
				ctx.State.Set(provisioning.KeyKnowledgeBaseARN, kb.ARN)
			}
			return poll.Status{State: poll.Ready, Raw: kb.Status}, nil
		case bedrock.KnowledgeBaseFailed:
			return poll.Status{State: poll.Failed, Raw: kb.Status, Detail: strings.Join(kb.FailureReasons, "; ")}, nil
		default:
			return poll.Status{State: poll.Pending, Raw: kb.Status}, nil
		}
	}

	ctx.Observer.Printf("[KnowledgeBase] Waiting for %s to become ACTIVE...", id)
	if _, err := ctx.Wait(phase, id, ctx.Timeouts.KnowledgeBasePoll, ctx.Timeouts.KnowledgeBase, check); err != nil {
		return fmt.Errorf("knowledge base %s: %w", id, err)
	}
	ctx.Observer.Printf("[KnowledgeBase] %s is ACTIVE", id)
	return nil
}
