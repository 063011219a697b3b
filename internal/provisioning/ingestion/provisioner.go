package ingestion

import (
	"context"
	"fmt"

	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/util/poll"
)

const phase = "ingestion"

// Provisioner creates the data source and runs the ingestion job.
type Provisioner struct{}

// NewProvisioner creates a new ingestion provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Requires implements the provisioning.Phase interface.
func (p *Provisioner) Requires() []provisioning.Key {
	return []provisioning.Key{provisioning.KeyKnowledgeBaseID, provisioning.KeyBucketARN}
}

// Provides implements the provisioning.Phase interface.
func (p *Provisioner) Provides() []provisioning.Key {
	return []provisioning.Key{provisioning.KeyDataSourceID, provisioning.KeyIngestionJobID}
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := ctx.State.Require(p.Requires()...); err != nil {
		return err
	}

	// 1. Data source
	if err := p.CreateDataSource(ctx); err != nil {
		return err
	}

	// 2. Ingestion job
	if err := p.StartIngestionJob(ctx); err != nil {
		return err
	}
	return p.AwaitComplete(ctx)
}

// CreateDataSource attaches the document bucket to the knowledge base.
func (p *Provisioner) CreateDataSource(ctx *provisioning.Context) error {
	kbID := ctx.State.Get(provisioning.KeyKnowledgeBaseID)
	name := ctx.State.Names.DataSource()
	chunking := ctx.Config.Chunking

	ctx.Observer.Printf("[Ingestion] Creating data source %s (%s chunking)...", name, chunking.Strategy)
	provisioning.LogResourceCreating(ctx.Observer, phase, provisioning.ResourceDataSource, name)
	ds, err := ctx.Clients.KnowledgeBases.CreateDataSource(ctx, bedrock.DataSourceInput{
		KnowledgeBaseID:   kbID,
		Name:              name,
		Description:       "Documents uploaded by kbstack",
		BucketARN:         ctx.State.Get(provisioning.KeyBucketARN),
		BucketOwner:       ctx.State.AccountID,
		ChunkingStrategy:  chunking.Strategy,
		MaxTokens:         chunking.MaxTokens,
		OverlapPercentage: chunking.OverlapPercentage,
	})
	if err != nil {
		return err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceDataSource, Name: name, ID: ds.ID, Parent: kbID})
	ctx.State.Set(provisioning.KeyDataSourceID, ds.ID)
	return nil
}

// StartIngestionJob starts syncing the bucket into the knowledge base.
func (p *Provisioner) StartIngestionJob(ctx *provisioning.Context) error {
	if err := ctx.State.Require(provisioning.KeyDataSourceID); err != nil {
		return err
	}
	kbID := ctx.State.Get(provisioning.KeyKnowledgeBaseID)
	dsID := ctx.State.Get(provisioning.KeyDataSourceID)

	ctx.Observer.Printf("[Ingestion] Starting ingestion job for data source %s...", dsID)
	job, err := ctx.Clients.KnowledgeBases.StartIngestionJob(ctx, kbID, dsID)
	if err != nil {
		return err
	}
	ctx.State.Set(provisioning.KeyIngestionJobID, job.ID)
	return nil
}

// AwaitComplete polls the ingestion job until it is COMPLETE. FAILED and
// STOPPED are fatal and report the job's failure reasons and statistics.
func (p *Provisioner) AwaitComplete(ctx *provisioning.Context) error {
	kbID := ctx.State.Get(provisioning.KeyKnowledgeBaseID)
	dsID := ctx.State.Get(provisioning.KeyDataSourceID)
	jobID := ctx.State.Get(provisioning.KeyIngestionJobID)

	check := func(c context.Context) (poll.Status, error) {
		job, err := ctx.Clients.KnowledgeBases.GetIngestionJob(c, kbID, dsID, jobID)
		if err != nil {
			return poll.Status{}, err
		}
		ctx.State.Ingestion = job.Statistics
		switch job.Status {
		case bedrock.IngestionComplete:
			return poll.Status{State: poll.Ready, Raw: job.Status}, nil
		case bedrock.IngestionFailed, bedrock.IngestionStopped:
			return poll.Status{State: poll.Failed, Raw: job.Status, Detail: job.Detail()}, nil
		default:
			return poll.Status{State: poll.Pending, Raw: job.Status}, nil
		}
	}

	ctx.Observer.Printf("[Ingestion] Waiting for ingestion job %s to complete...", jobID)
	if _, err := ctx.Wait(phase, jobID, ctx.Timeouts.IngestionPoll, ctx.Timeouts.Ingestion, check); err != nil {
		return fmt.Errorf("ingestion job %s: %w", jobID, err)
	}
	ctx.Observer.Printf("[Ingestion] Ingestion complete: %s", ctx.State.Ingestion)
	if stats := ctx.State.Ingestion; stats.Failed > 0 {
		provisioning.LogDocumentsFailed(ctx.Observer, phase, jobID, stats.Failed, stats.Scanned)
	}
	return nil
}
