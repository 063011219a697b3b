package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/provisioning/collection"
	"github.com/imamik/kbstack/internal/provisioning/destroy"
	"github.com/imamik/kbstack/internal/provisioning/ingestion"
	"github.com/imamik/kbstack/internal/provisioning/knowledgebase"
	"github.com/imamik/kbstack/internal/provisioning/policy"
	"github.com/imamik/kbstack/internal/provisioning/storage"
	"github.com/imamik/kbstack/internal/util/naming"
)

// Options override configuration for a single run.
type Options struct {
	Region  string
	DataDir string
}

// Provisioner orchestrates the provisioning workflow.
type Provisioner struct {
	config  *config.Config
	clients provisioning.Clients

	// Observer receives progress events. Defaults to a console observer.
	Observer provisioning.Observer
	// Timeouts overrides the environment-derived poll and settle timings.
	Timeouts *config.Timeouts
	// Sleep overrides how settle steps wait.
	Sleep provisioning.SleepFunc
	// NewSuffix generates the per-run resource suffix.
	NewSuffix func() string
}

// NewProvisioner creates a new orchestration provisioner.
func NewProvisioner(cfg *config.Config, clients provisioning.Clients) *Provisioner {
	return &Provisioner{
		config:    cfg,
		clients:   clients,
		NewSuffix: naming.NewSuffix,
	}
}

// Phases returns the provisioning phases in execution order.
func Phases() []provisioning.Phase {
	return []provisioning.Phase{
		provisioning.NewValidationPhase(),
		storage.NewProvisioner(),
		policy.NewProvisioner(),
		collection.NewProvisioner(),
		knowledgebase.NewProvisioner(),
		ingestion.NewProvisioner(),
	}
}

// Provision creates the whole stack. The returned Result is non-nil whenever
// the caller identity could be resolved, even if provisioning failed. The
// state file is written on success and whenever resources were left behind.
func (p *Provisioner) Provision(ctx context.Context, opts Options) (*Result, error) {
	cfg := *p.config
	if opts.Region != "" {
		cfg.Region = opts.Region
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	if err := checkStateFree(cfg.StateFile); err != nil {
		return nil, err
	}

	identity, err := p.clients.Identity.CallerIdentity(ctx)
	if err != nil {
		return nil, err
	}

	names := naming.New(cfg.NamePrefix, p.NewSuffix())
	state := provisioning.NewState(cfg.Region, identity.Account, identity.ARN, names)
	pCtx := provisioning.NewContext(ctx, &cfg, p.clients, state)
	if p.Observer != nil {
		pCtx.Observer = p.Observer
	}
	pCtx.Observer = pCtx.Observer.WithFields(map[string]string{"run": names.Suffix})
	if p.Timeouts != nil {
		pCtx.Timeouts = p.Timeouts
	}
	if p.Sleep != nil {
		pCtx.Sleep = p.Sleep
	}

	pCtx.Observer.Printf("Provisioning stack %s-%s in %s for account %s", names.Prefix, names.Suffix, cfg.Region, identity.Account)

	runErr := provisioning.RunPhases(pCtx, Phases())
	if runErr != nil && cfg.ShouldTeardownOnFailure() && pCtx.Ledger.Len() > 0 {
		runErr = p.teardown(pCtx, runErr)
	}

	result := NewResult(state, pCtx.Ledger)
	result.GenerationModel = config.GenerationModelARN(cfg.Region, identity.Account, cfg.Models.Generation)
	if runErr != nil {
		result.Error = runErr.Error()
	}
	if cfg.StateFile != "" && (runErr == nil || len(result.Resources) > 0) {
		if err := SaveResult(cfg.StateFile, result); err != nil {
			return result, errors.Join(runErr, err)
		}
	}
	return result, runErr
}

// teardown removes what the failed run created. The ledger is replaced by
// whatever could not be deleted so the state file lists only survivors.
func (p *Provisioner) teardown(pCtx *provisioning.Context, runErr error) error {
	pCtx.Observer.Printf("Provisioning failed, tearing down %d resources...", pCtx.Ledger.Len())

	// Teardown must run even when the failure was a cancellation.
	tCtx := *pCtx
	tCtx.Context = context.WithoutCancel(pCtx.Context)
	report := destroy.NewProvisioner().Teardown(&tCtx)

	pCtx.Ledger = provisioning.NewLedger(survivors(report)...)

	if err := report.Err(); err != nil {
		return fmt.Errorf("%w (%w)", runErr, err)
	}
	return runErr
}

// checkStateFree refuses to start when the state file still tracks live
// resources; overwriting it would orphan them.
func checkStateFree(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	prev, err := LoadResult(path)
	if err != nil {
		return err
	}
	if len(prev.Resources) > 0 {
		return fmt.Errorf("%w: %s still tracks %d resources of stack %s-%s; run 'kbstack destroy' first",
			provisioning.ErrConflict, path, len(prev.Resources), prev.Prefix, prev.Suffix)
	}
	return nil
}
