package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/provisioning/destroy"
	"github.com/imamik/kbstack/internal/util/naming"
)

// Destroy tears down the stack recorded in the state file at statePath.
// The state file is removed when everything is gone and rewritten with the
// survivors otherwise.
func (p *Provisioner) Destroy(ctx context.Context, statePath string) (*destroy.Report, error) {
	prev, err := LoadResult(statePath)
	if err != nil {
		return nil, err
	}

	cfg := *p.config
	cfg.Region = prev.Region
	state := provisioning.NewState(prev.Region, prev.AccountID, "", naming.New(prev.Prefix, prev.Suffix))
	pCtx := provisioning.NewContext(ctx, &cfg, p.clients, state)
	pCtx.Ledger = provisioning.NewLedger(prev.Resources...)
	if p.Observer != nil {
		pCtx.Observer = p.Observer
	}
	if p.Timeouts != nil {
		pCtx.Timeouts = p.Timeouts
	}

	report := destroy.NewProvisioner().Teardown(pCtx)

	if len(report.Errors) == 0 {
		if err := os.Remove(statePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return report, fmt.Errorf("failed to remove state file: %w", err)
		}
		return report, nil
	}

	prev.Resources = survivors(report)
	prev.Error = report.Err().Error()
	if err := SaveResult(statePath, prev); err != nil {
		return report, errors.Join(report.Err(), err)
	}
	return report, report.Err()
}

// survivors lists the resources teardown could not delete, in creation order.
func survivors(report *destroy.Report) []provisioning.Resource {
	remaining := make([]provisioning.Resource, 0, len(report.Errors))
	for i := len(report.Errors) - 1; i >= 0; i-- {
		remaining = append(remaining, report.Errors[i].Resource)
	}
	return remaining
}
