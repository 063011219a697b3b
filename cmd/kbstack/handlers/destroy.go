package handlers

import (
	"context"
	"fmt"
)

// Destroy deletes every resource tracked by the state file.
//
// The state file is removed when everything was deleted and rewritten with
// the survivors otherwise, so destroy can simply be run again.
func Destroy(ctx context.Context, configPath, statePath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if statePath == "" {
		statePath = cfg.StateFile
	}

	// Resources live where they were created, whatever the config says now.
	state, err := loadResult(statePath)
	if err != nil {
		return err
	}
	awsCfg, err := loadAWSConfig(ctx, state.Region, cfg.Profile)
	if err != nil {
		return err
	}

	stack := newStack(cfg, newClients(awsCfg))
	report, err := stack.Destroy(ctx, statePath)
	if report != nil {
		newPrinter().Report(report)
	}
	if err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}
	return nil
}
