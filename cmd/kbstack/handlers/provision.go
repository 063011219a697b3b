package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/kbstack/internal/orchestration"
	"github.com/imamik/kbstack/internal/query"
)

// ProvisionOptions are the flags of the provision command.
type ProvisionOptions struct {
	Region    string
	DataDir   string
	TestQuery string
}

// Provision creates the knowledge base stack and prints a summary.
//
// When a test query is given it is sent to the new knowledge base once
// provisioning succeeds and the answer is printed with its sources.
func Provision(ctx context.Context, configPath string, opts ProvisionOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	region := opts.Region
	if region == "" {
		region = cfg.Region
	}
	awsCfg, err := loadAWSConfig(ctx, region, cfg.Profile)
	if err != nil {
		return err
	}

	stack := newStack(cfg, newClients(awsCfg))
	result, err := stack.Provision(ctx, orchestration.Options{
		Region:  awsCfg.Region,
		DataDir: opts.DataDir,
	})
	printer := newPrinter()
	if result != nil {
		printer.Result(result)
	}
	if err != nil {
		return fmt.Errorf("provisioning failed: %w", err)
	}

	if opts.TestQuery == "" {
		return nil
	}

	client := query.NewClient(newRetriever(awsCfg), result.KnowledgeBaseID, result.GenerationModel)
	answer, err := client.Query(ctx, opts.TestQuery)
	if err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}
	fmt.Fprintf(stdout, "\nQuery: %s\n\n", opts.TestQuery)
	printer.Answer(answer)
	return nil
}
