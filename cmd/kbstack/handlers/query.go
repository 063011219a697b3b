package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/imamik/kbstack/internal/query"
)

// QueryOptions select the knowledge base and model to query. Empty fields are
// taken from the state file.
type QueryOptions struct {
	StateFile       string
	KnowledgeBaseID string
	Model           string
	Region          string
}

// target is a resolved knowledge base to query.
type target struct {
	awsCfg          aws.Config
	knowledgeBaseID string
	modelARN        string
}

// Query asks the knowledge base one question and prints the answer.
func Query(ctx context.Context, configPath, text string, opts QueryOptions) error {
	t, err := resolveTarget(ctx, configPath, opts)
	if err != nil {
		return err
	}

	client := query.NewClient(newRetriever(t.awsCfg), t.knowledgeBaseID, t.modelARN)
	answer, err := client.Query(ctx, text)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	newPrinter().Answer(answer)
	return nil
}

// resolveTarget combines flags, the state file and the configuration into a
// knowledge base ID, a generation model ARN and an AWS configuration.
func resolveTarget(ctx context.Context, configPath string, opts QueryOptions) (*target, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	kbID, model, region := opts.KnowledgeBaseID, opts.Model, opts.Region
	if kbID == "" || model == "" {
		statePath := opts.StateFile
		if statePath == "" {
			statePath = cfg.StateFile
		}
		// The state file is only required when it must supply the knowledge base.
		state, err := loadResult(statePath)
		switch {
		case err != nil && kbID == "":
			return nil, fmt.Errorf("no knowledge base given and no usable state file: %w", err)
		case err == nil:
			if kbID == "" {
				kbID = state.KnowledgeBaseID
			}
			if model == "" {
				model = state.GenerationModel
			}
			if region == "" {
				region = state.Region
			}
		}
	}
	if kbID == "" {
		return nil, errors.New("no knowledge base ID; provision a stack or pass --knowledge-base-id")
	}
	if region == "" {
		region = cfg.Region
	}

	awsCfg, err := loadAWSConfig(ctx, region, cfg.Profile)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = cfg.Models.Generation
	}
	modelARN, err := query.ResolveModelARN(ctx, newClients(awsCfg).Identity, awsCfg.Region, model)
	if err != nil {
		return nil, err
	}
	return &target{awsCfg: awsCfg, knowledgeBaseID: kbID, modelARN: modelARN}, nil
}
