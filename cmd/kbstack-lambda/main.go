// Package main is the AWS Lambda entry point for kbstack queries.
//
// The function answers API Gateway proxy requests with the same JSON shape as
// `kbstack serve`. It is configured through the environment:
//
//	KBSTACK_KNOWLEDGE_BASE_ID   knowledge base to query (required)
//	KBSTACK_GENERATION_MODEL    model ID or ARN (default: the kbstack default)
//	AWS_REGION                  set by the Lambda runtime
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/orchestration"
	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/platform/iam"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/query"
)

const (
	envKnowledgeBaseID = "KBSTACK_KNOWLEDGE_BASE_ID"
	envGenerationModel = "KBSTACK_GENERATION_MODEL"
)

func main() {
	log := provisioning.NewConsoleLogger().WithName("lambda")

	handler, err := newHandler(context.Background(), os.Getenv)
	if err != nil {
		log.Error(err, "failed to initialize")
		os.Exit(1)
	}
	lambda.Start(handler.HandleLambda)
}

// newHandler resolves the knowledge base and model once per cold start.
func newHandler(ctx context.Context, getenv func(string) string) (*query.Handler, error) {
	kbID := getenv(envKnowledgeBaseID)
	if kbID == "" {
		return nil, fmt.Errorf("%s is not set", envKnowledgeBaseID)
	}
	model := getenv(envGenerationModel)
	if model == "" {
		model = config.DefaultGenerationModel
	}

	awsCfg, err := orchestration.LoadAWSConfig(ctx, "", "")
	if err != nil {
		return nil, err
	}
	modelARN, err := query.ResolveModelARN(ctx, iam.NewFromConfig(awsCfg), awsCfg.Region, model)
	if err != nil {
		return nil, err
	}

	client := query.NewClient(bedrock.NewRuntimeFromConfig(awsCfg), kbID, modelARN)
	return query.NewHandler(client, provisioning.NewConsoleLogger().WithName("query")), nil
}
