package orchestration

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/imamik/kbstack/internal/platform/aoss"
	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/platform/iam"
	"github.com/imamik/kbstack/internal/platform/s3"
	"github.com/imamik/kbstack/internal/provisioning"
)

// LoadAWSConfig resolves credentials and region from the default chain.
// An explicit region or profile takes precedence.
func LoadAWSConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	if cfg.Region == "" {
		return aws.Config{}, fmt.Errorf("no AWS region configured; set region in the config file or AWS_REGION")
	}
	return cfg, nil
}

// NewClients builds every service client a run needs from one AWS configuration.
func NewClients(cfg aws.Config) provisioning.Clients {
	return provisioning.Clients{
		Storage:        s3.NewFromConfig(cfg),
		Identity:       iam.NewFromConfig(cfg),
		Collections:    aoss.NewFromConfig(cfg),
		Indexes:        aoss.NewIndexClient(cfg),
		KnowledgeBases: bedrock.NewFromConfig(cfg),
	}
}
