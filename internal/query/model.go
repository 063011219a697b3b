package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/platform/iam"
)

// AccountResolver reports who the current credentials belong to.
type AccountResolver interface {
	CallerIdentity(ctx context.Context) (*iam.CallerIdentity, error)
}

// ResolveModelARN turns a model ID or ARN into the ARN RetrieveAndGenerate
// expects. The account is only looked up for inference profiles.
func ResolveModelARN(ctx context.Context, accounts AccountResolver, region, model string) (string, error) {
	if strings.HasPrefix(model, "arn:") || !config.IsInferenceProfile(model) {
		return config.GenerationModelARN(region, "", model), nil
	}
	identity, err := accounts.CallerIdentity(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve account for inference profile %s: %w", model, err)
	}
	return config.GenerationModelARN(region, identity.Account, model), nil
}
