package handlers

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-logr/logr"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/orchestration"
	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/platform/iam"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/provisioning/destroy"
)

// stackMock is a mock implementation of Stack.
type stackMock struct {
	ProvisionFunc func(ctx context.Context, opts orchestration.Options) (*orchestration.Result, error)
	DestroyFunc   func(ctx context.Context, statePath string) (*destroy.Report, error)
}

func (m *stackMock) Provision(ctx context.Context, opts orchestration.Options) (*orchestration.Result, error) {
	if m.ProvisionFunc != nil {
		return m.ProvisionFunc(ctx, opts)
	}
	return &orchestration.Result{}, nil
}

func (m *stackMock) Destroy(ctx context.Context, statePath string) (*destroy.Report, error) {
	if m.DestroyFunc != nil {
		return m.DestroyFunc(ctx, statePath)
	}
	return &destroy.Report{}, nil
}

// fakes records what the handlers passed to their dependencies.
type fakes struct {
	out        *bytes.Buffer
	cfg        *config.Config
	awsRegions []string
	stack      *stackMock
	retriever  *bedrock.MockClient
	identity   *iam.MockClient
}

// stubFactories replaces every factory variable for the duration of the test.
// Tests using it must not run in parallel.
func stubFactories(t *testing.T) *fakes {
	t.Helper()

	origLoadConfig := loadConfig
	origLoadAWSConfig := loadAWSConfig
	origNewClients := newClients
	origLoadResult := loadResult
	origNewStack := newStack
	origNewRetriever := newRetriever
	origStdout := stdout
	origTTY := isInteractiveTTY
	origLogger := newServeLogger
	origListen := listen
	t.Cleanup(func() {
		loadConfig = origLoadConfig
		loadAWSConfig = origLoadAWSConfig
		newClients = origNewClients
		loadResult = origLoadResult
		newStack = origNewStack
		newRetriever = origNewRetriever
		stdout = origStdout
		isInteractiveTTY = origTTY
		newServeLogger = origLogger
		listen = origListen
	})

	cfg := config.Default()
	cfg.Region = "us-east-1"
	cfg.StateFile = filepath.Join(t.TempDir(), "kbstack-state.yaml")

	f := &fakes{
		out:       &bytes.Buffer{},
		cfg:       cfg,
		stack:     &stackMock{},
		retriever: &bedrock.MockClient{},
		identity: &iam.MockClient{
			CallerIdentityFunc: func(context.Context) (*iam.CallerIdentity, error) {
				return &iam.CallerIdentity{Account: "123456789012"}, nil
			},
		},
	}

	loadConfig = func(string) (*config.Config, error) { return f.cfg, nil }
	loadAWSConfig = func(_ context.Context, region, _ string) (aws.Config, error) {
		f.awsRegions = append(f.awsRegions, region)
		return aws.Config{Region: region}, nil
	}
	newClients = func(aws.Config) provisioning.Clients {
		return provisioning.Clients{Identity: f.identity}
	}
	loadResult = func(string) (*orchestration.Result, error) {
		return nil, errors.New("no state file")
	}
	newStack = func(*config.Config, provisioning.Clients) Stack { return f.stack }
	newRetriever = func(aws.Config) bedrock.Retriever { return f.retriever }
	stdout = f.out
	isInteractiveTTY = func() bool { return false }
	newServeLogger = logr.Discard

	return f
}

func answerWith(text string, uris ...string) func(context.Context, bedrock.RetrieveRequest) (*bedrock.Generation, error) {
	return func(context.Context, bedrock.RetrieveRequest) (*bedrock.Generation, error) {
		refs := make([]bedrock.RetrievedReference, 0, len(uris))
		for _, uri := range uris {
			refs = append(refs, bedrock.RetrievedReference{Location: &bedrock.Location{
				Type:       bedrock.LocationTypeS3,
				S3Location: &bedrock.S3Location{URI: uri},
			}})
		}
		return &bedrock.Generation{Text: text, Citations: []bedrock.Citation{{RetrievedReferences: refs}}}, nil
	}
}
