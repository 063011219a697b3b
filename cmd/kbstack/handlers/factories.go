package handlers

import (
	"context"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/mattn/go-isatty"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/orchestration"
	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/provisioning/destroy"
	"github.com/imamik/kbstack/internal/ui/summary"
)

// Stack provisions and destroys a knowledge base stack.
type Stack interface {
	Provision(ctx context.Context, opts orchestration.Options) (*orchestration.Result, error)
	Destroy(ctx context.Context, statePath string) (*destroy.Report, error)
}

// Factory function variables - can be replaced in tests.
var (
	loadConfig    = config.LoadOrDefault
	loadAWSConfig = orchestration.LoadAWSConfig
	newClients    = orchestration.NewClients
	loadResult    = orchestration.LoadResult

	newStack = func(cfg *config.Config, clients provisioning.Clients) Stack {
		p := orchestration.NewProvisioner(cfg, clients)
		p.Observer = provisioning.NewConsoleObserver()
		return p
	}

	newRetriever = func(cfg aws.Config) bedrock.Retriever {
		return bedrock.NewRuntimeFromConfig(cfg)
	}

	stdout io.Writer = os.Stdout

	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

func newPrinter() *summary.Printer {
	return summary.New(stdout, isInteractiveTTY())
}
