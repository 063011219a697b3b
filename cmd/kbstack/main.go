// Package main is the entry point for the kbstack CLI.
//
// kbstack provisions a retrieval-augmented generation stack on AWS (an S3
// document bucket, an OpenSearch Serverless vector collection and a Bedrock
// knowledge base) and answers questions against it.
//
// Commands: provision, destroy, query, serve, models, version.
//
// For detailed usage information, run:
//
//	kbstack --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/kbstack/cmd/kbstack/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
