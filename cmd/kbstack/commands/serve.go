package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kbstack/cmd/kbstack/handlers"
)

// Serve returns the serve command.
func Serve() *cobra.Command {
	var (
		configPath string
		opts       handlers.ServeOptions
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve knowledge base queries over HTTP",
		Long: `Serve starts an HTTP server answering queries against the knowledge base.

Endpoints:
  POST /query    {"query": "..."} returns {"text": "...", "citations": [...]}
  GET  /metrics  Prometheus metrics
  GET  /healthz  liveness

Example:
  kbstack serve --addr :8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Serve(cmd.Context(), configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kbstack.yaml if present)")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "Address to listen on")
	addQueryFlags(cmd, &opts.QueryOptions)

	return cmd
}
