package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/imamik/kbstack/cmd/kbstack/handlers"
)

// Query returns the query command.
func Query() *cobra.Command {
	var (
		configPath string
		opts       handlers.QueryOptions
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask the knowledge base a question",
		Long: `Query sends one question to the knowledge base and prints the generated
answer followed by the S3 documents it cites.

The knowledge base and generation model are read from the state file unless
given as flags.

Example:
  kbstack query "What was net income per share?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Query(cmd.Context(), configPath, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kbstack.yaml if present)")
	addQueryFlags(cmd, &opts)

	return cmd
}

func addQueryFlags(cmd *cobra.Command, opts *handlers.QueryOptions) {
	cmd.Flags().StringVar(&opts.StateFile, "state", "", "Path to state file (overrides config)")
	cmd.Flags().StringVar(&opts.KnowledgeBaseID, "knowledge-base-id", "", "Knowledge base to query (overrides state file)")
	cmd.Flags().StringVar(&opts.Model, "model", "", "Generation model ID or ARN (overrides state file)")
	cmd.Flags().StringVar(&opts.Region, "region", "", "AWS region (overrides state file)")
}
