package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kbstack/cmd/kbstack/handlers"
)

// Provision returns the provision command.
func Provision() *cobra.Command {
	var (
		configPath string
		opts       handlers.ProvisionOptions
	)

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create the knowledge base stack and ingest documents",
		Long: `Provision creates every resource the knowledge base needs, in order:

  - S3 bucket, with the documents from the data directory uploaded
  - IAM policies and the Bedrock execution role
  - OpenSearch Serverless security policies, collection and vector index
  - Bedrock knowledge base
  - S3 data source and a completed ingestion job

Every identifier is written to the state file. If a step fails, the resources
created so far are deleted again unless teardown_on_failure is false.

Example:
  kbstack provision -c kbstack.yaml --test-query "What was net income per share?"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kbstack.yaml if present)")
	cmd.Flags().StringVar(&opts.Region, "region", "", "AWS region (overrides config and environment)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Directory with the documents to ingest (overrides config)")
	cmd.Flags().StringVar(&opts.TestQuery, "test-query", "", "Question to ask the knowledge base once provisioning succeeds")

	return cmd
}
