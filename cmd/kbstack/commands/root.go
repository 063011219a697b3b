// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the kbstack CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kbstack",
		Short:         "Provision and query a Bedrock knowledge base on AWS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(Provision())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Query())
	cmd.AddCommand(Serve())
	cmd.AddCommand(Models())
	cmd.AddCommand(Version())

	return cmd
}
