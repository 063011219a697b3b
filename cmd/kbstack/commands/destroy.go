package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kbstack/cmd/kbstack/handlers"
)

// Destroy returns the destroy command.
func Destroy() *cobra.Command {
	var configPath, statePath string

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete every resource recorded in the state file",
		Long: `Destroy deletes the resources recorded in the state file, newest first.

Deletion is best effort: a resource that cannot be deleted is reported and the
rest are still removed. The state file is removed when everything is gone and
rewritten with the remaining resources otherwise.

Example:
  kbstack destroy -c kbstack.yaml

WARNING: This operation is irreversible. The bucket and its documents are deleted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath, statePath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kbstack.yaml if present)")
	cmd.Flags().StringVar(&statePath, "state", "", "Path to state file (overrides config)")

	return cmd
}
