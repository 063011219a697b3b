package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kbstack/cmd/kbstack/handlers"
)

// Models returns the models command.
func Models() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported embedding models and their vector dimensions",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Models()
		},
	}
}
