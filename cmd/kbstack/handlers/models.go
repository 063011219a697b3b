package handlers

import "github.com/imamik/kbstack/internal/config"

// Models prints the supported embedding models and their vector sizes.
func Models() error {
	newPrinter().Models(config.EmbeddingModels())
	return nil
}
