package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// EmbeddingModel describes a Bedrock embedding model and the vector sizes it emits.
type EmbeddingModel struct {
	ID               string
	Provider         string
	DefaultDimension int
	Dimensions       []int // all supported output sizes, DefaultDimension included
}

// embeddingModels maps Bedrock model IDs to their output dimensionality.
// The vector index must be created with one of these sizes or ingestion
// silently produces an unusable index.
var embeddingModels = map[string]EmbeddingModel{
	"amazon.titan-embed-text-v1": {
		ID: "amazon.titan-embed-text-v1", Provider: "Amazon",
		DefaultDimension: 1536, Dimensions: []int{1536},
	},
	"amazon.titan-embed-text-v2:0": {
		ID: "amazon.titan-embed-text-v2:0", Provider: "Amazon",
		DefaultDimension: 1024, Dimensions: []int{256, 512, 1024},
	},
	"amazon.titan-embed-image-v1": {
		ID: "amazon.titan-embed-image-v1", Provider: "Amazon",
		DefaultDimension: 1024, Dimensions: []int{256, 384, 1024},
	},
	"cohere.embed-english-v3": {
		ID: "cohere.embed-english-v3", Provider: "Cohere",
		DefaultDimension: 1024, Dimensions: []int{1024},
	},
	"cohere.embed-multilingual-v3": {
		ID: "cohere.embed-multilingual-v3", Provider: "Cohere",
		DefaultDimension: 1024, Dimensions: []int{1024},
	},
}

// inferenceProfilePrefixes mark cross-region inference profile IDs.
var inferenceProfilePrefixes = []string{"us.", "eu.", "apac.", "us-gov.", "global."}

// LookupEmbeddingModel returns the table entry for a model ID.
func LookupEmbeddingModel(id string) (EmbeddingModel, bool) {
	m, ok := embeddingModels[id]
	return m, ok
}

// EmbeddingModels returns every known embedding model sorted by ID.
func EmbeddingModels() []EmbeddingModel {
	models := make([]EmbeddingModel, 0, len(embeddingModels))
	for _, m := range embeddingModels {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models
}

// ValidateDimension checks that dim is an output size of the given model.
func ValidateDimension(modelID string, dim int) error {
	m, ok := LookupEmbeddingModel(modelID)
	if !ok {
		return fmt.Errorf("unknown embedding model %q", modelID)
	}
	if !slices.Contains(m.Dimensions, dim) {
		return fmt.Errorf("embedding model %s emits %v-dimensional vectors, got %d", modelID, m.Dimensions, dim)
	}
	return nil
}

// FoundationModelARN builds the ARN of an on-demand foundation model.
func FoundationModelARN(region, modelID string) string {
	return fmt.Sprintf("arn:aws:bedrock:%s::foundation-model/%s", region, modelID)
}

// GenerationModelARN builds the ARN used for RetrieveAndGenerate. Cross-region
// inference profile IDs resolve to an account-scoped inference-profile ARN,
// anything else to a foundation-model ARN. Full ARNs pass through unchanged.
func GenerationModelARN(region, accountID, modelID string) string {
	if strings.HasPrefix(modelID, "arn:") {
		return modelID
	}
	if IsInferenceProfile(modelID) {
		return fmt.Sprintf("arn:aws:bedrock:%s:%s:inference-profile/%s", region, accountID, modelID)
	}
	return FoundationModelARN(region, modelID)
}

// IsInferenceProfile reports whether modelID names a cross-region inference
// profile, whose ARN is scoped to the calling account.
func IsInferenceProfile(modelID string) bool {
	for _, prefix := range inferenceProfilePrefixes {
		if strings.HasPrefix(modelID, prefix) {
			return true
		}
	}
	return false
}
