package config

import (
	"fmt"
	"regexp"
	"strings"
)

// regionPattern matches AWS region names such as us-east-1 or ap-southeast-2.
var regionPattern = regexp.MustCompile(`^[a-z]{2}(-gov)?-[a-z]+-\d$`)

// prefixPattern matches the characters OpenSearch Serverless allows in
// collection and policy names.
var prefixPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidSpaceTypes are the distance metrics accepted for a faiss HNSW index.
var ValidSpaceTypes = map[string]bool{
	"l2":           true,
	"innerproduct": true,
}

// longestAOSSSuffix is the longest "-<kind>-<suffix>" tail appended to the
// prefix for an AOSS resource name (see naming.Collection).
const longestAOSSSuffix = len("-collection-") + 6

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	if c.Region != "" && !regionPattern.MatchString(c.Region) {
		return fmt.Errorf("region %q is not a valid AWS region", c.Region)
	}

	if err := c.validatePrefix(); err != nil {
		return fmt.Errorf("name prefix validation failed: %w", err)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.UploadConcurrency < 1 {
		return fmt.Errorf("upload_concurrency must be at least 1, got %d", c.UploadConcurrency)
	}

	if err := c.validateModels(); err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}

	if err := c.validateIndex(); err != nil {
		return fmt.Errorf("index validation failed: %w", err)
	}

	if err := c.validateChunking(); err != nil {
		return fmt.Errorf("chunking validation failed: %w", err)
	}

	if !strings.HasSuffix(c.TrustedService, ".amazonaws.com") {
		return fmt.Errorf("trusted_service %q must be an AWS service principal", c.TrustedService)
	}

	return nil
}

func (c *Config) validatePrefix() error {
	if c.NamePrefix == "" {
		return fmt.Errorf("name_prefix is required")
	}
	if !prefixPattern.MatchString(c.NamePrefix) {
		return fmt.Errorf("name_prefix %q must start with a lowercase letter and contain only [a-z0-9-]", c.NamePrefix)
	}
	if limit := MaxAOSSNameLength - longestAOSSSuffix; len(c.NamePrefix) > limit {
		return fmt.Errorf("name_prefix %q is longer than %d characters", c.NamePrefix, limit)
	}
	return nil
}

func (c *Config) validateModels() error {
	if c.Models.Embedding == "" {
		return fmt.Errorf("models.embedding is required")
	}
	if err := ValidateDimension(c.Models.Embedding, c.Models.EmbeddingDimension); err != nil {
		return err
	}
	if c.Models.Generation == "" {
		return fmt.Errorf("models.generation is required")
	}
	return nil
}

func (c *Config) validateIndex() error {
	fields := map[string]string{
		"vector_field":   c.Index.VectorField,
		"text_field":     c.Index.TextField,
		"metadata_field": c.Index.MetadataField,
	}
	seen := make(map[string]string, len(fields))
	for name, value := range fields {
		if value == "" {
			return fmt.Errorf("index.%s is required", name)
		}
		if other, dup := seen[value]; dup {
			return fmt.Errorf("index.%s and index.%s both use field %q", name, other, value)
		}
		seen[value] = name
	}

	if c.Index.Engine != DefaultEngine {
		return fmt.Errorf("index.engine %q is not supported (only %q)", c.Index.Engine, DefaultEngine)
	}
	if !ValidSpaceTypes[c.Index.SpaceType] {
		return fmt.Errorf("index.space_type %q is not supported", c.Index.SpaceType)
	}
	if c.Index.EFSearch < 1 {
		return fmt.Errorf("index.ef_search must be positive, got %d", c.Index.EFSearch)
	}
	return nil
}

func (c *Config) validateChunking() error {
	switch c.Chunking.Strategy {
	case ChunkingNone:
		return nil
	case ChunkingFixedSize:
		if c.Chunking.MaxTokens < 1 || c.Chunking.MaxTokens > MaxChunkTokens {
			return fmt.Errorf("chunking.max_tokens must be between 1 and %d, got %d", MaxChunkTokens, c.Chunking.MaxTokens)
		}
		if c.Chunking.OverlapPercentage < 1 || c.Chunking.OverlapPercentage > 99 {
			return fmt.Errorf("chunking.overlap_percentage must be between 1 and 99, got %d", c.Chunking.OverlapPercentage)
		}
		return nil
	default:
		return fmt.Errorf("chunking.strategy %q is not supported", c.Chunking.Strategy)
	}
}
