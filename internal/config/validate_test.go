package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.Models.EmbeddingDimension)
	assert.True(t, cfg.ShouldTeardownOnFailure())
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "bad region",
			mutate:  func(c *Config) { c.Region = "moon-base" },
			wantErr: "not a valid AWS region",
		},
		{
			name:    "uppercase prefix",
			mutate:  func(c *Config) { c.NamePrefix = "Bedrock" },
			wantErr: "name_prefix",
		},
		{
			name:    "prefix too long for collection name",
			mutate:  func(c *Config) { c.NamePrefix = "a-very-long-prefix" },
			wantErr: "longer than 14",
		},
		{
			name:    "dimension mismatch",
			mutate:  func(c *Config) { c.Models.EmbeddingDimension = 1536 },
			wantErr: "emits",
		},
		{
			name:    "duplicate index fields",
			mutate:  func(c *Config) { c.Index.TextField = c.Index.VectorField },
			wantErr: "both use field",
		},
		{
			name:    "unsupported space type",
			mutate:  func(c *Config) { c.Index.SpaceType = "cosine" },
			wantErr: "space_type",
		},
		{
			name:    "overlap out of range",
			mutate:  func(c *Config) { c.Chunking.OverlapPercentage = 100 },
			wantErr: "overlap_percentage",
		},
		{
			name:    "too many tokens",
			mutate:  func(c *Config) { c.Chunking.MaxTokens = MaxChunkTokens + 1 },
			wantErr: "max_tokens",
		},
		{
			name:    "unknown chunking",
			mutate:  func(c *Config) { c.Chunking.Strategy = "SEMANTIC_MAGIC" },
			wantErr: "not supported",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.UploadConcurrency = 0 },
			wantErr: "upload_concurrency",
		},
		{
			name:    "non service principal",
			mutate:  func(c *Config) { c.TrustedService = "example.com" },
			wantErr: "service principal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NoChunking(t *testing.T) {
	t.Parallel()

	cfg := &Config{Chunking: ChunkingConfig{Strategy: ChunkingNone}}
	cfg.ApplyDefaults()

	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.Chunking.MaxTokens)
}

func TestShouldTeardownOnFailure(t *testing.T) {
	t.Parallel()

	keep := false
	cfg := Default()
	cfg.TeardownOnFailure = &keep

	assert.False(t, cfg.ShouldTeardownOnFailure())
}
