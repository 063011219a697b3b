package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kbstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_AppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
region: eu-central-1
name_prefix: reports
data_dir: ./docs
models:
  embedding: amazon.titan-embed-text-v1
chunking:
  max_tokens: 300
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", cfg.Region)
	assert.Equal(t, "reports", cfg.NamePrefix)
	assert.Equal(t, "./docs", cfg.DataDir)
	assert.Equal(t, 1536, cfg.Models.EmbeddingDimension)
	assert.Equal(t, DefaultGenerationModel, cfg.Models.Generation)
	assert.Equal(t, ChunkingFixedSize, cfg.Chunking.Strategy)
	assert.Equal(t, 300, cfg.Chunking.MaxTokens)
	assert.Equal(t, DefaultOverlapPercentage, cfg.Chunking.OverlapPercentage)
	assert.Equal(t, DefaultVectorField, cfg.Index.VectorField)
	assert.Equal(t, DefaultStateFile, cfg.StateFile)
}

func TestLoadFile_TeardownOptOut(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "teardown_on_failure: false\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.ShouldTeardownOnFailure())
}

func TestLoadFile_InvalidDimension(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
models:
  embedding: amazon.titan-embed-text-v2:0
  embedding_dimension: 1536
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestLoadFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := writeConfig(t, "region: [unterminated")
	_, err = LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")
}

func TestLoadOrDefault_ExplicitPath(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "name_prefix: explicit\n")

	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.NamePrefix)
}
