package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModels(t *testing.T) {
	f := stubFactories(t)

	require.NoError(t, Models())
	assert.Contains(t, f.out.String(), "amazon.titan-embed-text-v2:0")
	assert.Contains(t, f.out.String(), "cohere.embed-english-v3")
}
