package aoss

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/kbstack/internal/platform/awserr"
)

func testSpec() IndexSpec {
	return IndexSpec{
		Dimension:     1024,
		VectorField:   "vector",
		TextField:     "text",
		MetadataField: "text-metadata",
		Engine:        "faiss",
		SpaceType:     "l2",
		EFSearch:      512,
	}
}

func testIndexClient(t *testing.T, handler http.HandlerFunc) (*IndexClient, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &IndexClient{newClient: func(endpoint string) (*opensearchapi.Client, error) {
		return opensearchapi.NewClient(opensearchapi.Config{
			Client: opensearch.Config{Addresses: []string{endpoint}},
		})
	}}, server.URL
}

func jsonResponse(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestIndexSpec_Body(t *testing.T) {
	t.Parallel()

	body, err := testSpec().Body()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"settings": {
			"index.knn": "true",
			"number_of_shards": 1,
			"number_of_replicas": 0,
			"knn.algo_param.ef_search": 512
		},
		"mappings": {"properties": {
			"vector": {"type": "knn_vector", "dimension": 1024, "method": {"name": "hnsw", "engine": "faiss", "space_type": "l2"}},
			"text": {"type": "text"},
			"text-metadata": {"type": "text"}
		}}
	}`, string(body))
}

func TestIndexSpec_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*IndexSpec)
	}{
		{"zero dimension", func(s *IndexSpec) { s.Dimension = 0 }},
		{"missing field", func(s *IndexSpec) { s.TextField = "" }},
		{"duplicate field", func(s *IndexSpec) { s.MetadataField = "text" }},
		{"missing engine", func(s *IndexSpec) { s.Engine = "" }},
		{"zero ef_search", func(s *IndexSpec) { s.EFSearch = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := testSpec()
			tt.mutate(&spec)
			assert.Error(t, spec.Validate())
		})
	}
}

func TestCreateIndex(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	var gotBody map[string]any
	client, endpoint := testIndexClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		jsonResponse(w, http.StatusOK, `{"acknowledged":true,"shards_acknowledged":true,"index":"kb-index"}`)
	})

	require.NoError(t, client.CreateIndex(context.Background(), endpoint, "kb-index", testSpec()))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/kb-index", gotPath)
	assert.Contains(t, gotBody, "mappings")
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	t.Parallel()

	client, endpoint := testIndexClient(t, func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusBadRequest, `{"error":{"root_cause":[{"type":"resource_already_exists_exception","reason":"exists"}],"type":"resource_already_exists_exception","reason":"exists"},"status":400}`)
	})

	err := client.CreateIndex(context.Background(), endpoint, "kb-index", testSpec())
	require.Error(t, err)
	assert.True(t, errors.Is(err, awserr.ErrConflict))
}

func TestCreateIndex_InvalidSpecNotSent(t *testing.T) {
	t.Parallel()

	called := false
	client, endpoint := testIndexClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		jsonResponse(w, http.StatusOK, `{}`)
	})

	spec := testSpec()
	spec.Dimension = 0
	require.Error(t, client.CreateIndex(context.Background(), endpoint, "kb-index", spec))
	assert.False(t, called)
}

func TestDeleteIndex(t *testing.T) {
	t.Parallel()

	var gotMethod string
	client, endpoint := testIndexClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		jsonResponse(w, http.StatusOK, `{"acknowledged":true}`)
	})

	require.NoError(t, client.DeleteIndex(context.Background(), endpoint, "kb-index"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestDeleteIndex_NotFoundIsSuccess(t *testing.T) {
	t.Parallel()

	client, endpoint := testIndexClient(t, func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusNotFound, `{"error":{"root_cause":[{"type":"index_not_found_exception","reason":"no such index"}],"type":"index_not_found_exception","reason":"no such index"},"status":404}`)
	})

	assert.NoError(t, client.DeleteIndex(context.Background(), endpoint, "kb-index"))
}
