package aoss

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	requestsigner "github.com/opensearch-project/opensearch-go/v4/signer/awsv2"

	"github.com/imamik/kbstack/internal/platform/awserr"
)

// signingService is the SigV4 service name for serverless collections.
const signingService = "aoss"

// IndexSpec describes the vector index the knowledge base writes to.
type IndexSpec struct {
	Dimension     int
	VectorField   string
	TextField     string
	MetadataField string
	Engine        string
	SpaceType     string
	EFSearch      int
}

// Validate checks the spec before it is sent to the collection.
func (s IndexSpec) Validate() error {
	if s.Dimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", s.Dimension)
	}
	if s.VectorField == "" || s.TextField == "" || s.MetadataField == "" {
		return errors.New("vector, text and metadata field names are required")
	}
	if s.VectorField == s.TextField || s.VectorField == s.MetadataField || s.TextField == s.MetadataField {
		return errors.New("index field names must be distinct")
	}
	if s.Engine == "" || s.SpaceType == "" {
		return errors.New("engine and space type are required")
	}
	if s.EFSearch <= 0 {
		return fmt.Errorf("ef_search must be positive, got %d", s.EFSearch)
	}
	return nil
}

type indexBody struct {
	Settings indexSettings `json:"settings"`
	Mappings indexMappings `json:"mappings"`
}

type indexSettings struct {
	KNN              string `json:"index.knn"`
	NumberOfShards   int    `json:"number_of_shards"`
	NumberOfReplicas int    `json:"number_of_replicas"`
	EFSearch         int    `json:"knn.algo_param.ef_search"`
}

type indexMappings struct {
	Properties map[string]fieldMapping `json:"properties"`
}

type fieldMapping struct {
	Type      string     `json:"type"`
	Dimension int        `json:"dimension,omitempty"`
	Method    *knnMethod `json:"method,omitempty"`
}

type knnMethod struct {
	Name      string `json:"name"`
	Engine    string `json:"engine"`
	SpaceType string `json:"space_type"`
}

// Body renders the create-index request body.
func (s IndexSpec) Body() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	body := indexBody{
		Settings: indexSettings{
			KNN:              "true",
			NumberOfShards:   1,
			NumberOfReplicas: 0,
			EFSearch:         s.EFSearch,
		},
		Mappings: indexMappings{Properties: map[string]fieldMapping{
			s.VectorField: {
				Type:      "knn_vector",
				Dimension: s.Dimension,
				Method:    &knnMethod{Name: "hnsw", Engine: s.Engine, SpaceType: s.SpaceType},
			},
			s.TextField:     {Type: "text"},
			s.MetadataField: {Type: "text"},
		}},
	}
	return json.Marshal(body)
}

// IndexManager creates and deletes indexes on a collection endpoint.
type IndexManager interface {
	CreateIndex(ctx context.Context, endpoint, name string, spec IndexSpec) error
	// DeleteIndex treats a missing index as success.
	DeleteIndex(ctx context.Context, endpoint, name string) error
}

// IndexClient implements IndexManager with opensearch-go.
type IndexClient struct {
	newClient func(endpoint string) (*opensearchapi.Client, error)
}

var _ IndexManager = (*IndexClient)(nil)

// NewIndexClient returns an IndexManager that signs requests with the
// credentials in cfg.
func NewIndexClient(cfg aws.Config) *IndexClient {
	return &IndexClient{newClient: func(endpoint string) (*opensearchapi.Client, error) {
		signer, err := requestsigner.NewSignerWithService(cfg, signingService)
		if err != nil {
			return nil, fmt.Errorf("failed to create request signer: %w", err)
		}
		return opensearchapi.NewClient(opensearchapi.Config{
			Client: opensearch.Config{
				Addresses: []string{endpoint},
				Signer:    signer,
			},
		})
	}}
}

// CreateIndex creates the vector index.
func (c *IndexClient) CreateIndex(ctx context.Context, endpoint, name string, spec IndexSpec) error {
	body, err := spec.Body()
	if err != nil {
		return fmt.Errorf("invalid index %s: %w", name, err)
	}
	client, err := c.newClient(endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	_, err = client.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: name,
		Body:  bytes.NewReader(body),
	})
	if err != nil {
		if errorType(err) == "resource_already_exists_exception" {
			return fmt.Errorf("index %s: %w", name, awserr.ErrConflict)
		}
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	return nil
}

// DeleteIndex deletes the vector index.
func (c *IndexClient) DeleteIndex(ctx context.Context, endpoint, name string) error {
	client, err := c.newClient(endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	_, err = client.Indices.Delete(ctx, opensearchapi.IndicesDeleteReq{
		Indices: []string{name},
	})
	if err != nil {
		if isIndexNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete index %s: %w", name, err)
	}
	return nil
}

// errorType returns the OpenSearch error type, e.g. index_not_found_exception.
func errorType(err error) string {
	var se *opensearch.StructError
	if errors.As(err, &se) {
		return se.Err.Type
	}
	return ""
}

func isIndexNotFound(err error) bool {
	var se *opensearch.StructError
	if errors.As(err, &se) {
		return se.Err.Type == "index_not_found_exception" || se.Status == http.StatusNotFound
	}
	return false
}
