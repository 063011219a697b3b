package query

import (
	"context"
	"errors"
	"time"

	"github.com/imamik/kbstack/internal/metrics"
	"github.com/imamik/kbstack/internal/platform/bedrock"
)

// Answer is a generated response and the documents it cites.
type Answer struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
	SessionID string   `json:"-"`
}

// Querier answers a single question.
type Querier interface {
	Query(ctx context.Context, text string) (*Answer, error)
}

// Client queries one knowledge base with one generation model.
type Client struct {
	retriever       bedrock.Retriever
	knowledgeBaseID string
	modelARN        string
}

var _ Querier = (*Client)(nil)

// NewClient creates a query client.
func NewClient(retriever bedrock.Retriever, knowledgeBaseID, modelARN string) *Client {
	return &Client{retriever: retriever, knowledgeBaseID: knowledgeBaseID, modelARN: modelARN}
}

// Query retrieves relevant chunks, generates an answer and extracts its citations.
func (c *Client) Query(ctx context.Context, text string) (*Answer, error) {
	start := time.Now()
	if c.knowledgeBaseID == "" {
		metrics.RecordQuery("error", time.Since(start).Seconds(), 0)
		return nil, errors.New("no knowledge base configured")
	}

	gen, err := c.retriever.RetrieveAndGenerate(ctx, bedrock.RetrieveRequest{
		KnowledgeBaseID: c.knowledgeBaseID,
		ModelARN:        c.modelARN,
		Text:            text,
	})
	if err != nil {
		metrics.RecordQuery("error", time.Since(start).Seconds(), 0)
		return nil, err
	}

	answer := &Answer{
		Text:      gen.Text,
		Citations: ExtractCitations(gen.Citations),
		SessionID: gen.SessionID,
	}
	metrics.RecordQuery("ok", time.Since(start).Seconds(), len(answer.Citations))
	return answer, nil
}

// ExtractCitations returns the distinct S3 URIs referenced by citations, in
// the order they first appear. References without an S3 location are skipped.
func ExtractCitations(citations []bedrock.Citation) []string {
	uris := []string{}
	seen := make(map[string]struct{})
	for _, c := range citations {
		for _, ref := range c.RetrievedReferences {
			loc := ref.Location
			if loc == nil || loc.Type != bedrock.LocationTypeS3 || loc.S3Location == nil {
				continue
			}
			uri := loc.S3Location.URI
			if uri == "" {
				continue
			}
			if _, dup := seen[uri]; dup {
				continue
			}
			seen[uri] = struct{}{}
			uris = append(uris, uri)
		}
	}
	return uris
}
