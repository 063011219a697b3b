package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	runtimetypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/google/uuid"

	"github.com/imamik/kbstack/internal/platform/awserr"
)

// KnowledgeBaseManager defines the Bedrock Agent control plane operations the stages need.
type KnowledgeBaseManager interface {
	CreateKnowledgeBase(ctx context.Context, in KnowledgeBaseInput) (*KnowledgeBase, error)
	GetKnowledgeBase(ctx context.Context, id string) (*KnowledgeBase, error)
	CreateDataSource(ctx context.Context, in DataSourceInput) (*DataSource, error)
	StartIngestionJob(ctx context.Context, knowledgeBaseID, dataSourceID string) (*IngestionJob, error)
	GetIngestionJob(ctx context.Context, knowledgeBaseID, dataSourceID, jobID string) (*IngestionJob, error)
	// Deletes treat a missing resource as success.
	DeleteDataSource(ctx context.Context, knowledgeBaseID, dataSourceID string) error
	DeleteKnowledgeBase(ctx context.Context, id string) error
}

// Retriever issues retrieve-and-generate queries.
type Retriever interface {
	RetrieveAndGenerate(ctx context.Context, req RetrieveRequest) (*Generation, error)
}

// Client implements KnowledgeBaseManager using the AWS SDK v2.
type Client struct {
	agent *bedrockagent.Client
}

var _ KnowledgeBaseManager = (*Client)(nil)

// NewFromConfig creates a new Bedrock Agent control plane client.
func NewFromConfig(cfg aws.Config, optFns ...func(*bedrockagent.Options)) *Client {
	return &Client{agent: bedrockagent.NewFromConfig(cfg, optFns...)}
}

// CreateKnowledgeBase creates a VECTOR knowledge base stored in OpenSearch Serverless.
func (c *Client) CreateKnowledgeBase(ctx context.Context, in KnowledgeBaseInput) (*KnowledgeBase, error) {
	vectorCfg := &agenttypes.VectorKnowledgeBaseConfiguration{
		EmbeddingModelArn: aws.String(in.EmbeddingModelARN),
	}
	if in.EmbeddingDimension > 0 {
		vectorCfg.EmbeddingModelConfiguration = &agenttypes.EmbeddingModelConfiguration{
			BedrockEmbeddingModelConfiguration: &agenttypes.BedrockEmbeddingModelConfiguration{
				Dimensions: aws.Int32(int32(in.EmbeddingDimension)),
			},
		}
	}

	out, err := c.agent.CreateKnowledgeBase(ctx, &bedrockagent.CreateKnowledgeBaseInput{
		Name:        aws.String(in.Name),
		Description: aws.String(in.Description),
		RoleArn:     aws.String(in.RoleARN),
		ClientToken: aws.String(uuid.NewString()),
		KnowledgeBaseConfiguration: &agenttypes.KnowledgeBaseConfiguration{
			Type:                             agenttypes.KnowledgeBaseTypeVector,
			VectorKnowledgeBaseConfiguration: vectorCfg,
		},
		StorageConfiguration: &agenttypes.StorageConfiguration{
			Type: agenttypes.KnowledgeBaseStorageTypeOpensearchServerless,
			OpensearchServerlessConfiguration: &agenttypes.OpenSearchServerlessConfiguration{
				CollectionArn:   aws.String(in.CollectionARN),
				VectorIndexName: aws.String(in.IndexName),
				FieldMapping: &agenttypes.OpenSearchServerlessFieldMapping{
					VectorField:   aws.String(in.VectorField),
					TextField:     aws.String(in.TextField),
					MetadataField: aws.String(in.MetadataField),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create knowledge base %s: %w", in.Name, err)
	}
	if out.KnowledgeBase == nil {
		return nil, fmt.Errorf("create knowledge base %s returned no knowledge base", in.Name)
	}
	return toKnowledgeBase(out.KnowledgeBase), nil
}

// GetKnowledgeBase fetches a knowledge base by ID.
func (c *Client) GetKnowledgeBase(ctx context.Context, id string) (*KnowledgeBase, error) {
	out, err := c.agent.GetKnowledgeBase(ctx, &bedrockagent.GetKnowledgeBaseInput{
		KnowledgeBaseId: aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge base %s: %w", id, err)
	}
	if out.KnowledgeBase == nil {
		return nil, fmt.Errorf("knowledge base %s: %w", id, awserr.ErrNotFound)
	}
	return toKnowledgeBase(out.KnowledgeBase), nil
}

func toKnowledgeBase(kb *agenttypes.KnowledgeBase) *KnowledgeBase {
	return &KnowledgeBase{
		ID:             aws.ToString(kb.KnowledgeBaseId),
		ARN:            aws.ToString(kb.KnowledgeBaseArn),
		Name:           aws.ToString(kb.Name),
		Status:         string(kb.Status),
		FailureReasons: kb.FailureReasons,
	}
}

// CreateDataSource registers an S3 bucket as a data source.
func (c *Client) CreateDataSource(ctx context.Context, in DataSourceInput) (*DataSource, error) {
	s3Cfg := &agenttypes.S3DataSourceConfiguration{
		BucketArn: aws.String(in.BucketARN),
	}
	if in.BucketOwner != "" {
		s3Cfg.BucketOwnerAccountId = aws.String(in.BucketOwner)
	}

	chunking := &agenttypes.ChunkingConfiguration{
		ChunkingStrategy: agenttypes.ChunkingStrategy(in.ChunkingStrategy),
	}
	if chunking.ChunkingStrategy == agenttypes.ChunkingStrategyFixedSize {
		chunking.FixedSizeChunkingConfiguration = &agenttypes.FixedSizeChunkingConfiguration{
			MaxTokens:         aws.Int32(int32(in.MaxTokens)),
			OverlapPercentage: aws.Int32(int32(in.OverlapPercentage)),
		}
	}

	out, err := c.agent.CreateDataSource(ctx, &bedrockagent.CreateDataSourceInput{
		KnowledgeBaseId: aws.String(in.KnowledgeBaseID),
		Name:            aws.String(in.Name),
		Description:     aws.String(in.Description),
		ClientToken:     aws.String(uuid.NewString()),
		DataSourceConfiguration: &agenttypes.DataSourceConfiguration{
			Type:            agenttypes.DataSourceTypeS3,
			S3Configuration: s3Cfg,
		},
		VectorIngestionConfiguration: &agenttypes.VectorIngestionConfiguration{
			ChunkingConfiguration: chunking,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create data source %s: %w", in.Name, err)
	}
	if out.DataSource == nil {
		return nil, fmt.Errorf("create data source %s returned no data source", in.Name)
	}
	return &DataSource{
		ID:     aws.ToString(out.DataSource.DataSourceId),
		Status: string(out.DataSource.Status),
	}, nil
}

// StartIngestionJob starts chunking, embedding and indexing the data source.
func (c *Client) StartIngestionJob(ctx context.Context, knowledgeBaseID, dataSourceID string) (*IngestionJob, error) {
	out, err := c.agent.StartIngestionJob(ctx, &bedrockagent.StartIngestionJobInput{
		KnowledgeBaseId: aws.String(knowledgeBaseID),
		DataSourceId:    aws.String(dataSourceID),
		ClientToken:     aws.String(uuid.NewString()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start ingestion job for data source %s: %w", dataSourceID, err)
	}
	if out.IngestionJob == nil {
		return nil, fmt.Errorf("start ingestion job for data source %s returned no job", dataSourceID)
	}
	return toIngestionJob(out.IngestionJob), nil
}

// GetIngestionJob fetches an ingestion job.
func (c *Client) GetIngestionJob(ctx context.Context, knowledgeBaseID, dataSourceID, jobID string) (*IngestionJob, error) {
	out, err := c.agent.GetIngestionJob(ctx, &bedrockagent.GetIngestionJobInput{
		KnowledgeBaseId: aws.String(knowledgeBaseID),
		DataSourceId:    aws.String(dataSourceID),
		IngestionJobId:  aws.String(jobID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion job %s: %w", jobID, err)
	}
	if out.IngestionJob == nil {
		return nil, fmt.Errorf("ingestion job %s: %w", jobID, awserr.ErrNotFound)
	}
	return toIngestionJob(out.IngestionJob), nil
}

func toIngestionJob(job *agenttypes.IngestionJob) *IngestionJob {
	j := &IngestionJob{
		ID:             aws.ToString(job.IngestionJobId),
		Status:         string(job.Status),
		FailureReasons: job.FailureReasons,
	}
	if s := job.Statistics; s != nil {
		j.Statistics = IngestionStatistics{
			Scanned:         s.NumberOfDocumentsScanned,
			NewIndexed:      s.NumberOfNewDocumentsIndexed,
			ModifiedIndexed: s.NumberOfModifiedDocumentsIndexed,
			Deleted:         s.NumberOfDocumentsDeleted,
			Failed:          s.NumberOfDocumentsFailed,
		}
	}
	return j
}

// DeleteDataSource deletes a data source.
func (c *Client) DeleteDataSource(ctx context.Context, knowledgeBaseID, dataSourceID string) error {
	_, err := c.agent.DeleteDataSource(ctx, &bedrockagent.DeleteDataSourceInput{
		KnowledgeBaseId: aws.String(knowledgeBaseID),
		DataSourceId:    aws.String(dataSourceID),
	})
	if err != nil && !awserr.IsNotFound(err) {
		return fmt.Errorf("failed to delete data source %s: %w", dataSourceID, err)
	}
	return nil
}

// DeleteKnowledgeBase deletes a knowledge base.
func (c *Client) DeleteKnowledgeBase(ctx context.Context, id string) error {
	_, err := c.agent.DeleteKnowledgeBase(ctx, &bedrockagent.DeleteKnowledgeBaseInput{
		KnowledgeBaseId: aws.String(id),
	})
	if err != nil && !awserr.IsNotFound(err) {
		return fmt.Errorf("failed to delete knowledge base %s: %w", id, err)
	}
	return nil
}

// RuntimeClient implements Retriever using the Bedrock Agent runtime.
type RuntimeClient struct {
	runtime *bedrockagentruntime.Client
}

var _ Retriever = (*RuntimeClient)(nil)

// NewRuntimeFromConfig creates a new Bedrock Agent runtime client.
func NewRuntimeFromConfig(cfg aws.Config, optFns ...func(*bedrockagentruntime.Options)) *RuntimeClient {
	return &RuntimeClient{runtime: bedrockagentruntime.NewFromConfig(cfg, optFns...)}
}

// RetrieveAndGenerate queries the knowledge base and generates an answer.
func (c *RuntimeClient) RetrieveAndGenerate(ctx context.Context, req RetrieveRequest) (*Generation, error) {
	in := &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &runtimetypes.RetrieveAndGenerateInput{
			Text: aws.String(req.Text),
		},
		RetrieveAndGenerateConfiguration: &runtimetypes.RetrieveAndGenerateConfiguration{
			Type: runtimetypes.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &runtimetypes.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(req.KnowledgeBaseID),
				ModelArn:        aws.String(req.ModelARN),
			},
		},
	}
	if req.SessionID != "" {
		in.SessionId = aws.String(req.SessionID)
	}

	out, err := c.runtime.RetrieveAndGenerate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("retrieve and generate failed: %w", err)
	}

	gen := &Generation{SessionID: aws.ToString(out.SessionId)}
	if out.Output != nil {
		gen.Text = aws.ToString(out.Output.Text)
	}
	for _, raw := range out.Citations {
		citation := Citation{}
		for _, ref := range raw.RetrievedReferences {
			r := RetrievedReference{}
			if ref.Content != nil {
				r.Content = aws.ToString(ref.Content.Text)
			}
			if loc := ref.Location; loc != nil {
				r.Location = &Location{Type: string(loc.Type)}
				if loc.S3Location != nil {
					r.Location.S3Location = &S3Location{URI: aws.ToString(loc.S3Location.Uri)}
				}
			}
			citation.RetrievedReferences = append(citation.RetrievedReferences, r)
		}
		gen.Citations = append(gen.Citations, citation)
	}
	return gen, nil
}
