package bedrock

import (
	"context"
)

// MockClient is a mock implementation of KnowledgeBaseManager and Retriever.
type MockClient struct {
	CreateKnowledgeBaseFunc func(ctx context.Context, in KnowledgeBaseInput) (*KnowledgeBase, error)
	GetKnowledgeBaseFunc    func(ctx context.Context, id string) (*KnowledgeBase, error)
	CreateDataSourceFunc    func(ctx context.Context, in DataSourceInput) (*DataSource, error)
	StartIngestionJobFunc   func(ctx context.Context, knowledgeBaseID, dataSourceID string) (*IngestionJob, error)
	GetIngestionJobFunc     func(ctx context.Context, knowledgeBaseID, dataSourceID, jobID string) (*IngestionJob, error)
	DeleteDataSourceFunc    func(ctx context.Context, knowledgeBaseID, dataSourceID string) error
	DeleteKnowledgeBaseFunc func(ctx context.Context, id string) error
	RetrieveAndGenerateFunc func(ctx context.Context, req RetrieveRequest) (*Generation, error)
}

var (
	_ KnowledgeBaseManager = (*MockClient)(nil)
	_ Retriever            = (*MockClient)(nil)
)

// CreateKnowledgeBase mocks knowledge base creation.
func (m *MockClient) CreateKnowledgeBase(ctx context.Context, in KnowledgeBaseInput) (*KnowledgeBase, error) {
	if m.CreateKnowledgeBaseFunc != nil {
		return m.CreateKnowledgeBaseFunc(ctx, in)
	}
	return &KnowledgeBase{
		ID:     "KB12345678",
		ARN:    "arn:aws:bedrock:us-east-1:123456789012:knowledge-base/KB12345678",
		Name:   in.Name,
		Status: KnowledgeBaseCreating,
	}, nil
}

// GetKnowledgeBase mocks knowledge base lookup. Defaults to an active knowledge base.
func (m *MockClient) GetKnowledgeBase(ctx context.Context, id string) (*KnowledgeBase, error) {
	if m.GetKnowledgeBaseFunc != nil {
		return m.GetKnowledgeBaseFunc(ctx, id)
	}
	return &KnowledgeBase{ID: id, Status: KnowledgeBaseActive}, nil
}

// CreateDataSource mocks data source creation.
func (m *MockClient) CreateDataSource(ctx context.Context, in DataSourceInput) (*DataSource, error) {
	if m.CreateDataSourceFunc != nil {
		return m.CreateDataSourceFunc(ctx, in)
	}
	return &DataSource{ID: "DS12345678", Status: "AVAILABLE"}, nil
}

// StartIngestionJob mocks starting an ingestion job.
func (m *MockClient) StartIngestionJob(ctx context.Context, knowledgeBaseID, dataSourceID string) (*IngestionJob, error) {
	if m.StartIngestionJobFunc != nil {
		return m.StartIngestionJobFunc(ctx, knowledgeBaseID, dataSourceID)
	}
	return &IngestionJob{ID: "JOB1234567", Status: IngestionStarting}, nil
}

// GetIngestionJob mocks ingestion job lookup. Defaults to a completed job.
func (m *MockClient) GetIngestionJob(ctx context.Context, knowledgeBaseID, dataSourceID, jobID string) (*IngestionJob, error) {
	if m.GetIngestionJobFunc != nil {
		return m.GetIngestionJobFunc(ctx, knowledgeBaseID, dataSourceID, jobID)
	}
	return &IngestionJob{ID: jobID, Status: IngestionComplete}, nil
}

// DeleteDataSource mocks data source deletion.
func (m *MockClient) DeleteDataSource(ctx context.Context, knowledgeBaseID, dataSourceID string) error {
	if m.DeleteDataSourceFunc != nil {
		return m.DeleteDataSourceFunc(ctx, knowledgeBaseID, dataSourceID)
	}
	return nil
}

// DeleteKnowledgeBase mocks knowledge base deletion.
func (m *MockClient) DeleteKnowledgeBase(ctx context.Context, id string) error {
	if m.DeleteKnowledgeBaseFunc != nil {
		return m.DeleteKnowledgeBaseFunc(ctx, id)
	}
	return nil
}

// RetrieveAndGenerate mocks a knowledge base query.
func (m *MockClient) RetrieveAndGenerate(ctx context.Context, req RetrieveRequest) (*Generation, error) {
	if m.RetrieveAndGenerateFunc != nil {
		return m.RetrieveAndGenerateFunc(ctx, req)
	}
	return &Generation{}, nil
}
