package aoss

import (
	"context"
	"fmt"
)

// MockClient is a mock implementation of CollectionManager and IndexManager.
type MockClient struct {
	CreateEncryptionPolicyFunc func(ctx context.Context, name, collection string) error
	CreateNetworkPolicyFunc    func(ctx context.Context, name, collection string) error
	CreateAccessPolicyFunc     func(ctx context.Context, name, collection string, principals []string) error
	CreateCollectionFunc       func(ctx context.Context, name string) (*Collection, error)
	GetCollectionFunc          func(ctx context.Context, name string) (*Collection, error)
	DeleteCollectionFunc       func(ctx context.Context, id string) error
	DeleteSecurityPolicyFunc   func(ctx context.Context, name, kind string) error
	DeleteAccessPolicyFunc     func(ctx context.Context, name string) error
	CreateIndexFunc            func(ctx context.Context, endpoint, name string, spec IndexSpec) error
	DeleteIndexFunc            func(ctx context.Context, endpoint, name string) error
}

var (
	_ CollectionManager = (*MockClient)(nil)
	_ IndexManager      = (*MockClient)(nil)
)

// CreateEncryptionPolicy mocks encryption policy creation.
func (m *MockClient) CreateEncryptionPolicy(ctx context.Context, name, collection string) error {
	if m.CreateEncryptionPolicyFunc != nil {
		return m.CreateEncryptionPolicyFunc(ctx, name, collection)
	}
	return nil
}

// CreateNetworkPolicy mocks network policy creation.
func (m *MockClient) CreateNetworkPolicy(ctx context.Context, name, collection string) error {
	if m.CreateNetworkPolicyFunc != nil {
		return m.CreateNetworkPolicyFunc(ctx, name, collection)
	}
	return nil
}

// CreateAccessPolicy mocks access policy creation.
func (m *MockClient) CreateAccessPolicy(ctx context.Context, name, collection string, principals []string) error {
	if m.CreateAccessPolicyFunc != nil {
		return m.CreateAccessPolicyFunc(ctx, name, collection, principals)
	}
	return nil
}

// CreateCollection mocks collection creation.
func (m *MockClient) CreateCollection(ctx context.Context, name string) (*Collection, error) {
	if m.CreateCollectionFunc != nil {
		return m.CreateCollectionFunc(ctx, name)
	}
	return &Collection{ID: "col-" + name, ARN: mockCollectionARN(name), Name: name, Status: StatusCreating}, nil
}

// GetCollection mocks collection lookup. Defaults to an active collection.
func (m *MockClient) GetCollection(ctx context.Context, name string) (*Collection, error) {
	if m.GetCollectionFunc != nil {
		return m.GetCollectionFunc(ctx, name)
	}
	return &Collection{
		ID:       "col-" + name,
		ARN:      mockCollectionARN(name),
		Name:     name,
		Status:   StatusActive,
		Endpoint: fmt.Sprintf("https://col-%s.us-east-1.aoss.amazonaws.com", name),
	}, nil
}

// DeleteCollection mocks collection deletion.
func (m *MockClient) DeleteCollection(ctx context.Context, id string) error {
	if m.DeleteCollectionFunc != nil {
		return m.DeleteCollectionFunc(ctx, id)
	}
	return nil
}

// DeleteSecurityPolicy mocks security policy deletion.
func (m *MockClient) DeleteSecurityPolicy(ctx context.Context, name, kind string) error {
	if m.DeleteSecurityPolicyFunc != nil {
		return m.DeleteSecurityPolicyFunc(ctx, name, kind)
	}
	return nil
}

// DeleteAccessPolicy mocks access policy deletion.
func (m *MockClient) DeleteAccessPolicy(ctx context.Context, name string) error {
	if m.DeleteAccessPolicyFunc != nil {
		return m.DeleteAccessPolicyFunc(ctx, name)
	}
	return nil
}

// CreateIndex mocks vector index creation.
func (m *MockClient) CreateIndex(ctx context.Context, endpoint, name string, spec IndexSpec) error {
	if m.CreateIndexFunc != nil {
		return m.CreateIndexFunc(ctx, endpoint, name, spec)
	}
	return nil
}

// DeleteIndex mocks vector index deletion.
func (m *MockClient) DeleteIndex(ctx context.Context, endpoint, name string) error {
	if m.DeleteIndexFunc != nil {
		return m.DeleteIndexFunc(ctx, endpoint, name)
	}
	return nil
}

func mockCollectionARN(name string) string {
	return "arn:aws:aoss:us-east-1:123456789012:collection/col-" + name
}
