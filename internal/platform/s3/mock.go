package s3

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of ObjectStore.
type MockClient struct {
	EnsureBucketFunc func(ctx context.Context, name string) (bool, error)
	UploadFileFunc   func(ctx context.Context, bucket, key, path string) error
	ListObjectsFunc  func(ctx context.Context, bucket, prefix string) ([]string, error)
	DeleteBucketFunc func(ctx context.Context, name string) error

	mu       sync.Mutex
	Uploaded map[string]string // key -> local path
}

// Ensure interface compliance
var _ ObjectStore = (*MockClient)(nil)

// EnsureBucket mocks bucket creation.
func (m *MockClient) EnsureBucket(ctx context.Context, name string) (bool, error) {
	if m.EnsureBucketFunc != nil {
		return m.EnsureBucketFunc(ctx, name)
	}
	return true, nil
}

// UploadFile mocks object upload and records the key.
func (m *MockClient) UploadFile(ctx context.Context, bucket, key, path string) error {
	if m.UploadFileFunc != nil {
		if err := m.UploadFileFunc(ctx, bucket, key, path); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Uploaded == nil {
		m.Uploaded = make(map[string]string)
	}
	m.Uploaded[key] = path
	return nil
}

// ListObjects mocks object listing.
func (m *MockClient) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	if m.ListObjectsFunc != nil {
		return m.ListObjectsFunc(ctx, bucket, prefix)
	}
	return nil, nil
}

// DeleteBucket mocks bucket deletion.
func (m *MockClient) DeleteBucket(ctx context.Context, name string) error {
	if m.DeleteBucketFunc != nil {
		return m.DeleteBucketFunc(ctx, name)
	}
	return nil
}
