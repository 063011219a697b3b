package knowledgebase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/util/naming"
	"github.com/imamik/kbstack/internal/util/poll"
)

func createTestContext(t *testing.T, kbs *bedrock.MockClient) *provisioning.Context {
	t.Helper()

	cfg := config.Default()
	cfg.Region = "us-west-2"
	state := provisioning.NewState("us-west-2", "123456789012", "arn:aws:iam::123456789012:user/test", naming.New("kb", "abc123"))
	state.Set(provisioning.KeyRoleARN, "arn:aws:iam::123456789012:role/kb-role-abc123")
	state.Set(provisioning.KeyCollectionARN, "arn:aws:aoss:us-west-2:123456789012:collection/col1")
	state.Set(provisioning.KeyIndexName, "kb-index-abc123")

	ctx := provisioning.NewContext(context.Background(), cfg, provisioning.Clients{KnowledgeBases: kbs}, state)
	ctx.Observer = provisioning.NewRecordingObserver()
	ctx.Timeouts = &config.Timeouts{KnowledgeBasePoll: time.Millisecond, KnowledgeBase: 100 * time.Millisecond}
	return ctx
}

func TestProvisioner_Metadata(t *testing.T) {
	t.Parallel()
	p := NewProvisioner()
	assert.Equal(t, "knowledgebase", p.Name())
	assert.Len(t, p.Requires(), 3)
	assert.Equal(t, []provisioning.Key{provisioning.KeyKnowledgeBaseID, provisioning.KeyKnowledgeBaseARN}, p.Provides())
}

func TestProvision_Success(t *testing.T) {
	t.Parallel()

	var got bedrock.KnowledgeBaseInput
	polls := 0
	kbs := &bedrock.MockClient{
		CreateKnowledgeBaseFunc: func(_ context.Context, in bedrock.KnowledgeBaseInput) (*bedrock.KnowledgeBase, error) {
			got = in
			return &bedrock.KnowledgeBase{ID: "KB1", ARN: "arn:kb/KB1", Status: bedrock.KnowledgeBaseCreating}, nil
		},
		GetKnowledgeBaseFunc: func(_ context.Context, id string) (*bedrock.KnowledgeBase, error) {
			polls++
			if polls < 3 {
				return &bedrock.KnowledgeBase{ID: id, Status: bedrock.KnowledgeBaseCreating}, nil
			}
			return &bedrock.KnowledgeBase{ID: id, ARN: "arn:kb/KB1", Status: bedrock.KnowledgeBaseActive}, nil
		},
	}
	ctx := createTestContext(t, kbs)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Equal(t, "kb-abc123", got.Name)
	assert.Equal(t, "arn:aws:bedrock:us-west-2::foundation-model/amazon.titan-embed-text-v2:0", got.EmbeddingModelARN)
	assert.Equal(t, 1024, got.EmbeddingDimension)
	assert.Equal(t, "arn:aws:aoss:us-west-2:123456789012:collection/col1", got.CollectionARN)
	assert.Equal(t, "kb-index-abc123", got.IndexName)
	assert.Equal(t, "vector", got.VectorField)
	assert.Equal(t, "text", got.TextField)
	assert.Equal(t, "text-metadata", got.MetadataField)

	assert.Equal(t, 3, polls)
	assert.Equal(t, "KB1", ctx.State.Get(provisioning.KeyKnowledgeBaseID))
	require.Equal(t, 1, ctx.Ledger.Len())
	assert.Equal(t, "KB1", ctx.Ledger.Resources()[0].ID)
}

func TestProvision_Failed(t *testing.T) {
	t.Parallel()
	kbs := &bedrock.MockClient{
		GetKnowledgeBaseFunc: func(_ context.Context, id string) (*bedrock.KnowledgeBase, error) {
			return &bedrock.KnowledgeBase{
				ID:             id,
				Status:         bedrock.KnowledgeBaseFailed,
				FailureReasons: []string{"index not found", "role cannot access collection"},
			}, nil
		},
	}
	ctx := createTestContext(t, kbs)

	err := NewProvisioner().Provision(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, poll.ErrFailed)
	assert.Contains(t, err.Error(), "index not found; role cannot access collection")
	assert.Equal(t, 1, ctx.Ledger.Len(), "the failed knowledge base is still torn down")
}

func TestProvision_Timeout(t *testing.T) {
	t.Parallel()
	kbs := &bedrock.MockClient{
		GetKnowledgeBaseFunc: func(_ context.Context, id string) (*bedrock.KnowledgeBase, error) {
			return &bedrock.KnowledgeBase{ID: id, Status: bedrock.KnowledgeBaseCreating}, nil
		},
	}
	ctx := createTestContext(t, kbs)
	ctx.Timeouts.KnowledgeBase = 5 * time.Millisecond

	err := NewProvisioner().Provision(ctx)
	assert.ErrorIs(t, err, poll.ErrTimeout)
}

func TestProvision_RequestErrorAbortsWait(t *testing.T) {
	t.Parallel()
	boom := errors.New("AccessDeniedException")
	polls := 0
	kbs := &bedrock.MockClient{
		GetKnowledgeBaseFunc: func(context.Context, string) (*bedrock.KnowledgeBase, error) {
			polls++
			return nil, boom
		},
	}
	ctx := createTestContext(t, kbs)

	err := NewProvisioner().Provision(ctx)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, polls)
}

func TestProvision_MissingInputs(t *testing.T) {
	t.Parallel()
	created := false
	kbs := &bedrock.MockClient{
		CreateKnowledgeBaseFunc: func(context.Context, bedrock.KnowledgeBaseInput) (*bedrock.KnowledgeBase, error) {
			created = true
			return &bedrock.KnowledgeBase{}, nil
		},
	}
	ctx := createTestContext(t, kbs)
	delete(ctx.State.Outputs, provisioning.KeyIndexName)

	err := NewProvisioner().Provision(ctx)
	require.ErrorIs(t, err, provisioning.ErrMissingInput)
	assert.Contains(t, err.Error(), "index.name")
	assert.False(t, created)
}
