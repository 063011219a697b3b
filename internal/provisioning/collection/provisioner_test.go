package collection

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/platform/aoss"
	"github.com/imamik/kbstack/internal/platform/awserr"
	"github.com/imamik/kbstack/internal/platform/iam"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/util/naming"
	"github.com/imamik/kbstack/internal/util/poll"
)

const roleARN = "arn:aws:iam::123456789012:role/kb-role-abc123"

type fixture struct {
	ctx      *provisioning.Context
	obs      *provisioning.RecordingObserver
	aoss     *aoss.MockClient
	identity *iam.MockClient
	slept    []time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{aoss: &aoss.MockClient{}, identity: &iam.MockClient{}}

	cfg := config.Default()
	cfg.Region = "us-east-1"
	state := provisioning.NewState("us-east-1", "123456789012", "arn:aws:iam::123456789012:user/test", naming.New("kb", "abc123"))
	state.Set(provisioning.KeyRoleName, "kb-role-abc123")
	state.Set(provisioning.KeyRoleARN, roleARN)

	f.ctx = provisioning.NewContext(context.Background(), cfg, provisioning.Clients{
		Identity:    f.identity,
		Collections: f.aoss,
		Indexes:     f.aoss,
	}, state)
	f.obs = provisioning.NewRecordingObserver()
	f.ctx.Observer = f.obs
	f.ctx.Timeouts = &config.Timeouts{
		CollectionPoll: time.Millisecond,
		Collection:     100 * time.Millisecond,
		PolicySettle:   config.MinPolicySettle,
		IndexSettle:    config.MinIndexSettle,
	}
	f.ctx.Sleep = func(_ context.Context, d time.Duration) error {
		f.slept = append(f.slept, d)
		return nil
	}
	return f
}

func (f *fixture) kinds() []provisioning.ResourceKind {
	var kinds []provisioning.ResourceKind
	for _, r := range f.ctx.Ledger.Resources() {
		kinds = append(kinds, r.Kind)
	}
	return kinds
}

func TestProvisioner_Metadata(t *testing.T) {
	t.Parallel()
	p := NewProvisioner()
	assert.Equal(t, "collection", p.Name())
	assert.ElementsMatch(t, []provisioning.Key{provisioning.KeyRoleName, provisioning.KeyRoleARN}, p.Requires())
	assert.Contains(t, p.Provides(), provisioning.KeyIndexName)
	assert.Contains(t, p.Provides(), provisioning.KeyCollectionEndpoint)
}

func TestProvision_Success(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var principals []string
	f.aoss.CreateAccessPolicyFunc = func(_ context.Context, name, collection string, p []string) error {
		assert.Equal(t, "kb-access-abc123", name)
		assert.Equal(t, "kb-collection-abc123", collection)
		principals = p
		return nil
	}
	var gotSpec aoss.IndexSpec
	var gotEndpoint string
	f.aoss.CreateIndexFunc = func(_ context.Context, endpoint, name string, spec aoss.IndexSpec) error {
		assert.Equal(t, "kb-index-abc123", name)
		gotEndpoint = endpoint
		gotSpec = spec
		return nil
	}
	var policyDoc iam.PolicyDocument
	f.identity.CreatePolicyFunc = func(_ context.Context, name, _ string, doc iam.PolicyDocument) (string, error) {
		policyDoc = doc
		return "arn:aws:iam::123456789012:policy/" + name, nil
	}

	require.NoError(t, NewProvisioner().Provision(f.ctx))

	assert.Equal(t, []string{"arn:aws:iam::123456789012:user/test", roleARN}, principals)

	// The IAM grant names the exact collection, never a wildcard.
	require.Len(t, policyDoc.Statement, 1)
	assert.Equal(t, []string{"arn:aws:aoss:us-east-1:123456789012:collection/col-kb-collection-abc123"}, policyDoc.Statement[0].Resource)

	assert.Equal(t, "https://col-kb-collection-abc123.us-east-1.aoss.amazonaws.com", gotEndpoint)
	assert.Equal(t, 1024, gotSpec.Dimension)
	assert.Equal(t, "faiss", gotSpec.Engine)

	for _, key := range NewProvisioner().Provides() {
		assert.True(t, f.ctx.State.Has(key), "missing %s", key)
	}

	assert.Equal(t, []provisioning.ResourceKind{
		provisioning.ResourceEncryptionPolicy,
		provisioning.ResourceNetworkPolicy,
		provisioning.ResourceAccessPolicy,
		provisioning.ResourceCollection,
		provisioning.ResourcePolicy,
		provisioning.ResourceAttachment,
		provisioning.ResourceIndex,
	}, f.kinds())

	index := f.ctx.Ledger.Resources()[6]
	assert.Equal(t, gotEndpoint, index.Parent)

	// Policy settle happens before the index, index settle after it.
	assert.Equal(t, []time.Duration{config.MinPolicySettle, config.MinIndexSettle}, f.slept)
}

func TestProvision_SettleNeverBelowMinimum(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.ctx.Timeouts.PolicySettle = time.Second
	f.ctx.Timeouts.IndexSettle = 0

	require.NoError(t, NewProvisioner().Provision(f.ctx))
	assert.Equal(t, []time.Duration{config.MinPolicySettle, config.MinIndexSettle}, f.slept)
}

func TestProvision_WaitsThroughCreating(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	polls := 0
	f.aoss.GetCollectionFunc = func(_ context.Context, name string) (*aoss.Collection, error) {
		polls++
		switch polls {
		case 1:
			return nil, fmt.Errorf("collection %s: %w", name, awserr.ErrNotFound)
		case 2, 3:
			return &aoss.Collection{Name: name, Status: aoss.StatusCreating}, nil
		}
		return &aoss.Collection{ID: "id1", ARN: "arn:col", Name: name, Status: aoss.StatusActive, Endpoint: "https://e"}, nil
	}

	require.NoError(t, NewProvisioner().Provision(f.ctx))
	assert.Equal(t, 4, polls)
	assert.Equal(t, "id1", f.ctx.State.Get(provisioning.KeyCollectionID))
	assert.Equal(t, "https://e", f.ctx.State.Get(provisioning.KeyCollectionEndpoint))
	assert.Len(t, f.obs.EventsOfType(provisioning.EventPolling), 3)
}

func TestProvision_CollectionFailed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.aoss.GetCollectionFunc = func(_ context.Context, name string) (*aoss.Collection, error) {
		return &aoss.Collection{Name: name, Status: aoss.StatusFailed, FailureCode: "INTERNAL", FailureMessage: "capacity"}, nil
	}
	indexCalled := false
	f.aoss.CreateIndexFunc = func(context.Context, string, string, aoss.IndexSpec) error {
		indexCalled = true
		return nil
	}

	err := NewProvisioner().Provision(f.ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, poll.ErrFailed)
	assert.NotErrorIs(t, err, poll.ErrTimeout)
	assert.Contains(t, err.Error(), "INTERNAL: capacity")
	assert.False(t, indexCalled)
	assert.Equal(t, 4, f.ctx.Ledger.Len(), "policies and collection remain recorded for teardown")
}

func TestProvision_CollectionTimeout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.ctx.Timeouts.Collection = 5 * time.Millisecond
	f.aoss.GetCollectionFunc = func(_ context.Context, name string) (*aoss.Collection, error) {
		return &aoss.Collection{Name: name, Status: aoss.StatusCreating}, nil
	}

	err := NewProvisioner().Provision(f.ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, poll.ErrTimeout)
	assert.Equal(t, provisioning.KindTimeout, provisioning.Classify(err))
}

func TestProvision_DuplicatePrincipals(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.ctx.State.CallerARN = roleARN
	called := false
	f.aoss.CreateEncryptionPolicyFunc = func(context.Context, string, string) error {
		called = true
		return nil
	}

	err := NewProvisioner().Provision(f.ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, provisioning.ErrValidation)
	assert.False(t, called)
	assert.Zero(t, f.ctx.Ledger.Len())
}

func TestProvision_DimensionMismatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.ctx.Config.Models.EmbeddingDimension = 1536

	err := NewProvisioner().Provision(f.ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, provisioning.ErrValidation)
	assert.Zero(t, f.ctx.Ledger.Len())
}

func TestProvision_MissingRole(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.ctx.State.Outputs = map[provisioning.Key]string{}

	err := NewProvisioner().Provision(f.ctx)
	require.Error(t, err)
	var missing *provisioning.MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []provisioning.Key{provisioning.KeyRoleName, provisioning.KeyRoleARN}, missing.Keys)
}

func TestProvision_IndexFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.aoss.CreateIndexFunc = func(context.Context, string, string, aoss.IndexSpec) error {
		return errors.New("403 Forbidden")
	}

	err := NewProvisioner().Provision(f.ctx)
	require.Error(t, err)
	assert.Equal(t, provisioning.KindRequest, provisioning.Classify(err))
	assert.NotContains(t, f.kinds(), provisioning.ResourceIndex)
	assert.Equal(t, []time.Duration{config.MinPolicySettle}, f.slept)
}

func TestIndexSpec(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	spec := IndexSpec(cfg)
	assert.Equal(t, cfg.Models.EmbeddingDimension, spec.Dimension)
	assert.Equal(t, "vector", spec.VectorField)
	assert.Equal(t, "text", spec.TextField)
	assert.Equal(t, "text-metadata", spec.MetadataField)
	assert.Equal(t, "l2", spec.SpaceType)
	assert.Equal(t, 512, spec.EFSearch)
	assert.NoError(t, spec.Validate())
}
