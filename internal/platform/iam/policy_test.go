package iam

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyDocument_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     PolicyDocument
		wantErr string
	}{
		{
			name: "model policy",
			doc:  ModelInvokePolicy("arn:aws:bedrock:us-east-1::foundation-model/amazon.titan-embed-text-v2:0"),
		},
		{
			name: "storage policy",
			doc:  StorageReadPolicy("arn:aws:s3:::docs", "123456789012"),
		},
		{
			name: "trust policy",
			doc:  TrustPolicy("bedrock.amazonaws.com", "123456789012"),
		},
		{
			name:    "wrong version",
			doc:     PolicyDocument{Version: "2008-10-17", Statement: ModelInvokePolicy("arn:x").Statement},
			wantErr: "policy version",
		},
		{
			name:    "no statements",
			doc:     PolicyDocument{Version: PolicyVersion},
			wantErr: "no statements",
		},
		{
			name:    "wildcard resource",
			doc:     CollectionAccessPolicy("*"),
			wantErr: "invalid resource",
		},
		{
			name:    "no resources",
			doc:     ModelInvokePolicy(),
			wantErr: "no resources",
		},
		{
			name: "bad effect",
			doc: PolicyDocument{Version: PolicyVersion, Statement: []Statement{{
				Effect: "Maybe", Action: []string{"s3:GetObject"}, Resource: []string{"arn:aws:s3:::b"},
			}}},
			wantErr: "invalid effect",
		},
		{
			name: "wildcard action",
			doc: PolicyDocument{Version: PolicyVersion, Statement: []Statement{{
				Effect: Allow, Action: []string{"*"}, Resource: []string{"arn:aws:s3:::b"},
			}}},
			wantErr: "invalid action",
		},
		{
			name: "trust statement with resource",
			doc: PolicyDocument{Version: PolicyVersion, Statement: []Statement{{
				Effect: Allow, Principal: &Principal{Service: "bedrock.amazonaws.com"},
				Action: []string{"sts:AssumeRole"}, Resource: []string{"arn:aws:s3:::b"},
			}}},
			wantErr: "must not name resources",
		},
		{
			name: "empty principal",
			doc: PolicyDocument{Version: PolicyVersion, Statement: []Statement{{
				Effect: Allow, Principal: &Principal{}, Action: []string{"sts:AssumeRole"},
			}}},
			wantErr: "empty principal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.doc.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStorageReadPolicy_JSON(t *testing.T) {
	t.Parallel()

	body, err := StorageReadPolicy("arn:aws:s3:::docs", "123456789012").JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	stmt := decoded["Statement"].([]any)[0].(map[string]any)

	assert.Equal(t, []any{"s3:GetObject", "s3:ListBucket"}, stmt["Action"])
	assert.Equal(t, []any{"arn:aws:s3:::docs", "arn:aws:s3:::docs/*"}, stmt["Resource"])
	assert.Equal(t, map[string]any{"StringEquals": map[string]any{"aws:ResourceAccount": "123456789012"}}, stmt["Condition"])
	assert.NotContains(t, stmt, "Principal")
}

func TestTrustPolicy_JSON(t *testing.T) {
	t.Parallel()

	body, err := TrustPolicy("bedrock.amazonaws.com", "123456789012").JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"Service": "bedrock.amazonaws.com"},
			"Action": ["sts:AssumeRole"],
			"Condition": {"StringEquals": {"aws:SourceAccount": "123456789012"}}
		}]
	}`, body)
}

func TestAccountFromARN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "123456789012", AccountFromARN("arn:aws:iam::123456789012:role/x"))
	assert.Equal(t, "", AccountFromARN("not-an-arn"))
}
