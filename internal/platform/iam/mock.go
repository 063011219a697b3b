package iam

import (
	"context"
	"fmt"
)

// MockClient is a mock implementation of IdentityManager.
type MockClient struct {
	CallerIdentityFunc   func(ctx context.Context) (*CallerIdentity, error)
	CreatePolicyFunc     func(ctx context.Context, name, description string, doc PolicyDocument) (string, error)
	CreateRoleFunc       func(ctx context.Context, name, description string, trust PolicyDocument, maxSessionSeconds int32) (*Role, error)
	AttachRolePolicyFunc func(ctx context.Context, roleName, policyARN string) error
	DetachRolePolicyFunc func(ctx context.Context, roleName, policyARN string) error
	DeletePolicyFunc     func(ctx context.Context, policyARN string) error
	DeleteRoleFunc       func(ctx context.Context, roleName string) error
}

var _ IdentityManager = (*MockClient)(nil)

// CallerIdentity mocks STS GetCallerIdentity.
func (m *MockClient) CallerIdentity(ctx context.Context) (*CallerIdentity, error) {
	if m.CallerIdentityFunc != nil {
		return m.CallerIdentityFunc(ctx)
	}
	return &CallerIdentity{Account: "123456789012", ARN: "arn:aws:iam::123456789012:user/test"}, nil
}

// CreatePolicy mocks policy creation.
func (m *MockClient) CreatePolicy(ctx context.Context, name, description string, doc PolicyDocument) (string, error) {
	if m.CreatePolicyFunc != nil {
		return m.CreatePolicyFunc(ctx, name, description, doc)
	}
	return fmt.Sprintf("arn:aws:iam::123456789012:policy/%s", name), nil
}

// CreateRole mocks role creation.
func (m *MockClient) CreateRole(ctx context.Context, name, description string, trust PolicyDocument, maxSessionSeconds int32) (*Role, error) {
	if m.CreateRoleFunc != nil {
		return m.CreateRoleFunc(ctx, name, description, trust, maxSessionSeconds)
	}
	return &Role{Name: name, ARN: fmt.Sprintf("arn:aws:iam::123456789012:role/%s", name)}, nil
}

// AttachRolePolicy mocks policy attachment.
func (m *MockClient) AttachRolePolicy(ctx context.Context, roleName, policyARN string) error {
	if m.AttachRolePolicyFunc != nil {
		return m.AttachRolePolicyFunc(ctx, roleName, policyARN)
	}
	return nil
}

// DetachRolePolicy mocks policy detachment.
func (m *MockClient) DetachRolePolicy(ctx context.Context, roleName, policyARN string) error {
	if m.DetachRolePolicyFunc != nil {
		return m.DetachRolePolicyFunc(ctx, roleName, policyARN)
	}
	return nil
}

// DeletePolicy mocks policy deletion.
func (m *MockClient) DeletePolicy(ctx context.Context, policyARN string) error {
	if m.DeletePolicyFunc != nil {
		return m.DeletePolicyFunc(ctx, policyARN)
	}
	return nil
}

// DeleteRole mocks role deletion.
func (m *MockClient) DeleteRole(ctx context.Context, roleName string) error {
	if m.DeleteRoleFunc != nil {
		return m.DeleteRoleFunc(ctx, roleName)
	}
	return nil
}
