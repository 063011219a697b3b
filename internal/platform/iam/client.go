package iam

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/imamik/kbstack/internal/platform/awserr"
)

// CallerIdentity is the principal the run is authenticated as.
type CallerIdentity struct {
	Account string
	ARN     string
	UserID  string
}

// Role is a created IAM role.
type Role struct {
	Name string
	ARN  string
}

// IdentityManager defines the IAM and STS operations the stages need.
type IdentityManager interface {
	CallerIdentity(ctx context.Context) (*CallerIdentity, error)
	CreatePolicy(ctx context.Context, name, description string, doc PolicyDocument) (string, error)
	CreateRole(ctx context.Context, name, description string, trust PolicyDocument, maxSessionSeconds int32) (*Role, error)
	AttachRolePolicy(ctx context.Context, roleName, policyARN string) error
	// DetachRolePolicy, DeletePolicy and DeleteRole treat a missing entity as success.
	DetachRolePolicy(ctx context.Context, roleName, policyARN string) error
	DeletePolicy(ctx context.Context, policyARN string) error
	DeleteRole(ctx context.Context, roleName string) error
}

// Client implements IdentityManager using the AWS SDK v2.
type Client struct {
	iam *iam.Client
	sts *sts.Client
}

var _ IdentityManager = (*Client)(nil)

// NewFromConfig creates IAM and STS clients from one AWS config.
func NewFromConfig(cfg aws.Config) *Client {
	return &Client{
		iam: iam.NewFromConfig(cfg),
		sts: sts.NewFromConfig(cfg),
	}
}

// CallerIdentity resolves the current credentials with STS.
func (c *Client) CallerIdentity(ctx context.Context) (*CallerIdentity, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}
	return &CallerIdentity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}

// CreatePolicy creates a managed policy and returns its ARN.
func (c *Client) CreatePolicy(ctx context.Context, name, description string, doc PolicyDocument) (string, error) {
	body, err := doc.JSON()
	if err != nil {
		return "", fmt.Errorf("invalid policy %s: %w", name, err)
	}
	out, err := c.iam.CreatePolicy(ctx, &iam.CreatePolicyInput{
		PolicyName:     aws.String(name),
		PolicyDocument: aws.String(body),
		Description:    aws.String(description),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create policy %s: %w", name, err)
	}
	if out.Policy == nil || out.Policy.Arn == nil {
		return "", fmt.Errorf("create policy %s returned no ARN", name)
	}
	return *out.Policy.Arn, nil
}

// CreateRole creates a role with the given trust policy.
func (c *Client) CreateRole(ctx context.Context, name, description string, trust PolicyDocument, maxSessionSeconds int32) (*Role, error) {
	body, err := trust.JSON()
	if err != nil {
		return nil, fmt.Errorf("invalid trust policy for %s: %w", name, err)
	}
	out, err := c.iam.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(body),
		Description:              aws.String(description),
		MaxSessionDuration:       aws.Int32(maxSessionSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create role %s: %w", name, err)
	}
	if out.Role == nil || out.Role.Arn == nil {
		return nil, fmt.Errorf("create role %s returned no ARN", name)
	}
	return &Role{Name: aws.ToString(out.Role.RoleName), ARN: *out.Role.Arn}, nil
}

// AttachRolePolicy attaches a managed policy to a role.
func (c *Client) AttachRolePolicy(ctx context.Context, roleName, policyARN string) error {
	_, err := c.iam.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		return fmt.Errorf("failed to attach %s to role %s: %w", policyARN, roleName, err)
	}
	return nil
}

// DetachRolePolicy detaches a managed policy from a role.
func (c *Client) DetachRolePolicy(ctx context.Context, roleName, policyARN string) error {
	_, err := c.iam.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil && !awserr.IsNotFound(err) {
		return fmt.Errorf("failed to detach %s from role %s: %w", policyARN, roleName, err)
	}
	return nil
}

// DeletePolicy deletes a managed policy.
func (c *Client) DeletePolicy(ctx context.Context, policyARN string) error {
	_, err := c.iam.DeletePolicy(ctx, &iam.DeletePolicyInput{
		PolicyArn: aws.String(policyARN),
	})
	if err != nil && !awserr.IsNotFound(err) {
		return fmt.Errorf("failed to delete policy %s: %w", policyARN, err)
	}
	return nil
}

// DeleteRole detaches any remaining managed policies and deletes the role.
func (c *Client) DeleteRole(ctx context.Context, roleName string) error {
	paginator := iam.NewListAttachedRolePoliciesPaginator(c.iam, &iam.ListAttachedRolePoliciesInput{
		RoleName: aws.String(roleName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if awserr.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("failed to list policies of role %s: %w", roleName, err)
		}
		for _, p := range page.AttachedPolicies {
			if err := c.DetachRolePolicy(ctx, roleName, aws.ToString(p.PolicyArn)); err != nil {
				return err
			}
		}
	}

	_, err := c.iam.DeleteRole(ctx, &iam.DeleteRoleInput{
		RoleName: aws.String(roleName),
	})
	if err != nil && !awserr.IsNotFound(err) {
		return fmt.Errorf("failed to delete role %s: %w", roleName, err)
	}
	return nil
}
