package aoss

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/opensearchserverless"
	"github.com/aws/aws-sdk-go-v2/service/opensearchserverless/types"
	"github.com/google/uuid"

	"github.com/imamik/kbstack/internal/platform/awserr"
)

// Collection status values reported by the service.
const (
	StatusCreating = string(types.CollectionStatusCreating)
	StatusActive   = string(types.CollectionStatusActive)
	StatusFailed   = string(types.CollectionStatusFailed)
	StatusDeleting = string(types.CollectionStatusDeleting)
)

// Security policy kinds.
const (
	PolicyEncryption = string(types.SecurityPolicyTypeEncryption)
	PolicyNetwork    = string(types.SecurityPolicyTypeNetwork)
)

// Collection is a vector search collection.
type Collection struct {
	ID             string
	ARN            string
	Name           string
	Status         string
	Endpoint       string
	FailureCode    string
	FailureMessage string
}

// CollectionManager defines the control plane operations the stages need.
type CollectionManager interface {
	CreateEncryptionPolicy(ctx context.Context, name, collection string) error
	CreateNetworkPolicy(ctx context.Context, name, collection string) error
	CreateAccessPolicy(ctx context.Context, name, collection string, principals []string) error
	CreateCollection(ctx context.Context, name string) (*Collection, error)
	// GetCollection returns the collection by name, or an error matching
	// awserr.ErrNotFound if no such collection exists.
	GetCollection(ctx context.Context, name string) (*Collection, error)
	// Deletes treat a missing resource as success.
	DeleteCollection(ctx context.Context, id string) error
	DeleteSecurityPolicy(ctx context.Context, name, kind string) error
	DeleteAccessPolicy(ctx context.Context, name string) error
}

// Client implements CollectionManager using the AWS SDK v2.
type Client struct {
	aoss *opensearchserverless.Client
}

var _ CollectionManager = (*Client)(nil)

// NewFromConfig creates a new OpenSearch Serverless control plane client.
func NewFromConfig(cfg aws.Config, optFns ...func(*opensearchserverless.Options)) *Client {
	return &Client{aoss: opensearchserverless.NewFromConfig(cfg, optFns...)}
}

// CreateEncryptionPolicy encrypts the collection with an AWS-owned key.
func (c *Client) CreateEncryptionPolicy(ctx context.Context, name, collection string) error {
	doc := NewEncryptionPolicy(collection)
	if err := validateRules(doc.Rules); err != nil {
		return fmt.Errorf("invalid encryption policy %s: %w", name, err)
	}
	return c.createSecurityPolicy(ctx, name, types.SecurityPolicyTypeEncryption, doc)
}

// CreateNetworkPolicy allows public access to the collection.
func (c *Client) CreateNetworkPolicy(ctx context.Context, name, collection string) error {
	doc := NewNetworkPolicy(collection)
	for _, p := range doc {
		if err := validateRules(p.Rules); err != nil {
			return fmt.Errorf("invalid network policy %s: %w", name, err)
		}
	}
	return c.createSecurityPolicy(ctx, name, types.SecurityPolicyTypeNetwork, doc)
}

func (c *Client) createSecurityPolicy(ctx context.Context, name string, kind types.SecurityPolicyType, doc any) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = c.aoss.CreateSecurityPolicy(ctx, &opensearchserverless.CreateSecurityPolicyInput{
		Name:        aws.String(name),
		Type:        kind,
		Policy:      aws.String(body),
		ClientToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return fmt.Errorf("failed to create %s policy %s: %w", kind, name, err)
	}
	return nil
}

// CreateAccessPolicy grants the principals data access to the collection.
func (c *Client) CreateAccessPolicy(ctx context.Context, name, collection string, principals []string) error {
	if err := ValidatePrincipals(principals); err != nil {
		return fmt.Errorf("invalid access policy %s: %w", name, err)
	}
	doc := NewAccessPolicy(collection, principals...)
	for _, p := range doc {
		if err := validateRules(p.Rules); err != nil {
			return fmt.Errorf("invalid access policy %s: %w", name, err)
		}
	}
	body, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = c.aoss.CreateAccessPolicy(ctx, &opensearchserverless.CreateAccessPolicyInput{
		Name:        aws.String(name),
		Type:        types.AccessPolicyTypeData,
		Policy:      aws.String(body),
		ClientToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return fmt.Errorf("failed to create access policy %s: %w", name, err)
	}
	return nil
}

// CreateCollection creates a VECTORSEARCH collection.
func (c *Client) CreateCollection(ctx context.Context, name string) (*Collection, error) {
	out, err := c.aoss.CreateCollection(ctx, &opensearchserverless.CreateCollectionInput{
		Name:        aws.String(name),
		Type:        types.CollectionTypeVectorsearch,
		ClientToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	d := out.CreateCollectionDetail
	if d == nil || d.Id == nil {
		return nil, fmt.Errorf("create collection %s returned no ID", name)
	}
	return &Collection{
		ID:     aws.ToString(d.Id),
		ARN:    aws.ToString(d.Arn),
		Name:   aws.ToString(d.Name),
		Status: string(d.Status),
	}, nil
}

// GetCollection looks a collection up by name.
func (c *Client) GetCollection(ctx context.Context, name string) (*Collection, error) {
	out, err := c.aoss.BatchGetCollection(ctx, &opensearchserverless.BatchGetCollectionInput{
		Names: []string{name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s: %w", name, err)
	}
	for _, d := range out.CollectionDetails {
		if aws.ToString(d.Name) != name {
			continue
		}
		return &Collection{
			ID:             aws.ToString(d.Id),
			ARN:            aws.ToString(d.Arn),
			Name:           aws.ToString(d.Name),
			Status:         string(d.Status),
			Endpoint:       aws.ToString(d.CollectionEndpoint),
			FailureCode:    aws.ToString(d.FailureCode),
			FailureMessage: aws.ToString(d.FailureMessage),
		}, nil
	}
	return nil, fmt.Errorf("collection %s: %w", name, awserr.ErrNotFound)
}

// DeleteCollection deletes a collection by ID.
func (c *Client) DeleteCollection(ctx context.Context, id string) error {
	_, err := c.aoss.DeleteCollection(ctx, &opensearchserverless.DeleteCollectionInput{
		Id:          aws.String(id),
		ClientToken: aws.String(uuid.NewString()),
	})
	if err != nil && !awserr.IsNotFound(err) {
		return fmt.Errorf("failed to delete collection %s: %w", id, err)
	}
	return nil
}

// DeleteSecurityPolicy deletes an encryption or network policy.
func (c *Client) DeleteSecurityPolicy(ctx context.Context, name, kind string) error {
	_, err := c.aoss.DeleteSecurityPolicy(ctx, &opensearchserverless.DeleteSecurityPolicyInput{
		Name:        aws.String(name),
		Type:        types.SecurityPolicyType(kind),
		ClientToken: aws.String(uuid.NewString()),
	})
	if err != nil && !awserr.IsNotFound(err) {
		return fmt.Errorf("failed to delete %s policy %s: %w", kind, name, err)
	}
	return nil
}

// DeleteAccessPolicy deletes a data access policy.
func (c *Client) DeleteAccessPolicy(ctx context.Context, name string) error {
	_, err := c.aoss.DeleteAccessPolicy(ctx, &opensearchserverless.DeleteAccessPolicyInput{
		Name:        aws.String(name),
		Type:        types.AccessPolicyTypeData,
		ClientToken: aws.String(uuid.NewString()),
	})
	if err != nil && !awserr.IsNotFound(err) {
		return fmt.Errorf("failed to delete access policy %s: %w", name, err)
	}
	return nil
}
