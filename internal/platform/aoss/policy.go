package aoss

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Resource types used in security and access policy rules.
const (
	ResourceTypeCollection = "collection"
	ResourceTypeIndex      = "index"
)

// Rule scopes a policy to resources.
type Rule struct {
	ResourceType string   `json:"ResourceType"`
	Resource     []string `json:"Resource"`
	Permission   []string `json:"Permission,omitempty"`
}

// EncryptionPolicy assigns an encryption key to collections.
type EncryptionPolicy struct {
	Rules       []Rule `json:"Rules"`
	AWSOwnedKey bool   `json:"AWSOwnedKey"`
}

// NetworkPolicy is one entry of a network security policy.
type NetworkPolicy struct {
	Rules           []Rule `json:"Rules"`
	AllowFromPublic bool   `json:"AllowFromPublic"`
}

// AccessPolicy is one entry of a data access policy.
type AccessPolicy struct {
	Rules       []Rule   `json:"Rules"`
	Principal   []string `json:"Principal"`
	Description string   `json:"Description,omitempty"`
}

var (
	collectionPermissions = []string{
		"aoss:CreateCollectionItems",
		"aoss:DeleteCollectionItems",
		"aoss:UpdateCollectionItems",
		"aoss:DescribeCollectionItems",
	}
	indexPermissions = []string{
		"aoss:CreateIndex",
		"aoss:DeleteIndex",
		"aoss:UpdateIndex",
		"aoss:DescribeIndex",
		"aoss:ReadDocument",
		"aoss:WriteDocument",
	}
)

// CollectionResource returns the policy resource for a collection.
func CollectionResource(collection string) string {
	return "collection/" + collection
}

// IndexResource returns the policy resource for every index in a collection.
func IndexResource(collection string) string {
	return "index/" + collection + "/*"
}

// NewEncryptionPolicy encrypts one collection with an AWS-owned key.
func NewEncryptionPolicy(collection string) EncryptionPolicy {
	return EncryptionPolicy{
		Rules: []Rule{{
			ResourceType: ResourceTypeCollection,
			Resource:     []string{CollectionResource(collection)},
		}},
		AWSOwnedKey: true,
	}
}

// NewNetworkPolicy allows public access to one collection.
func NewNetworkPolicy(collection string) []NetworkPolicy {
	return []NetworkPolicy{{
		Rules: []Rule{{
			ResourceType: ResourceTypeCollection,
			Resource:     []string{CollectionResource(collection)},
		}},
		AllowFromPublic: true,
	}}
}

// NewAccessPolicy grants the principals item and index access on one collection.
func NewAccessPolicy(collection string, principals ...string) []AccessPolicy {
	return []AccessPolicy{{
		Rules: []Rule{
			{
				ResourceType: ResourceTypeCollection,
				Resource:     []string{CollectionResource(collection)},
				Permission:   collectionPermissions,
			},
			{
				ResourceType: ResourceTypeIndex,
				Resource:     []string{IndexResource(collection)},
				Permission:   indexPermissions,
			},
		},
		Principal:   principals,
		Description: "Data access for the knowledge base collection",
	}}
}

// ValidatePrincipals checks that an access policy names distinct, non-empty principals.
func ValidatePrincipals(principals []string) error {
	if len(principals) == 0 {
		return errors.New("access policy needs at least one principal")
	}
	seen := make(map[string]bool, len(principals))
	for _, p := range principals {
		if p == "" {
			return errors.New("access policy principal is empty")
		}
		if !strings.HasPrefix(p, "arn:") {
			return fmt.Errorf("access policy principal %q is not an ARN", p)
		}
		if seen[p] {
			return fmt.Errorf("access policy principal %s is listed twice", p)
		}
		seen[p] = true
	}
	return nil
}

func validateRules(rules []Rule) error {
	if len(rules) == 0 {
		return errors.New("policy has no rules")
	}
	for i, r := range rules {
		if r.ResourceType != ResourceTypeCollection && r.ResourceType != ResourceTypeIndex {
			return fmt.Errorf("rule %d: invalid resource type %q", i, r.ResourceType)
		}
		if len(r.Resource) == 0 {
			return fmt.Errorf("rule %d: no resources", i)
		}
		for _, res := range r.Resource {
			if !strings.HasPrefix(res, r.ResourceType+"/") || strings.HasPrefix(res, r.ResourceType+"/*") {
				return fmt.Errorf("rule %d: resource %q is not scoped to a %s", i, res, r.ResourceType)
			}
		}
	}
	return nil
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode policy: %w", err)
	}
	return string(b), nil
}
