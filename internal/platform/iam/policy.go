package iam

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PolicyVersion is the IAM policy language version.
const PolicyVersion = "2012-10-17"

// Effect values.
const (
	Allow = "Allow"
	Deny  = "Deny"
)

// PolicyDocument is an IAM policy or trust policy.
type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single policy statement.
type Statement struct {
	Sid       string     `json:"Sid,omitempty"`
	Effect    string     `json:"Effect"`
	Principal *Principal `json:"Principal,omitempty"`
	Action    []string   `json:"Action"`
	Resource  []string   `json:"Resource,omitempty"`
	Condition Condition  `json:"Condition,omitempty"`
}

// Principal names who a trust policy statement applies to.
type Principal struct {
	Service string `json:"Service,omitempty"`
	AWS     string `json:"AWS,omitempty"`
}

// Condition maps operator → key → value, e.g. StringEquals → aws:SourceAccount → 123.
type Condition map[string]map[string]string

// Validate checks that the document is well formed.
// Trust policies (statements with a Principal) must not carry resources;
// identity policies must name at least one resource and no wildcard-only resource.
func (d PolicyDocument) Validate() error {
	if d.Version != PolicyVersion {
		return fmt.Errorf("policy version must be %s, got %q", PolicyVersion, d.Version)
	}
	if len(d.Statement) == 0 {
		return errors.New("policy has no statements")
	}
	for i, s := range d.Statement {
		if s.Effect != Allow && s.Effect != Deny {
			return fmt.Errorf("statement %d: invalid effect %q", i, s.Effect)
		}
		if len(s.Action) == 0 {
			return fmt.Errorf("statement %d: no actions", i)
		}
		for _, a := range s.Action {
			if a == "" || a == "*" {
				return fmt.Errorf("statement %d: invalid action %q", i, a)
			}
		}
		if s.Principal != nil {
			if s.Principal.Service == "" && s.Principal.AWS == "" {
				return fmt.Errorf("statement %d: empty principal", i)
			}
			if len(s.Resource) > 0 {
				return fmt.Errorf("statement %d: trust statement must not name resources", i)
			}
			continue
		}
		if len(s.Resource) == 0 {
			return fmt.Errorf("statement %d: no resources", i)
		}
		for _, r := range s.Resource {
			if r == "" || r == "*" {
				return fmt.Errorf("statement %d: invalid resource %q", i, r)
			}
		}
	}
	return nil
}

// JSON validates the document and renders it for the IAM API.
func (d PolicyDocument) JSON() (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode policy document: %w", err)
	}
	return string(b), nil
}

// ModelInvokePolicy allows invoking the given foundation models.
func ModelInvokePolicy(modelARNs ...string) PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []Statement{{
			Sid:      "BedrockInvokeModelStatement",
			Effect:   Allow,
			Action:   []string{"bedrock:InvokeModel"},
			Resource: modelARNs,
		}},
	}
}

// StorageReadPolicy allows listing and reading one bucket, restricted to
// buckets owned by account.
func StorageReadPolicy(bucketARN, account string) PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []Statement{{
			Sid:      "S3ListBucketStatement",
			Effect:   Allow,
			Action:   []string{"s3:GetObject", "s3:ListBucket"},
			Resource: []string{bucketARN, bucketARN + "/*"},
			Condition: Condition{
				"StringEquals": {"aws:ResourceAccount": account},
			},
		}},
	}
}

// CollectionAccessPolicy allows data plane access to one AOSS collection.
func CollectionAccessPolicy(collectionARN string) PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []Statement{{
			Sid:      "OpenSearchServerlessAPIAccessAllStatement",
			Effect:   Allow,
			Action:   []string{"aoss:APIAccessAll"},
			Resource: []string{collectionARN},
		}},
	}
}

// TrustPolicy lets only service assume the role, and only on behalf of account.
func TrustPolicy(service, account string) PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []Statement{{
			Effect:    Allow,
			Principal: &Principal{Service: service},
			Action:    []string{"sts:AssumeRole"},
			Condition: Condition{
				"StringEquals": {"aws:SourceAccount": account},
			},
		}},
	}
}

// AccountFromARN returns the account ID field of an ARN, or "".
func AccountFromARN(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 6 {
		return ""
	}
	return parts[4]
}
