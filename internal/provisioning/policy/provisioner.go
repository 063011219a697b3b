package policy

import (
	"fmt"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/platform/iam"
	"github.com/imamik/kbstack/internal/provisioning"
)

const phase = "policy"

// Provisioner creates the model and storage policies and the execution role.
type Provisioner struct{}

// NewProvisioner creates a new policy provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Requires implements the provisioning.Phase interface.
func (p *Provisioner) Requires() []provisioning.Key {
	return []provisioning.Key{provisioning.KeyBucketARN}
}

// Provides implements the provisioning.Phase interface.
func (p *Provisioner) Provides() []provisioning.Key {
	return []provisioning.Key{
		provisioning.KeyModelPolicyARN,
		provisioning.KeyStoragePolicyARN,
		provisioning.KeyRoleName,
		provisioning.KeyRoleARN,
	}
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := ctx.State.Require(p.Requires()...); err != nil {
		return err
	}

	// 1. Policies
	if err := p.CreatePolicies(ctx); err != nil {
		return err
	}

	// 2. Role
	return p.CreateExecutionRole(ctx)
}

// CreatePolicies creates the model invocation and storage read policies.
func (p *Provisioner) CreatePolicies(ctx *provisioning.Context) error {
	names := ctx.State.Names
	modelARN := config.FoundationModelARN(ctx.State.Region, ctx.Config.Models.Embedding)

	ctx.Observer.Printf("[Policy] Creating model policy %s...", names.ModelPolicy())
	arn, err := CreatePolicy(ctx, phase, names.ModelPolicy(),
		"Allows the knowledge base to invoke its embedding model",
		iam.ModelInvokePolicy(modelARN))
	if err != nil {
		return err
	}
	ctx.State.Set(provisioning.KeyModelPolicyARN, arn)

	ctx.Observer.Printf("[Policy] Creating storage policy %s...", names.StoragePolicy())
	arn, err = CreatePolicy(ctx, phase, names.StoragePolicy(),
		"Allows the knowledge base to read its document bucket",
		iam.StorageReadPolicy(ctx.State.Get(provisioning.KeyBucketARN), ctx.State.AccountID))
	if err != nil {
		return err
	}
	ctx.State.Set(provisioning.KeyStoragePolicyARN, arn)
	return nil
}

// CreateExecutionRole creates the role assumed by the trusted service and
// attaches both policies to it.
func (p *Provisioner) CreateExecutionRole(ctx *provisioning.Context) error {
	if err := ctx.State.Require(provisioning.KeyModelPolicyARN, provisioning.KeyStoragePolicyARN); err != nil {
		return err
	}
	name := ctx.State.Names.ExecutionRole()
	trust := iam.TrustPolicy(ctx.Config.TrustedService, ctx.State.AccountID)

	ctx.Observer.Printf("[Policy] Creating execution role %s for %s...", name, ctx.Config.TrustedService)
	provisioning.LogResourceCreating(ctx.Observer, phase, provisioning.ResourceRole, name)
	if err := trust.Validate(); err != nil {
		return fmt.Errorf("%w: trust policy for %s: %w", provisioning.ErrValidation, name, err)
	}
	role, err := ctx.Clients.Identity.CreateRole(ctx, name,
		"Execution role for the knowledge base", trust, config.DefaultMaxSessionDuration)
	if err != nil {
		return err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceRole, Name: role.Name, ID: role.ARN})
	ctx.State.Set(provisioning.KeyRoleName, role.Name)
	ctx.State.Set(provisioning.KeyRoleARN, role.ARN)

	for _, key := range []provisioning.Key{provisioning.KeyModelPolicyARN, provisioning.KeyStoragePolicyARN} {
		if err := Attach(ctx, phase, role.Name, ctx.State.Get(key)); err != nil {
			return err
		}
	}
	return nil
}

// Attach attaches a managed policy to a role and records the attachment.
func Attach(ctx *provisioning.Context, phase, roleName, policyARN string) error {
	if err := ctx.Clients.Identity.AttachRolePolicy(ctx, roleName, policyARN); err != nil {
		return err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourceAttachment, Name: roleName, ID: policyARN})
	return nil
}

// CreatePolicy creates a managed policy and records it in the ledger.
func CreatePolicy(ctx *provisioning.Context, phase, name, description string, doc iam.PolicyDocument) (string, error) {
	provisioning.LogResourceCreating(ctx.Observer, phase, provisioning.ResourcePolicy, name)
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("%w: policy %s: %w", provisioning.ErrValidation, name, err)
	}
	arn, err := ctx.Clients.Identity.CreatePolicy(ctx, name, description, doc)
	if err != nil {
		return "", err
	}
	ctx.Record(phase, provisioning.Resource{Kind: provisioning.ResourcePolicy, Name: name, ID: arn})
	return arn, nil
}
