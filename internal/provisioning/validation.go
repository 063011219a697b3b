package provisioning

import (
	"fmt"
	"os"
	"strings"

	"github.com/imamik/kbstack/internal/config"
)

// maxDocumentSize is the largest source file Bedrock ingests.
const maxDocumentSize = 50 << 20

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase implements the Phase interface for pre-flight validation.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Requires implements the Phase interface.
func (vp *ValidationPhase) Requires() []Key { return nil }

// Provides implements the Phase interface.
func (vp *ValidationPhase) Provides() []Key { return nil }

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	ctx.Observer.Printf("[Validation] Running pre-flight validation...")

	allErrors := validate(ctx)

	// Separate errors and warnings
	var errs []ValidationError
	for _, ve := range allErrors {
		if ve.IsError() {
			errs = append(errs, ve)
			continue
		}
		ctx.Observer.Event(Event{
			Type:    EventValidationWarning,
			Phase:   vp.Name(),
			Message: ve.Message,
			Fields:  map[string]string{"field": ve.Field},
		})
	}

	// Fail if we have errors
	if len(errs) > 0 {
		var errMsgs []string
		for _, e := range errs {
			errMsgs = append(errMsgs, e.Error())
		}
		return fmt.Errorf("%w:\n  %s", ErrValidation, strings.Join(errMsgs, "\n  "))
	}

	ctx.Observer.Printf("[Validation] Validation passed")
	return nil
}

// validate runs all validation checks and returns any errors or warnings.
func validate(ctx *Context) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateConfig(ctx.Config)...)
	errs = append(errs, validateIdentity(ctx.State)...)
	errs = append(errs, validateNames(ctx.State)...)
	if ctx.Config != nil {
		errs = append(errs, validateDocuments(ctx.Config)...)
	}
	return errs
}

func validateConfig(cfg *config.Config) []ValidationError {
	if cfg == nil {
		return []ValidationError{{Field: "config", Message: "configuration is required", Severity: "error"}}
	}
	var errs []ValidationError
	if err := cfg.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "config", Message: err.Error(), Severity: "error"})
	}
	if !cfg.ShouldTeardownOnFailure() {
		errs = append(errs, ValidationError{
			Field:    "teardown_on_failure",
			Message:  "teardown on failure is disabled; a failed run leaves its resources behind until 'kbstack destroy'",
			Severity: "warning",
		})
	}
	return errs
}

func validateIdentity(state *State) []ValidationError {
	if state == nil {
		return []ValidationError{{Field: "state", Message: "provisioning state is required", Severity: "error"}}
	}
	var errs []ValidationError
	if state.Region == "" {
		errs = append(errs, ValidationError{Field: "region", Message: "region could not be resolved", Severity: "error"})
	}
	if state.AccountID == "" {
		errs = append(errs, ValidationError{Field: "account", Message: "account ID could not be resolved", Severity: "error"})
	}
	if !strings.HasPrefix(state.CallerARN, "arn:") {
		errs = append(errs, ValidationError{Field: "caller", Message: "caller ARN could not be resolved", Severity: "error"})
	}
	return errs
}

// validateNames checks the generated names against OpenSearch Serverless limits.
func validateNames(state *State) []ValidationError {
	if state == nil || state.Names.Suffix == "" {
		return []ValidationError{{Field: "names", Message: "resource suffix was not generated", Severity: "error"}}
	}
	var errs []ValidationError
	n := state.Names
	for _, name := range []string{n.Collection(), n.EncryptionPolicy(), n.NetworkPolicy(), n.AccessPolicy()} {
		if len(name) < config.MinAOSSNameLength || len(name) > config.MaxAOSSNameLength {
			errs = append(errs, ValidationError{
				Field:    "name_prefix",
				Message:  fmt.Sprintf("%s must be %d-%d characters", name, config.MinAOSSNameLength, config.MaxAOSSNameLength),
				Severity: "error",
			})
		}
	}
	return errs
}

func validateDocuments(cfg *config.Config) []ValidationError {
	docs, err := FindDocuments(cfg.DataDir, cfg.FilePattern)
	if err != nil {
		return []ValidationError{{Field: "data_dir", Message: err.Error(), Severity: "error"}}
	}
	if len(docs) == 0 {
		return []ValidationError{{
			Field:    "data_dir",
			Message:  fmt.Sprintf("no files in %s match %s", cfg.DataDir, cfg.FilePattern),
			Severity: "error",
		}}
	}
	var errs []ValidationError
	for _, d := range docs {
		info, err := os.Stat(d.Path)
		if err == nil && info.Size() > maxDocumentSize {
			errs = append(errs, ValidationError{
				Field:    "data_dir",
				Message:  fmt.Sprintf("%s is larger than 50 MiB and will be skipped by ingestion", d.Path),
				Severity: "warning",
			})
		}
	}
	return errs
}
