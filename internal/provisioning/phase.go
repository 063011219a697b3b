package provisioning

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Requires lists the State keys that must be set before Provision runs.
	Requires() []Key

	// Provides lists the State keys Provision sets on success.
	Provides() []Key

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}
