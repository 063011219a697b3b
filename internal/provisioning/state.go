package provisioning

import (
	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/util/naming"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	Region    string
	AccountID string
	CallerARN string
	Names     naming.Names

	// Outputs maps each produced identifier to its value.
	Outputs map[Key]string

	// Ingestion holds the document statistics of the last ingestion job.
	Ingestion bedrock.IngestionStatistics
}

// NewState creates an empty provisioning state for one run.
func NewState(region, accountID, callerARN string, names naming.Names) *State {
	return &State{
		Region:    region,
		AccountID: accountID,
		CallerARN: callerARN,
		Names:     names,
		Outputs:   make(map[Key]string),
	}
}

// Set records an output. Empty values are ignored so Require keeps reporting the key.
func (s *State) Set(key Key, value string) {
	if value == "" {
		return
	}
	if s.Outputs == nil {
		s.Outputs = make(map[Key]string)
	}
	s.Outputs[key] = value
}

// Get returns an output, or "" if it was never set.
func (s *State) Get(key Key) string {
	return s.Outputs[key]
}

// Has reports whether an output was set.
func (s *State) Has(key Key) bool {
	_, ok := s.Outputs[key]
	return ok
}

// Missing returns the keys that are not set, in the order given.
func (s *State) Missing(keys ...Key) []Key {
	var missing []Key
	for _, k := range keys {
		if !s.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Require returns a *MissingInputError naming every key that is not set.
func (s *State) Require(keys ...Key) error {
	if missing := s.Missing(keys...); len(missing) > 0 {
		return &MissingInputError{Phase: "state", Keys: missing}
	}
	return nil
}
