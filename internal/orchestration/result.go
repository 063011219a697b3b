package orchestration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/provisioning"
)

// stateVersion is bumped when the state file layout changes incompatibly.
const stateVersion = 1

// Result is every identifier a run produced. It is also the layout of the
// state file.
type Result struct {
	Version   int       `yaml:"version"`
	UpdatedAt time.Time `yaml:"updated_at"`

	Region    string `yaml:"region"`
	AccountID string `yaml:"account_id"`
	Prefix    string `yaml:"prefix"`
	Suffix    string `yaml:"suffix"`

	BucketName         string `yaml:"bucket_name,omitempty"`
	RoleARN            string `yaml:"role_arn,omitempty"`
	CollectionName     string `yaml:"collection_name,omitempty"`
	CollectionID       string `yaml:"collection_id,omitempty"`
	CollectionARN      string `yaml:"collection_arn,omitempty"`
	CollectionEndpoint string `yaml:"collection_endpoint,omitempty"`
	IndexName          string `yaml:"index_name,omitempty"`
	KnowledgeBaseName  string `yaml:"knowledge_base_name,omitempty"`
	KnowledgeBaseID    string `yaml:"knowledge_base_id,omitempty"`
	DataSourceID       string `yaml:"data_source_id,omitempty"`
	IngestionJobID     string `yaml:"ingestion_job_id,omitempty"`
	GenerationModel    string `yaml:"generation_model,omitempty"`

	Ingestion bedrock.IngestionStatistics `yaml:"ingestion"`

	// Resources are the remote resources that still exist, oldest first.
	Resources []provisioning.Resource `yaml:"resources"`

	// Error is the failure that ended the run, if any.
	Error string `yaml:"error,omitempty"`
}

// NewResult collects the outputs of a run.
func NewResult(state *provisioning.State, ledger *provisioning.Ledger) *Result {
	r := &Result{
		Version:   stateVersion,
		UpdatedAt: time.Now().UTC(),
		Region:    state.Region,
		AccountID: state.AccountID,
		Prefix:    state.Names.Prefix,
		Suffix:    state.Names.Suffix,

		BucketName:         state.Get(provisioning.KeyBucketName),
		RoleARN:            state.Get(provisioning.KeyRoleARN),
		CollectionID:       state.Get(provisioning.KeyCollectionID),
		CollectionARN:      state.Get(provisioning.KeyCollectionARN),
		CollectionEndpoint: state.Get(provisioning.KeyCollectionEndpoint),
		IndexName:          state.Get(provisioning.KeyIndexName),
		KnowledgeBaseID:    state.Get(provisioning.KeyKnowledgeBaseID),
		DataSourceID:       state.Get(provisioning.KeyDataSourceID),
		IngestionJobID:     state.Get(provisioning.KeyIngestionJobID),
		Ingestion:          state.Ingestion,
		Resources:          ledger.Resources(),
	}
	if r.CollectionID != "" {
		r.CollectionName = state.Names.Collection()
	}
	if r.KnowledgeBaseID != "" {
		r.KnowledgeBaseName = state.Names.KnowledgeBase()
	}
	return r
}

// SaveResult writes the result to path as YAML, replacing any previous file.
func SaveResult(path string, r *Result) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// LoadResult reads a state file written by SaveResult.
func LoadResult(path string) (*Result, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var r Result
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	if r.Version != stateVersion {
		return nil, fmt.Errorf("state file %s has version %d, expected %d", path, r.Version, stateVersion)
	}
	return &r, nil
}
