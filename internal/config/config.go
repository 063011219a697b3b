package config

// Config holds the desired state of one knowledge base stack.
type Config struct {
	Region  string `yaml:"region"`
	Profile string `yaml:"profile,omitempty"`

	// NamePrefix is combined with the per-run suffix to name every resource.
	NamePrefix string `yaml:"name_prefix"`

	// Documents
	DataDir           string `yaml:"data_dir"`
	FilePattern       string `yaml:"file_pattern"`
	UploadConcurrency int    `yaml:"upload_concurrency"`

	Models   ModelsConfig   `yaml:"models"`
	Index    IndexConfig    `yaml:"index"`
	Chunking ChunkingConfig `yaml:"chunking"`

	// TrustedService is the service principal allowed to assume the execution role.
	TrustedService string `yaml:"trusted_service"`

	// TeardownOnFailure removes every resource the run created when a stage fails.
	TeardownOnFailure *bool `yaml:"teardown_on_failure,omitempty"`

	StateFile string `yaml:"state_file"`
}

// ModelsConfig selects the Bedrock models used for embedding and generation.
type ModelsConfig struct {
	Embedding          string `yaml:"embedding"`
	EmbeddingDimension int    `yaml:"embedding_dimension,omitempty"`
	Generation         string `yaml:"generation"`
}

// IndexConfig describes the vector index layout inside the collection.
type IndexConfig struct {
	VectorField   string `yaml:"vector_field"`
	TextField     string `yaml:"text_field"`
	MetadataField string `yaml:"metadata_field"`
	Engine        string `yaml:"engine"`
	SpaceType     string `yaml:"space_type"`
	EFSearch      int    `yaml:"ef_search"`
}

// ChunkingConfig controls how documents are split at ingestion time.
type ChunkingConfig struct {
	Strategy          string `yaml:"strategy"`
	MaxTokens         int    `yaml:"max_tokens"`
	OverlapPercentage int    `yaml:"overlap_percentage"`
}

// ShouldTeardownOnFailure reports whether a failed run cleans up after itself.
// Defaults to true when unset.
func (c *Config) ShouldTeardownOnFailure() bool {
	if c.TeardownOnFailure == nil {
		return true
	}
	return *c.TeardownOnFailure
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.NamePrefix == "" {
		c.NamePrefix = DefaultNamePrefix
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.FilePattern == "" {
		c.FilePattern = DefaultFilePattern
	}
	if c.UploadConcurrency == 0 {
		c.UploadConcurrency = DefaultUploadConcurrency
	}
	if c.Models.Embedding == "" {
		c.Models.Embedding = DefaultEmbeddingModel
	}
	if c.Models.EmbeddingDimension == 0 {
		if m, ok := LookupEmbeddingModel(c.Models.Embedding); ok {
			c.Models.EmbeddingDimension = m.DefaultDimension
		}
	}
	if c.Models.Generation == "" {
		c.Models.Generation = DefaultGenerationModel
	}
	if c.Index.VectorField == "" {
		c.Index.VectorField = DefaultVectorField
	}
	if c.Index.TextField == "" {
		c.Index.TextField = DefaultTextField
	}
	if c.Index.MetadataField == "" {
		c.Index.MetadataField = DefaultMetadataField
	}
	if c.Index.Engine == "" {
		c.Index.Engine = DefaultEngine
	}
	if c.Index.SpaceType == "" {
		c.Index.SpaceType = DefaultSpaceType
	}
	if c.Index.EFSearch == 0 {
		c.Index.EFSearch = DefaultEFSearch
	}
	if c.Chunking.Strategy == "" {
		c.Chunking.Strategy = ChunkingFixedSize
	}
	if c.Chunking.Strategy == ChunkingFixedSize {
		if c.Chunking.MaxTokens == 0 {
			c.Chunking.MaxTokens = DefaultMaxTokens
		}
		if c.Chunking.OverlapPercentage == 0 {
			c.Chunking.OverlapPercentage = DefaultOverlapPercentage
		}
	}
	if c.TrustedService == "" {
		c.TrustedService = DefaultTrustedService
	}
	if c.StateFile == "" {
		c.StateFile = DefaultStateFile
	}
}
