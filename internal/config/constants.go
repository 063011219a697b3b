package config

// Defaults applied by LoadFile when a field is omitted.
const (
	DefaultConfigFile        = "kbstack.yaml"
	DefaultStateFile         = "kbstack-state.yaml"
	DefaultNamePrefix        = "bedrock-kb"
	DefaultDataDir           = "data"
	DefaultFilePattern       = "**/*.pdf"
	DefaultEmbeddingModel    = "amazon.titan-embed-text-v2:0"
	DefaultGenerationModel   = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"
	DefaultTrustedService    = "bedrock.amazonaws.com"
	DefaultUploadConcurrency = 4

	DefaultVectorField   = "vector"
	DefaultTextField     = "text"
	DefaultMetadataField = "text-metadata"
	DefaultEngine        = "faiss"
	DefaultSpaceType     = "l2"
	DefaultEFSearch      = 512

	ChunkingFixedSize         = "FIXED_SIZE"
	ChunkingNone              = "NONE"
	DefaultMaxTokens          = 512
	DefaultOverlapPercentage  = 20
	MaxChunkTokens            = 8192
	MaxAOSSNameLength         = 32
	MinAOSSNameLength         = 3
	DefaultMaxSessionDuration = 3600
)
