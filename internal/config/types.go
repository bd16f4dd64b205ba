package config

import "time"

// Config is the root configuration for docchat.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	Generation  GenerationConfig  `koanf:"generation"`
	Retrieval   RetrievalConfig   `koanf:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// UploadDir is the spool directory for uploaded files.
	UploadDir string `koanf:"upload_dir"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// VectorStoreConfig selects and configures the similarity index backend.
type VectorStoreConfig struct {
	// Provider is "chromem" (embedded, default) or "qdrant" (external).
	Provider string `koanf:"provider"`

	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`
}

// ChromemConfig holds settings for the embedded chromem-go store.
type ChromemConfig struct {
	Path       string `koanf:"path"`
	Compress   bool   `koanf:"compress"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
}

// QdrantConfig holds settings for an external Qdrant server.
type QdrantConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
	UseTLS     bool   `koanf:"use_tls"`
}

// EmbeddingsConfig holds settings for the embedding service.
type EmbeddingsConfig struct {
	// BaseURL is the OpenAI-compatible embedding endpoint.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model name.
	Model string `koanf:"model"`

	// APIKey authenticates against the endpoint. Usually supplied via
	// the OPENAI_API_KEY environment variable.
	APIKey string `koanf:"api_key"`
}

// GenerationConfig holds settings for the text-generation service.
type GenerationConfig struct {
	BaseURL     string  `koanf:"base_url"`
	Model       string  `koanf:"model"`
	APIKey      string  `koanf:"api_key"`
	Temperature float64 `koanf:"temperature"`

	// Timeout bounds a single generation call. On expiry the call is
	// treated as a generation failure, never left hanging.
	Timeout time.Duration `koanf:"timeout"`
}

// RetrievalConfig holds chunking and retrieval tunables.
type RetrievalConfig struct {
	// ChunkSize is the maximum passage length in characters.
	ChunkSize int `koanf:"chunk_size"`

	// ChunkOverlap is the character overlap between adjacent sub-chunks.
	ChunkOverlap int `koanf:"chunk_overlap"`

	// TopK is the number of passages retrieved per question.
	TopK int `koanf:"top_k"`

	// SimilarityThreshold is the minimum similarity score for a passage
	// to count as relevant, in [0, 1].
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// OversampleFactor sizes the unfiltered safety-net search relative
	// to TopK. Minimum 3.
	OversampleFactor int `koanf:"oversample_factor"`

	// FallbackConfidence is the fixed confidence reported for answers
	// generated without document grounding. A policy value, not a
	// computed signal.
	FallbackConfidence float64 `koanf:"fallback_confidence"`

	// MaxHistoryTurns bounds the per-session conversation history.
	MaxHistoryTurns int `koanf:"max_history_turns"`

	// HistoryContextTurns is how many recent turns are included in
	// generation prompts.
	HistoryContextTurns int `koanf:"history_context_turns"`
}
