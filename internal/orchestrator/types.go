package orchestrator

// Mode identifies how an answer was produced.
type Mode string

const (
	// ModeDocumentGrounded means the answer used retrieved passages.
	ModeDocumentGrounded Mode = "document_grounded"

	// ModeFallbackKnowledge means no relevant passages existed and the
	// answer came from general domain knowledge.
	ModeFallbackKnowledge Mode = "fallback_knowledge"

	// ModeError means generation failed and a degraded answer was
	// returned.
	ModeError Mode = "error"
)

// Source describes the provenance of one retrieved passage.
type Source struct {
	Filename     string            `json:"filename"`
	DocumentType string            `json:"document_type"`
	ChunkID      int               `json:"chunk_id"`
	Headers      map[string]string `json:"headers,omitempty"`
	Preview      string            `json:"preview"`
}

// Answer is the structured result of one question.
//
// The orchestrator always returns a well-formed Answer; internal failures
// degrade to ModeError with confidence 0, they never propagate.
type Answer struct {
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources"`
	Confidence     float64  `json:"confidence"`
	SessionID      string   `json:"session_id"`
	Mode           Mode     `json:"mode"`
	RelevantChunks int      `json:"relevant_chunks"`
}

// ModelInfo names the external models in use.
type ModelInfo struct {
	Generation string `json:"generation"`
	Embedding  string `json:"embedding"`
}

// RetrievalSettings reports the active retrieval configuration.
type RetrievalSettings struct {
	ChunkSize           int     `json:"chunk_size"`
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// Stats is the system status snapshot exposed for diagnostics.
type Stats struct {
	TotalPassages  int               `json:"total_passages"`
	CollectionName string            `json:"collection_name"`
	Models         ModelInfo         `json:"models"`
	Configuration  RetrievalSettings `json:"configuration"`
}
