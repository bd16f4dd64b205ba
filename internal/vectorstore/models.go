package vectorstore

// Document represents a passage to be stored in the vector store.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Content is the text content of the document.
	Content string

	// Metadata contains additional key-value pairs for filtering.
	// Required fields: source_document, filename, document_type,
	// session_id, chunk_id. Optional: sub_chunk_id, Header 1..Header 4.
	Metadata map[string]interface{}
}

// SearchResult represents a single similarity search hit.
//
// Results are transient values computed per request and never cached.
type SearchResult struct {
	// ID is the document identifier.
	ID string `json:"id"`

	// Content is the document text content.
	Content string `json:"content"`

	// Score is the similarity score in [0, 1] (higher = more similar).
	Score float32 `json:"score"`

	// Metadata contains the document metadata.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
