package vectorstore

import (
	"fmt"
	"strconv"
)

// Metadata keys carried by every stored passage.
const (
	MetaSourceDocument = "source_document"
	MetaFilename       = "filename"
	MetaDocumentType   = "document_type"
	MetaSessionID      = "session_id"
	MetaChunkID        = "chunk_id"
	MetaSubChunkID     = "sub_chunk_id"
)

// HeaderKeys are the structural header metadata keys, outermost first.
var HeaderKeys = []string{"Header 1", "Header 2", "Header 3", "Header 4"}

// MetadataString extracts a string value from result metadata.
//
// Stores differ in how they round-trip metadata types (chromem persists
// everything as strings, Qdrant preserves payload types), so accessors
// normalize here instead of at every call site.
func MetadataString(md map[string]interface{}, key string) string {
	if md == nil {
		return ""
	}
	switch v := md[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// MetadataInt extracts an integer value from result metadata.
// Returns 0 when the key is absent or not convertible.
func MetadataInt(md map[string]interface{}, key string) int {
	if md == nil {
		return 0
	}
	switch v := md[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
