// Package vectorstore defines the interface for passage storage and
// similarity search.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrStoreUnavailable indicates the backing store is unreachable.
	// Callers must not treat this as "no results".
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrCollectionNotFound is returned when the collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
)

// CollectionInfo contains metadata about the passage collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string `json:"name"`

	// Count is the number of passages in the collection.
	Count int `json:"count"`

	// VectorSize is the dimensionality of stored embeddings.
	VectorSize int `json:"vector_size"`
}

// Embedder generates vector embeddings from text.
//
// Embeddings are dense numerical representations that capture semantic
// meaning, enabling similarity search. Implementations can use local
// TEI-compatible servers or cloud APIs (OpenAI).
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	// Returns a slice of embeddings (one per input text) or an error.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	// Some models optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for passage storage operations.
//
// This interface is transport-agnostic - implementations can be embedded
// (chromem-go) or remote (Qdrant over gRPC). The interface covers exactly
// what the retrieval subsystem needs: at-least-once insertion, similarity
// search with optional metadata-equality filtering, collection stats, and
// a full reset.
//
// Filter reliability: implementations SHOULD apply metadata filters as
// exact-equality matches, but callers must not assume the filter is honored.
// Some deployments have been observed to silently return unfiltered results.
// Session-level isolation is therefore enforced by the retriever, which
// verifies ownership of every filtered result (see internal/retriever).
type Store interface {
	// AddDocuments embeds and stores documents with their metadata.
	// Insertion is at-least-once: re-inserting the same content creates
	// independent passages, no deduplication is performed.
	// Returns the IDs of added documents.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// Search performs similarity search and returns up to k results
	// ordered by similarity score (highest first).
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// SearchWithFilters performs similarity search with metadata filters.
	// Filters are exact-equality matches on metadata keys. Only documents
	// matching ALL conditions should be returned, but see the filter
	// reliability note on Store.
	SearchWithFilters(ctx context.Context, query string, k int, filters map[string]interface{}) ([]SearchResult, error)

	// CollectionInfo returns the collection name and passage count.
	CollectionInfo(ctx context.Context) (*CollectionInfo, error)

	// Reset deletes every passage in the collection and reinitializes it.
	// This is the only destructive operation; there is no per-document
	// deletion.
	Reset(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
