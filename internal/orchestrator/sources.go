package orchestrator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aktuarialabs/docchat/internal/vectorstore"
)

// previewLimit bounds the content preview carried in a Source.
const previewLimit = 200

// extractSources builds ordered, unique source descriptors from retrieval
// results.
//
// Ownership is re-checked here independently of the retriever: a source must
// never be attributed to the wrong session even if an upstream component
// regresses. Violations are dropped silently from the output and logged as
// correctness warnings. Duplicates are removed by (filename, chunk_id),
// keeping first-occurrence order.
func extractSources(results []vectorstore.SearchResult, sessionID string, logger *zap.Logger) []Source {
	sources := make([]Source, 0, len(results))
	seen := make(map[string]bool, len(results))

	for _, res := range results {
		owner := vectorstore.MetadataString(res.Metadata, vectorstore.MetaSessionID)
		if owner != sessionID {
			logger.Warn("passage owned by another session reached provenance extraction",
				zap.String("want_session", sessionID),
				zap.String("got_session", owner),
				zap.String("passage_id", res.ID),
			)
			continue
		}

		filename := vectorstore.MetadataString(res.Metadata, vectorstore.MetaFilename)
		chunkID := vectorstore.MetadataInt(res.Metadata, vectorstore.MetaChunkID)

		key := fmt.Sprintf("%s_%d", filename, chunkID)
		if seen[key] {
			continue
		}
		seen[key] = true

		var headers map[string]string
		for _, hk := range vectorstore.HeaderKeys {
			if title := vectorstore.MetadataString(res.Metadata, hk); title != "" {
				if headers == nil {
					headers = make(map[string]string)
				}
				headers[hk] = title
			}
		}

		sources = append(sources, Source{
			Filename:     filename,
			DocumentType: vectorstore.MetadataString(res.Metadata, vectorstore.MetaDocumentType),
			ChunkID:      chunkID,
			Headers:      headers,
			Preview:      previewContent(res.Content),
		})
	}

	return sources
}

// previewContent truncates content to previewLimit characters with an
// ellipsis suffix.
func previewContent(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit]) + "..."
}
