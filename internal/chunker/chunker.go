// Package chunker splits markdown documents into ordered passages with
// structural and session metadata.
package chunker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/aktuarialabs/docchat/internal/vectorstore"
)

// Passage is one unit of indexed text plus metadata.
//
// Passages are immutable after creation and belong to exactly one session;
// they are never reassigned across sessions.
type Passage struct {
	// Content is the passage text, never empty.
	Content string

	// Metadata carries source_document, filename, document_type,
	// session_id, chunk_id and optionally sub_chunk_id plus the
	// enclosing header chain (Header 1..Header 4).
	Metadata map[string]interface{}
}

// Config holds chunking parameters.
type Config struct {
	// ChunkSize is the maximum passage length in characters. Header
	// segments longer than this are re-split.
	ChunkSize int

	// ChunkOverlap is the character overlap preserved between adjacent
	// sub-chunks.
	ChunkOverlap int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = 1000
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 200
	}
}

// Chunker splits document text into passages. Stateless and safe for
// concurrent use.
type Chunker struct {
	config   Config
	splitter textsplitter.RecursiveCharacter
}

// New creates a Chunker with the given configuration.
func New(config Config) *Chunker {
	config.ApplyDefaults()

	// Recursive separator strategy: paragraph breaks, then line breaks,
	// then spaces, finally character-level.
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(config.ChunkSize),
		textsplitter.WithChunkOverlap(config.ChunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
	)

	return &Chunker{
		config:   config,
		splitter: splitter,
	}
}

// Split splits a document's text into an ordered sequence of passages.
//
// The document is first segmented on markdown header boundaries (# through
// ####), each segment carrying the chain of enclosing header titles. Segments
// longer than the configured chunk size are re-split with overlap and get a
// sub_chunk_id per sub-chunk in split order. Header segments with an empty
// body are dropped.
//
// Callers must validate the input first (see internal/ingest); Split assumes
// non-empty text.
func (c *Chunker) Split(text, sourcePath, sessionID string) ([]Passage, error) {
	filename := filepath.Base(sourcePath)
	docType := ClassifyDocumentType(filename, text)

	segments := splitByHeaders(text)

	var passages []Passage
	for i, seg := range segments {
		metadata := map[string]interface{}{
			vectorstore.MetaSourceDocument: sourcePath,
			vectorstore.MetaFilename:       filename,
			vectorstore.MetaDocumentType:   string(docType),
			vectorstore.MetaSessionID:      sessionID,
			vectorstore.MetaChunkID:        i,
		}
		for key, title := range seg.headers {
			metadata[key] = title
		}

		if len(seg.body) > c.config.ChunkSize {
			subChunks, err := c.splitter.SplitText(seg.body)
			if err != nil {
				return nil, fmt.Errorf("splitting oversize segment %d of %s: %w", i, filename, err)
			}
			for j, sub := range subChunks {
				subMeta := make(map[string]interface{}, len(metadata)+1)
				for k, v := range metadata {
					subMeta[k] = v
				}
				subMeta[vectorstore.MetaSubChunkID] = j
				passages = append(passages, Passage{
					Content:  sub,
					Metadata: subMeta,
				})
			}
		} else {
			passages = append(passages, Passage{
				Content:  seg.body,
				Metadata: metadata,
			})
		}
	}

	return passages, nil
}

// headerSegment is a stretch of body text under one header chain.
type headerSegment struct {
	headers map[string]string
	body    string
}

// splitByHeaders segments text on markdown header boundaries, tracking the
// chain of enclosing header titles. Header lines themselves are not part of
// the segment body. Text before the first header forms a headerless segment.
func splitByHeaders(text string) []headerSegment {
	var (
		segments []headerSegment
		body     []string
	)
	headers := make(map[string]string)

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		body = body[:0]
		if content == "" {
			return
		}
		chain := make(map[string]string, len(headers))
		for k, v := range headers {
			chain[k] = v
		}
		segments = append(segments, headerSegment{headers: chain, body: content})
	}

	for _, line := range strings.Split(text, "\n") {
		level, title, ok := parseHeaderLine(line)
		if !ok {
			body = append(body, line)
			continue
		}

		flush()

		headers[headerKey(level)] = title
		// Entering a new section invalidates deeper header levels.
		for l := level + 1; l <= 4; l++ {
			delete(headers, headerKey(l))
		}
	}
	flush()

	return segments
}

// parseHeaderLine recognizes markdown headers of level 1 through 4.
func parseHeaderLine(line string) (level int, title string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return 0, "", false
	}

	hashes := 0
	for hashes < len(trimmed) && trimmed[hashes] == '#' {
		hashes++
	}
	if hashes > 4 {
		return 0, "", false
	}
	if hashes == len(trimmed) || trimmed[hashes] != ' ' {
		return 0, "", false
	}

	return hashes, strings.TrimSpace(trimmed[hashes:]), true
}

func headerKey(level int) string {
	return fmt.Sprintf("Header %d", level)
}
