package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aktuarialabs/docchat/internal/vectorstore"
)

func TestSplit_ShortSectionSinglePassage(t *testing.T) {
	c := New(Config{ChunkSize: 1000, ChunkOverlap: 200})

	text := "# Premium Formula\n\nGross premium equals net premium plus loading."
	passages, err := c.Split(text, "/tmp/rumus_premi.md", "session-1")
	require.NoError(t, err)
	require.Len(t, passages, 1)

	p := passages[0]
	assert.Equal(t, "Gross premium equals net premium plus loading.", p.Content)
	assert.Equal(t, "rumus_premi.md", p.Metadata[vectorstore.MetaFilename])
	assert.Equal(t, "/tmp/rumus_premi.md", p.Metadata[vectorstore.MetaSourceDocument])
	assert.Equal(t, "formula", p.Metadata[vectorstore.MetaDocumentType])
	assert.Equal(t, "session-1", p.Metadata[vectorstore.MetaSessionID])
	assert.Equal(t, 0, p.Metadata[vectorstore.MetaChunkID])
	assert.Equal(t, "Premium Formula", p.Metadata["Header 1"])
	_, hasSub := p.Metadata[vectorstore.MetaSubChunkID]
	assert.False(t, hasSub, "short segment must not carry a sub_chunk_id")
}

func TestSplit_OversizeSectionResplitWithSubChunkIDs(t *testing.T) {
	c := New(Config{ChunkSize: 1000, ChunkOverlap: 200})

	// 1500 characters of body under one header forces a re-split.
	var b strings.Builder
	b.WriteString("# Definitions\n\n")
	sentence := "An annuity is a series of payments made at equal intervals. "
	for b.Len() < 1515 {
		b.WriteString(sentence)
	}

	passages, err := c.Split(b.String(), "definitions.md", "session-1")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(passages), 2, "1500 chars at size 1000 must split")

	for j, p := range passages {
		assert.Equal(t, 0, p.Metadata[vectorstore.MetaChunkID], "sub-chunks share the segment's chunk_id")
		assert.Equal(t, j, p.Metadata[vectorstore.MetaSubChunkID], "sub_chunk_id follows split order")
		assert.Equal(t, "Definitions", p.Metadata["Header 1"])
		assert.LessOrEqual(t, len(p.Content), 1000)
		assert.NotEmpty(t, p.Content)
	}
}

func TestSplit_SubChunkMetadataIsIndependent(t *testing.T) {
	c := New(Config{ChunkSize: 100, ChunkOverlap: 20})

	text := "# A\n\n" + strings.Repeat("alpha beta gamma delta ", 20)
	passages, err := c.Split(text, "doc.md", "s")
	require.NoError(t, err)
	require.Greater(t, len(passages), 1)

	// Mutating one passage's metadata must not leak into siblings.
	passages[0].Metadata["Header 1"] = "mutated"
	assert.Equal(t, "A", passages[1].Metadata["Header 1"])
}

func TestSplit_HeaderChainTracking(t *testing.T) {
	c := New(Config{})

	text := strings.Join([]string{
		"# Guide",
		"Intro text.",
		"## Claims",
		"Claims text.",
		"### Submission",
		"Submission text.",
		"## Appendix",
		"Appendix text.",
	}, "\n")

	passages, err := c.Split(text, "doc.md", "s")
	require.NoError(t, err)
	require.Len(t, passages, 4)

	// Intro carries only Header 1.
	assert.Equal(t, "Guide", passages[0].Metadata["Header 1"])
	_, has2 := passages[0].Metadata["Header 2"]
	assert.False(t, has2)

	// Nested section carries the full chain.
	assert.Equal(t, "Guide", passages[2].Metadata["Header 1"])
	assert.Equal(t, "Claims", passages[2].Metadata["Header 2"])
	assert.Equal(t, "Submission", passages[2].Metadata["Header 3"])

	// A new H2 invalidates the previous H3.
	assert.Equal(t, "Appendix", passages[3].Metadata["Header 2"])
	_, has3 := passages[3].Metadata["Header 3"]
	assert.False(t, has3, "stale Header 3 must be cleared by a new Header 2")
}

func TestSplit_PreambleBeforeFirstHeader(t *testing.T) {
	c := New(Config{})

	passages, err := c.Split("Preamble line.\n\n# Section\nBody.", "doc.md", "s")
	require.NoError(t, err)
	require.Len(t, passages, 2)

	assert.Equal(t, "Preamble line.", passages[0].Content)
	assert.Empty(t, passages[0].Metadata["Header 1"])
	assert.Equal(t, 0, passages[0].Metadata[vectorstore.MetaChunkID])
	assert.Equal(t, 1, passages[1].Metadata[vectorstore.MetaChunkID])
}

func TestSplit_EmptyHeaderBodiesDropped(t *testing.T) {
	c := New(Config{})

	passages, err := c.Split("# Empty\n\n# Full\nContent here.", "doc.md", "s")
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "Content here.", passages[0].Content)
	assert.Equal(t, "Full", passages[0].Metadata["Header 1"])
}

func TestSplit_ChunkIDsAreOrdinal(t *testing.T) {
	c := New(Config{})

	text := "# One\nA.\n# Two\nB.\n# Three\nC."
	passages, err := c.Split(text, "doc.md", "s")
	require.NoError(t, err)
	require.Len(t, passages, 3)
	for i, p := range passages {
		assert.Equal(t, i, p.Metadata[vectorstore.MetaChunkID])
	}
}

func TestParseHeaderLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantLevel int
		wantTitle string
		wantOK    bool
	}{
		{"h1", "# Title", 1, "Title", true},
		{"h4", "#### Deep", 4, "Deep", true},
		{"h5 ignored", "##### Too Deep", 0, "", false},
		{"no space", "#Title", 0, "", false},
		{"hashes only", "###", 0, "", false},
		{"plain text", "not a header", 0, "", false},
		{"indented", "  ## Indented", 2, "Indented", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, title, ok := parseHeaderLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantTitle, title)
		})
	}
}
