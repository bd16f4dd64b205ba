package vectorstore

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEmbedder produces deterministic normalized vectors from a text hash.
// Similar texts do not get similar vectors; these tests exercise storage and
// filtering behavior, not embedding quality.
type testEmbedder struct {
	dim int
}

func (e *testEmbedder) embed(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text)) //nolint:errcheck
	seed := h.Sum64()

	vec := make([]float32, e.dim)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>33)) / float32(math.MaxInt32)
		norm += float64(vec[i]) * float64(vec[i])
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func (e *testEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *testEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

var _ Embedder = (*testEmbedder)(nil)

func newTestChromemStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore(ChromemConfig{
		Path:       t.TempDir(),
		Collection: "test_passages",
		VectorSize: 8,
	}, &testEmbedder{dim: 8}, nil)
	require.NoError(t, err)
	return store
}

func testDoc(id, sessionID, content string, chunkID int) Document {
	return Document{
		ID:      id,
		Content: content,
		Metadata: map[string]interface{}{
			MetaSessionID: sessionID,
			MetaFilename:  "test.md",
			MetaChunkID:   chunkID,
		},
	}
}

func TestNewChromemStore_RequiresEmbedder(t *testing.T) {
	_, err := NewChromemStore(ChromemConfig{Path: t.TempDir()}, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestChromemStore_AddDocumentsEmpty(t *testing.T) {
	store := newTestChromemStore(t)

	_, err := store.AddDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyDocuments)

	_, err = store.AddDocuments(context.Background(), []Document{})
	assert.ErrorIs(t, err, ErrEmptyDocuments)
}

func TestChromemStore_AddAndCount(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	ids, err := store.AddDocuments(ctx, []Document{
		testDoc("d1", "sess", "premium calculation basics", 0),
		testDoc("d2", "sess", "claim settlement procedure", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, ids)

	info, err := store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test_passages", info.Name)
	assert.Equal(t, 2, info.Count)
	assert.Equal(t, 8, info.VectorSize)
}

func TestChromemStore_AutoGeneratedIDs(t *testing.T) {
	store := newTestChromemStore(t)

	ids, err := store.AddDocuments(context.Background(), []Document{
		testDoc("", "sess", "first", 0),
		testDoc("", "sess", "second", 1),
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestChromemStore_SearchBeforeFirstIngestion(t *testing.T) {
	store := newTestChromemStore(t)

	results, err := store.Search(context.Background(), "anything", 5)
	require.NoError(t, err, "a missing collection means no results, not an outage")
	assert.Empty(t, results)
}

func TestChromemStore_SearchValidation(t *testing.T) {
	store := newTestChromemStore(t)

	_, err := store.Search(context.Background(), "query", 0)
	assert.Error(t, err)

	_, err = store.Search(context.Background(), "", 5)
	assert.Error(t, err)
}

func TestChromemStore_SearchCapsKAtCollectionSize(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []Document{
		testDoc("d1", "sess", "only document", 0),
	})
	require.NoError(t, err)

	// k far above the document count must not error.
	results, err := store.Search(ctx, "document", 50)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestChromemStore_SearchWithSessionFilter(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []Document{
		testDoc("a1", "alice", "alpha passage", 0),
		testDoc("a2", "alice", "beta passage", 1),
		testDoc("b1", "bob", "gamma passage", 0),
	})
	require.NoError(t, err)

	results, err := store.SearchWithFilters(ctx, "passage", 10, map[string]interface{}{
		MetaSessionID: "alice",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, "alice", MetadataString(res.Metadata, MetaSessionID))
	}
}

func TestChromemStore_MetadataRoundTrip(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []Document{
		testDoc("d1", "sess", "content", 7),
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, "content", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// chromem persists metadata as strings; the typed accessors recover the
	// original values.
	assert.Equal(t, "sess", MetadataString(results[0].Metadata, MetaSessionID))
	assert.Equal(t, 7, MetadataInt(results[0].Metadata, MetaChunkID))
	assert.Equal(t, "test.md", MetadataString(results[0].Metadata, MetaFilename))
}

func TestChromemStore_Reset(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []Document{
		testDoc("d1", "sess", "content", 0),
	})
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	info, err := store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, info.Count)

	// The store accepts new documents after a reset.
	_, err = store.AddDocuments(ctx, []Document{
		testDoc("d2", "sess", "fresh content", 0),
	})
	require.NoError(t, err)
}

func TestChromemStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	embedder := &testEmbedder{dim: 8}
	cfg := ChromemConfig{Path: dir, Collection: "test_passages", VectorSize: 8}
	ctx := context.Background()

	store, err := NewChromemStore(cfg, embedder, nil)
	require.NoError(t, err)
	_, err = store.AddDocuments(ctx, []Document{
		testDoc("d1", "sess", "persisted content", 0),
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewChromemStore(cfg, embedder, nil)
	require.NoError(t, err)
	info, err := reopened.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Count)
}

func TestConvertMetadataToString(t *testing.T) {
	got := convertMetadataToString(map[string]interface{}{
		"s": "text",
		"i": 42,
		"f": 1.5,
		"b": true,
	})
	assert.Equal(t, "text", got["s"])
	assert.Equal(t, "42", got["i"])
	assert.Equal(t, fmt.Sprintf("%f", 1.5), got["f"])
	assert.Equal(t, "true", got["b"])

	assert.Nil(t, convertMetadataToString(nil))
}
