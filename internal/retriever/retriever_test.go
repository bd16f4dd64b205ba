package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aktuarialabs/docchat/internal/vectorstore"
)

// fakeStore simulates an index whose metadata filter may be broken in
// configurable ways.
type fakeStore struct {
	// corpus is the full indexed set, ordered by descending score.
	corpus []vectorstore.SearchResult

	// filterBehavior controls what SearchWithFilters returns.
	filterBehavior string // "honest", "leaky", "empty", "error"

	searchErr error

	filteredCalls   int
	unfilteredCalls int
	lastUnfilteredK int
}

func (f *fakeStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	return nil, nil
}

func (f *fakeStore) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	f.unfilteredCalls++
	f.lastUnfilteredK = k
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if k > len(f.corpus) {
		k = len(f.corpus)
	}
	out := make([]vectorstore.SearchResult, k)
	copy(out, f.corpus[:k])
	return out, nil
}

func (f *fakeStore) SearchWithFilters(ctx context.Context, query string, k int, filters map[string]interface{}) ([]vectorstore.SearchResult, error) {
	f.filteredCalls++
	switch f.filterBehavior {
	case "error":
		return nil, vectorstore.ErrStoreUnavailable
	case "empty":
		return []vectorstore.SearchResult{}, nil
	case "leaky":
		// Ignores the filter entirely, the failure mode this package exists for.
		if k > len(f.corpus) {
			k = len(f.corpus)
		}
		return f.corpus[:k], nil
	default: // honest
		sessionID, _ := filters[vectorstore.MetaSessionID].(string)
		var out []vectorstore.SearchResult
		for _, res := range f.corpus {
			if vectorstore.MetadataString(res.Metadata, vectorstore.MetaSessionID) == sessionID {
				out = append(out, res)
			}
			if len(out) == k {
				break
			}
		}
		return out, nil
	}
}

func (f *fakeStore) CollectionInfo(ctx context.Context) (*vectorstore.CollectionInfo, error) {
	return &vectorstore.CollectionInfo{Count: len(f.corpus)}, nil
}

func (f *fakeStore) Reset(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                    { return nil }

var _ vectorstore.Store = (*fakeStore)(nil)

func passage(id, sessionID string, score float32) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		ID:      id,
		Content: "content " + id,
		Score:   score,
		Metadata: map[string]interface{}{
			vectorstore.MetaSessionID: sessionID,
		},
	}
}

func mixedCorpus() []vectorstore.SearchResult {
	return []vectorstore.SearchResult{
		passage("a1", "alice", 0.95),
		passage("b1", "bob", 0.93),
		passage("a2", "alice", 0.90),
		passage("b2", "bob", 0.88),
		passage("a3", "alice", 0.85),
		passage("b3", "bob", 0.80),
		passage("a4", "alice", 0.40),
	}
}

func TestSearchForSession_HonestFilter(t *testing.T) {
	store := &fakeStore{corpus: mixedCorpus(), filterBehavior: "honest"}
	r := New(store, Config{SimilarityThreshold: 0.7}, nil)

	results, err := r.SearchForSession(context.Background(), "query", "alice", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, "alice", vectorstore.MetadataString(res.Metadata, vectorstore.MetaSessionID))
	}
}

func TestSearchForSession_LeakyFilterNeverLeaksResults(t *testing.T) {
	store := &fakeStore{corpus: mixedCorpus(), filterBehavior: "leaky"}
	r := New(store, Config{SimilarityThreshold: 0.7}, nil)

	results, err := r.SearchForSession(context.Background(), "query", "alice", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, res := range results {
		assert.Equal(t, "alice", vectorstore.MetadataString(res.Metadata, vectorstore.MetaSessionID),
			"no passage from another session may ever be returned")
	}
	// Rebuilt from the safety net: ordered by score, capped at k.
	assert.Equal(t, "a1", results[0].ID)
	assert.LessOrEqual(t, len(results), 3)
}

func TestSearchForSession_SafetyNetAlwaysIssued(t *testing.T) {
	store := &fakeStore{corpus: mixedCorpus(), filterBehavior: "honest"}
	r := New(store, Config{SimilarityThreshold: 0.7, OversampleFactor: 3}, nil)

	_, err := r.SearchForSession(context.Background(), "query", "alice", 4)
	require.NoError(t, err)

	assert.Equal(t, 1, store.filteredCalls)
	assert.Equal(t, 1, store.unfilteredCalls, "safety net must run even when the filter looks healthy")
	assert.Equal(t, 12, store.lastUnfilteredK, "safety net oversamples by the configured factor")
}

func TestSearchForSession_FilteredErrorFallsBackToSafetyNet(t *testing.T) {
	store := &fakeStore{corpus: mixedCorpus(), filterBehavior: "error"}
	r := New(store, Config{SimilarityThreshold: 0.7}, nil)

	results, err := r.SearchForSession(context.Background(), "query", "bob", 2)
	require.NoError(t, err, "a failed filtered search is recoverable")
	require.Len(t, results, 2)
	assert.Equal(t, "b1", results[0].ID)
	assert.Equal(t, "b2", results[1].ID)
}

func TestSearchForSession_EmptyFilteredFallsBackToSafetyNet(t *testing.T) {
	store := &fakeStore{corpus: mixedCorpus(), filterBehavior: "empty"}
	r := New(store, Config{SimilarityThreshold: 0.7}, nil)

	results, err := r.SearchForSession(context.Background(), "query", "alice", 5)
	require.NoError(t, err)
	// a4 scores 0.40, below the threshold.
	require.Len(t, results, 3)
	for _, res := range results {
		assert.GreaterOrEqual(t, float64(res.Score), 0.7)
	}
}

func TestSearchForSession_SafetyNetErrorFailsRequest(t *testing.T) {
	store := &fakeStore{
		corpus:         mixedCorpus(),
		filterBehavior: "honest",
		searchErr:      vectorstore.ErrStoreUnavailable,
	}
	r := New(store, Config{}, nil)

	results, err := r.SearchForSession(context.Background(), "query", "alice", 3)
	require.Error(t, err, "unverifiable results must not be returned")
	assert.True(t, errors.Is(err, vectorstore.ErrStoreUnavailable))
	assert.Nil(t, results)
}

func TestSearchForSession_ThresholdAppliedAfterOwnership(t *testing.T) {
	// Session-owned passages below the threshold are dropped even when the
	// filter is honest.
	store := &fakeStore{corpus: mixedCorpus(), filterBehavior: "honest"}
	r := New(store, Config{SimilarityThreshold: 0.87}, nil)

	results, err := r.SearchForSession(context.Background(), "query", "alice", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a1", results[0].ID)
	assert.Equal(t, "a2", results[1].ID)
}

func TestSearchForSession_NoOwnedPassagesIsEmptyNotError(t *testing.T) {
	store := &fakeStore{corpus: mixedCorpus(), filterBehavior: "honest"}
	r := New(store, Config{}, nil)

	results, err := r.SearchForSession(context.Background(), "query", "carol", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchForSession_InvalidArguments(t *testing.T) {
	store := &fakeStore{corpus: mixedCorpus(), filterBehavior: "honest"}
	r := New(store, Config{}, nil)

	_, err := r.SearchForSession(context.Background(), "query", "alice", 0)
	assert.Error(t, err)

	_, err = r.SearchForSession(context.Background(), "query", "", 3)
	assert.Error(t, err)
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, 0.7, cfg.SimilarityThreshold)
	assert.Equal(t, 3, cfg.OversampleFactor)

	cfg = Config{SimilarityThreshold: 0.5, OversampleFactor: 2}
	cfg.ApplyDefaults()
	assert.Equal(t, 0.5, cfg.SimilarityThreshold)
	assert.Equal(t, 3, cfg.OversampleFactor, "oversample factor is floored at 3")
}
