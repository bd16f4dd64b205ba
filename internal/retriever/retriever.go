// Package retriever enforces session-scoped similarity search on top of a
// vector store whose native metadata filtering cannot be trusted.
//
// This package is a compatibility shim: some deployments of the backing
// index have been observed to silently return cross-session results on
// filtered queries. Until the underlying filtering is trusted, every
// retrieval verifies passage ownership itself. If the index's filtering is
// later verified reliable, this package can collapse to a single filtered
// search plus the threshold cut.
package retriever

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/aktuarialabs/docchat/internal/vectorstore"
)

var tracer = otel.Tracer("docchat.retriever")

// Config holds retrieval parameters.
type Config struct {
	// SimilarityThreshold is the minimum score for a passage to count as
	// relevant, in [0, 1].
	SimilarityThreshold float64

	// OversampleFactor sizes the unfiltered safety-net search relative to
	// k. Minimum 3.
	OversampleFactor int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = 0.7
	}
	if c.OversampleFactor < 3 {
		c.OversampleFactor = 3
	}
}

// SessionRetriever wraps a vectorstore.Store and guarantees that every
// returned result is owned by the requested session and scores at or above
// the similarity threshold.
type SessionRetriever struct {
	store  vectorstore.Store
	config Config
	logger *zap.Logger
}

// New creates a SessionRetriever.
func New(store vectorstore.Store, config Config, logger *zap.Logger) *SessionRetriever {
	config.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRetriever{
		store:  store,
		config: config,
		logger: logger,
	}
}

// SearchForSession returns up to k passages relevant to the query, each
// guaranteed to carry the requested session id and a score at or above the
// similarity threshold.
//
// Two searches are always issued: a filtered one and an unfiltered
// oversampled one. The unfiltered search is the safety net that makes the
// filtered results verifiable - filter success cannot be confirmed without
// it. Session isolation is never traded for performance here.
//
// The threshold is applied last, after ownership is settled, so it never
// discards a passage under the false belief it wasn't session-owned.
func (r *SessionRetriever) SearchForSession(ctx context.Context, query, sessionID string, k int) ([]vectorstore.SearchResult, error) {
	ctx, span := tracer.Start(ctx, "SessionRetriever.SearchForSession")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.Int("k", k),
	)

	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}

	// Step 1: filtered search. A transport error here is not fatal - the
	// safety net below still covers the request - but it is logged because
	// it usually precedes a full outage.
	filtered, filteredErr := r.store.SearchWithFilters(ctx, query, k, map[string]interface{}{
		vectorstore.MetaSessionID: sessionID,
	})
	if filteredErr != nil {
		r.logger.Warn("filtered search failed, relying on safety net",
			zap.String("session_id", sessionID),
			zap.Error(filteredErr),
		)
	}

	// Step 2: unfiltered oversampled search. This one is load-bearing: if
	// it fails, the request fails, because an unverifiable result set must
	// not be returned.
	unfiltered, err := r.store.Search(ctx, query, k*r.config.OversampleFactor)
	if err != nil {
		return nil, fmt.Errorf("safety-net search: %w", err)
	}

	selected := filtered
	if filteredErr != nil || len(filtered) == 0 || !r.allOwnedBySession(filtered, sessionID) {
		// The filter either failed, returned nothing, or leaked foreign
		// passages. Rebuild the result set from the unfiltered search.
		selected = r.filterBySession(unfiltered, sessionID)
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].Score > selected[j].Score
		})
		if len(selected) > k {
			selected = selected[:k]
		}
	}

	// Step 3 happened inside the branch above; step 4: threshold, last.
	relevant := make([]vectorstore.SearchResult, 0, len(selected))
	for _, res := range selected {
		if float64(res.Score) >= r.config.SimilarityThreshold {
			relevant = append(relevant, res)
		}
	}

	span.SetAttributes(attribute.Int("results_count", len(relevant)))

	r.logger.Debug("session retrieval complete",
		zap.String("session_id", sessionID),
		zap.Int("filtered", len(filtered)),
		zap.Int("unfiltered", len(unfiltered)),
		zap.Int("returned", len(relevant)),
	)

	return relevant, nil
}

// allOwnedBySession verifies every result carries the requested session id.
// A violation is logged as a correctness warning - it indicates the backing
// index's filter is broken or its data corrupted.
func (r *SessionRetriever) allOwnedBySession(results []vectorstore.SearchResult, sessionID string) bool {
	ok := true
	for _, res := range results {
		if vectorstore.MetadataString(res.Metadata, vectorstore.MetaSessionID) != sessionID {
			r.logger.Warn("filtered search returned passage from another session, discarding filtered results",
				zap.String("want_session", sessionID),
				zap.String("got_session", vectorstore.MetadataString(res.Metadata, vectorstore.MetaSessionID)),
				zap.String("passage_id", res.ID),
			)
			ok = false
		}
	}
	return ok
}

// filterBySession keeps only results owned by the session, preserving order.
func (r *SessionRetriever) filterBySession(results []vectorstore.SearchResult, sessionID string) []vectorstore.SearchResult {
	owned := make([]vectorstore.SearchResult, 0, len(results))
	for _, res := range results {
		if vectorstore.MetadataString(res.Metadata, vectorstore.MetaSessionID) == sessionID {
			owned = append(owned, res)
		}
	}
	return owned
}
