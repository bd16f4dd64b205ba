// Package orchestrator answers questions against session-scoped documents,
// falling back to general domain knowledge when no relevant passages exist.
package orchestrator

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/aktuarialabs/docchat/internal/conversation"
	"github.com/aktuarialabs/docchat/internal/generation"
	"github.com/aktuarialabs/docchat/internal/vectorstore"
)

var tracer = otel.Tracer("docchat.orchestrator")

// errorAnswerText is returned when generation fails. The session is
// preserved; the failed exchange is not recorded in history.
const errorAnswerText = "I'm sorry, something went wrong while processing your question. Please try again."

// Retriever is the session-scoped retrieval contract.
type Retriever interface {
	SearchForSession(ctx context.Context, query, sessionID string, k int) ([]vectorstore.SearchResult, error)
}

// Config holds orchestrator parameters.
type Config struct {
	// TopK is the number of passages retrieved per question.
	TopK int

	// FallbackConfidence is the fixed confidence reported for fallback
	// answers. A policy value in [0, 1], not computed from scores.
	FallbackConfidence float64

	// HistoryContextTurns is how many recent turns are included in
	// generation prompts.
	HistoryContextTurns int

	// GenerationModel and EmbeddingModel are reported by Stats.
	GenerationModel string
	EmbeddingModel  string

	// ChunkSize and SimilarityThreshold are reported by Stats.
	ChunkSize           int
	SimilarityThreshold float64
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.TopK == 0 {
		c.TopK = 5
	}
	if c.FallbackConfidence == 0 {
		c.FallbackConfidence = 0.5
	}
	if c.HistoryContextTurns == 0 {
		c.HistoryContextTurns = 5
	}
}

// Orchestrator coordinates retrieval, generation and conversation state to
// produce structured answers with provenance and confidence.
type Orchestrator struct {
	retriever     Retriever
	store         vectorstore.Store
	conversations *conversation.Store
	generator     generation.Client
	config        Config
	logger        *zap.Logger
	metrics       *Metrics
}

// New creates an Orchestrator.
func New(
	retriever Retriever,
	store vectorstore.Store,
	conversations *conversation.Store,
	generator generation.Client,
	config Config,
	logger *zap.Logger,
) *Orchestrator {
	config.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		retriever:     retriever,
		store:         store,
		conversations: conversations,
		generator:     generator,
		config:        config,
		logger:        logger,
		metrics:       NewMetrics(logger),
	}
}

// Answer processes a question for a session.
//
// Decision procedure: retrieve session-owned passages; with results,
// generate a document-grounded answer whose confidence is the mean
// similarity of the retrieved set; with none, generate from general domain
// knowledge at a fixed confidence. Every failure degrades locally to an
// apologetic ModeError answer - Answer never returns an error and never
// panics a request.
//
// The conversation turn is appended only after a successful generation, so
// transient downstream errors cannot pollute the history.
func (o *Orchestrator) Answer(ctx context.Context, question, sessionID string) *Answer {
	ctx, span := tracer.Start(ctx, "Orchestrator.Answer")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	results, err := o.retriever.SearchForSession(ctx, question, sessionID, o.config.TopK)
	if err != nil {
		// A transport error from the index is distinct from "no relevant
		// passages": degrade instead of answering from thin air.
		o.logger.Error("retrieval failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		span.RecordError(err)
		o.metrics.RecordAnswer(ctx, ModeError, 0, 0)
		return o.errorAnswer(sessionID)
	}

	history := o.conversations.FormatRecent(sessionID, o.config.HistoryContextTurns)

	var (
		prompt     string
		mode       Mode
		sources    []Source
		confidence float64
	)
	if len(results) > 0 {
		mode = ModeDocumentGrounded
		prompt = buildGroundedPrompt(question, results, history)
		sources = extractSources(results, sessionID, o.logger)
		confidence = meanConfidence(results)
	} else {
		mode = ModeFallbackKnowledge
		prompt = buildFallbackPrompt(question, history)
		sources = []Source{}
		confidence = o.config.FallbackConfidence
	}

	span.SetAttributes(
		attribute.String("mode", string(mode)),
		attribute.Int("retrieved", len(results)),
	)

	generationStart := time.Now()
	answerText, err := o.generator.Generate(ctx, prompt)
	generationTime := time.Since(generationStart)
	if err != nil {
		o.logger.Error("generation failed",
			zap.String("session_id", sessionID),
			zap.String("mode", string(mode)),
			zap.Duration("elapsed", generationTime),
			zap.Error(err),
		)
		span.RecordError(err)
		o.metrics.RecordAnswer(ctx, ModeError, len(results), generationTime)
		return o.errorAnswer(sessionID)
	}

	o.conversations.Append(sessionID, question, answerText)
	o.metrics.RecordAnswer(ctx, mode, len(results), generationTime)

	o.logger.Info("question answered",
		zap.String("session_id", sessionID),
		zap.String("mode", string(mode)),
		zap.Int("relevant_chunks", len(results)),
		zap.Float64("confidence", confidence),
		zap.Duration("generation_time", generationTime),
	)

	return &Answer{
		Answer:         answerText,
		Sources:        sources,
		Confidence:     confidence,
		SessionID:      sessionID,
		Mode:           mode,
		RelevantChunks: len(results),
	}
}

// errorAnswer builds the degraded answer for a failed request.
func (o *Orchestrator) errorAnswer(sessionID string) *Answer {
	return &Answer{
		Answer:     errorAnswerText,
		Sources:    []Source{},
		Confidence: 0.0,
		SessionID:  sessionID,
		Mode:       ModeError,
	}
}

// meanConfidence is the mean similarity of the retrieved set, clamped to
// [0, 1] and rounded to 3 decimals.
func meanConfidence(results []vectorstore.SearchResult) float64 {
	if len(results) == 0 {
		return 0.0
	}
	var sum float64
	for _, res := range results {
		sum += float64(res.Score)
	}
	mean := sum / float64(len(results))
	if mean < 0 {
		mean = 0
	}
	if mean > 1 {
		mean = 1
	}
	return math.Round(mean*1000) / 1000
}

// Search performs an unscoped similarity search for diagnostics. Results
// are not session-filtered; this is not an answer path.
func (o *Orchestrator) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	if k <= 0 {
		k = o.config.TopK
	}
	return o.store.Search(ctx, query, k)
}

// History returns the session's conversation history.
func (o *Orchestrator) History(sessionID string) []conversation.Turn {
	return o.conversations.History(sessionID)
}

// ClearConversation clears the session's conversation history.
func (o *Orchestrator) ClearConversation(sessionID string) {
	o.conversations.Clear(sessionID)
}

// ResetCollection deletes every stored passage.
func (o *Orchestrator) ResetCollection(ctx context.Context) error {
	return o.store.Reset(ctx)
}

// Stats returns the system status snapshot.
func (o *Orchestrator) Stats(ctx context.Context) (*Stats, error) {
	info, err := o.store.CollectionInfo(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalPassages:  info.Count,
		CollectionName: info.Name,
		Models: ModelInfo{
			Generation: o.config.GenerationModel,
			Embedding:  o.config.EmbeddingModel,
		},
		Configuration: RetrievalSettings{
			ChunkSize:           o.config.ChunkSize,
			TopK:                o.config.TopK,
			SimilarityThreshold: o.config.SimilarityThreshold,
		},
	}, nil
}
