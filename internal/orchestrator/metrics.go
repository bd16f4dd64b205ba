package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/aktuarialabs/docchat/internal/orchestrator"

// Metrics holds answer-path instruments.
type Metrics struct {
	meter         metric.Meter
	logger        *zap.Logger
	answersTotal  metric.Int64Counter
	generationDur metric.Float64Histogram
	retrievedHist metric.Int64Histogram
}

// NewMetrics creates orchestrator metrics on the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.answersTotal, err = m.meter.Int64Counter(
		"docchat.answers_total",
		metric.WithDescription("Total answers produced, labeled by mode (document_grounded, fallback_knowledge, error)."),
		metric.WithUnit("{answer}"),
	)
	if err != nil {
		m.logger.Warn("failed to create answers counter", zap.Error(err))
	}

	m.generationDur, err = m.meter.Float64Histogram(
		"docchat.generation_duration_seconds",
		metric.WithDescription("Text-generation call duration in seconds."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		m.logger.Warn("failed to create generation duration histogram", zap.Error(err))
	}

	m.retrievedHist, err = m.meter.Int64Histogram(
		"docchat.retrieved_passages",
		metric.WithDescription("Number of relevant passages retrieved per question."),
		metric.WithUnit("{passage}"),
	)
	if err != nil {
		m.logger.Warn("failed to create retrieved passages histogram", zap.Error(err))
	}
}

// RecordAnswer records one completed answer.
func (m *Metrics) RecordAnswer(ctx context.Context, mode Mode, retrieved int, generationTime time.Duration) {
	attrs := metric.WithAttributes(attribute.String("mode", string(mode)))
	if m.answersTotal != nil {
		m.answersTotal.Add(ctx, 1, attrs)
	}
	if m.generationDur != nil && generationTime > 0 {
		m.generationDur.Record(ctx, generationTime.Seconds(), attrs)
	}
	if m.retrievedHist != nil {
		m.retrievedHist.Record(ctx, int64(retrieved), attrs)
	}
}
