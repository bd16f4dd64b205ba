// Package ingest validates uploaded documents and indexes their passages.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aktuarialabs/docchat/internal/chunker"
	"github.com/aktuarialabs/docchat/internal/vectorstore"
)

// ErrValidation indicates a file that cannot be ingested. Validation
// failures are reported per file and never retried.
var ErrValidation = errors.New("validation failed")

// FileResult reports the outcome of ingesting one file.
type FileResult struct {
	Filename string `json:"filename"`
	Size     string `json:"size,omitempty"`
	Chunks   int    `json:"chunks"`
	Error    string `json:"error,omitempty"`
}

// Service chunks validated markdown files and inserts the passages into
// the similarity index. Stateless apart from its dependencies.
type Service struct {
	chunker *chunker.Chunker
	store   vectorstore.Store
	logger  *zap.Logger
}

// NewService creates an ingestion service.
func NewService(ch *chunker.Chunker, store vectorstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chunker: ch,
		store:   store,
		logger:  logger,
	}
}

// ValidateFile checks that the file exists, is markdown, and has non-empty
// content. This must pass before chunking; empty or whitespace-only content
// never reaches the chunker.
func (s *Service) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: file does not exist: %s", ErrValidation, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: not a regular file: %s", ErrValidation, path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".md") {
		return fmt.Errorf("%w: not a markdown file: %s", ErrValidation, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: file not readable: %s", ErrValidation, path)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return fmt.Errorf("%w: file is empty: %s", ErrValidation, path)
	}

	return nil
}

// IngestFile validates, chunks and indexes one file under a session.
//
// Re-ingesting the same content creates an independent passage set; no
// deduplication is attempted.
func (s *Service) IngestFile(ctx context.Context, path, sessionID string) (*FileResult, error) {
	filename := filepath.Base(path)
	result := &FileResult{Filename: filename}

	if err := s.ValidateFile(path); err != nil {
		result.Error = err.Error()
		return result, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("%w: reading %s: %v", ErrValidation, path, err)
	}
	result.Size = humanFileSize(int64(len(content)))

	passages, err := s.chunker.Split(string(content), path, sessionID)
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("chunking %s: %w", filename, err)
	}

	docs := make([]vectorstore.Document, len(passages))
	for i, p := range passages {
		docs[i] = vectorstore.Document{
			ID:       uuid.New().String(),
			Content:  p.Content,
			Metadata: p.Metadata,
		}
	}

	if _, err := s.store.AddDocuments(ctx, docs); err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("indexing %s: %w", filename, err)
	}

	result.Chunks = len(passages)

	s.logger.Info("document ingested",
		zap.String("filename", filename),
		zap.String("session_id", sessionID),
		zap.Int("chunks", len(passages)),
	)

	return result, nil
}

// IngestFiles ingests multiple files, reporting a structured result per
// file. A failing file does not abort the batch.
func (s *Service) IngestFiles(ctx context.Context, paths []string, sessionID string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		result, err := s.IngestFile(ctx, path, sessionID)
		if err != nil {
			s.logger.Warn("file ingestion failed",
				zap.String("path", path),
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
		results = append(results, *result)
	}
	return results
}

// humanFileSize renders a byte count for upload reporting.
func humanFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}
