package vectorstore

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aktuarialabs/docchat/internal/config"
)

// NewStore creates a Store based on the configuration.
//
// The factory examines VectorStoreConfig.Provider and creates the
// appropriate implementation:
//   - "chromem" (default): embedded ChromemStore, persists to a local
//     directory, no external services
//   - "qdrant": QdrantStore, requires a running Qdrant server
//
// Example usage:
//
//	cfg, err := config.Load(path)
//	store, err := vectorstore.NewStore(cfg.VectorStore, embedder, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
func NewStore(cfg config.VectorStoreConfig, embedder Embedder, logger *zap.Logger) (Store, error) {
	switch cfg.Provider {
	case "chromem", "":
		return NewChromemStore(ChromemConfig{
			Path:       cfg.Chromem.Path,
			Compress:   cfg.Chromem.Compress,
			Collection: cfg.Chromem.Collection,
			VectorSize: cfg.Chromem.VectorSize,
		}, embedder, logger)

	case "qdrant":
		return NewQdrantStore(QdrantConfig{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			Collection: cfg.Qdrant.Collection,
			VectorSize: uint64(cfg.Qdrant.VectorSize),
			UseTLS:     cfg.Qdrant.UseTLS,
		}, embedder, logger)

	default:
		return nil, fmt.Errorf("unsupported vectorstore provider: %s (supported: chromem, qdrant)", cfg.Provider)
	}
}
