package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aktuarialabs/docchat/internal/config"
)

func TestNewStore_Chromem(t *testing.T) {
	store, err := NewStore(config.VectorStoreConfig{
		Provider: "chromem",
		Chromem: config.ChromemConfig{
			Path:       t.TempDir(),
			Collection: "test",
			VectorSize: 8,
		},
	}, &testEmbedder{dim: 8}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ChromemStore{}, store)
	assert.NoError(t, store.Close())
}

func TestNewStore_EmptyProviderDefaultsToChromem(t *testing.T) {
	store, err := NewStore(config.VectorStoreConfig{
		Chromem: config.ChromemConfig{Path: t.TempDir(), VectorSize: 8},
	}, &testEmbedder{dim: 8}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ChromemStore{}, store)
}

func TestNewStore_UnknownProvider(t *testing.T) {
	_, err := NewStore(config.VectorStoreConfig{Provider: "pinecone"}, &testEmbedder{dim: 8}, nil)
	assert.Error(t, err)
}
