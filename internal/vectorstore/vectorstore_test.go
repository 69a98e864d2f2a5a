package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow(dim int) ChunkRow {
	return ChunkRow{
		Text:      "chunk text",
		Embedding: make([]float32, dim),
		Meta: map[string]string{
			MetaEmbeddingModel:   "LocalEmbedding",
			MetaSentenceSplitter: "SentenceWindow",
		},
	}
}

func TestChunkRowValidate(t *testing.T) {
	assert.NoError(t, validRow(512).Validate(512))
}

func TestChunkRowValidate_DimensionMismatch(t *testing.T) {
	row := validRow(512)
	err := row.Validate(1024)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestChunkRowValidate_MissingMeta(t *testing.T) {
	row := validRow(512)
	row.Meta = map[string]string{MetaSentenceSplitter: "SentenceWindow"}
	assert.Error(t, row.Validate(512))

	row.Meta = map[string]string{MetaEmbeddingModel: "LocalEmbedding"}
	assert.Error(t, row.Validate(512))

	row.Meta = nil
	assert.Error(t, row.Validate(512))
}

func TestNewStore_SupportedDimensions(t *testing.T) {
	for _, dim := range SupportedDimensions {
		store, err := NewStore(nil, dim)
		require.NoError(t, err, "dimension %d", dim)
		assert.Equal(t, dim, store.Dimension())
	}
}

func TestNewStore_UnsupportedDimension(t *testing.T) {
	for _, dim := range []int{0, -1, 100, 4096} {
		_, err := NewStore(nil, dim)
		require.Error(t, err, "dimension %d", dim)
		assert.ErrorIs(t, err, ErrUnsupportedDimension)
	}
}

func TestInsert_AbortsOnBadRowBeforeTransaction(t *testing.T) {
	// A nil DB would panic on any pool access: reaching the error return
	// proves validation rejects the batch before the transaction begins.
	store, err := NewStore(nil, 512)
	require.NoError(t, err)

	rows := []ChunkRow{validRow(512), validRow(768)}
	err = store.Insert(context.Background(), Document{DocID: "doc-1", Organization: "acme"}, rows)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "chunk 1")
}

func TestVectorSearch_RejectsWrongWidthQuery(t *testing.T) {
	store, err := NewStore(nil, 512)
	require.NoError(t, err)

	_, err = store.VectorSearch(context.Background(), QueryConfig{Organization: "acme"}, make([]float32, 768), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(nil)

	for _, dim := range SupportedDimensions {
		store, err := registry.Store(dim)
		require.NoError(t, err)
		assert.Equal(t, dim, store.Dimension())
	}

	_, err := registry.Store(999)
	assert.ErrorIs(t, err, ErrUnsupportedDimension)
}
