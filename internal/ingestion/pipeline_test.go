package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valacy/retrieval/internal/chunker"
	"github.com/valacy/retrieval/internal/embedding"
	"github.com/valacy/retrieval/internal/vectorstore"
)

type fixedEmbedder struct {
	dimension int
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, f.dimension), nil
}

func (f *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dimension)
	}
	return out, nil
}

func (f *fixedEmbedder) Dimension() int    { return f.dimension }
func (f *fixedEmbedder) ModelName() string { return "FixedEmbedding" }

var _ embedding.Embedder = (*fixedEmbedder)(nil)

func testStore(t *testing.T, dim int) *vectorstore.Store {
	t.Helper()
	store, err := vectorstore.NewStore(nil, dim)
	require.NoError(t, err)
	return store
}

func TestNewPipeline_RejectsWiderStore(t *testing.T) {
	splitter := chunker.NewSentenceSplitter(0, 0)
	_, err := NewPipeline(splitter, &fixedEmbedder{dimension: 512}, testStore(t, 1024))
	assert.Error(t, err, "store wider than the model cannot be filled")
}

func TestNewPipeline_AllowsNarrowerStore(t *testing.T) {
	splitter := chunker.NewSentenceSplitter(0, 0)
	_, err := NewPipeline(splitter, &fixedEmbedder{dimension: 2048}, testStore(t, 512))
	assert.NoError(t, err)
}

func TestIngest_RejectsEmptyContent(t *testing.T) {
	splitter := chunker.NewSentenceSplitter(0, 0)
	pipeline, err := NewPipeline(splitter, &fixedEmbedder{dimension: 512}, testStore(t, 512))
	require.NoError(t, err)

	_, err = pipeline.Ingest(context.Background(), DocumentInput{
		Organization: "acme",
		Content:      "   \n  ",
	})
	assert.Error(t, err)
}

func TestIngest_RequiresOrganization(t *testing.T) {
	splitter := chunker.NewSentenceSplitter(0, 0)
	pipeline, err := NewPipeline(splitter, &fixedEmbedder{dimension: 512}, testStore(t, 512))
	require.NoError(t, err)

	_, err = pipeline.Ingest(context.Background(), DocumentInput{
		Content: "Some document text.",
	})
	assert.Error(t, err)
}

func TestIngestFragments_RequiresParagraphMerger(t *testing.T) {
	splitter := chunker.NewSentenceSplitter(0, 0)
	pipeline, err := NewPipeline(splitter, &fixedEmbedder{dimension: 512}, testStore(t, 512))
	require.NoError(t, err)

	_, err = pipeline.IngestFragments(context.Background(), DocumentInput{
		Organization: "acme",
	}, []chunker.Fragment{{Text: "a paragraph."}})
	assert.Error(t, err)
}

func TestHashContent_Stable(t *testing.T) {
	assert.Equal(t, hashContent("same input"), hashContent("same input"))
	assert.NotEqual(t, hashContent("one"), hashContent("two"))
	assert.Len(t, hashContent("x"), 64)
}
