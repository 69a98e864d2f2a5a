package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valacy/retrieval/internal/vectorstore"
)

type fakeEmbedder struct {
	dimension int
	calls     int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return make([]float32, f.dimension), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dimension)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int    { return f.dimension }
func (f *fakeEmbedder) ModelName() string { return "FakeEmbedding" }

type fakeSearcher struct {
	vectorHits  []vectorstore.VectorHit
	keywordHits []vectorstore.KeywordHit
	lastCfg     vectorstore.QueryConfig
	lastK       int
}

func (f *fakeSearcher) VectorSearch(ctx context.Context, cfg vectorstore.QueryConfig, queryEmbedding []float32, k int) ([]vectorstore.VectorHit, error) {
	f.lastCfg = cfg
	f.lastK = k
	return f.vectorHits, nil
}

func (f *fakeSearcher) KeywordSearch(ctx context.Context, cfg vectorstore.QueryConfig, queryText string, k int) ([]vectorstore.KeywordHit, error) {
	f.lastCfg = cfg
	return f.keywordHits, nil
}

func testConfig() vectorstore.QueryConfig {
	return vectorstore.QueryConfig{
		Organization:     "acme",
		EmbeddingModel:   "FakeEmbedding",
		SentenceSplitter: "SentenceWindow",
	}
}

func hits(texts ...string) []vectorstore.VectorHit {
	out := make([]vectorstore.VectorHit, len(texts))
	for i, text := range texts {
		out[i] = vectorstore.VectorHit{
			DocID: "doc-1",
			Text:  text,
			Meta:  map[string]string{"embedding_model": "FakeEmbedding"},
		}
	}
	return out
}

func TestEngine_RetrieveEnumeratesHits(t *testing.T) {
	store := &fakeSearcher{vectorHits: hits("first chunk.", "second chunk.")}
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, testConfig())

	block, err := engine.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	assert.Equal(t, "1. first chunk.\n2. second chunk.\n", block)
	assert.Equal(t, 2, engine.Session().Len())
}

func TestEngine_EnumerationContinuesAcrossCalls(t *testing.T) {
	store := &fakeSearcher{vectorHits: hits("a.", "b.", "c.")}
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, testConfig())

	_, err := engine.Retrieve(context.Background(), "first query", 5)
	require.NoError(t, err)

	store.vectorHits = hits("d.", "e.")
	block, err := engine.Retrieve(context.Background(), "second query", 5)
	require.NoError(t, err)

	// The second block continues numbering where the first left off.
	assert.Equal(t, "4. d.\n5. e.\n", block)
	assert.Equal(t, 5, engine.Session().Len())
}

func TestEngine_RetrieveCleansText(t *testing.T) {
	store := &fakeSearcher{vectorHits: hits("# Heading\nbody text.")}
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, testConfig())

	block, err := engine.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	assert.NotContains(t, block[3:], "#")
	assert.Equal(t, 1, strings.Count(block, "\n"), "one line per hit")
}

func TestEngine_RetrievePassesScope(t *testing.T) {
	store := &fakeSearcher{}
	cfg := testConfig()
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, cfg)

	_, err := engine.Retrieve(context.Background(), "query", 7)
	require.NoError(t, err)

	assert.Equal(t, cfg, store.lastCfg)
	assert.Equal(t, 7, store.lastK)
}

func TestEngine_RetrieveDefaultsK(t *testing.T) {
	store := &fakeSearcher{}
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, testConfig())

	_, err := engine.Retrieve(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, store.lastK)
}

func TestEngine_KeywordRetrieveSynthesizesMeta(t *testing.T) {
	store := &fakeSearcher{keywordHits: []vectorstore.KeywordHit{
		{DocID: "doc-2", Text: "keyword match."},
	}}
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, testConfig())

	block, err := engine.KeywordRetrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	assert.Equal(t, "1. keyword match.\n", block)
	entry, ok := engine.Session().Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "FakeEmbedding", entry.Meta[vectorstore.MetaEmbeddingModel])
	assert.Equal(t, "SentenceWindow", entry.Meta[vectorstore.MetaSentenceSplitter])
}

func TestEngine_HybridRetrieveDeduplicates(t *testing.T) {
	store := &fakeSearcher{
		vectorHits: []vectorstore.VectorHit{
			{DocID: "doc-1", Text: "shared chunk.", Distance: 0.1},
			{DocID: "doc-1", Text: "vector only.", Distance: 0.2},
		},
		keywordHits: []vectorstore.KeywordHit{
			{DocID: "doc-1", Text: "shared chunk."},
			{DocID: "doc-2", Text: "keyword only."},
		},
	}
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, testConfig())

	block, err := engine.HybridRetrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	// Vector hits first in distance order, then keyword-only hits, one
	// contiguous numbering, no duplicate of the shared chunk.
	assert.Equal(t, "1. shared chunk.\n2. vector only.\n3. keyword only.\n", block)
	assert.Equal(t, 3, engine.Session().Len())
}

func TestEngine_HybridSameTextDifferentDocsKept(t *testing.T) {
	store := &fakeSearcher{
		vectorHits: []vectorstore.VectorHit{
			{DocID: "doc-1", Text: "same words."},
		},
		keywordHits: []vectorstore.KeywordHit{
			{DocID: "doc-2", Text: "same words."},
		},
	}
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, testConfig())

	block, err := engine.HybridRetrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	// Identity is (doc_id, text): the same text from another document is a
	// distinct candidate.
	assert.Equal(t, "1. same words.\n2. same words.\n", block)
}

func TestEngine_EmptyResults(t *testing.T) {
	store := &fakeSearcher{}
	engine := NewEngine(&fakeEmbedder{dimension: 4}, store, testConfig())

	block, err := engine.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Empty(t, block)
	assert.True(t, engine.Session().Empty())
}
