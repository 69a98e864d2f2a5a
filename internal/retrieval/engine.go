package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/valacy/retrieval/internal/embedding"
	"github.com/valacy/retrieval/internal/vectorstore"
)

// DefaultTopK is the default number of hits per retrieval call.
const DefaultTopK = 20

// Searcher is the slice of the vector store the engine needs.
type Searcher interface {
	VectorSearch(ctx context.Context, cfg vectorstore.QueryConfig, queryEmbedding []float32, k int) ([]vectorstore.VectorHit, error)
	KeywordSearch(ctx context.Context, cfg vectorstore.QueryConfig, queryText string, k int) ([]vectorstore.KeywordHit, error)
}

// Engine retrieves candidate chunks for one logical query/turn, accumulating
// them in its session buffer for a later rerank. Create a fresh Engine per
// turn; the buffer is never cleared implicitly and one instance must not be
// shared between concurrent turns.
type Engine struct {
	embedder embedding.Embedder
	store    Searcher
	cfg      vectorstore.QueryConfig
	session  *Session
}

// NewEngine creates an engine scoped to one organization and one chunk
// configuration.
func NewEngine(embedder embedding.Embedder, store Searcher, cfg vectorstore.QueryConfig) *Engine {
	return &Engine{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		session:  NewSession(),
	}
}

// Session exposes the accumulated buffer for the reranker.
func (e *Engine) Session() *Session {
	return e.session
}

// Retrieve embeds the query, runs nearest-neighbor search, appends the hits
// to the session buffer as enumerated lines, and returns the newly formatted
// block. Repeated calls continue the enumeration where the previous call left
// off.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) (string, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := e.store.VectorSearch(ctx, e.cfg, queryEmbedding, k)
	if err != nil {
		return "", fmt.Errorf("vector retrieval failed: %w", err)
	}

	var sb strings.Builder
	for _, hit := range hits {
		entry := e.session.Append(hit.DocID, hit.Text, hit.Meta)
		sb.WriteString(entry.Line())
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// KeywordRetrieve runs full-text search with the same formatting and
// accumulation contract as Retrieve.
func (e *Engine) KeywordRetrieve(ctx context.Context, query string, k int) (string, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	hits, err := e.store.KeywordSearch(ctx, e.cfg, query, k)
	if err != nil {
		return "", fmt.Errorf("keyword retrieval failed: %w", err)
	}

	var sb strings.Builder
	for _, hit := range hits {
		entry := e.session.Append(hit.DocID, hit.Text, e.keywordMeta())
		sb.WriteString(entry.Line())
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// HybridRetrieve combines both signals: nearest-neighbor hits first in
// distance order, then keyword-only hits, de-duplicated by (doc_id, text)
// identity and numbered as one contiguous block.
func (e *Engine) HybridRetrieve(ctx context.Context, query string, k int) (string, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	vectorHits, err := e.store.VectorSearch(ctx, e.cfg, queryEmbedding, k)
	if err != nil {
		return "", fmt.Errorf("vector retrieval failed: %w", err)
	}
	keywordHits, err := e.store.KeywordSearch(ctx, e.cfg, query, k)
	if err != nil {
		return "", fmt.Errorf("keyword retrieval failed: %w", err)
	}

	seen := make(map[string]bool, len(vectorHits)+len(keywordHits))
	var sb strings.Builder

	for _, hit := range vectorHits {
		key := hit.DocID + "\x00" + hit.Text
		if seen[key] {
			continue
		}
		seen[key] = true
		entry := e.session.Append(hit.DocID, hit.Text, hit.Meta)
		sb.WriteString(entry.Line())
		sb.WriteString("\n")
	}
	for _, hit := range keywordHits {
		key := hit.DocID + "\x00" + hit.Text
		if seen[key] {
			continue
		}
		seen[key] = true
		entry := e.session.Append(hit.DocID, hit.Text, e.keywordMeta())
		sb.WriteString(entry.Line())
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// keywordMeta synthesizes configuration metadata for keyword hits, which the
// store returns without their stored meta.
func (e *Engine) keywordMeta() map[string]string {
	return map[string]string{
		vectorstore.MetaEmbeddingModel:   e.cfg.EmbeddingModel,
		vectorstore.MetaSentenceSplitter: e.cfg.SentenceSplitter,
	}
}
