// Package ingestion orchestrates the write path: splitting raw document text
// into chunks, embedding them, projecting the vectors to the target dimension
// shard, and persisting chunks plus the registry entry in one transaction.
package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valacy/retrieval/internal/chunker"
	"github.com/valacy/retrieval/internal/embedding"
	"github.com/valacy/retrieval/internal/vectorstore"
)

// DocumentInput describes one document to ingest.
type DocumentInput struct {
	// DocID is the stable document identity. Empty means a fresh UUID is
	// assigned.
	DocID string

	// Filename is the human-facing name recorded in the registry.
	Filename string

	// Organization scopes the document and all its chunks.
	Organization string

	// Path is where the source file lives (local path or object key).
	Path string

	// SearchPrivilege gates retrieval access. Zero means the permissive
	// default.
	SearchPrivilege int

	// Description is free-form registry text.
	Description string

	// Content is the raw document text.
	Content string
}

// Result summarizes one completed ingestion.
type Result struct {
	DocID       string
	ContentHash string
	Stats       Stats
}

// Stats contains processing statistics for one document.
type Stats struct {
	OriginalLength int
	ChunkCount     int
	EmbedTime      time.Duration
	TotalTime      time.Duration
}

// Pipeline ties a splitter, an embedder, and a dimension shard together. The
// shard width may be narrower than the model width; vectors are then sliced
// and re-normalized before storage.
type Pipeline struct {
	splitter chunker.Splitter
	embedder embedding.Embedder
	store    *vectorstore.Store
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates an ingestion pipeline writing to the given shard.
func NewPipeline(splitter chunker.Splitter, embedder embedding.Embedder, store *vectorstore.Store, opts ...Option) (*Pipeline, error) {
	if store.Dimension() > embedder.Dimension() {
		return nil, fmt.Errorf("store dimension %d exceeds model dimension %d", store.Dimension(), embedder.Dimension())
	}
	p := &Pipeline{
		splitter: splitter,
		embedder: embedder,
		store:    store,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Ingest processes one document end to end. Chunks that embed to the wrong
// width abort the whole document before anything is written.
func (p *Pipeline) Ingest(ctx context.Context, input DocumentInput) (*Result, error) {
	startTime := time.Now()

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, fmt.Errorf("content cannot be empty")
	}
	if input.Organization == "" {
		return nil, fmt.Errorf("organization cannot be empty")
	}

	docID := input.DocID
	if docID == "" {
		docID = uuid.NewString()
	}
	contentHash := hashContent(content)

	texts := p.splitter.Split(content)
	if len(texts) == 0 {
		return nil, fmt.Errorf("splitter produced no chunks")
	}

	embedStart := time.Now()
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	embedTime := time.Since(embedStart)
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	rows := make([]vectorstore.ChunkRow, len(texts))
	for i, text := range texts {
		rows[i] = vectorstore.ChunkRow{
			Text:      text,
			Embedding: p.project(vectors[i]),
			Meta:      p.chunkMeta(),
		}
	}

	doc := vectorstore.Document{
		DocID:           docID,
		Filename:        input.Filename,
		Organization:    input.Organization,
		Path:            input.Path,
		SearchPrivilege: input.SearchPrivilege,
		Description:     input.Description,
		Meta: map[string]string{
			"content_hash": contentHash,
		},
	}
	if doc.SearchPrivilege == 0 {
		doc.SearchPrivilege = vectorstore.DefaultSearchPrivilege
	}

	if err := p.store.Insert(ctx, doc, rows); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	result := &Result{
		DocID:       docID,
		ContentHash: contentHash,
		Stats: Stats{
			OriginalLength: len(content),
			ChunkCount:     len(rows),
			EmbedTime:      embedTime,
			TotalTime:      time.Since(startTime),
		},
	}

	p.logger.Info("document ingested",
		"doc_id", docID,
		"organization", input.Organization,
		"chunks", result.Stats.ChunkCount,
		"embed_time", embedTime,
		"total_time", result.Stats.TotalTime)

	return result, nil
}

// IngestFragments ingests pre-parsed paragraph fragments through a
// ParagraphMerger, preserving page numbers and rendered table/image
// references. The rendered form is what gets stored and later displayed; the
// plain text form is what gets embedded.
func (p *Pipeline) IngestFragments(ctx context.Context, input DocumentInput, fragments []chunker.Fragment) (*Result, error) {
	merger, ok := p.splitter.(*chunker.ParagraphMerger)
	if !ok {
		return nil, fmt.Errorf("fragment ingestion requires the %s strategy, pipeline uses %s", chunker.ParagraphMergeTag, p.splitter.Tag())
	}
	if input.Organization == "" {
		return nil, fmt.Errorf("organization cannot be empty")
	}

	startTime := time.Now()

	chunks := merger.Merge(fragments)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced from %d fragments", len(fragments))
	}

	docID := input.DocID
	if docID == "" {
		docID = uuid.NewString()
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embedStart := time.Now()
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	embedTime := time.Since(embedStart)
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	rows := make([]vectorstore.ChunkRow, len(chunks))
	for i, c := range chunks {
		meta := p.chunkMeta()
		meta[vectorstore.MetaPage] = strconv.Itoa(c.Page)
		rows[i] = vectorstore.ChunkRow{
			Text:      c.Rendered,
			Embedding: p.project(vectors[i]),
			Meta:      meta,
		}
	}

	doc := vectorstore.Document{
		DocID:           docID,
		Filename:        input.Filename,
		Organization:    input.Organization,
		Path:            input.Path,
		SearchPrivilege: input.SearchPrivilege,
		Description:     input.Description,
		Meta:            map[string]string{},
	}
	if doc.SearchPrivilege == 0 {
		doc.SearchPrivilege = vectorstore.DefaultSearchPrivilege
	}

	if err := p.store.Insert(ctx, doc, rows); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	result := &Result{
		DocID: docID,
		Stats: Stats{
			ChunkCount: len(rows),
			EmbedTime:  embedTime,
			TotalTime:  time.Since(startTime),
		},
	}

	p.logger.Info("fragments ingested",
		"doc_id", docID,
		"organization", input.Organization,
		"fragments", len(fragments),
		"chunks", result.Stats.ChunkCount,
		"total_time", result.Stats.TotalTime)

	return result, nil
}

// project narrows a model-width vector to the shard width. A same-width shard
// stores the vector untouched.
func (p *Pipeline) project(vec []float32) []float32 {
	if len(vec) == p.store.Dimension() {
		return vec
	}
	return embedding.SlicedNormL2(vec, p.store.Dimension())
}

// chunkMeta builds the per-chunk configuration metadata retrieval filters on.
func (p *Pipeline) chunkMeta() map[string]string {
	return map[string]string{
		vectorstore.MetaEmbeddingModel:   p.embedder.ModelName(),
		vectorstore.MetaSentenceSplitter: p.splitter.Tag(),
	}
}

// hashContent generates a SHA-256 hash of the content.
func hashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
