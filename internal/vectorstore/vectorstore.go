// Package vectorstore persists document chunks and their embeddings in
// dimension-sharded pgvector tables, alongside a document registry keyed by
// doc_id. All queries are scoped by organization plus the metadata fields
// identifying the configuration that produced the chunks.
package vectorstore

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDimensionMismatch is returned when an embedding's length disagrees with
// the target shard's declared width. The whole batch is aborted; vectors are
// never truncated or padded silently.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ErrUnsupportedDimension is returned for dimensions without a backing shard.
var ErrUnsupportedDimension = errors.New("unsupported embedding dimension")

// SupportedDimensions lists the vector widths with a physical table. A single
// table cannot mix widths, so each gets its own shard.
var SupportedDimensions = []int{512, 768, 1024, 1536, 1792, 2048}

// Chunk metadata keys. Every stored chunk must carry both; retrieval filters
// on them so that only chunks produced by one configuration are compared.
const (
	MetaEmbeddingModel   = "embedding_model"
	MetaSentenceSplitter = "sentence_splitter"
	MetaPage             = "page_number"
)

// DefaultSearchPrivilege is the permissive default access level for new
// documents.
const DefaultSearchPrivilege = 100

// Document is a registry entry. A document may exist with zero or more
// associated chunks; doc_id is its stable, globally unique identity.
type Document struct {
	DocID           string
	Filename        string
	Organization    string
	Path            string
	SearchPrivilege int
	Description     string
	Meta            map[string]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ChunkRow is one chunk to insert: literal text, its embedding, and the
// configuration metadata.
type ChunkRow struct {
	Text      string
	Embedding []float32
	Meta      map[string]string
}

// Validate checks the row against the shard width and the metadata contract.
func (r ChunkRow) Validate(dimension int) error {
	if len(r.Embedding) != dimension {
		return fmt.Errorf("%w: got %d, store is %d-dimensional", ErrDimensionMismatch, len(r.Embedding), dimension)
	}
	if r.Meta[MetaEmbeddingModel] == "" {
		return fmt.Errorf("chunk meta missing %s", MetaEmbeddingModel)
	}
	if r.Meta[MetaSentenceSplitter] == "" {
		return fmt.Errorf("chunk meta missing %s", MetaSentenceSplitter)
	}
	return nil
}

// VectorHit is one nearest-neighbor result, ordered by ascending cosine
// distance.
type VectorHit struct {
	DocID    string
	Text     string
	Meta     map[string]string
	Distance float64
}

// KeywordHit is one full-text search result.
type KeywordHit struct {
	DocID string
	Text  string
}

// QueryConfig names the chunk-producing configuration a query is scoped to.
// Mixing configurations returns semantically incoherent results, so every
// search filters on all three fields, never organization alone.
type QueryConfig struct {
	Organization     string
	EmbeddingModel   string
	SentenceSplitter string
}
