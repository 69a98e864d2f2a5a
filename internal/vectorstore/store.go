package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// Store is one dimension shard. Chunks whose vectors are dimension-wide live
// in the table vectors_<dimension>.
type Store struct {
	db        *DB
	dimension int
	table     string
}

// NewStore creates a shard handle for a supported dimension.
func NewStore(db *DB, dimension int) (*Store, error) {
	supported := false
	for _, d := range SupportedDimensions {
		if d == dimension {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDimension, dimension)
	}

	return &Store{
		db:        db,
		dimension: dimension,
		table:     fmt.Sprintf("vectors_%d", dimension),
	}, nil
}

// Dimension returns the shard's declared vector width.
func (s *Store) Dimension() int {
	return s.dimension
}

// Insert writes a batch of chunks and upserts the owning registry row in one
// transaction. Every row is validated first: a single dimension mismatch
// aborts the whole batch before anything touches the database, so there is
// never a partial insert. An existing registry row only has its updated_at
// refreshed.
func (s *Store) Insert(ctx context.Context, doc Document, rows []ChunkRow) error {
	for i, row := range rows {
		if err := row.Validate(s.dimension); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	docMeta, err := json.Marshal(doc.Meta)
	if err != nil {
		return fmt.Errorf("failed to marshal document meta: %w", err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	privilege := doc.SearchPrivilege
	if privilege == 0 {
		privilege = DefaultSearchPrivilege
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO documents (doc_id, filename, organization, path, search_privilege, description, meta, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (doc_id) DO UPDATE SET updated_at = now()
	`, doc.DocID, doc.Filename, doc.Organization, doc.Path, privilege, doc.Description, docMeta)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	batch := &pgx.Batch{}
	insertSQL := fmt.Sprintf(`
		INSERT INTO %s (doc_id, text, embedding, organization, meta)
		VALUES ($1, $2, $3, $4, $5)
	`, s.table)
	for _, row := range rows {
		chunkMeta, err := json.Marshal(row.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk meta: %w", err)
		}
		batch.Queue(insertSQL, doc.DocID, row.Text, pgvector.NewVector(row.Embedding), doc.Organization, chunkMeta)
	}

	results := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to flush chunk batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}
	return nil
}

// VectorSearch returns the k chunks nearest to queryEmbedding by cosine
// distance, scoped to the query configuration. Equal distances fall back to
// natural storage order.
func (s *Store) VectorSearch(ctx context.Context, cfg QueryConfig, queryEmbedding []float32, k int) ([]VectorHit, error) {
	if len(queryEmbedding) != s.dimension {
		return nil, fmt.Errorf("query embedding: %w: got %d, store is %d-dimensional", ErrDimensionMismatch, len(queryEmbedding), s.dimension)
	}

	query := fmt.Sprintf(`
		SELECT doc_id, text, meta, embedding <=> $1 AS distance
		FROM %s
		WHERE organization = $2
		  AND meta->>'embedding_model' = $3
		  AND meta->>'sentence_splitter' = $4
		ORDER BY embedding <=> $1
		LIMIT $5
	`, s.table)

	rows, err := s.db.Pool.Query(ctx, query,
		pgvector.NewVector(queryEmbedding), cfg.Organization, cfg.EmbeddingModel, cfg.SentenceSplitter, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var hits []VectorHit
	for rows.Next() {
		var hit VectorHit
		var metaJSON []byte
		if err := rows.Scan(&hit.DocID, &hit.Text, &metaJSON, &hit.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan vector hit: %w", err)
		}
		hit.Meta = make(map[string]string)
		if err := json.Unmarshal(metaJSON, &hit.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk meta: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	return hits, nil
}

// KeywordSearch returns up to k chunks whose text matches the query by
// full-text search, under the same configuration filter as VectorSearch.
func (s *Store) KeywordSearch(ctx context.Context, cfg QueryConfig, queryText string, k int) ([]KeywordHit, error) {
	query := fmt.Sprintf(`
		SELECT doc_id, text
		FROM %s
		WHERE organization = $1
		  AND meta->>'embedding_model' = $2
		  AND meta->>'sentence_splitter' = $3
		  AND to_tsvector('simple', text) @@ plainto_tsquery('simple', $4)
		LIMIT $5
	`, s.table)

	rows, err := s.db.Pool.Query(ctx, query,
		cfg.Organization, cfg.EmbeddingModel, cfg.SentenceSplitter, queryText, k)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	defer rows.Close()

	var hits []KeywordHit
	for rows.Next() {
		var hit KeywordHit
		if err := rows.Scan(&hit.DocID, &hit.Text); err != nil {
			return nil, fmt.Errorf("failed to scan keyword hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	return hits, nil
}

// DeleteDocument removes a document's chunks from this shard together with
// its registry row, in one transaction. Re-ingestion is modeled as delete
// then insert.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE doc_id = $1`, s.table), docID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE doc_id = $1`, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// Registry hands out shard handles keyed by dimension.
type Registry struct {
	stores map[int]*Store
}

// NewRegistry creates handles for every supported dimension.
func NewRegistry(db *DB) *Registry {
	stores := make(map[int]*Store, len(SupportedDimensions))
	for _, dim := range SupportedDimensions {
		store, _ := NewStore(db, dim)
		stores[dim] = store
	}
	return &Registry{stores: stores}
}

// Store returns the shard for the given dimension.
func (r *Registry) Store(dimension int) (*Store, error) {
	store, ok := r.stores[dimension]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDimension, dimension)
	}
	return store, nil
}
