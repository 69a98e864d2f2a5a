package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DocumentRepo provides registry access outside the insert path. Chunk writes
// go through Store.Insert, which upserts the registry row itself.
type DocumentRepo struct {
	db *DB
}

// NewDocumentRepo creates a new document registry repository.
func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = `doc_id, filename, organization, path, search_privilege, description, meta, created_at, updated_at`

// GetByDocID retrieves a registry entry by its doc_id.
func (r *DocumentRepo) GetByDocID(ctx context.Context, docID string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE doc_id = $1`

	var doc Document
	var metaJSON []byte
	err := r.db.Pool.QueryRow(ctx, query, docID).Scan(
		&doc.DocID, &doc.Filename, &doc.Organization, &doc.Path,
		&doc.SearchPrivilege, &doc.Description, &metaJSON,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.Meta = make(map[string]string)
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &doc.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document meta: %w", err)
		}
	}

	return &doc, nil
}

// List retrieves an organization's documents with pagination, newest first.
func (r *DocumentRepo) List(ctx context.Context, organization string, limit, offset int) ([]*Document, int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE organization = $1`, organization).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE organization = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool.Query(ctx, query, organization, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var doc Document
		var metaJSON []byte
		if err := rows.Scan(&doc.DocID, &doc.Filename, &doc.Organization, &doc.Path,
			&doc.SearchPrivilege, &doc.Description, &metaJSON,
			&doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Meta = make(map[string]string)
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &doc.Meta); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal document meta: %w", err)
			}
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, total, nil
}

// Update rewrites a document's registry metadata. Chunks are immutable; only
// the registry entry can be edited, and updated_at is refreshed on every
// write.
func (r *DocumentRepo) Update(ctx context.Context, doc *Document) error {
	metaJSON, err := json.Marshal(doc.Meta)
	if err != nil {
		return fmt.Errorf("failed to marshal document meta: %w", err)
	}

	query := `
		UPDATE documents
		SET filename = $2, path = $3, search_privilege = $4, description = $5, meta = $6, updated_at = now()
		WHERE doc_id = $1
	`
	result, err := r.db.Pool.Exec(ctx, query,
		doc.DocID, doc.Filename, doc.Path, doc.SearchPrivilege, doc.Description, metaJSON)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the registry row only. Use Store.DeleteDocument to remove a
// document together with its chunks.
func (r *DocumentRepo) Delete(ctx context.Context, docID string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM documents WHERE doc_id = $1`, docID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
