package retrieval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresStore retrieves documents from the documents table with a simple
// substring search.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a Postgres-backed document store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Retrieve finds documents matching the query and formats them as reference
// context. No matches is not an error: ok is false and the caller omits the
// side-data block.
func (s *PostgresStore) Retrieve(ctx context.Context, query string) (string, bool, error) {
	var docs []Document

	sqlQuery := `
		SELECT id, title, content, module, created_at
		FROM documents
		WHERE title ILIKE '%' || $1 || '%'
			OR content ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2
	`

	if err := s.db.SelectContext(ctx, &docs, sqlQuery, query, maxResults); err != nil {
		return "", false, fmt.Errorf("failed to search documents: %w", err)
	}

	if len(docs) == 0 {
		return "", false, nil
	}
	return FormatContext(docs), true, nil
}

// Add stores a document and returns its id.
func (s *PostgresStore) Add(ctx context.Context, doc Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	query := `
		INSERT INTO documents (id, title, content, module)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.ExecContext(ctx, query, doc.ID, doc.Title, doc.Content, doc.Module); err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}
	return doc.ID, nil
}

// List returns the most recently added documents.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Document, error) {
	var docs []Document

	query := `
		SELECT id, title, content, module, created_at
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1
	`

	if err := s.db.SelectContext(ctx, &docs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}
