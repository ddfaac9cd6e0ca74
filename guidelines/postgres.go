package guidelines

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a durable Store for multi-process deployments. The
// in-memory store stays the default; schema setup is the caller's concern via
// database.EnsureGuidelineSchema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Document, error) {
	if s.pool == nil {
		return Document{}, fmt.Errorf("postgres pool is nil")
	}

	var doc Document
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, COALESCE(source, ''), COALESCE(uploaded_by, ''), COALESCE(last_updated, ''), flagged
		FROM guideline_documents
		WHERE id = $1
	`, id).Scan(&doc.ID, &doc.Title, &doc.Source, &doc.UploadedBy, &doc.LastUpdated, &doc.Flagged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Document{}, fmt.Errorf("query document: %w", err)
	}

	pages, err := s.loadPages(ctx, id)
	if err != nil {
		return Document{}, err
	}
	doc.Pages = pages
	return doc, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Document, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, COALESCE(source, ''), COALESCE(uploaded_by, ''), COALESCE(last_updated, ''), flagged
		FROM guideline_documents
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var doc Document
		if scanErr := rows.Scan(&doc.ID, &doc.Title, &doc.Source, &doc.UploadedBy, &doc.LastUpdated, &doc.Flagged); scanErr != nil {
			return nil, fmt.Errorf("scan document: %w", scanErr)
		}
		docs = append(docs, doc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range docs {
		pages, pagesErr := s.loadPages(ctx, docs[i].ID)
		if pagesErr != nil {
			return nil, pagesErr
		}
		docs[i].Pages = pages
	}

	return docs, nil
}

func (s *PostgresStore) Put(ctx context.Context, doc Document) (err error) {
	if s.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if doc.ID == "" {
		return fmt.Errorf("document id cannot be empty")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO guideline_documents (id, title, source, uploaded_by, last_updated, flagged, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    source = EXCLUDED.source,
		    uploaded_by = EXCLUDED.uploaded_by,
		    last_updated = EXCLUDED.last_updated,
		    flagged = EXCLUDED.flagged,
		    updated_at = NOW()
	`, doc.ID, doc.Title, doc.Source, doc.UploadedBy, doc.LastUpdated, doc.Flagged); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	if _, err = tx.Exec(ctx, "DELETE FROM guideline_pages WHERE document_id = $1", doc.ID); err != nil {
		return fmt.Errorf("clear existing pages: %w", err)
	}

	for idx, content := range doc.Pages {
		if _, err = tx.Exec(ctx, `
			INSERT INTO guideline_pages (document_id, page_number, content)
			VALUES ($1, $2, $3)
		`, doc.ID, idx+1, content); err != nil {
			return fmt.Errorf("insert page %d: %w", idx+1, err)
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return fmt.Errorf("commit transaction: %w", commitErr)
	}
	return nil
}

func (s *PostgresStore) loadPages(ctx context.Context, docID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT content
		FROM guideline_pages
		WHERE document_id = $1
		ORDER BY page_number
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	pages := make([]string, 0)
	for rows.Next() {
		var content string
		if scanErr := rows.Scan(&content); scanErr != nil {
			return nil, fmt.Errorf("scan page: %w", scanErr)
		}
		pages = append(pages, content)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return pages, nil
}

var _ Store = (*PostgresStore)(nil)
