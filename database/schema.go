package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureGuidelineSchema creates the guideline document tables when missing.
func EnsureGuidelineSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS guideline_documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			source TEXT,
			uploaded_by TEXT,
			last_updated TEXT,
			flagged BOOLEAN NOT NULL DEFAULT FALSE,
			position BIGSERIAL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS guideline_pages (
			document_id TEXT NOT NULL REFERENCES guideline_documents(id) ON DELETE CASCADE,
			page_number INT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (document_id, page_number)
		)`,
		"CREATE INDEX IF NOT EXISTS idx_guideline_pages_document ON guideline_pages(document_id)",
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}
