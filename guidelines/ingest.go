package guidelines

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinref/medguide/ingestion"
)

// UploadMeta carries caller-supplied document information for an upload.
// Extracted PDF metadata takes precedence where present.
type UploadMeta struct {
	Title      string
	Source     string
	UploadedBy string
}

// IngestUpload extracts a raw PDF payload, registers it in the store, and
// returns the stored document. Extraction failure does not abort the caller:
// the document is stored empty and flagged, and the returned error wraps
// ingestion.ErrExtraction so the caller can surface the degraded status.
func IngestUpload(ctx context.Context, store Store, raw []byte, meta UploadMeta, logger *log.Logger) (Document, error) {
	if logger == nil {
		logger = log.Default()
	}

	doc := Document{
		ID:          uuid.NewString(),
		Title:       meta.Title,
		Source:      meta.Source,
		UploadedBy:  meta.UploadedBy,
		LastUpdated: time.Now().Format("Jan 2, 2006"),
	}
	if doc.Source == "" {
		doc.Source = "Internal Document"
	}

	extraction, extractErr := ingestion.ExtractPDF(raw)
	if extractErr != nil {
		logger.Printf("upload extraction failed: %v", extractErr)
		doc.Flagged = true
		if doc.Title == "" {
			doc.Title = "Uploaded Document"
		}
		if putErr := store.Put(ctx, doc); putErr != nil {
			return Document{}, fmt.Errorf("store flagged upload: %w", putErr)
		}
		return doc, extractErr
	}

	if extraction.Metadata.Title != "" {
		doc.Title = extraction.Metadata.Title
	}
	if doc.Title == "" {
		doc.Title = "Uploaded Document"
	}

	doc.Pages = make([]string, extraction.PageCount)
	for num := 1; num <= extraction.PageCount; num++ {
		doc.Pages[num-1] = extraction.Pages[num]
	}

	if err := store.Put(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}

	logger.Printf("ingested upload %s (%d pages)", doc.ID, doc.PageCount())
	return doc, nil
}

// IngestDirectory walks dir for markdown guideline documents and registers each
// in the store. Individual file failures are logged and skipped.
func IngestDirectory(ctx context.Context, store Store, dir string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("data directory: %w", err)
	}

	entries := make([]string, 0)
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if ingestion.DetectFormat(d.Name()) == ingestion.FormatMarkdown {
			entries = append(entries, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk data directory: %w", err)
	}

	if len(entries) == 0 {
		logger.Printf("no markdown files found in %s", dir)
		return nil
	}

	for _, path := range entries {
		if err := ingestFile(ctx, store, path, logger); err != nil {
			logger.Printf("ingest failed for %s: %v", path, err)
		}
	}

	return nil
}

func ingestFile(ctx context.Context, store Store, path string, logger *log.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	content := ingestion.NormalizePlainText(string(data))
	if strings.TrimSpace(content) == "" {
		logger.Printf("skip empty document %s", path)
		return nil
	}

	doc := Document{
		ID:          uuid.NewString(),
		Title:       ingestion.ExtractTitle(content, filepath.Base(path)),
		Source:      "Internal Document",
		LastUpdated: time.Now().Format("Jan 2006"),
		Pages:       []string{content},
	}

	if err := store.Put(ctx, doc); err != nil {
		return fmt.Errorf("store document: %w", err)
	}

	logger.Printf("ingested %s", path)
	return nil
}
