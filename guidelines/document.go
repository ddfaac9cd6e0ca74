// Package guidelines owns the guideline document corpus: a typed document
// model, store implementations, and upload ingestion.
package guidelines

import "strings"

// Document is a guideline document. Pages hold extracted page texts in order;
// page numbers are 1-indexed. Documents are immutable after ingestion and
// retired only by removal from the store.
type Document struct {
	ID          string
	Title       string
	Source      string
	UploadedBy  string
	LastUpdated string
	Pages       []string

	// Flagged marks a document whose extraction failed; its text is empty.
	Flagged bool
}

// PageCount returns the number of pages in the document.
func (d Document) PageCount() int {
	return len(d.Pages)
}

// PageText returns the 1-indexed page text, and whether the page exists.
func (d Document) PageText(num int) (string, bool) {
	if num < 1 || num > len(d.Pages) {
		return "", false
	}
	return d.Pages[num-1], true
}

// FullText returns the concatenated text of every page.
func (d Document) FullText() string {
	return strings.Join(d.Pages, "\n\n")
}
