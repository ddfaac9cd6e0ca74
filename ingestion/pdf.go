package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// ErrExtraction reports that a document payload could not be parsed. Callers
// are expected to degrade into an empty, flagged document rather than fail.
var ErrExtraction = errors.New("document extraction failed")

// Metadata carries best-effort PDF document information; every field may be empty.
type Metadata struct {
	Title            string
	Author           string
	Subject          string
	Creator          string
	Producer         string
	CreationDate     string
	ModificationDate string
}

// Extraction is the result of parsing a document payload. Pages are 1-indexed;
// a page missing from the map could not be read even though it exists.
type Extraction struct {
	FullText  string
	Pages     map[int]string
	PageCount int
	Metadata  Metadata
}

// ExtractPDF parses raw PDF bytes into full text, a page map, and metadata.
// Empty or corrupt payloads yield ErrExtraction.
func ExtractPDF(data []byte) (ext Extraction, err error) {
	// The underlying parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			ext = Extraction{}
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	reader, err := newReader(data)
	if err != nil {
		return Extraction{}, err
	}

	pages := make(map[int]string, reader.NumPage())
	var full strings.Builder
	for num := 1; num <= reader.NumPage(); num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}
		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			// One unreadable page should not sink the document.
			continue
		}
		pages[num] = text
		full.WriteString(text)
		full.WriteString("\n\n")
	}

	return Extraction{
		FullText:  full.String(),
		Pages:     pages,
		PageCount: reader.NumPage(),
		Metadata:  readMetadata(reader),
	}, nil
}

// PageCount returns the number of pages in a PDF payload.
func PageCount(data []byte) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	reader, err := newReader(data)
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}

func newReader(data []byte) (*pdf.Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrExtraction)
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return reader, nil
}

func readMetadata(reader *pdf.Reader) Metadata {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return Metadata{}
	}
	return Metadata{
		Title:            info.Key("Title").Text(),
		Author:           info.Key("Author").Text(),
		Subject:          info.Key("Subject").Text(),
		Creator:          info.Key("Creator").Text(),
		Producer:         info.Key("Producer").Text(),
		CreationDate:     info.Key("CreationDate").Text(),
		ModificationDate: info.Key("ModDate").Text(),
	}
}
