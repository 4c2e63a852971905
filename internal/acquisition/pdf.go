// Package acquisition extracts per-page text from uploaded documents.
//
// Both parsers operate on plain page text; the roll-list parser can
// additionally use row-grouped fragments when the document carries a
// tabular layout. Extraction is best-effort: a page yielding no text
// contributes nothing, and only a document with no readable pages at all
// is an error.
package acquisition

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page holds the text extracted from a single document page.
type Page struct {
	Number int
	// Text is the page text with visual rows preserved as lines.
	Text string
	// Rows holds the row-grouped text fragments, one slice per visual
	// row, used by the tabular roll-list strategy.
	Rows [][]string
}

// Document is the extracted content of one uploaded document.
type Document struct {
	Pages []Page
}

// ExtractFile opens path and extracts all page text.
func ExtractFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}

	return Extract(f, info.Size())
}

// Extract reads a PDF document and extracts text page by page.
func Extract(r io.ReaderAt, size int64) (doc *Document, err error) {
	// The pdf library panics on some malformed files; degrade that to an
	// error so untrusted uploads cannot take the process down.
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("document extraction failed: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc = &Document{}
	fonts := make(map[string]*pdf.Font)

	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}

		page := Page{Number: i}

		rows, rowErr := p.GetTextByRow()
		if rowErr == nil && len(rows) > 0 {
			var lines []string
			for _, row := range rows {
				var cells []string
				for _, word := range row.Content {
					s := strings.TrimSpace(word.S)
					if s != "" {
						cells = append(cells, s)
					}
				}
				if len(cells) == 0 {
					continue
				}
				page.Rows = append(page.Rows, cells)
				lines = append(lines, strings.Join(cells, " "))
			}
			page.Text = strings.Join(lines, "\n")
		}

		// Fall back to plain text when row grouping yielded nothing.
		if page.Text == "" {
			text, textErr := p.GetPlainText(fonts)
			if textErr != nil {
				slog.Warn("failed to extract text from page",
					slog.Int("page", i),
					slog.String("error", textErr.Error()))
				continue
			}
			page.Text = strings.TrimSpace(text)
		}

		if page.Text == "" {
			continue
		}
		doc.Pages = append(doc.Pages, page)
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("no extractable text found in document")
	}

	return doc, nil
}

// PageTexts returns the extracted text of each page, in page order.
func (d *Document) PageTexts() []string {
	texts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		texts = append(texts, p.Text)
	}
	return texts
}

// Rows returns the row-grouped fragments of every page, concatenated in
// page order.
func (d *Document) Rows() [][]string {
	var rows [][]string
	for _, p := range d.Pages {
		rows = append(rows, p.Rows...)
	}
	return rows
}

// FullText concatenates all page texts preserving line boundaries.
func (d *Document) FullText() string {
	return strings.Join(d.PageTexts(), "\n")
}

// Preview returns the first n characters of the full text, for the
// troubleshooting view when a parser yields nothing.
func (d *Document) Preview(n int) string {
	text := d.FullText()
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
