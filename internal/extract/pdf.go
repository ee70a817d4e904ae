package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/anomitroid/local-search-engine/internal/model"
	"github.com/ledongthuc/pdf"
)

// PDF extracts the plain text of every page of a PDF file, joined with
// spaces. Grounded on raggo's PDFParser.extractText, which walks
// pdf.Reader.NumPage() pulling page.GetPlainText(nil) per page.
type PDF struct{}

func (PDF) Extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", model.ErrIO, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: statting %s: %v", model.ErrIO, path, err)
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("%w: opening reader for %s: %v", model.ErrExtraction, path, err)
	}

	var b strings.Builder
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: extracting page %d of %s: %v", model.ErrExtraction, i, path, err)
		}
		b.WriteString(text)
		b.WriteByte(' ')
	}
	return b.String(), nil
}
