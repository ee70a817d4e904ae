package extract

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anomitroid/local-search-engine/internal/model"
)

// XML extracts the character data out of an XML or HTML document,
// joined with spaces. This mirrors the original project's use of
// xml-rs's EventReader to collect XmlEvent::Characters events while
// crawling glVertexAttribDivisor.xhtml-style documentation trees.
type XML struct{}

func (XML) Extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", model.ErrIO, path, err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: parsing %s: %v", model.ErrExtraction, path, err)
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
			b.WriteByte(' ')
		}
	}
	return b.String(), nil
}
