package extract

import (
	"fmt"
	"os"

	"github.com/anomitroid/local-search-engine/internal/model"
)

// PlainText reads a file's bytes verbatim as its indexable content,
// used for .txt and .md files.
type PlainText struct{}

func (PlainText) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", model.ErrIO, path, err)
	}
	return string(data), nil
}
