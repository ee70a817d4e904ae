// Package extract turns a file on disk into the plain text the
// tokenizer will consume. Each supported file family gets its own
// Extractor, selected by the crawler based on file extension.
package extract

// Extractor pulls the indexable text content out of the file at path.
type Extractor interface {
	Extract(path string) (string, error)
}

// Registry maps a lowercased, dot-free file extension to the
// Extractor responsible for it.
type Registry map[string]Extractor

// Default returns the registry the crawler uses out of the box: XML
// and HTML-family markup via character-data extraction, plain text
// and markdown verbatim, and PDF via page text extraction.
func Default() Registry {
	xmlExtractor := XML{}
	text := PlainText{}
	pdf := PDF{}
	return Registry{
		"xhtml": xmlExtractor,
		"xml":   xmlExtractor,
		"html":  xmlExtractor,
		"htm":   xmlExtractor,
		"txt":   text,
		"md":    text,
		"pdf":   pdf,
	}
}
