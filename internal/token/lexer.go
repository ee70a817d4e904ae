// Package token implements the tokenizer shared by indexing and
// querying: a small hand-rolled lexer (grounded on the original
// project's own Lexer) plus an optional Porter/Snowball stemming pass.
package token

import "unicode"

// Field name constants mirrored here so callers building a field map
// don't need to import internal/model just for these three strings.
const (
	FieldName      = "name"
	FieldContent   = "content"
	FieldExtension = "extension"
)

// Lexer walks a rune sequence emitting one token per call to Next:
// a maximal run of digits, a maximal run of letters (uppercased and
// optionally stemmed), or a single token for any other non-space rune.
// Whitespace between tokens is skipped entirely. Lexer never returns
// an error: every rune sequence, including the empty one, produces a
// well-defined (possibly empty) token sequence.
type Lexer struct {
	runes   []rune
	pos     int
	stemmer Stemmer
}

// NewLexer returns a Lexer over s. A nil stemmer leaves letter runs
// uppercased but unstemmed.
func NewLexer(s string, stemmer Stemmer) *Lexer {
	return &Lexer{runes: []rune(s), stemmer: stemmer}
}

// Next returns the next token and true, or ("", false) once the input
// is exhausted.
func (l *Lexer) Next() (string, bool) {
	l.skipSpace()
	if l.pos >= len(l.runes) {
		return "", false
	}
	c := l.runes[l.pos]
	switch {
	case unicode.IsDigit(c):
		start := l.pos
		for l.pos < len(l.runes) && unicode.IsDigit(l.runes[l.pos]) {
			l.pos++
		}
		return string(l.runes[start:l.pos]), true
	case unicode.IsLetter(c):
		start := l.pos
		for l.pos < len(l.runes) && unicode.IsLetter(l.runes[l.pos]) {
			l.pos++
		}
		word := toUpper(l.runes[start:l.pos])
		if l.stemmer != nil {
			word = l.stemmer.Stem(word)
		}
		return word, true
	default:
		l.pos++
		return string(c), true
	}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.runes) && unicode.IsSpace(l.runes[l.pos]) {
		l.pos++
	}
}

func toUpper(rs []rune) string {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToUpper(r)
	}
	return string(out)
}

// Tokens drains the lexer, returning every remaining token in order.
func (l *Lexer) Tokens() []string {
	var out []string
	for {
		t, ok := l.Next()
		if !ok {
			break
		}
		out = append(out, t)
	}
	return out
}

// Iterate calls visit with each remaining token until visit returns
// false or the input is exhausted, without allocating a slice. Useful
// for callers (such as a future streaming tokenizer consumer) that
// want to stop early.
func (l *Lexer) Iterate(visit func(string) bool) {
	for {
		t, ok := l.Next()
		if !ok {
			return
		}
		if !visit(t) {
			return
		}
	}
}

// Pipeline bundles a Stemmer with the lexer so that index-time and
// query-time tokenization are always performed identically.
type Pipeline struct {
	Stemmer Stemmer
}

// NewPipeline returns a Pipeline that stems with the Snowball English
// stemmer when stem is true, and leaves letter runs unstemmed
// otherwise.
func NewPipeline(stem bool) Pipeline {
	if stem {
		return Pipeline{Stemmer: SnowballStemmer{}}
	}
	return Pipeline{Stemmer: NoStemmer{}}
}

// Tokenize runs s through a fresh Lexer configured with p's stemmer.
func (p Pipeline) Tokenize(s string) []string {
	return NewLexer(s, p.Stemmer).Tokens()
}
