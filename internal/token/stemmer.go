package token

import "github.com/kljensen/snowball"

// Stemmer reduces an already-uppercased word token to its stem. word
// is guaranteed to contain only letters.
type Stemmer interface {
	Stem(word string) string
}

// NoStemmer returns words unchanged, used when stemming is disabled.
type NoStemmer struct{}

func (NoStemmer) Stem(word string) string { return word }

// SnowballStemmer runs the Porter/Snowball English stemmer. It
// lowercases before stemming (the algorithm's rules are defined over
// lowercase input) and re-uppercases the ASCII letters of the result;
// a non-ASCII letter comes back in the case the stemmer returns it,
// which is the same at index and query time. A stemming failure
// (unsupported input) falls back to the unstemmed, already-uppercased
// word rather than failing the whole tokenization pass.
type SnowballStemmer struct{}

func (SnowballStemmer) Stem(word string) string {
	lower := toLower(word)
	stemmed, err := snowball.Stem(lower, "english", false)
	if err != nil {
		return word
	}
	return toUpperASCII(stemmed)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
