package token

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokensOf(s string) []string {
	return NewLexer(s, nil).Tokens()
}

// P1: totality. Every input, including the empty string and strings
// made entirely of whitespace, produces a token sequence without
// panicking, and concatenating the tokens reproduces the input with
// whitespace removed.
func TestLexerTotalityAndReconstruction(t *testing.T) {
	cases := []string{
		"",
		"   \t\n  ",
		"hello world",
		"glVertexAttribDivisor",
		"a1b2c3",
		"42",
		"!!!",
		"mixed123CASE text, with-punctuation.",
	}
	for _, c := range cases {
		toks := tokensOf(c)
		joined := strings.Join(toks, "")
		var stripped strings.Builder
		for _, r := range c {
			if !unicode.IsSpace(r) {
				stripped.WriteRune(unicode.ToUpper(r))
			}
		}
		assert.Equal(t, stripped.String(), joined, "input %q", c)
	}
}

// P2: determinism. Tokenizing the same input twice yields identical
// results.
func TestLexerDeterminism(t *testing.T) {
	input := "The Quick-Brown_Fox2024 jumps.over 13 lazy DOGs!"
	require.Equal(t, tokensOf(input), tokensOf(input))
}

// P3: case-insensitivity. Differently-cased spellings of the same word
// tokenize identically.
func TestLexerCaseInsensitive(t *testing.T) {
	assert.Equal(t, tokensOf("Hello"), tokensOf("HELLO"))
	assert.Equal(t, tokensOf("hello"), tokensOf("hElLo"))
}

func TestLexerDigitAndLetterRuns(t *testing.T) {
	assert.Equal(t, []string{"ABC", "123", "DEF"}, tokensOf("abc123def"))
	assert.Equal(t, []string{"123", "ABC"}, tokensOf("123abc"))
}

func TestLexerSingleCharTokens(t *testing.T) {
	assert.Equal(t, []string{"A", "-", "B", "_", "C"}, tokensOf("a-b_c"))
}

func TestLexerWhitespaceOnly(t *testing.T) {
	assert.Empty(t, tokensOf("   \t\n\r  "))
}

func TestLexerIterateStopsEarly(t *testing.T) {
	l := NewLexer("one two three", nil)
	var seen []string
	l.Iterate(func(tok string) bool {
		seen = append(seen, tok)
		return len(seen) < 2
	})
	assert.Equal(t, []string{"ONE", "TWO"}, seen)
}

func TestPipelineStemming(t *testing.T) {
	p := NewPipeline(true)
	toks := p.Tokenize("running runs runner")
	require.Len(t, toks, 3)
	assert.Equal(t, toks[0], toks[1])
}

func TestPipelineNoStem(t *testing.T) {
	p := NewPipeline(false)
	toks := p.Tokenize("running")
	assert.Equal(t, []string{"RUNNING"}, toks)
}
