package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits text on a fixed delimiter set and lowercases every token.
type Tokenizer struct {
	delimiters map[rune]struct{}
}

// NewTokenizer creates a Tokenizer that splits on any rune in delimiters.
func NewTokenizer(delimiters string) *Tokenizer {
	set := make(map[rune]struct{}, len(delimiters))
	for _, r := range delimiters {
		set[r] = struct{}{}
	}
	return &Tokenizer{delimiters: set}
}

// Tokenize splits text into lowercase tokens in input order.
// Runs of delimiters never produce empty tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := strings.FieldsFunc(text, t.isDelimiter)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		tokens = append(tokens, lower(word))
	}
	return tokens
}

// lower lowercases the valid runes of s and copies invalid bytes through
// unchanged, so byte-distinct words stay distinct.
func lower(s string) string {
	if utf8.ValidString(s) {
		return strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		i += size
	}
	return b.String()
}

func (t *Tokenizer) isDelimiter(r rune) bool {
	_, ok := t.delimiters[r]
	return ok
}
