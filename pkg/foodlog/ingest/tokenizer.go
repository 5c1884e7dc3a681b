package ingest

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"

	"github.com/cognicore/foodlog/pkg/foodlog/stoplist"
)

// Tokenizer splits a cleaned description into match tokens.
type Tokenizer struct {
	stopwords *stoplist.Manager
	stem      bool
}

// NewTokenizer creates a new tokenizer with the given stopword list.
// A nil manager disables stopword filtering.
func NewTokenizer(stopwords *stoplist.Manager) *Tokenizer {
	if stopwords == nil {
		stopwords = stoplist.NewManager(nil)
	}
	return &Tokenizer{stopwords: stopwords}
}

// SetStemming enables Snowball (Porter2) stemming of tokens that survive
// stopword filtering. Stems are shorter prefixes in most cases, so
// "potatoes" still finds "potato, baked".
func (t *Tokenizer) SetStemming(on bool) {
	t.stem = on
}

// Tokenize lower-cases text, splits it into words and drops stopwords and
// tokens made only of punctuation. Punctuation inside a word is kept.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) {
			if current.Len() > 0 {
				if word := t.processToken(current.String()); word != "" {
					tokens = append(tokens, word)
				}
				current.Reset()
			}
			continue
		}
		current.WriteRune(r)
	}

	// Don't forget the last token
	if current.Len() > 0 {
		if word := t.processToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
	}

	return tokens
}

// processToken strips edge punctuation and applies stopword filtering and
// optional stemming.
func (t *Tokenizer) processToken(token string) string {
	word := strings.TrimFunc(token, isPunct)
	if word == "" {
		return ""
	}

	if t.stopwords.IsStop(word) {
		return ""
	}

	if t.stem {
		if stemmed := english.Stem(word, false); stemmed != "" {
			word = stemmed
		}
	}

	return word
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
