package ingest

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/foodlog/pkg/foodlog/lexicon"
)

// anything but letters, digits, underscore, whitespace and periods
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s.]`)

// Normalizer prepares a mention for quantity extraction: lower-casing,
// dialect substitution and punctuation stripping.
type Normalizer struct {
	lexicon        *lexicon.Lexicon
	foldDiacritics bool
}

// NewNormalizer creates a normalizer backed by the given dialect table.
// A nil lexicon disables dialect substitution.
func NewNormalizer(lex *lexicon.Lexicon) *Normalizer {
	return &Normalizer{lexicon: lex}
}

// SetFoldDiacritics enables ASCII transliteration before dialect lookup,
// so "bhāt" and Bengali-script input can reach the dialect table.
func (n *Normalizer) SetFoldDiacritics(on bool) {
	n.foldDiacritics = on
}

// Normalize lower-cases text, expands dialect words and replaces every rune
// that is not a letter, digit, underscore, whitespace or period with a space.
// Runs of whitespace are left as they are.
func (n *Normalizer) Normalize(text string) string {
	text = norm.NFC.String(text)
	if n.foldDiacritics {
		text = unidecode.Unidecode(text)
	}
	// Casers keep state; one per call keeps Normalize safe for concurrent use.
	text = cases.Lower(language.Und).String(text)
	text = foldDigits(text)

	if n.lexicon != nil {
		text = n.lexicon.Substitute(text)
	}

	return nonWordPattern.ReplaceAllString(text, " ")
}

// foldDigits rewrites non-ASCII decimal digits ("২", "٣") as ASCII so the
// quantity patterns see them.
func foldDigits(text string) string {
	hasForeign := false
	for _, r := range text {
		if r > unicode.MaxASCII && unicode.IsDigit(r) {
			hasForeign = true
			break
		}
	}
	if !hasForeign {
		return text
	}

	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII || !unicode.IsDigit(r) {
			return r
		}
		// Decimal digits come in contiguous runs of ten starting at zero.
		start := r
		for unicode.IsDigit(start - 1) {
			start--
		}
		return '0' + (r-start)%10
	}, text)
}
