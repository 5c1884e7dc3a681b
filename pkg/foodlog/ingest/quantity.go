package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
)

// ServingUnit is the unit assigned when no quantity pattern applies or a
// vague quantity word ("some", "a little") is used.
const ServingUnit = "serving"

// MentionSeparator delimits food mentions in a sentence.
const MentionSeparator = "/"

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// QuantityPattern recognizes one unit. The first capture group, when it
// participates in the match, holds the amount.
type QuantityPattern struct {
	Pattern         *regexp.Regexp
	Unit            string
	DefaultQuantity float64
	Vague           bool // matches mean "one serving" whatever was captured
}

// CompileQuantityPattern compiles expr case-insensitively.
func CompileQuantityPattern(expr, unit string, defaultQuantity float64, vague bool) (QuantityPattern, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return QuantityPattern{}, fmt.Errorf("quantity pattern %q: %w: %v", expr, internalerr.ErrInvalidConfig, err)
	}
	if !vague && unit == "" {
		return QuantityPattern{}, fmt.Errorf("quantity pattern %q has no unit: %w", expr, internalerr.ErrInvalidConfig)
	}
	if defaultQuantity <= 0 {
		defaultQuantity = 1.0
	}
	return QuantityPattern{
		Pattern:         re,
		Unit:            unit,
		DefaultQuantity: defaultQuantity,
		Vague:           vague,
	}, nil
}

// Mention is one "/"-delimited food phrase after quantity extraction.
type Mention struct {
	Raw         string
	Description string // empty when nothing but quantity words remained
	Quantity    float64
	Unit        string
}

// Split breaks a sentence into trimmed, non-empty mentions, keeping order
// and duplicates.
func Split(sentence string) []string {
	parts := strings.Split(sentence, MentionSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// QuantityExtractor pulls the amount and unit out of a mention.
type QuantityExtractor struct {
	normalizer *Normalizer
	patterns   []QuantityPattern
}

// NewQuantityExtractor creates an extractor. Pattern order is both the
// recognition priority and the removal order.
func NewQuantityExtractor(normalizer *Normalizer, patterns []QuantityPattern) *QuantityExtractor {
	return &QuantityExtractor{normalizer: normalizer, patterns: patterns}
}

// Extract normalizes text and returns the cleaned description with its
// quantity and unit. The first pattern that matches anywhere wins, not the
// one that matches earliest in the text.
func (q *QuantityExtractor) Extract(text string) (string, float64, string) {
	text = q.normalizer.Normalize(text)
	quantity, unit := q.quantity(text)

	desc := text
	for _, p := range q.patterns {
		desc = p.Pattern.ReplaceAllLiteralString(desc, "")
	}
	desc = stripStandaloneNumbers(desc)
	desc = strings.Join(strings.Fields(desc), " ")

	return desc, quantity, unit
}

// stripStandaloneNumbers removes numbers bounded by non-word runes on both
// sides. Word runes are Unicode letters, numbers and "_", so "café5" keeps its
// digit. A decimal whose fraction runs into a word loses only its integer part.
func stripStandaloneNumbers(text string) string {
	locs := numberPattern.FindAllStringIndex(text, -1)
	if locs == nil {
		return text
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if isWordRune(runeBefore(text, start)) {
			continue
		}
		if isWordRune(runeAfter(text, end)) {
			dot := strings.IndexByte(text[start:end], '.')
			if dot < 0 {
				continue
			}
			end = start + dot
		}
		b.WriteString(text[last:start])
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func runeBefore(s string, i int) rune {
	if i == 0 {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r
}

func runeAfter(s string, i int) rune {
	if i >= len(s) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func (q *QuantityExtractor) quantity(text string) (float64, string) {
	for _, p := range q.patterns {
		m := p.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if p.Vague {
			return 1.0, ServingUnit
		}
		amount := p.DefaultQuantity
		if len(m) > 1 && m[1] != "" {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				amount = v
			}
		}
		return amount, p.Unit
	}
	return 1.0, ServingUnit
}

// Patterns returns the extractor's table in priority order.
func (q *QuantityExtractor) Patterns() []QuantityPattern {
	out := make([]QuantityPattern, len(q.patterns))
	copy(out, q.patterns)
	return out
}
