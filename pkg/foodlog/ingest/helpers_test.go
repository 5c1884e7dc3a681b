package ingest

import (
	"testing"

	"github.com/cognicore/foodlog/pkg/foodlog/lexicon"
)

// standardPatterns mirrors the shipped quantity table.
func standardPatterns(t *testing.T) []QuantityPattern {
	t.Helper()
	specs := []struct {
		expr  string
		unit  string
		vague bool
	}{
		{`(\d+(?:\.\d+)?)\s*cups?`, "cup", false},
		{`(\d+(?:\.\d+)?)\s*tbsp|tablespoons?`, "tablespoon", false},
		{`(\d+(?:\.\d+)?)\s*tsp|teaspoons?`, "teaspoon", false},
		{`(\d+(?:\.\d+)?)\s*oz|ounces?`, "ounce", false},
		{`(\d+(?:\.\d+)?)\s*lbs?|pounds?`, "pound", false},
		{`(\d+(?:\.\d+)?)\s*g|grams?`, "gram", false},
		{`(\d+(?:\.\d+)?)\s*kg|kilograms?`, "kilogram", false},
		{`(\d+(?:\.\d+)?)\s*pieces?|pcs?`, "piece", false},
		{`(\d+(?:\.\d+)?)\s*slices?`, "slice", false},
		{`(\d+(?:\.\d+)?)\s*bowls?`, "bowl", false},
		{`(\d+(?:\.\d+)?)\s*plates?`, "plate", false},
		{`some|little|bit`, "", true},
	}
	patterns := make([]QuantityPattern, 0, len(specs))
	for _, s := range specs {
		p, err := CompileQuantityPattern(s.expr, s.unit, 1.0, s.vague)
		if err != nil {
			t.Fatalf("CompileQuantityPattern(%q): %v", s.expr, err)
		}
		patterns = append(patterns, p)
	}
	return patterns
}

func testLexicon() *lexicon.Lexicon {
	return lexicon.FromGroups([]lexicon.Group{
		{Canonical: "rice", Variants: []string{"bhat", "vat", "vaat"}},
		{Canonical: "rice lentil", Variants: []string{"khichuri"}},
		{Canonical: "potato", Variants: []string{"alu"}},
		{Canonical: "chicken", Variants: []string{"murgi"}},
		{Canonical: "lentil", Variants: []string{"daal", "dal"}},
		{Canonical: "egg", Variants: []string{"dim"}},
	})
}

func newTestExtractor(t *testing.T) *QuantityExtractor {
	t.Helper()
	return NewQuantityExtractor(NewNormalizer(testLexicon()), standardPatterns(t))
}
