package convert

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cognicore/foodlog/pkg/foodlog/dataset"
)

// Units handled before any household-measure lookup.
const (
	Gram     = "gram"
	Kilogram = "kilogram"
)

// first "<number> <word>" pair of a household description, e.g. "1 cup"
var householdPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([\p{L}\p{N}_]+)`)

// Unit declares the abbreviations a household description may use for a
// canonical unit name.
type Unit struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Converter turns (quantity, unit) into grams using the matched row's
// household measure. It is read-only after construction.
type Converter struct {
	canonical map[string]string // alias -> unit
	serving   map[string]bool
}

// New creates a converter. servingUnits are the units priced at one
// household measure each when the description does not name them.
func New(units []Unit, servingUnits []string) *Converter {
	c := &Converter{
		canonical: make(map[string]string),
		serving:   make(map[string]bool, len(servingUnits)),
	}
	for _, u := range units {
		name := strings.ToLower(u.Name)
		for _, a := range u.Aliases {
			c.canonical[strings.ToLower(a)] = name
		}
	}
	for _, s := range servingUnits {
		c.serving[strings.ToLower(s)] = true
	}
	return c
}

// ToGrams applies the first rule that fits:
//
//  1. the row has no identifier: quantity is already grams
//  2. gram / kilogram
//  3. the unit word itself appears in the household description: scale by
//     its amount when the first number's word resolves to the unit
//  4. serving-like units: one household measure each
//  5. anything else: quantity is already grams
//
// The only error is an unusable household grams value on the row.
func (c *Converter) ToGrams(quantity float64, unit string, rec *dataset.Record) (float64, error) {
	if rec == nil || !rec.HasID {
		return quantity, nil
	}

	switch unit {
	case Gram:
		return quantity, nil
	case Kilogram:
		return quantity * 1000, nil
	}

	desc := strings.ToLower(rec.HouseholdDescription)
	if unit != "" && strings.Contains(desc, unit) {
		m := householdPattern.FindStringSubmatch(desc)
		base := 0.0
		if m != nil {
			base, _ = strconv.ParseFloat(m[1], 64)
		}
		if base <= 0 {
			grams, err := rec.Grams()
			if err != nil {
				return 0, err
			}
			return quantity * grams, nil
		}
		if c.Canonical(m[2]) == unit {
			grams, err := rec.Grams()
			if err != nil {
				return 0, err
			}
			return quantity / base * grams, nil
		}
	}

	if c.serving[unit] {
		grams, err := rec.Grams()
		if err != nil {
			return 0, err
		}
		return quantity * grams, nil
	}

	return quantity, nil
}

// Canonical maps a household word to a unit name: trailing "s" is dropped
// and abbreviations resolve through the alias table.
func (c *Converter) Canonical(word string) string {
	word = strings.TrimRight(strings.ToLower(word), "s")
	if name, ok := c.canonical[word]; ok {
		return name
	}
	return word
}
