package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/foodlog/pkg/foodlog/convert"
	"github.com/cognicore/foodlog/pkg/foodlog/dataset"
	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
	"github.com/cognicore/foodlog/pkg/foodlog/lexicon"
	"github.com/cognicore/foodlog/pkg/foodlog/match"
)

//go:embed defaults.yaml
var defaultTables []byte

// Tables holds every table the parser runs on.
type Tables struct {
	Dialect          []lexicon.Group  `yaml:"dialect"`
	QuantityPatterns []PatternSpec    `yaml:"quantity_patterns"`
	Stopwords        []string         `yaml:"stopwords"`
	Units            []convert.Unit   `yaml:"units"`
	ServingUnits     []string         `yaml:"serving_units"`
	Matching         Matching         `yaml:"matching"`
	Normalize        NormalizeOptions `yaml:"normalize"`
	Dataset          dataset.Columns  `yaml:"dataset"`
}

// PatternSpec is one row of the quantity table.
type PatternSpec struct {
	Pattern         string  `yaml:"pattern"`
	Unit            string  `yaml:"unit"`
	DefaultQuantity float64 `yaml:"default_quantity"`
	Vague           bool    `yaml:"vague"`
}

// Matching configures the matcher.
type Matching struct {
	match.Config `yaml:",inline"`
	Metric       string `yaml:"metric"`
	Stem         bool   `yaml:"stem"`
}

// NormalizeOptions configures the normalizer.
type NormalizeOptions struct {
	FoldDiacritics bool `yaml:"fold_diacritics"`
}

// DefaultTables returns the built-in tables.
func DefaultTables() (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(defaultTables, &t); err != nil {
		return nil, fmt.Errorf("parse built-in tables: %w", err)
	}
	return &t, nil
}

// LoadTables reads a tables file on top of the built-in defaults. Keys the
// file leaves out keep their default; lists the file sets replace the
// default list.
func LoadTables(path string) (*Tables, error) {
	t, err := DefaultTables()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse tables %s: %w: %v", path, internalerr.ErrInvalidConfig, err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks thresholds and required dataset columns. Patterns are
// checked when they are compiled.
func (t *Tables) Validate() error {
	m := t.Matching
	if m.TokenThreshold < 0 || m.TokenThreshold > 1 {
		return fmt.Errorf("token_threshold %v outside [0,1]: %w", m.TokenThreshold, internalerr.ErrInvalidConfig)
	}
	if m.FuzzyCutoff < 0 || m.FuzzyCutoff > 1 {
		return fmt.Errorf("fuzzy_cutoff %v outside [0,1]: %w", m.FuzzyCutoff, internalerr.ErrInvalidConfig)
	}
	if _, err := match.MetricByName(m.Metric); err != nil {
		return err
	}

	cols := t.Dataset
	if cols.ID == "" || cols.Description == "" || cols.HouseholdDescription == "" || cols.HouseholdGrams == "" {
		return fmt.Errorf("dataset columns must all be named: %w", internalerr.ErrInvalidConfig)
	}
	for i, g := range t.Dialect {
		if g.Canonical == "" {
			return fmt.Errorf("dialect group %d has no canonical form: %w", i, internalerr.ErrInvalidConfig)
		}
	}
	return nil
}

// Stoplist represents the stopword list configuration. Terms, when given,
// replace the built-in list; Add and Keep then tune whichever list is used.
type Stoplist struct {
	Terms []string `yaml:"terms"`
	Add   []string `yaml:"add"`
	Keep  []string `yaml:"keep"` // stopwords that should count as food words
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
