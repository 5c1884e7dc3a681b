package config

import (
	"fmt"
	"strings"

	"github.com/cognicore/foodlog/pkg/foodlog/convert"
	"github.com/cognicore/foodlog/pkg/foodlog/dataset"
	"github.com/cognicore/foodlog/pkg/foodlog/ingest"
	"github.com/cognicore/foodlog/pkg/foodlog/lexicon"
	"github.com/cognicore/foodlog/pkg/foodlog/match"
	"github.com/cognicore/foodlog/pkg/foodlog/stoplist"
)

// Loader loads all configuration files and constructs components.
// Every path is optional; the built-in tables fill the gaps.
type Loader struct {
	TablesPath   string
	StoplistPath string // replaces or tunes the tables' stopwords
	LexiconPath  string // replaces the tables' dialect groups
}

// Components holds all loaded configuration components
type Components struct {
	Tables      *Tables
	Lexicon     *lexicon.Lexicon
	Stoplist    *stoplist.Manager
	Normalizer  *ingest.Normalizer
	Extractor   *ingest.QuantityExtractor
	Pipeline    *ingest.Pipeline
	Tokenizer   *ingest.Tokenizer
	Converter   *convert.Converter
	Metric      match.Metric
	MatchConfig match.Config
	Columns     dataset.Columns
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	var (
		tables *Tables
		err    error
	)
	if l.TablesPath != "" {
		tables, err = LoadTables(l.TablesPath)
		if err != nil {
			return nil, fmt.Errorf("load tables: %w", err)
		}
	} else {
		tables, err = DefaultTables()
		if err != nil {
			return nil, err
		}
	}

	comp := &Components{Tables: tables}

	// Load dialect table
	if l.LexiconPath != "" {
		comp.Lexicon, err = lexicon.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
	} else {
		comp.Lexicon = lexicon.FromGroups(tables.Dialect)
	}

	// Load stoplist
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		terms := tables.Stopwords
		if len(sl.Terms) > 0 {
			terms = sl.Terms
		}
		comp.Stoplist = stoplist.NewManager(terms)
		for _, w := range sl.Add {
			comp.Stoplist.Add(strings.ToLower(w))
		}
		for _, w := range sl.Keep {
			comp.Stoplist.Remove(strings.ToLower(w))
		}
	} else {
		comp.Stoplist = stoplist.NewManager(tables.Stopwords)
	}

	patterns, err := CompilePatterns(tables.QuantityPatterns)
	if err != nil {
		return nil, err
	}

	comp.Normalizer = ingest.NewNormalizer(comp.Lexicon)
	comp.Normalizer.SetFoldDiacritics(tables.Normalize.FoldDiacritics)
	comp.Extractor = ingest.NewQuantityExtractor(comp.Normalizer, patterns)
	comp.Pipeline = ingest.NewPipeline(comp.Extractor)

	comp.Tokenizer = ingest.NewTokenizer(comp.Stoplist)
	comp.Tokenizer.SetStemming(tables.Matching.Stem)

	comp.Metric, err = match.MetricByName(tables.Matching.Metric)
	if err != nil {
		return nil, err
	}
	comp.MatchConfig = tables.Matching.Config
	comp.Converter = convert.New(tables.Units, tables.ServingUnits)
	comp.Columns = tables.Dataset

	return comp, nil
}

// Matcher builds a matcher over ds with the loaded tokenizer, metric and
// thresholds.
func (c *Components) Matcher(ds *dataset.Dataset) *match.Matcher {
	return match.New(ds, c.Tokenizer, c.Metric, c.MatchConfig)
}

// CompilePatterns compiles the quantity table in order.
func CompilePatterns(specs []PatternSpec) ([]ingest.QuantityPattern, error) {
	patterns := make([]ingest.QuantityPattern, 0, len(specs))
	for _, s := range specs {
		p, err := ingest.CompileQuantityPattern(s.Pattern, s.Unit, s.DefaultQuantity, s.Vague)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}
