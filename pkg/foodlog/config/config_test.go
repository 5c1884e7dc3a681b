package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultTables(t *testing.T) {
	tables, err := DefaultTables()
	if err != nil {
		t.Fatalf("DefaultTables: %v", err)
	}
	if err := tables.Validate(); err != nil {
		t.Fatalf("Built-in tables should validate: %v", err)
	}

	if len(tables.Dialect) != 18 {
		t.Errorf("Expected 18 dialect groups, got %d", len(tables.Dialect))
	}
	if first := tables.Dialect[0]; first.Canonical != "rice" || len(first.Variants) != 3 {
		t.Errorf("First dialect group should be rice with 3 variants, got %+v", first)
	}
	if len(tables.QuantityPatterns) != 12 {
		t.Errorf("Expected 12 quantity patterns, got %d", len(tables.QuantityPatterns))
	}
	if last := tables.QuantityPatterns[11]; !last.Vague {
		t.Errorf("Last pattern should be vague, got %+v", last)
	}
	if len(tables.Stopwords) != 179 {
		t.Errorf("Expected 179 stopwords, got %d", len(tables.Stopwords))
	}
	if tables.Matching.TokenThreshold != 0.3 || tables.Matching.FuzzyCutoff != 0.3 {
		t.Errorf("Unexpected thresholds: %+v", tables.Matching)
	}
	if tables.Matching.Metric != "ratcliff" {
		t.Errorf("Expected ratcliff metric, got %q", tables.Matching.Metric)
	}
	if tables.Dataset.ID != "Nutrient Data Bank Number" {
		t.Errorf("Unexpected ID column %q", tables.Dataset.ID)
	}
}

func TestLoadTablesOverridesDefaults(t *testing.T) {
	path := writeFile(t, "tables.yaml", `
dialect:
  - canonical: rice
    variants: [bhat]
matching:
  fuzzy_cutoff: 0.6
  metric: levenshtein
serving_units: [serving]
`)

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}

	if len(tables.Dialect) != 1 {
		t.Errorf("Dialect list should be replaced, got %d groups", len(tables.Dialect))
	}
	if tables.Matching.FuzzyCutoff != 0.6 {
		t.Errorf("Expected fuzzy cutoff 0.6, got %v", tables.Matching.FuzzyCutoff)
	}
	if tables.Matching.TokenThreshold != 0.3 {
		t.Errorf("Token threshold should keep its default, got %v", tables.Matching.TokenThreshold)
	}
	if tables.Matching.Metric != "levenshtein" {
		t.Errorf("Expected levenshtein, got %q", tables.Matching.Metric)
	}
	if len(tables.QuantityPatterns) != 12 {
		t.Errorf("Quantity patterns should keep their default, got %d", len(tables.QuantityPatterns))
	}
	if len(tables.ServingUnits) != 1 {
		t.Errorf("Expected 1 serving unit, got %v", tables.ServingUnits)
	}
}

func TestLoadTablesInvalid(t *testing.T) {
	tests := map[string]string{
		"threshold": "matching:\n  token_threshold: 1.5\n",
		"cutoff":    "matching:\n  fuzzy_cutoff: -0.1\n",
		"metric":    "matching:\n  metric: soundex\n",
		"column":    "dataset:\n  id: \"\"\n",
		"canonical": "dialect:\n  - variants: [bhat]\n",
		"malformed": "matching: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadTables(writeFile(t, "tables.yaml", content))
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadTablesNonExistent(t *testing.T) {
	if _, err := LoadTables("/nonexistent/tables.yaml"); err == nil {
		t.Error("Should error on nonexistent tables file")
	}
}

func TestLoadStoplist(t *testing.T) {
	path := writeFile(t, "stoplist.yaml", `terms:
  - the
  - a
  - and
`)

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("Failed to load stoplist: %v", err)
	}

	if len(sl.Terms) != 3 {
		t.Errorf("Expected 3 terms, got %d", len(sl.Terms))
	}

	expected := map[string]bool{"the": true, "a": true, "and": true}
	for _, term := range sl.Terms {
		if !expected[term] {
			t.Errorf("Unexpected term: %s", term)
		}
	}
}
