package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
	"github.com/cognicore/foodlog/pkg/foodlog/store/sqlite"
)

func fixtureCSV(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "testdata", "foods.csv")
}

func TestImportFoods(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "foods.db")

	n, err := importFoods(ctx, fixtureCSV(t), dbPath, "")
	if err != nil {
		t.Fatalf("importFoods: %v", err)
	}
	if n != 11 {
		t.Errorf("Expected 11 rows, got %d", n)
	}

	// Importing again replaces rather than appends.
	if _, err := importFoods(ctx, fixtureCSV(t), dbPath, ""); err != nil {
		t.Fatalf("importFoods again: %v", err)
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	ds, err := st.LoadFoods(ctx)
	if err != nil {
		t.Fatalf("LoadFoods: %v", err)
	}
	if ds.Len() != 11 {
		t.Errorf("Expected 11 rows after re-import, got %d", ds.Len())
	}
	if r := ds.At(0); r.ID != 1001 || r.Nutrients["Data.Protein"] != 2.7 {
		t.Errorf("Unexpected first row %+v", r)
	}
	if r := ds.At(10); r.HasID {
		t.Errorf("Last row should have no ID: %+v", r)
	}
}

func TestImportFoodsCustomColumns(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "foods.csv")
	csv := "code,name,measure,grams\n7,BANANA RAW,1 medium,118\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	tablesPath := filepath.Join(dir, "tables.yaml")
	tables := "dataset:\n  id: code\n  description: name\n  household_description: measure\n  household_grams: grams\n"
	if err := os.WriteFile(tablesPath, []byte(tables), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := importFoods(context.Background(), csvPath, filepath.Join(dir, "foods.db"), tablesPath)
	if err != nil {
		t.Fatalf("importFoods: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row, got %d", n)
	}

	// Default column names do not fit this file.
	_, err = importFoods(context.Background(), csvPath, filepath.Join(dir, "other.db"), "")
	if !errors.Is(err, internalerr.ErrInvalidDataset) {
		t.Errorf("Expected ErrInvalidDataset, got %v", err)
	}
}
