package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
)

const fixtureCSV = `Category,Description,Nutrient Data Bank Number,Data.Household Weight Description,Data.Household Weights(Gram),Data.Protein,Data.Kilocalories
Grains,White Rice Cooked,1001,1 cup,158,2.7,130
Meals,Chicken Curry,1002.0,1 bowl,250,9.1,abc
Misc,,,1 piece,NaN,,
`

func TestReadCSV(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(fixtureCSV), DefaultColumns())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", ds.Len())
	}

	rice := ds.At(0)
	if !rice.HasID || rice.ID != 1001 {
		t.Errorf("Expected ID 1001, got %d (hasID=%v)", rice.ID, rice.HasID)
	}
	if rice.Description != "White Rice Cooked" {
		t.Errorf("Description should keep case, got %q", rice.Description)
	}
	if rice.LowerDescription() != "white rice cooked" {
		t.Errorf("Unexpected lower description %q", rice.LowerDescription())
	}
	if rice.Nutrients["Data.Protein"] != 2.7 {
		t.Errorf("Expected protein 2.7, got %v", rice.Nutrients["Data.Protein"])
	}
	if _, ok := rice.Nutrients["Category"]; ok {
		t.Error("Non-numeric columns should not become nutrients")
	}

	curry := ds.At(1)
	if curry.ID != 1002 {
		t.Errorf("Float-formatted ID should parse, got %d", curry.ID)
	}
	if _, ok := curry.Nutrients["Data.Kilocalories"]; ok {
		t.Error("Unparseable nutrient should be skipped")
	}

	misc := ds.At(2)
	if misc.HasID {
		t.Error("Blank identifier should yield no ID")
	}
	if _, ok := misc.Key(); ok {
		t.Error("Record without ID should have no key")
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Description,Foo\nrice,1\n"), DefaultColumns())
	if !errors.Is(err, internalerr.ErrInvalidDataset) {
		t.Fatalf("Expected ErrInvalidDataset, got %v", err)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), DefaultColumns())
	if !errors.Is(err, internalerr.ErrInvalidDataset) {
		t.Fatalf("Expected ErrInvalidDataset, got %v", err)
	}
}

func TestReadCSVBadID(t *testing.T) {
	data := "Nutrient Data Bank Number,Description,Data.Household Weight Description,Data.Household Weights(Gram)\nabc,rice,1 cup,158\n"
	_, err := ReadCSV(strings.NewReader(data), DefaultColumns())
	if !errors.Is(err, internalerr.ErrInvalidDataset) {
		t.Fatalf("Expected ErrInvalidDataset for non-numeric ID, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		cell    string
		want    int64
		hasID   bool
		wantErr bool
	}{
		{"1001", 1001, true, false},
		{"1002.0", 1002, true, false},
		{" 7.9 ", 7, true, false},
		{"9223372036854775807", 9223372036854775807, true, false},
		{"", 0, false, false},
		{"NaN", 0, false, false},
		{"abc", 0, false, true},
		{"inf", 0, false, true},
		{"1e20", 0, false, true},
		{"-1e19", 0, false, true},
		{"9223372036854775808", 0, false, true},
	}
	for _, tt := range tests {
		got, ok, err := ParseID(tt.cell)
		if tt.wantErr {
			if !errors.Is(err, internalerr.ErrInvalidDataset) {
				t.Errorf("ParseID(%q) error = %v, want ErrInvalidDataset", tt.cell, err)
			}
			continue
		}
		if err != nil || got != tt.want || ok != tt.hasID {
			t.Errorf("ParseID(%q) = (%d, %v, %v), want (%d, %v)", tt.cell, got, ok, err, tt.want, tt.hasID)
		}
	}
}

func TestReadCSVOutOfRangeID(t *testing.T) {
	data := "Nutrient Data Bank Number,Description,Data.Household Weight Description,Data.Household Weights(Gram)\n1e20,rice,1 cup,158\n"
	_, err := ReadCSV(strings.NewReader(data), DefaultColumns())
	if !errors.Is(err, internalerr.ErrInvalidDataset) {
		t.Fatalf("Expected ErrInvalidDataset for out-of-range ID, got %v", err)
	}
}

func TestLoadCSVNonExistent(t *testing.T) {
	_, err := LoadCSV("/nonexistent/food.csv", DefaultColumns())
	if !errors.Is(err, internalerr.ErrInvalidDataset) {
		t.Fatalf("Expected ErrInvalidDataset, got %v", err)
	}
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "food.csv")
	if err := os.WriteFile(path, []byte("\ufeff"+fixtureCSV), 0644); err != nil {
		t.Fatal(err)
	}
	ds, err := LoadCSV(path, DefaultColumns())
	if err != nil {
		t.Fatalf("LoadCSV with BOM: %v", err)
	}
	if ds.Len() != 3 {
		t.Errorf("Expected 3 rows, got %d", ds.Len())
	}
}

func TestRecordGrams(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"158", 158, false},
		{" 28.35 ", 28.35, false},
		{"", 0, true},
		{"NaN", 0, true},
		{"a lot", 0, true},
		{"-5", 0, true},
	}
	for _, tt := range tests {
		rec := Record{Description: "x", HouseholdGrams: tt.raw}
		got, err := rec.Grams()
		if tt.wantErr {
			if !errors.Is(err, internalerr.ErrInvalidRecord) {
				t.Errorf("Grams(%q): expected ErrInvalidRecord, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Grams(%q) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
}

func TestDatasetIsolatedFromInput(t *testing.T) {
	in := []Record{{ID: 1, HasID: true, Description: "Milk", Nutrients: map[string]float64{"fat": 3}}}
	ds := New(in)
	in[0].Description = "changed"
	in[0].Nutrients["fat"] = 99

	if ds.At(0).Description != "Milk" {
		t.Error("Dataset should copy rows")
	}
	if ds.At(0).Nutrients["fat"] != 3 {
		t.Error("Dataset should copy nutrient maps")
	}
	if got := ds.Descriptions(); len(got) != 1 || got[0] != "Milk" {
		t.Errorf("Unexpected descriptions %v", got)
	}
}
