package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
)

// Columns names the CSV headers that carry the fields the parser needs.
// Every other column is treated as a per-100g nutrient column.
type Columns struct {
	ID                   string `yaml:"id"`
	Description          string `yaml:"description"`
	HouseholdDescription string `yaml:"household_description"`
	HouseholdGrams       string `yaml:"household_grams"`
}

// DefaultColumns returns the headers used by the published composition table.
func DefaultColumns() Columns {
	return Columns{
		ID:                   "Nutrient Data Bank Number",
		Description:          "Description",
		HouseholdDescription: "Data.Household Weight Description",
		HouseholdGrams:       "Data.Household Weights(Gram)",
	}
}

// LoadCSV reads the reference table from a CSV file.
func LoadCSV(path string, cols Columns) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w: %v", internalerr.ErrInvalidDataset, err)
	}
	defer f.Close()
	return ReadCSV(f, cols)
}

// ReadCSV parses the reference table from r. Missing required columns or a
// malformed identifier fail the whole load.
func ReadCSV(r io.Reader, cols Columns) (*Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty: %w", internalerr.ErrInvalidDataset)
		}
		return nil, fmt.Errorf("read header: %w: %v", internalerr.ErrInvalidDataset, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	required := []string{cols.ID, cols.Description, cols.HouseholdDescription, cols.HouseholdGrams}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q: %w", name, internalerr.ErrInvalidDataset)
		}
	}
	idCol := index[cols.ID]
	descCol := index[cols.Description]
	hhDescCol := index[cols.HouseholdDescription]
	hhGramsCol := index[cols.HouseholdGrams]

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, internalerr.ErrInvalidDataset, err)
		}

		id, hasID, err := ParseID(row[idCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := Record{
			ID:                   id,
			HasID:                hasID,
			Description:          row[descCol],
			HouseholdDescription: row[hhDescCol],
			HouseholdGrams:       row[hhGramsCol],
			Nutrients:            make(map[string]float64),
		}
		for i, h := range header {
			if i == idCol || i == descCol || i == hhDescCol || i == hhGramsCol {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64); err == nil && !math.IsNaN(v) {
				rec.Nutrients[h] = v
			}
		}
		records = append(records, rec)
	}

	return New(records), nil
}

// ParseID interprets an identifier cell. Blank and NaN cells yield no ID;
// float-formatted integers ("1001.0") are accepted.
func ParseID(cell string) (int64, bool, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return 0, false, nil
	}
	if id, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return id, true, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("identifier %q: %w", cell, internalerr.ErrInvalidDataset)
	}
	if math.IsNaN(f) {
		return 0, false, nil
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false, fmt.Errorf("identifier %q out of range: %w", cell, internalerr.ErrInvalidDataset)
	}
	return int64(f), true, nil
}
