package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
)

// Record is one row of the reference food-composition table.
// Records are immutable once a Dataset has been built from them.
type Record struct {
	ID                   int64
	HasID                bool // false when the source row had no usable identifier
	Description          string
	HouseholdDescription string
	// HouseholdGrams is the raw household-weight cell. It is parsed on demand
	// by Grams so that garbage only fails the records that are actually used.
	HouseholdGrams string
	Nutrients      map[string]float64 // per 100 g, opaque to the parser

	lowerDesc string
}

// Key returns the log key for the record: the decimal form of its ID.
func (r *Record) Key() (string, bool) {
	if !r.HasID {
		return "", false
	}
	return strconv.FormatInt(r.ID, 10), true
}

// LowerDescription returns the lower-cased description cached at load time.
func (r *Record) LowerDescription() string {
	return r.lowerDesc
}

// Grams parses the household-weight grams value.
func (r *Record) Grams() (float64, error) {
	raw := strings.TrimSpace(r.HouseholdGrams)
	if raw == "" {
		return 0, fmt.Errorf("record %q: missing household grams: %w", r.Description, internalerr.ErrInvalidRecord)
	}
	g, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
		return 0, fmt.Errorf("record %q: household grams %q: %w", r.Description, raw, internalerr.ErrInvalidRecord)
	}
	return g, nil
}

// Dataset is the loaded, read-only reference table. Row order is preserved
// and is the tie-break order for equal match scores.
type Dataset struct {
	records []Record
}

// New builds a dataset from records in row order. The slice is copied.
func New(records []Record) *Dataset {
	rows := make([]Record, len(records))
	for i, r := range records {
		r.lowerDesc = strings.ToLower(r.Description)
		if r.Nutrients != nil {
			n := make(map[string]float64, len(r.Nutrients))
			for k, v := range r.Nutrients {
				n[k] = v
			}
			r.Nutrients = n
		}
		rows[i] = r
	}
	return &Dataset{records: rows}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the i-th row. Callers must not modify it.
func (d *Dataset) At(i int) *Record { return &d.records[i] }

// Descriptions returns the case-preserved descriptions in row order.
func (d *Dataset) Descriptions() []string {
	out := make([]string, len(d.records))
	for i := range d.records {
		out[i] = d.records[i].Description
	}
	return out
}

// Records returns a copy of all rows in order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}
