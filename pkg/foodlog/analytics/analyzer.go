package analytics

import (
	"sort"
	"strings"

	"github.com/cognicore/foodlog/pkg/foodlog/store"
)

// Analyzer aggregates journal entries and the mentions that matched nothing.
// It is not safe for concurrent use.
type Analyzer struct {
	totalEntries int64
	foods        map[string]*FoodStat
	unmatched    map[string]int64
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		foods:     make(map[string]*FoodStat),
		unmatched: make(map[string]int64),
	}
}

// ProcessEntry consumes one journal entry.
func (a *Analyzer) ProcessEntry(e store.LogEntry) {
	a.totalEntries++
	for key, item := range e.Items {
		fs, ok := a.foods[key]
		if !ok {
			fs = &FoodStat{Key: key}
			a.foods[key] = fs
		}
		fs.Description = item.Description
		fs.Entries++
		fs.TotalGrams += item.AmountGrams
	}
}

// ProcessUnmatched records a cleaned description that matched no food.
func (a *Analyzer) ProcessUnmatched(description string) {
	description = strings.TrimSpace(description)
	if description == "" {
		return
	}
	a.unmatched[description]++
}

// FoodStat is the running total for one food.
type FoodStat struct {
	Key         string
	Description string
	Entries     int64
	TotalGrams  float64
}

// MeanGrams is the average amount per entry that logged the food.
func (f FoodStat) MeanGrams() float64 {
	if f.Entries == 0 {
		return 0
	}
	return f.TotalGrams / float64(f.Entries)
}

// UnmatchedStat counts a description the parser could not place.
type UnmatchedStat struct {
	Description string
	Count       int64
}

// Stats exposes the aggregated counts.
type Stats struct {
	TotalEntries int64
	Foods        []FoodStat      // by total grams, heaviest first
	Unmatched    []UnmatchedStat // most frequent first
}

// Snapshot returns a copy of the accumulated statistics.
func (a *Analyzer) Snapshot() Stats {
	stats := Stats{TotalEntries: a.totalEntries}

	for _, fs := range a.foods {
		stats.Foods = append(stats.Foods, *fs)
	}
	sort.Slice(stats.Foods, func(i, j int) bool {
		fi, fj := stats.Foods[i], stats.Foods[j]
		if fi.TotalGrams != fj.TotalGrams {
			return fi.TotalGrams > fj.TotalGrams
		}
		return fi.Key < fj.Key
	})

	for desc, n := range a.unmatched {
		stats.Unmatched = append(stats.Unmatched, UnmatchedStat{Description: desc, Count: n})
	}
	sort.Slice(stats.Unmatched, func(i, j int) bool {
		ui, uj := stats.Unmatched[i], stats.Unmatched[j]
		if ui.Count != uj.Count {
			return ui.Count > uj.Count
		}
		return ui.Description < uj.Description
	})

	return stats
}

// TopFoods returns at most limit foods; limit <= 0 returns all.
func (s Stats) TopFoods(limit int) []FoodStat {
	if limit <= 0 || limit >= len(s.Foods) {
		return s.Foods
	}
	return s.Foods[:limit]
}
