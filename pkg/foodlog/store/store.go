package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/foodlog/pkg/foodlog/dataset"
)

// Store is the journal of parsed food logs.
type Store interface {
	Close() error

	// SaveLog stores e and returns its ID. An empty ID is assigned a new
	// ULID and a zero CreatedAt is set to now.
	SaveLog(ctx context.Context, e LogEntry) (string, error)
	GetLog(ctx context.Context, id string) (LogEntry, error)
	// ListLogs returns up to limit entries, newest first. limit <= 0 means all.
	ListLogs(ctx context.Context, limit int) ([]LogEntry, error)
}

// FoodTable persists the reference dataset in row order.
type FoodTable interface {
	ReplaceFoods(ctx context.Context, ds *dataset.Dataset) error
	LoadFoods(ctx context.Context) (*dataset.Dataset, error)
}

// LogEntry is one parsed sentence.
type LogEntry struct {
	ID        string          `json:"id"`
	Input     string          `json:"input"`
	CreatedAt time.Time       `json:"created_at"`
	Items     map[string]Item `json:"items"`
}

// Item is the amount logged for one food, keyed by food identifier.
type Item struct {
	AmountGrams float64 `json:"amount_gm"`
	Description string  `json:"description"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a ULID. IDs from one process sort in creation order.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Prepare fills in a missing ID and timestamp and copies the items so the
// stored entry does not alias the caller's map.
func Prepare(e LogEntry) LogEntry {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.Items = CopyItems(e.Items)
	return e
}

// CopyItems returns a copy of items; nil becomes an empty map.
func CopyItems(items map[string]Item) map[string]Item {
	out := make(map[string]Item, len(items))
	for k, v := range items {
		out[k] = v
	}
	return out
}
