package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
	"github.com/cognicore/foodlog/pkg/foodlog/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-shot CLI runs.
type Store struct {
	mu   sync.RWMutex
	logs map[string]store.LogEntry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		logs: make(map[string]store.LogEntry),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveLog stores a log entry, replacing any entry with the same ID.
func (s *Store) SaveLog(ctx context.Context, e store.LogEntry) (string, error) {
	e = store.Prepare(e)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[e.ID] = e
	return e.ID, nil
}

// GetLog returns a log entry by ID.
func (s *Store) GetLog(ctx context.Context, id string) (store.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.logs[id]
	if !ok {
		return store.LogEntry{}, fmt.Errorf("log %s: %w", id, internalerr.ErrNotFound)
	}
	return copyEntry(e), nil
}

// ListLogs returns entries newest first.
func (s *Store) ListLogs(ctx context.Context, limit int) ([]store.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.LogEntry, 0, len(s.logs))
	for _, e := range s.logs {
		out = append(out, copyEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyEntry(e store.LogEntry) store.LogEntry {
	e.Items = store.CopyItems(e.Items)
	return e
}
