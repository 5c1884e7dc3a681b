package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
	"github.com/cognicore/foodlog/pkg/foodlog/store"
)

// Keys are logPrefix + ULID, so key order is creation order.
const logPrefix = "log/"

// Store implements store.Store on BadgerDB.
type Store struct {
	db  *badger.DB
	log zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens a Badger database in dataDir. An empty dataDir opens an
// in-memory database.
func Open(dataDir string, logger zerolog.Logger) (*Store, error) {
	var opts badger.Options
	if dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		absPath, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		opts = badger.DefaultOptions(absPath)
	}
	opts.Logger = nil // Disable Badger's internal logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w: %v", internalerr.ErrStoreUnavailable, err)
	}

	logger.Debug().Str("dir", dataDir).Bool("in_memory", dataDir == "").Msg("BadgerDB opened")
	return &Store{db: db, log: logger}, nil
}

// Close closes the BadgerDB database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveLog stores a log entry, replacing any entry with the same ID.
func (s *Store) SaveLog(ctx context.Context, e store.LogEntry) (string, error) {
	e = store.Prepare(e)

	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to marshal log: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(logPrefix+e.ID), data)
	})
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// GetLog returns a log entry by ID.
func (s *Store) GetLog(ctx context.Context, id string) (store.LogEntry, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(logPrefix + id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.LogEntry{}, fmt.Errorf("log %s: %w", id, internalerr.ErrNotFound)
		}
		return store.LogEntry{}, fmt.Errorf("failed to get log: %w", err)
	}

	return decode(data)
}

// ListLogs returns entries newest first by walking the keys in reverse.
// Entries saved with caller-chosen IDs sort by ID, not by time.
func (s *Store) ListLogs(ctx context.Context, limit int) ([]store.LogEntry, error) {
	var out []store.LogEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek finds the last key <= the seek key.
		seek := append([]byte(logPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix([]byte(logPrefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e store.LogEntry
			err := it.Item().Value(func(val []byte) error {
				var derr error
				e, derr = decode(val)
				return derr
			})
			if err != nil {
				s.log.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("skipping unreadable log")
				continue
			}
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return out, nil
}

func decode(data []byte) (store.LogEntry, error) {
	var e store.LogEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return store.LogEntry{}, err
	}
	if e.Items == nil {
		e.Items = map[string]store.Item{}
	}
	return e, nil
}
