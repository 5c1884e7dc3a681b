package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/foodlog/pkg/foodlog/dataset"
	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
	"github.com/cognicore/foodlog/pkg/foodlog/store"
)

// fixed width so created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements store.Store and store.FoodTable using SQLite.
type Store struct {
	db *sql.DB
}

var (
	_ store.Store     = (*Store)(nil)
	_ store.FoodTable = (*Store)(nil)
)

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS logs (
	id TEXT PRIMARY KEY,
	input TEXT NOT NULL,
	created_at TEXT NOT NULL,
	items TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS logs_created_at ON logs(created_at);

CREATE TABLE IF NOT EXISTS foods (
	row_order INTEGER PRIMARY KEY,
	food_id INTEGER,
	description TEXT NOT NULL,
	household_description TEXT NOT NULL,
	household_grams TEXT NOT NULL,
	nutrients TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveLog inserts or replaces a log entry.
func (s *Store) SaveLog(ctx context.Context, e store.LogEntry) (string, error) {
	e = store.Prepare(e)

	items, err := json.Marshal(e.Items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}

	const stmt = `
INSERT INTO logs (id, input, created_at, items)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	input=excluded.input,
	created_at=excluded.created_at,
	items=excluded.items;
`
	_, err = s.db.ExecContext(ctx, stmt, e.ID, e.Input, e.CreatedAt.UTC().Format(timeLayout), string(items))
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// GetLog returns a log entry by ID.
func (s *Store) GetLog(ctx context.Context, id string) (store.LogEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, input, created_at, items FROM logs WHERE id = ?;`, id)
	e, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.LogEntry{}, fmt.Errorf("log %s: %w", id, internalerr.ErrNotFound)
	}
	return e, err
}

// ListLogs returns entries newest first.
func (s *Store) ListLogs(ctx context.Context, limit int) ([]store.LogEntry, error) {
	query := `SELECT id, input, created_at, items FROM logs ORDER BY created_at DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.LogEntry
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLog(row scanner) (store.LogEntry, error) {
	var (
		e       store.LogEntry
		created string
		items   string
	)
	if err := row.Scan(&e.ID, &e.Input, &created, &items); err != nil {
		return store.LogEntry{}, err
	}
	if parsed, err := time.Parse(timeLayout, created); err == nil {
		e.CreatedAt = parsed
	}
	if err := json.Unmarshal([]byte(items), &e.Items); err != nil {
		return store.LogEntry{}, fmt.Errorf("decode items of log %s: %w", e.ID, err)
	}
	if e.Items == nil {
		e.Items = map[string]store.Item{}
	}
	return e, nil
}

// ReplaceFoods replaces the reference table with ds, keeping row order.
func (s *Store) ReplaceFoods(ctx context.Context, ds *dataset.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM foods`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO foods (row_order, food_id, description, household_description, household_grams, nutrients)
VALUES (?, ?, ?, ?, ?, ?);
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		nutrients, err := json.Marshal(finite(rec.Nutrients))
		if err != nil {
			return fmt.Errorf("encode nutrients of row %d: %w", i, err)
		}
		var id sql.NullInt64
		if rec.HasID {
			id = sql.NullInt64{Int64: rec.ID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, id, rec.Description, rec.HouseholdDescription, rec.HouseholdGrams, string(nutrients)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadFoods reads the reference table in row order. An empty table is
// ErrNotFound.
func (s *Store) LoadFoods(ctx context.Context) (*dataset.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT food_id, description, household_description, household_grams, nutrients
FROM foods
ORDER BY row_order;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []dataset.Record
	for rows.Next() {
		var (
			id        sql.NullInt64
			rec       dataset.Record
			nutrients string
		)
		if err := rows.Scan(&id, &rec.Description, &rec.HouseholdDescription, &rec.HouseholdGrams, &nutrients); err != nil {
			return nil, err
		}
		rec.ID, rec.HasID = id.Int64, id.Valid
		if err := json.Unmarshal([]byte(nutrients), &rec.Nutrients); err != nil {
			return nil, fmt.Errorf("decode nutrients: %w: %v", internalerr.ErrInvalidDataset, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("foods table is empty: %w", internalerr.ErrNotFound)
	}
	return dataset.New(records), nil
}

// finite drops values JSON cannot carry.
func finite(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}
