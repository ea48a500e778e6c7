package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/fuzzy/pkg/fuzzy/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS estimates (
	id TEXT PRIMARY KEY,
	system TEXT,
	layer TEXT NOT NULL,
	inputs TEXT,
	samplings INTEGER NOT NULL,
	x REAL NOT NULL,
	y REAL NOT NULL,
	area REAL NOT NULL,
	fallback INTEGER NOT NULL DEFAULT 0,
	cut_offs TEXT,
	created_at TEXT
);

CREATE INDEX IF NOT EXISTS estimates_layer ON estimates(layer, id);

CREATE TABLE IF NOT EXISTS systems (
	name TEXT PRIMARY KEY,
	definition TEXT NOT NULL,
	updated_at TEXT
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveEstimate inserts or replaces an estimate
func (s *sqliteStore) SaveEstimate(ctx context.Context, e store.Estimate) error {
	if e.ID == "" {
		return fmt.Errorf("save estimate: empty id")
	}
	inputsJSON, err := encodeFloats(e.Inputs)
	if err != nil {
		return err
	}
	cutOffsJSON, err := encodeFloats(e.CutOffs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO estimates (id, system, layer, inputs, samplings, x, y, area, fallback, cut_offs, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	system=excluded.system,
	layer=excluded.layer,
	inputs=excluded.inputs,
	samplings=excluded.samplings,
	x=excluded.x,
	y=excluded.y,
	area=excluded.area,
	fallback=excluded.fallback,
	cut_offs=excluded.cut_offs,
	created_at=excluded.created_at;
`, e.ID, e.System, e.Layer, inputsJSON, e.Samplings, e.X, e.Y, e.Area, e.Fallback,
		cutOffsJSON, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

const estimateColumns = `id, system, layer, inputs, samplings, x, y, area, fallback, cut_offs, created_at`

// GetEstimate retrieves an estimate by ID
func (s *sqliteStore) GetEstimate(ctx context.Context, id string) (store.Estimate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = ?;`, id)
	e, err := scanEstimate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Estimate{}, fmt.Errorf("estimate %s: %w", id, store.ErrNotFound)
	}
	return e, err
}

// ListEstimates returns the newest estimates for a layer, or for every layer
// when layer is empty
func (s *sqliteStore) ListEstimates(ctx context.Context, layer string, limit int) ([]store.Estimate, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows *sql.Rows
		err  error
	)
	if layer == "" {
		rows, err = s.db.QueryContext(ctx, `
SELECT `+estimateColumns+`
FROM estimates
ORDER BY id DESC
LIMIT ?;
`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
SELECT `+estimateColumns+`
FROM estimates
WHERE layer = ?
ORDER BY id DESC
LIMIT ?;
`, layer, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimates []store.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}

// SaveSystem stores a system definition
func (s *sqliteStore) SaveSystem(ctx context.Context, name, definition string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO systems (name, definition, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	definition=excluded.definition,
	updated_at=excluded.updated_at;
`, name, definition, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetSystem retrieves a system definition by name
func (s *sqliteStore) GetSystem(ctx context.Context, name string) (string, error) {
	var def string
	err := s.db.QueryRowContext(ctx, `SELECT definition FROM systems WHERE name = ?;`, name).Scan(&def)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("system %s: %w", name, store.ErrNotFound)
	}
	return def, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEstimate(sc scanner) (store.Estimate, error) {
	var (
		e                       store.Estimate
		system, inputs, cutOffs sql.NullString
		createdAt               sql.NullString
	)
	if err := sc.Scan(&e.ID, &system, &e.Layer, &inputs, &e.Samplings, &e.X, &e.Y, &e.Area, &e.Fallback, &cutOffs, &createdAt); err != nil {
		return store.Estimate{}, err
	}
	e.System = system.String

	var err error
	if e.Inputs, err = decodeFloats(inputs); err != nil {
		return store.Estimate{}, fmt.Errorf("decode inputs of %s: %w", e.ID, err)
	}
	if e.CutOffs, err = decodeFloats(cutOffs); err != nil {
		return store.Estimate{}, fmt.Errorf("decode cut-offs of %s: %w", e.ID, err)
	}
	if createdAt.Valid && createdAt.String != "" {
		ts, err := time.Parse(time.RFC3339Nano, createdAt.String)
		if err != nil {
			return store.Estimate{}, fmt.Errorf("decode created_at of %s: %w", e.ID, err)
		}
		e.CreatedAt = ts
	}
	return e, nil
}

// encodeFloats stores values as strings so that ±Inf inputs survive JSON.
func encodeFloats(m map[string]float64) (string, error) {
	if m == nil {
		return "", nil
	}
	enc := make(map[string]string, len(m))
	for k, v := range m {
		enc[k] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	data, err := json.Marshal(enc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeFloats(col sql.NullString) (map[string]float64, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var enc map[string]string
	if err := json.Unmarshal([]byte(col.String), &enc); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(enc))
	for k, v := range enc {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = f
	}
	return out, nil
}
