// Package store provides a SQLite-backed key-value store for client state.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

type Store struct {
	sqldb *sql.DB
	db    *bun.DB
}

type Entry struct {
	bun.BaseModel `bun:"table:kv_entries,alias:e"`

	Name      string `bun:"name,pk"`
	Value     string `bun:"value,notnull"`
	UpdatedAt string `bun:"updated_at,notnull"`
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := sqldb.PingContext(ctx); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, fmt.Errorf("ping db: %w; close failed: %w", err, cerr)
		}
		return nil, err
	}

	if err := initSchema(ctx, sqldb); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, fmt.Errorf("init schema: %w; close failed: %w", err, cerr)
		}
		return nil, err
	}

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	return &Store{sqldb: sqldb, db: bdb}, nil
}

func (s *Store) Close() error { return s.sqldb.Close() }

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS kv_entries (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Get returns the value stored under name. A missing entry is (nil, nil),
// mirroring browser storage's getItem.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	var e Entry
	err := s.db.NewSelect().
		Model(&e).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(e.Value), nil
}

// Set overwrites the value stored under name.
func (s *Store) Set(ctx context.Context, name string, value []byte) error {
	e := Entry{
		Name:      name,
		Value:     string(value),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_, err := s.db.NewInsert().
		Model(&e).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.NewDelete().
		Model((*Entry)(nil)).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRowsAffected(res)
}

func expectRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
