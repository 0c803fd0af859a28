package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteKV is a file-backed KV store, the closest analog to the browser
// storage the signup page originally persisted to.
type SQLiteKV struct {
	db *sql.DB
}

func NewSQLiteKV(path string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_entries (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv_entries table: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

func (r *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT v FROM kv_entries WHERE k = ?`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *SQLiteKV) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_entries (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v
	`
	_, err := r.db.ExecContext(ctx, query, key, value)
	return err
}

func (r *SQLiteKV) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE k = ?`
	_, err := r.db.ExecContext(ctx, query, key)
	return err
}

func (r *SQLiteKV) Close() error {
	return r.db.Close()
}
