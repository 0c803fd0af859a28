package repository

import (
	"context"
	"database/sql"
	"time"
)

type MySQLKV struct {
	db *sql.DB
}

func NewMySQLKV(db *sql.DB) *MySQLKV {
	return &MySQLKV{db: db}
}

func (r *MySQLKV) Get(ctx context.Context, key string) (string, bool, error) {
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

func (r *MySQLKV) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_entries (k, v, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at)
	`
	_, err := r.db.ExecContext(ctx, query, key, value, time.Now())
	return err
}

func (r *MySQLKV) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE k = ?`
	_, err := r.db.ExecContext(ctx, query, key)
	return err
}

func (r *MySQLKV) Close() error {
	return r.db.Close()
}
