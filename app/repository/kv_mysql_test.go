package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/crumble-bakery/signup-service/app/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	selectKVQuery = `(?s)SELECT v FROM kv_entries WHERE k = \?`
	upsertKVQuery = `(?s)INSERT INTO kv_entries \(k, v, updated_at\)\s+VALUES \(\?, \?, \?\)\s+ON DUPLICATE KEY UPDATE v = VALUES\(v\), updated_at = VALUES\(updated_at\)`
	deleteKVQuery = `(?s)DELETE FROM kv_entries WHERE k = \?`
)

func newMockKV(t *testing.T) (*repository.MySQLKV, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return repository.NewMySQLKV(db), mock, func() { _ = db.Close() }
}

func TestMySQLKV_Get(t *testing.T) {
	kv, mock, cleanup := newMockKV(t)
	defer cleanup()

	mock.ExpectQuery(selectKVQuery).
		WithArgs("crumbleBakery_emailSubmissions").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(`["a@b.co"]`))

	value, ok, err := kv.Get(context.Background(), "crumbleBakery_emailSubmissions")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if value != `["a@b.co"]` {
		t.Fatalf("unexpected value: %s", value)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQLKV_GetMissing(t *testing.T) {
	kv, mock, cleanup := newMockKV(t)
	defer cleanup()

	mock.ExpectQuery(selectKVQuery).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"v"}))

	value, ok, err := kv.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok || value != "" {
		t.Fatalf("expected missing key, got ok=%v value=%q", ok, value)
	}
}

func TestMySQLKV_GetError(t *testing.T) {
	kv, mock, cleanup := newMockKV(t)
	defer cleanup()

	mock.ExpectQuery(selectKVQuery).
		WithArgs("broken").
		WillReturnError(errors.New("connection lost"))

	if _, _, err := kv.Get(context.Background(), "broken"); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestMySQLKV_Set(t *testing.T) {
	kv, mock, cleanup := newMockKV(t)
	defer cleanup()

	mock.ExpectExec(upsertKVQuery).
		WithArgs("crumbleBakery_rateLimiting", `{"timestamp":1000,"attempts":1}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := kv.Set(context.Background(), "crumbleBakery_rateLimiting", `{"timestamp":1000,"attempts":1}`); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQLKV_Delete(t *testing.T) {
	kv, mock, cleanup := newMockKV(t)
	defer cleanup()

	mock.ExpectExec(deleteKVQuery).
		WithArgs("crumbleBakery_rateLimiting").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := kv.Delete(context.Background(), "crumbleBakery_rateLimiting"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}
