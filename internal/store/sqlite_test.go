package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"order-metrics/internal/config"
)

func TestNewSQLite_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "metrics.db")
	st, err := NewSQLite(config.DatabaseConfig{Path: path, MaxOpenConns: 2, MaxIdleConns: 2})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	defer st.Close()

	if err := st.Migrate(context.Background(), "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)"); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestInMemory_SharesSingleConnection(t *testing.T) {
	st, err := NewSQLite(config.DatabaseConfig{InMemory: true, MaxOpenConns: 8})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Migrate(ctx, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)", "INSERT INTO kv VALUES ('a', '1')"); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	var v string
	if err := st.DB().QueryRowContext(ctx, "SELECT v FROM kv WHERE k = 'a'").Scan(&v); err != nil {
		t.Fatalf("query returned error: %v", err)
	}
	if v != "1" {
		t.Fatalf("unexpected value %q", v)
	}
}

func TestMigrate_ReportsFailure(t *testing.T) {
	st, err := NewSQLite(config.DatabaseConfig{InMemory: true})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	defer st.Close()

	if err := st.Migrate(context.Background(), "CREATE TABLE broken ("); err == nil {
		t.Fatalf("expected syntax error")
	}
}
