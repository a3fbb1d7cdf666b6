package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity.db")

	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	var version int
	if err := conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("read schema_version: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}

	if _, err := conn.Exec("INSERT INTO activity_logs (id, entity_type, entity_id, action) VALUES ('AL-0001', 'item', 'DI-001', 'create')"); err != nil {
		t.Errorf("insert into activity_logs: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.db")

	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	conn.Close()

	conn, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	conn.Close()
}

func TestRunMigrations_UpgradesPartialDatabase(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	conn.SetMaxOpenConns(1)

	// Simulate a database created before the entity index existed.
	if err := createVersionTable(conn); err != nil {
		t.Fatalf("createVersionTable: %v", err)
	}
	tx, _ := conn.Begin()
	if err := migrationV1(tx); err != nil {
		t.Fatalf("migrationV1: %v", err)
	}
	tx.Exec("INSERT INTO schema_version (version) VALUES (1)")
	tx.Commit()

	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}

	var count int
	conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_activity_logs_entity'").Scan(&count)
	if count != 1 {
		t.Error("expected entity index after migration")
	}
}
