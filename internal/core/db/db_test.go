package db

import (
	"path/filepath"
	"testing"
)

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	database, err := Open("sqlite:///" + path)
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer database.Close()

	if got := database.DriverName(); got != "sqlite3" {
		t.Errorf("DriverName() = %s, want sqlite3", got)
	}
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	if _, err := Open("mysql://localhost/riskgate"); err == nil {
		t.Error("Open() error = nil, want error for unsupported scheme")
	}
}

func TestOpen_InvalidURL(t *testing.T) {
	if _, err := Open("://not-a-url"); err == nil {
		t.Error("Open() error = nil, want error for invalid URL")
	}
}

func TestMigrateUp_ChecksumTracking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	database, err := Open("sqlite:///" + path)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := MigrateUp(database); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}

	var count int
	if err := database.Get(&count, `SELECT COUNT(*) FROM migrations`); err != nil {
		t.Fatalf("failed to query migrations table: %v", err)
	}
	if count == 0 {
		t.Error("migrations table empty after MigrateUp")
	}

	var checksum string
	if err := database.Get(&checksum, `SELECT checksum FROM migrations LIMIT 1`); err != nil {
		t.Fatal(err)
	}
	if len(checksum) != 64 {
		t.Errorf("checksum length = %d, want 64 (sha256 hex)", len(checksum))
	}
}
