package db_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ironclub/gym/internal/db"
)

// TestWALMode verifies that the DSN parameters in db.go enable WAL journal
// mode. WAL is the key SQLite setting for concurrent reads with a single
// writer, which is what the booking transactions rely on.
func TestWALMode(t *testing.T) {
	dir := t.TempDir()
	if err := db.Init(filepath.Join(dir, "wal_test.db")); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var mode string
	db.Conn().Raw("PRAGMA journal_mode").Scan(&mode)
	if mode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", mode)
	}
}

// TestInit_CreatesIndexes verifies the composite indexes Init creates by hand
// on top of AutoMigrate.
func TestInit_CreatesIndexes(t *testing.T) {
	dir := t.TempDir()
	if err := db.Init(filepath.Join(dir, "idx_test.db")); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sqlDB, err := db.Conn().DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}

	checks := map[string]string{
		"competition_registrations": "idx_regs_comp_created",
		"payment_reports":           "idx_payments_status_created",
	}
	for table, want := range checks {
		found := indexNames(t, sqlDB, table)
		if !found[want] {
			t.Errorf("index %q missing from %s; found: %v", want, table, found)
		}
	}
}

func indexNames(t *testing.T, sqlDB *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := sqlDB.Query("PRAGMA index_list(" + table + ")")
	if err != nil {
		t.Fatalf("PRAGMA index_list: %v", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var seq int
		var name string
		var unique bool
		var origin, partial string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out[name] = true
	}
	return out
}
