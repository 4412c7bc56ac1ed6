package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/memberportal/planinfo/internal/platform/db"
)

func TestMigrationSource_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationSource(""), ".")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected embedded migrations")
	}

	migs, err := db.NewMigrator(nil, migrationSource("")).LoadMigrations()
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	if migs[0].Version != 1 {
		t.Errorf("expected first migration version 1, got %d", migs[0].Version)
	}
}

func TestMigrationSource_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "007_extra.sql"), []byte("SELECT 1;"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	migs, err := db.NewMigrator(nil, migrationSource(dir)).LoadMigrations()
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	if len(migs) != 1 || migs[0].Version != 7 {
		t.Errorf("expected only version 7 from directory, got %+v", migs)
	}
}

func TestNewLogger(t *testing.T) {
	_ = newLogger("development")
	_ = newLogger("production")
}
