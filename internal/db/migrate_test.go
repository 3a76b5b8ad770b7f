package db

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := loadMigrations(migrationFiles)
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migrations) == 0 || migrations[0].Version != "001" {
		t.Fatalf("unexpected migrations %+v", migrations)
	}
	if !strings.Contains(migrations[0].SQL, "DEFERRABLE INITIALLY DEFERRED") {
		t.Fatal("appointments table lacks the deferred doctor slot constraint")
	}
}

func TestLoadMigrations_OrderAndValidation(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_reminders.sql": {Data: []byte("SELECT 10;")},
		"migrations/002_indexes.sql":   {Data: []byte("SELECT 2;")},
		"migrations/001_init.sql":      {Data: []byte("SELECT 1;")},
	}
	migrations, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	var got []string
	for _, m := range migrations {
		got = append(got, m.Version)
	}
	if strings.Join(got, ",") != "001,002,010" {
		t.Fatalf("order = %v", got)
	}

	bad := fstest.MapFS{"migrations/init.sql": {Data: []byte("SELECT 1;")}}
	if _, err := loadMigrations(bad); err == nil {
		t.Fatal("expected error for unversioned file")
	}

	dup := fstest.MapFS{
		"migrations/001_a.sql": {Data: []byte("SELECT 1;")},
		"migrations/001_b.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := loadMigrations(dup); err == nil {
		t.Fatal("expected error for duplicate version")
	}
}
