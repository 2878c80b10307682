package database

import (
	"context"
	"testing"
)

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id TEXT);\n-- +migrate Down\nDROP TABLE a;\n"
	got := ExtractUp(content)
	if got != "\nCREATE TABLE a (id TEXT);\n" {
		t.Fatalf("unexpected up section: %q", got)
	}
	if ExtractUp("SELECT 1;") != "SELECT 1;" {
		t.Fatal("content without markers should be returned whole")
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, dir := range []string{"postgres", "sqlite"} {
		files, err := migrations(dir)
		if err != nil {
			t.Fatalf("%s: %v", dir, err)
		}
		if len(files) == 0 {
			t.Fatalf("%s: no migrations embedded", dir)
		}
	}
}

func TestOpenSQLiteAppliesMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	// A second run must be a no-op.
	if err := MigrateSQLite(ctx, db); err != nil {
		t.Fatalf("re-run migrations: %v", err)
	}

	var applied int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied migration, got %d", applied)
	}

	var version int64
	if err := db.QueryRow(`SELECT version FROM admin_status WHERE id = 1`).Scan(&version); err != nil {
		t.Fatalf("admin status seed: %v", err)
	}
	if version != 0 {
		t.Fatalf("expected seeded version 0, got %d", version)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
