package db_test

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/robalobadob/scratcher/assets"
	"github.com/robalobadob/scratcher/internal/db"
)

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	conn, err := db.Open(filepath.Join(t.TempDir(), "nested", "app.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	files, err := assets.Migrations()
	if err != nil {
		t.Fatalf("Migrations() error = %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migrations")
	}
	for i := 0; i < 2; i++ {
		if err := db.Migrate(conn, assets.FS, files); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i, err)
		}
	}

	var applied int
	if err := conn.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&applied); err != nil {
		t.Fatalf("count _migrations: %v", err)
	}
	if applied != len(files) {
		t.Fatalf("expected %d applied migrations, got %d", len(files), applied)
	}
}

func TestMigrateRollsBackFailedFile(t *testing.T) {
	t.Parallel()

	conn, err := db.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	fsys := fstest.MapFS{
		"m/001_ok.sql":  {Data: []byte(`CREATE TABLE a (id INTEGER);`)},
		"m/002_bad.sql": {Data: []byte(`CREATE TABLE b (id INTEGER); NOT SQL;`)},
	}
	if err := db.Migrate(conn, fsys, []string{"m/001_ok.sql", "m/002_bad.sql"}); err == nil {
		t.Fatal("expected error from broken migration")
	}

	var n int
	_ = conn.QueryRow(`SELECT COUNT(1) FROM _migrations WHERE name='m/002_bad.sql'`).Scan(&n)
	if n != 0 {
		t.Fatal("failed migration was recorded")
	}
}
