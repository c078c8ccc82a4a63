package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"

	"github.com/angelmondragon/gaspos-terminal/pkg/db"
)

const latestVersion = 20260901090300

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestUpCreatesTables(t *testing.T) {
	ctx := context.Background()
	sqlDB := openSQLite(t)

	if err := Up(ctx, sqlDB, db.DialectSQLite); err != nil {
		t.Fatalf("up failed: %v", err)
	}

	for _, table := range []string{"sales", "pos_drafts", "catalog_snapshots", "asset_cache_entries"} {
		var name string
		err := sqlDB.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s: %v", table, err)
		}
	}

	version, err := Version(ctx, sqlDB, db.DialectSQLite)
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if version != latestVersion {
		t.Fatalf("expected version %d, got %d", latestVersion, version)
	}

	// running again is a no-op
	if err := Up(ctx, sqlDB, db.DialectSQLite); err != nil {
		t.Fatalf("second up failed: %v", err)
	}
}

func TestMigrateToVersionGoesDownAndUp(t *testing.T) {
	ctx := context.Background()
	sqlDB := openSQLite(t)

	if err := Up(ctx, sqlDB, db.DialectSQLite); err != nil {
		t.Fatalf("up failed: %v", err)
	}
	if err := MigrateToVersion(ctx, sqlDB, db.DialectSQLite, "20260901090100"); err != nil {
		t.Fatalf("down-to failed: %v", err)
	}

	var count int
	if err := sqlDB.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name = 'asset_cache_entries'").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Fatal("expected asset_cache_entries to be dropped")
	}

	if err := MigrateToVersion(ctx, sqlDB, db.DialectSQLite, fmt.Sprint(latestVersion)); err != nil {
		t.Fatalf("up-to failed: %v", err)
	}
	if err := MigrateToVersion(ctx, sqlDB, db.DialectSQLite, "abc"); err == nil {
		t.Fatal("expected invalid version error")
	}
}

func TestRunRejectsUnknownDialect(t *testing.T) {
	if err := Run(context.Background(), openSQLite(t), "mysql", "up"); err == nil {
		t.Fatal("expected unsupported dialect error")
	}
	if err := Run(context.Background(), nil, db.DialectSQLite, "up"); err == nil {
		t.Fatal("expected nil db error")
	}
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := ValidateFS(Migrations(), "migrations"); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestValidateFSRejectsDrift(t *testing.T) {
	body := []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")
	fsys := fstest.MapFS{
		"m/sqlite3/20260101000000_a.sql":  {Data: body},
		"m/sqlite3/20260102000000_b.sql":  {Data: body},
		"m/postgres/20260101000000_a.sql": {Data: body},
	}
	if err := ValidateFS(fsys, "m"); err == nil {
		t.Fatal("expected drift between dialects to fail")
	}

	fsys["m/postgres/20260102000000_b.sql"] = &fstest.MapFile{Data: []byte("SELECT 1;")}
	if err := ValidateFS(fsys, "m"); err == nil {
		t.Fatal("expected missing goose header to fail")
	}

	fsys["m/postgres/20260102000000_b.sql"] = &fstest.MapFile{Data: body}
	if err := ValidateFS(fsys, "m"); err != nil {
		t.Fatalf("expected valid tree, got %v", err)
	}

	fsys["m/sqlite3/bad-name.sql"] = &fstest.MapFile{Data: body}
	if err := ValidateFS(fsys, "m"); err == nil {
		t.Fatal("expected invalid filename to fail")
	}
}

func TestCreateSQLMigrationWritesEveryDialect(t *testing.T) {
	dir := t.TempDir()
	paths, err := CreateSQLMigration(dir, "Add Shift Totals!")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to exist: %v", p, err)
		}
		if filepath.Base(p) != filepath.Base(paths[0]) {
			t.Fatalf("expected shared version, got %s and %s", paths[0], p)
		}
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created tree should validate: %v", err)
	}
	if _, err := CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected sanitized empty name to fail")
	}
}
