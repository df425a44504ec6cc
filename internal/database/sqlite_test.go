package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLiteDSNExplicitDSNWins(t *testing.T) {
	dsn, err := sqliteDSN(Config{DSN: "file:custom.db?mode=ro", Path: "ignored.db"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dsn != "file:custom.db?mode=ro" {
		t.Fatalf("expected explicit DSN to pass through, got %q", dsn)
	}
}

func TestSQLiteDSNMemoryVariants(t *testing.T) {
	for _, path := range []string{"", "   ", ":memory:", ":MEMORY:"} {
		dsn, err := sqliteDSN(Config{Path: path})
		if err != nil {
			t.Fatalf("unexpected error for path %q: %v", path, err)
		}
		if !strings.HasPrefix(dsn, "file::memory:?cache=shared") {
			t.Fatalf("expected shared in-memory DSN for path %q, got %q", path, dsn)
		}
		if !strings.Contains(dsn, "_foreign_keys=1") || !strings.Contains(dsn, "_busy_timeout=") {
			t.Fatalf("expected foreign keys and busy timeout flags, got %q", dsn)
		}
	}
}

func TestSQLiteDSNFileCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tempora.db")

	dsn, err := sqliteDSN(Config{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(dsn, "_journal_mode=WAL") {
		t.Fatalf("expected WAL journal mode for file DSN, got %q", dsn)
	}
	if !strings.Contains(dsn, filepath.ToSlash(path)) {
		t.Fatalf("expected DSN to reference %q, got %q", path, dsn)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Fatalf("expected parent directory to exist: %v", err)
	}
}
