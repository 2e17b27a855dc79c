package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// openTestDB opens a database in a per-test temporary directory.
func openTestDB(t *testing.T) *Conn {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})
	return db
}

// TestOpen verifies database handle establishment.
func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(Config{Path: dbPath})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		// The file appears once something is written.
		st, err := db.Exec("CREATE TABLE t (id INTEGER)")
		if err != nil {
			t.Fatalf("Exec() error = %v", err)
		}
		st.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("creates directory if not exists", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

		db, err := Open(Config{Path: dbPath})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
	})

	t.Run("rejects empty path", func(t *testing.T) {
		if _, err := Open(Config{}); err == nil {
			t.Error("Open() with empty path should fail")
		}
	})

	t.Run("read-only open of missing file fails", func(t *testing.T) {
		_, err := Open(Config{
			Path:  filepath.Join(t.TempDir(), "absent.db"),
			Flags: OpenReadOnly,
		})
		if err == nil {
			t.Fatal("Open() of a missing read-only database should fail")
		}
		var engErr *Error
		if !errors.As(err, &engErr) {
			t.Errorf("error type = %T, want *Error", err)
		}
	})

	t.Run("returns path", func(t *testing.T) {
		db := openTestDB(t)
		if db.Path() == "" {
			t.Error("Path() should not be empty")
		}
	})
}

// TestClose verifies single release semantics.
func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Second close must be a no-op, not a double release.
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// A closed connection refuses new work.
	if _, err := db.Prepare("SELECT 1"); err == nil {
		t.Error("Prepare() on closed connection should fail")
	}
}

// TestPrepareError verifies that invalid SQL carries its context.
func TestPrepareError(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Prepare("SELEKT broken")
	if err == nil {
		t.Fatal("Prepare() with invalid SQL should fail")
	}

	var engErr *Error
	if !errors.As(err, &engErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if engErr.SQL != "SELEKT broken" {
		t.Errorf("Error.SQL = %q, want the failing statement", engErr.SQL)
	}
	if engErr.Message == "" {
		t.Error("Error.Message should carry the engine diagnostic")
	}
}

// TestTransactions verifies begin/commit/rollback behaviour.
func TestTransactions(t *testing.T) {
	t.Run("commit persists across reopen", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "tx.db")

		db, err := Open(Config{Path: dbPath})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		mustExec(t, db, "CREATE TABLE notes (body TEXT)")

		if err := db.Begin(TxImmediate); err != nil {
			t.Fatalf("Begin(TxImmediate) error = %v", err)
		}
		mustExec(t, db, "INSERT INTO notes (body) VALUES (?)", "persisted")
		if err := db.Commit(); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		db, err = Open(Config{Path: dbPath})
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		var body string
		st, err := db.Exec("SELECT body FROM notes")
		if err != nil {
			t.Fatalf("Exec() error = %v", err)
		}
		defer st.Close() //nolint:errcheck // Test cleanup

		ok, err := st.Fetch(&body)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !ok || body != "persisted" {
			t.Errorf("Fetch() = (%v, %q), want (true, %q)", ok, body, "persisted")
		}
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		db := openTestDB(t)
		mustExec(t, db, "CREATE TABLE notes (body TEXT)")

		if err := db.Begin(TxDeferred); err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		mustExec(t, db, "INSERT INTO notes (body) VALUES (?)", "discarded")
		if err := db.Rollback(); err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}

		var count int64
		fetchOne(t, db, "SELECT COUNT(*) FROM notes", &count)
		if count != 0 {
			t.Errorf("row count after rollback = %d, want 0", count)
		}
	})

	t.Run("nested begin is an engine error", func(t *testing.T) {
		db := openTestDB(t)

		if err := db.Begin(TxDeferred); err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		if err := db.Begin(TxDeferred); err == nil {
			t.Error("second Begin() should fail")
		}
		if err := db.Rollback(); err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
	})

	t.Run("commit without transaction is an engine error", func(t *testing.T) {
		db := openTestDB(t)
		if err := db.Commit(); err == nil {
			t.Error("Commit() without a transaction should fail")
		}
	})
}

// mustExec runs a one-shot statement and fails the test on error.
func mustExec(t *testing.T, db *Conn, sql string, args ...any) {
	t.Helper()
	st, err := db.Exec(sql, args...)
	if err != nil {
		t.Fatalf("Exec(%q) error = %v", sql, err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close() after Exec(%q) error = %v", sql, err)
	}
}

// fetchOne runs a one-shot query and reads its first row into outs.
func fetchOne(t *testing.T, db *Conn, sql string, outs ...any) {
	t.Helper()
	st, err := db.Exec(sql)
	if err != nil {
		t.Fatalf("Exec(%q) error = %v", sql, err)
	}
	defer st.Close() //nolint:errcheck // Test cleanup
	ok, err := st.Fetch(outs...)
	if err != nil {
		t.Fatalf("Fetch(%q) error = %v", sql, err)
	}
	if !ok {
		t.Fatalf("Fetch(%q) returned no row", sql)
	}
}
