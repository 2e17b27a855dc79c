package sqlite

import (
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// File permission constants for freshly created database files.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// msPerSecond converts the busy-timeout setting to milliseconds.
	msPerSecond = 1000
)

// OpenFlag selects read/write/create semantics for Open. The zero value
// means read-write-create.
type OpenFlag int

const (
	// OpenReadOnly opens an existing database without write access.
	OpenReadOnly OpenFlag = 1 << iota

	// OpenReadWrite opens an existing database for reading and writing.
	OpenReadWrite

	// OpenCreate creates the database file if it does not exist.
	// Meaningful only together with OpenReadWrite.
	OpenCreate
)

// TxMode selects the lock-acquisition behaviour of Begin.
type TxMode int

const (
	// TxDeferred acquires no lock until the first database access.
	TxDeferred TxMode = iota

	// TxImmediate acquires a write lock immediately.
	TxImmediate

	// TxExclusive acquires an exclusive lock immediately.
	TxExclusive
)

// Config contains connection options. Path is required; everything
// else has a usable zero value.
type Config struct {
	// Path is the filesystem path to the SQLite database file, or
	// ":memory:" for a private in-memory database. The directory is
	// created if it doesn't exist.
	Path string

	// Flags selects read/write/create semantics. Zero means
	// OpenReadWrite|OpenCreate.
	Flags OpenFlag

	// BusyTimeout is the maximum time to wait for a database lock, in
	// seconds. Zero disables the wait.
	BusyTimeout int

	// WALMode enables Write-Ahead Logging.
	WALMode bool

	// ForeignKeys enables foreign key enforcement.
	ForeignKeys bool
}

// dsn renders the configuration as a go-sqlite3 connection string.
func (cfg Config) dsn() string {
	params := map[string]string{}
	if cfg.BusyTimeout > 0 {
		params["_busy_timeout"] = strconv.Itoa(cfg.BusyTimeout * msPerSecond)
	}
	if cfg.WALMode {
		params["_journal_mode"] = "WAL"
		params["_synchronous"] = "NORMAL"
	}
	if cfg.ForeignKeys {
		params["_foreign_keys"] = "on"
	}

	base := ":memory:"
	if cfg.Path != ":memory:" {
		base = "file:" + cfg.Path
		switch {
		case cfg.Flags&OpenReadOnly != 0:
			params["mode"] = "ro"
		case cfg.Flags&OpenCreate != 0 || cfg.Flags == 0:
			params["mode"] = "rwc"
		default:
			params["mode"] = "rw"
		}
	}

	if len(params) == 0 {
		return base
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return base + "?" + strings.Join(pairs, "&")
}

// engine is the underlying database driver. The package talks to it
// exclusively through the database/sql/driver interfaces.
var engine driver.Driver = &sqlite3.SQLiteDriver{}

// Conn owns exactly one open database handle. It is created by Open and
// released exactly once by Close; there is no way to copy the handle
// into a second owner.
type Conn struct {
	conn driver.Conn
	path string
}

// Open opens (and, unless the flags say otherwise, creates) the
// database described by cfg. A failed open leaves no native resource
// behind.
func Open(cfg Config) (*Conn, error) {
	if cfg.Path == "" {
		return nil, errorf("open: empty database path")
	}

	if cfg.Path != ":memory:" && cfg.Flags&OpenReadOnly == 0 {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, dirPermissions); err != nil {
				return nil, &Error{
					Message: fmt.Sprintf("creating database directory: %v", err),
					cause:   err,
				}
			}
		}
	}

	dc, err := engine.Open(cfg.dsn())
	if err != nil {
		return nil, newError(err, "")
	}

	return &Conn{conn: dc, path: cfg.Path}, nil
}

// Path returns the filesystem path the connection was opened with.
func (c *Conn) Path() string { return c.path }

// Close releases the database handle. It is idempotent and safe on a
// nil receiver. Statements prepared on this connection must be closed
// first.
func (c *Conn) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return newError(err, "")
	}
	return nil
}

// Prepare compiles sql once and returns a reusable Statement. This is
// the efficient path for queries executed many times.
func (c *Conn) Prepare(sql string) (*Statement, error) {
	if c == nil || c.conn == nil {
		return nil, errorf("connection is closed")
	}
	ds, err := c.conn.Prepare(sql)
	if err != nil {
		return nil, newError(err, sql)
	}
	return &Statement{stmt: ds, sql: sql}, nil
}

// Exec is the one-shot convenience path: it compiles sql, executes it
// with args under the Copy policy and returns the possibly
// still-iterable statement. The caller owns the returned statement and
// must close it.
func (c *Conn) Exec(sql string, args ...any) (*Statement, error) {
	st, err := c.Prepare(sql)
	if err != nil {
		return nil, err
	}
	if err := st.Execute(args...); err != nil {
		st.Close() //nolint:errcheck // the execute failure takes precedence
		return nil, err
	}
	return st, nil
}

// Begin starts a transaction with the given lock-acquisition mode.
// Transactions do not nest; beginning a second one is reported by the
// engine as an error.
func (c *Conn) Begin(mode TxMode) error {
	switch mode {
	case TxImmediate:
		return c.run("BEGIN IMMEDIATE TRANSACTION")
	case TxExclusive:
		return c.run("BEGIN EXCLUSIVE TRANSACTION")
	default:
		return c.run("BEGIN DEFERRED TRANSACTION")
	}
}

// Commit commits the open transaction. The engine reports an error when
// none is open.
func (c *Conn) Commit() error {
	return c.run("COMMIT TRANSACTION")
}

// Rollback abandons the open transaction. The engine reports an error
// when none is open.
func (c *Conn) Rollback() error {
	return c.run("ROLLBACK TRANSACTION")
}

// run executes a parameterless one-shot statement and releases it.
func (c *Conn) run(sql string) error {
	st, err := c.Exec(sql)
	if err != nil {
		return err
	}
	return st.Close()
}
