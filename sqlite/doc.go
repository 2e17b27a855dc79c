// Package sqlite is a thin typed access layer over SQLite.
//
// It wraps the engine at the database/sql/driver level rather than
// through the database/sql pool, so a Conn is exactly one native
// database handle and transaction statements (BEGIN/COMMIT/ROLLBACK)
// always run on that handle.
//
// # Value binding and column extraction
//
// Parameters and column destinations are dispatched through a closed
// set of supported types: the native scalars (int, int32, int64,
// float64, bool, string, []byte, time.Time), untyped nil for SQL NULL,
// plus the adapter types Null, Enum/EnumColumn and Buffer. There is no
// reflection and no open registry: an unsupported type is rejected with
// a single well-defined error, and the generic adapters resolve at
// compile time.
//
// Two behaviours are silently lossy:
//
//   - reading a column into a fixed-capacity Buffer truncates data that
//     exceeds the buffer
//   - reading a NULL column into a non-optional destination yields the
//     destination's zero value
//
// Use Null for nullable columns when absence must be observable.
//
// # Concurrency
//
// A Conn and its Statements are not safe for concurrent use. Use one
// Conn per goroutine or serialise access externally.
//
// # Usage
//
//	db, err := sqlite.Open(sqlite.Config{Path: "app.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	st, err := db.Prepare("SELECT name, age FROM users WHERE id = ?")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	if err := st.Execute(int64(7)); err != nil {
//	    return err
//	}
//	var name string
//	var age sqlite.Null[int64]
//	ok, err := st.Fetch(&name, &age)
package sqlite
