// Package migrate brings a database's schema to the latest of an
// ordered list of migration SQL bodies, exactly once per body.
//
// Applied versions are tracked in a VersionInfo ledger table created on
// first use. Version numbers are assigned by list position (1-based),
// never by content inspection: re-running Apply with the same list is a
// no-op, and extending the list applies only the new tail. The whole
// pending suffix runs inside one transaction: a failing body rolls
// everything back and leaves the schema and ledger untouched.
//
// The runner trusts position-as-version blindly. Reordering or
// shrinking an already-applied prefix between runs is a caller error it
// does not detect; keep applied migrations frozen and only ever append.
//
// # Usage
//
//	db, err := sqlite.Open(sqlite.Config{Path: "app.db"})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	err = migrate.Apply(db, []string{
//	    "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
//	    "ALTER TABLE users ADD COLUMN email TEXT",
//	})
package migrate
