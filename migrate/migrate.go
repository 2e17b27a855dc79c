package migrate

import (
	"time"

	"github.com/nerrad567/gray-sqlite/sqlite"
)

// Ledger statements. The table layout is part of the on-disk contract
// and must not change shape between releases.
const (
	createLedgerSQL = `
		CREATE TABLE IF NOT EXISTS VersionInfo
		(
			Version INTEGER NOT NULL,
			AppliedOn DATETIME,
			Description TEXT
		)`

	recordVersionSQL = `
		INSERT INTO VersionInfo(Version, AppliedOn)
		VALUES (?, datetime('now'))`

	maxVersionSQL = `
		SELECT MAX(Version)
		FROM VersionInfo`

	appliedSQL = `
		SELECT Version, AppliedOn, Description
		FROM VersionInfo
		ORDER BY Version`
)

// Record is one row of the VersionInfo ledger.
type Record struct {
	Version     int64
	AppliedOn   time.Time
	Description sqlite.Null[string]
}

// Apply advances db's schema to the latest of the supplied migration
// bodies. Bodies are applied strictly in list order; the 1-based list
// position is the recorded version. Already-recorded versions are
// skipped, so calling Apply on every startup is safe.
//
// All pending bodies run inside a single transaction: either every one
// of them applies and is recorded, or none are.
func Apply(db *sqlite.Conn, migrations []string) error {
	if err := ensureLedger(db); err != nil {
		return err
	}
	last, err := lastApplied(db)
	if err != nil {
		return err
	}
	if int64(len(migrations)) <= last {
		return nil
	}

	if err := db.Begin(sqlite.TxDeferred); err != nil {
		return err
	}
	for i := last; i < int64(len(migrations)); i++ {
		if err := applyOne(db, migrations[i], i+1); err != nil {
			db.Rollback() //nolint:errcheck // the migration failure takes precedence
			return err
		}
	}
	return db.Commit()
}

// Version reports the highest applied migration version, creating the
// ledger if it doesn't exist yet. A fresh database reports 0.
func Version(db *sqlite.Conn) (int64, error) {
	if err := ensureLedger(db); err != nil {
		return 0, err
	}
	return lastApplied(db)
}

// Applied returns the ledger rows in version order, creating the ledger
// if it doesn't exist yet.
func Applied(db *sqlite.Conn) ([]Record, error) {
	if err := ensureLedger(db); err != nil {
		return nil, err
	}

	st, err := db.Exec(appliedSQL)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck // read-only statement

	var records []Record
	for {
		var r Record
		ok, err := st.Fetch(&r.Version, &r.AppliedOn, &r.Description)
		if err != nil {
			return nil, err
		}
		if !ok {
			return records, nil
		}
		records = append(records, r)
	}
}

// applyOne executes one migration body and records its version.
func applyOne(db *sqlite.Conn, body string, version int64) error {
	st, err := db.Exec(body)
	if err != nil {
		return err
	}
	if err := st.Close(); err != nil {
		return err
	}

	rec, err := db.Exec(recordVersionSQL, version)
	if err != nil {
		return err
	}
	return rec.Close()
}

func ensureLedger(db *sqlite.Conn) error {
	st, err := db.Exec(createLedgerSQL)
	if err != nil {
		return err
	}
	return st.Close()
}

// lastApplied reads MAX(Version); the aggregate yields a NULL row on an
// empty ledger, which reads back as 0.
func lastApplied(db *sqlite.Conn) (int64, error) {
	st, err := db.Exec(maxVersionSQL)
	if err != nil {
		return 0, err
	}
	defer st.Close() //nolint:errcheck // read-only statement

	var last int64
	if _, err := st.Fetch(&last); err != nil {
		return 0, err
	}
	return last, nil
}
