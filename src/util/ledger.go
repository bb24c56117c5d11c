package util

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// LedgerEntry is one audit row: a past compile invocation. This is pure
// history — it is never read back by the compiler itself to skip, cache,
// or alter a compilation, since that would reintroduce incremental
// compilation.
type LedgerEntry struct {
	BuildID    string
	Source     string
	Target     string
	Optimized  bool
	StartedAt  time.Time
	Duration   time.Duration
	Outcome    string
	ManglCount int
}

// ---------------------
// ----- Constants -----
// ---------------------

const ledgerPath = ".vslc2c/ledger.db"

const createLedgerTable = `
CREATE TABLE IF NOT EXISTS ledger (
	build_id    TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	target      TEXT NOT NULL,
	optimized   INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	duration_ns INTEGER NOT NULL,
	outcome     TEXT NOT NULL,
	mangled     INTEGER NOT NULL
);`

// ---------------------
// ----- Functions -----
// ---------------------

// openLedger opens (and lazily creates) the local SQLite audit database.
func openLedger() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ledgerPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createLedgerTable); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// AppendLedger records one compile invocation's outcome.
func AppendLedger(e LedgerEntry) error {
	db, err := openLedger()
	if err != nil {
		return err
	}
	defer db.Close()

	opt := 0
	if e.Optimized {
		opt = 1
	}
	_, err = db.Exec(
		`INSERT INTO ledger(build_id, source, target, optimized, started_at, duration_ns, outcome, mangled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.BuildID, e.Source, e.Target, opt, e.StartedAt.Format(time.RFC3339Nano),
		e.Duration.Nanoseconds(), e.Outcome, e.ManglCount,
	)
	return err
}

// History returns every recorded ledger row, most recent first.
func History() ([]LedgerEntry, error) {
	db, err := openLedger()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT build_id, source, target, optimized, started_at, duration_ns, outcome, mangled
	                       FROM ledger ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var opt int
		var startedAt string
		var durationNS int64
		if err := rows.Scan(&e.BuildID, &e.Source, &e.Target, &opt, &startedAt, &durationNS, &e.Outcome, &e.ManglCount); err != nil {
			return nil, err
		}
		e.Optimized = opt != 0
		e.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		e.Duration = time.Duration(durationNS)
		out = append(out, e)
	}
	return out, rows.Err()
}
