// Package sqliteutil builds SQLite DSNs for the pure-Go modernc driver.
package sqliteutil

import (
	"fmt"
	"strings"
)

// Pragmas lists the connection pragmas appended to a DSN.
type Pragmas struct {
	WAL           bool
	BusyTimeoutMS int
	// Synchronous is one of OFF, NORMAL, FULL; empty keeps the driver default.
	Synchronous string
}

// Apply appends the pragmas missing from dsn. It is a no-op for in-memory databases.
func (p Pragmas) Apply(dsn string) string {
	if dsn == "" || isMemory(dsn) {
		return dsn
	}
	lower := strings.ToLower(dsn)
	if p.WAL && !strings.Contains(lower, "_pragma=journal_mode") {
		dsn = addPragma(dsn, "journal_mode(WAL)")
	}
	if p.BusyTimeoutMS > 0 && !strings.Contains(lower, "_pragma=busy_timeout") {
		dsn = addPragma(dsn, fmt.Sprintf("busy_timeout(%d)", p.BusyTimeoutMS))
	}
	if p.Synchronous != "" && !strings.Contains(lower, "_pragma=synchronous") {
		dsn = addPragma(dsn, fmt.Sprintf("synchronous(%s)", strings.ToUpper(p.Synchronous)))
	}
	return dsn
}

// EnsurePragmas appends WAL and busy timeout pragmas when missing.
func EnsurePragmas(dsn string, wal bool, busyTimeoutMS int) string {
	return Pragmas{WAL: wal, BusyTimeoutMS: busyTimeoutMS, Synchronous: "NORMAL"}.Apply(dsn)
}

func isMemory(dsn string) bool {
	lower := strings.ToLower(dsn)
	return dsn == ":memory:" || strings.HasPrefix(lower, "file::memory:") || strings.Contains(lower, "mode=memory")
}

func addPragma(dsn, pragma string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=" + pragma
}
