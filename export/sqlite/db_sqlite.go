//go:build !no_sqlite

// Default: enabled (pure-Go SQLite). To disable, build with -tags no_sqlite.

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/viant/quickkv/db/sqliteutil"
	"github.com/viant/quickkv/storage"
	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// DB wraps *sql.DB with export helpers.
type DB struct{ sql *sql.DB }

// Open opens or creates the export database.
func Open(path string) (*DB, error) {
	dsn := sqliteutil.EnsurePragmas("file:"+path, true, 5000)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("export: open %v: %w", path, err)
	}
	return &DB{sql: sqldb}, nil
}

// EnsureSchema creates required tables.
func (d *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS namespaces (
            namespace TEXT PRIMARY KEY,
            page_size INTEGER NOT NULL,
            cursor INTEGER NOT NULL,
            entries INTEGER NOT NULL,
            exported_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS entries (
            namespace TEXT NOT NULL,
            key TEXT NOT NULL,
            off INTEGER NOT NULL,
            len INTEGER NOT NULL,
            value BLOB,
            PRIMARY KEY(namespace, key)
        );`,
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Export replaces the namespace snapshot with the current content of src.
// It returns the number of exported entries.
func (d *DB) Export(ctx context.Context, src Source) (int, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()
	ns := src.Namespace()
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE namespace = ?`, ns); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries(namespace, key, off, len, value) VALUES(?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	count := 0
	err = src.Walk(func(key string, loc storage.Location, value []byte) error {
		if _, err := stmt.ExecContext(ctx, ns, key, int64(loc.Offset), int64(loc.Length), value); err != nil {
			return fmt.Errorf("export %q: %w", key, err)
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO namespaces(namespace, page_size, cursor, entries, exported_at) VALUES(?,?,?,?,?)
        ON CONFLICT(namespace) DO UPDATE SET page_size=excluded.page_size, cursor=excluded.cursor,
        entries=excluded.entries, exported_at=excluded.exported_at`,
		ns, int64(src.PageSize()), int64(src.Cursor()), count, time.Now().UTC()); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// Value returns an exported value.
func (d *DB) Value(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := d.sql.QueryRowContext(ctx, `SELECT value FROM entries WHERE namespace = ? AND key = ?`, namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", storage.ErrKeyNotFound, key)
	}
	return value, err
}

// Count returns the number of exported entries of a namespace.
func (d *DB) Count(ctx context.Context, namespace string) (int, error) {
	var count int
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE namespace = ?`, namespace).Scan(&count)
	return count, err
}

// Close closes the database.
func (d *DB) Close() error { return d.sql.Close() }
