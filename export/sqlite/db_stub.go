//go:build no_sqlite
// +build no_sqlite

package sqlite

import "context"

// DB is a stub when built with the no_sqlite tag.
type DB struct{}

// Open returns ErrNotEnabled when built with -tags no_sqlite.
func Open(_ string) (*DB, error) { return nil, ErrNotEnabled }

func (d *DB) EnsureSchema(_ context.Context) error                 { return ErrNotEnabled }
func (d *DB) Export(_ context.Context, _ Source) (int, error)      { return 0, ErrNotEnabled }
func (d *DB) Value(_ context.Context, _, _ string) ([]byte, error) { return nil, ErrNotEnabled }
func (d *DB) Count(_ context.Context, _ string) (int, error)       { return 0, ErrNotEnabled }
func (d *DB) Close() error                                         { return nil }
