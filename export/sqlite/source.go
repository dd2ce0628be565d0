// Package sqlite exports namespace snapshots into a SQLite database.
package sqlite

import (
	"context"
	"errors"

	"github.com/viant/quickkv/storage"
)

// ErrNotEnabled is returned when built with the no_sqlite tag.
var ErrNotEnabled = errors.New("export/sqlite: not enabled (built with -tags no_sqlite)")

// Source is the namespace being exported.
type Source interface {
	Namespace() string
	PageSize() uint64
	Cursor() uint64
	Walk(fn func(key string, loc storage.Location, value []byte) error) error
}

// Export opens the database at path, ensures its schema and exports src.
func Export(ctx context.Context, path string, src Source) (int, error) {
	db, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	return db.Export(ctx, src)
}
