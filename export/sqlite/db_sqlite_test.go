//go:build !no_sqlite

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/viant/quickkv/storage"
	"github.com/viant/quickkv/storage/filestore"
)

func TestExport(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := filestore.Open(ctx, "ns", filestore.WithBaseURL(base), filestore.WithPageSize(128))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	for key, value := range map[string]string{"a": "alpha", "b": "beta", "c": ""} {
		if err := s.Write(key, []byte(value)); err != nil {
			t.Fatalf("write %v: %v", key, err)
		}
	}

	path := filepath.Join(base, "export.sqlite")
	count, err := Export(ctx, path, s)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	if err := s.Delete("b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if count, err = Export(ctx, path, s); err != nil || count != 2 {
		t.Fatalf("re-export = %d, %v", count, err)
	}

	db, err := Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	value, err := db.Value(ctx, "ns", "a")
	if err != nil || string(value) != "alpha" {
		t.Fatalf("value a = %q, %v", value, err)
	}
	if _, err := db.Value(ctx, "ns", "b"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("value b: err = %v, want ErrKeyNotFound", err)
	}
	if n, err := db.Count(ctx, "ns"); err != nil || n != 2 {
		t.Fatalf("count = %d, %v", n, err)
	}
}
