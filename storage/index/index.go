// Package index maintains the persistent metadata of a namespace: the key to location
// map, the write cursor, the page size the namespace was created with and the free ledger.
package index

import (
	"iter"
	"maps"
	"slices"

	"github.com/viant/quickkv/storage"
	"github.com/viant/quickkv/storage/alloc"
)

// Index maps keys to their locations in the namespace data file.
type Index struct {
	pageSize uint64
	cursor   uint64
	entries  map[string]storage.Location
	free     []storage.Location
}

// New creates an empty index.
func New(pageSize uint64) *Index {
	return &Index{
		pageSize: pageSize,
		entries:  make(map[string]storage.Location),
	}
}

// PageSize returns the page size the namespace was created with.
func (ix *Index) PageSize() uint64 { return ix.pageSize }

// Cursor returns the absolute offset of the next unused byte.
func (ix *Index) Cursor() uint64 { return ix.cursor }

// SetCursor updates the write cursor.
func (ix *Index) SetCursor(cursor uint64) { ix.cursor = cursor }

// Free returns the persisted free ledger.
func (ix *Index) Free() []storage.Location { return slices.Clone(ix.free) }

// SetFree replaces the persisted free ledger.
func (ix *Index) SetFree(free []storage.Location) { ix.free = slices.Clone(free) }

// Len returns the number of keys.
func (ix *Index) Len() int { return len(ix.entries) }

// Get returns the location stored under key.
func (ix *Index) Get(key string) (storage.Location, bool) {
	loc, ok := ix.entries[key]
	return loc, ok
}

// Set stores loc under key, replacing any previous location.
func (ix *Index) Set(key string, loc storage.Location) {
	ix.entries[key] = loc
}

// Has reports whether key is present.
func (ix *Index) Has(key string) bool {
	_, ok := ix.entries[key]
	return ok
}

// Remove deletes key and returns its reserved block: the location with the length
// rounded up to the block size.
func (ix *Index) Remove(key string) (storage.Location, bool) {
	loc, ok := ix.entries[key]
	if !ok {
		return storage.Location{}, false
	}
	delete(ix.entries, key)
	loc.Length = alloc.ReservedSize(loc.Length, ix.pageSize)
	return loc, true
}

// Keys returns the keys in ascending order.
func (ix *Index) Keys() iter.Seq[string] {
	keys := slices.Sorted(maps.Keys(ix.entries))
	return slices.Values(keys)
}

// Entries returns key, location pairs in ascending key order.
func (ix *Index) Entries() iter.Seq2[string, storage.Location] {
	keys := slices.Sorted(maps.Keys(ix.entries))
	return func(yield func(string, storage.Location) bool) {
		for _, key := range keys {
			loc, ok := ix.entries[key]
			if !ok {
				continue
			}
			if !yield(key, loc) {
				return
			}
		}
	}
}

// Equal reports whether both indexes hold identical state.
func (ix *Index) Equal(other *Index) bool {
	if ix.pageSize != other.pageSize || ix.cursor != other.cursor {
		return false
	}
	if !maps.Equal(ix.entries, other.entries) {
		return false
	}
	return slices.Equal(ix.free, other.free)
}
