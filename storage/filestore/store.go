// Package filestore implements a namespace: a flat data file holding values at
// page-aligned offsets and a metadata sidecar indexing them.
//
// Files of namespace "ns" under the base URL:
//   - ns.data: raw value bytes, no header, always a whole number of pages
//   - ns.meta: the encoded index (see storage/index)
//
// A Store is single-writer and not safe for concurrent use; callers serialize calls
// and keep at most one open Store per namespace (WithLock enforces the latter across
// processes).
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/viant/quickkv/storage"
	"github.com/viant/quickkv/storage/alloc"
	"github.com/viant/quickkv/storage/cache"
	"github.com/viant/quickkv/storage/index"
	"github.com/viant/quickkv/storage/page"
)

const (
	dataExt = ".data"
	metaExt = ".meta"
)

// Store is an open namespace.
type Store struct {
	namespace string
	dataPath  string
	metaURL   string
	file      *os.File
	size      uint64
	pageSize  uint64
	index     *index.Index
	alloc     *alloc.Allocator
	cache     *cache.LRU
	opts      *options
	locked    bool
	closed    bool

	stats storage.Stats
}

// DataPath returns the data file path of a namespace.
func DataPath(baseURL, namespace string) string {
	return filepath.Join(baseURL, namespace+dataExt)
}

// MetaPath returns the metadata sidecar path of a namespace.
func MetaPath(baseURL, namespace string) string {
	return filepath.Join(baseURL, namespace+metaExt)
}

// Open opens or creates a namespace.
func Open(ctx context.Context, namespace string, opts ...Option) (*Store, error) {
	o := newOptions(opts)
	if namespace == "" {
		return nil, fmt.Errorf("%w: empty namespace", storage.ErrNamespaceNotFound)
	}
	if !index.ValidPageSize(o.pageSize) {
		return nil, fmt.Errorf("%w: %d", storage.ErrInvalidPageSize, o.pageSize)
	}
	if err := os.MkdirAll(o.baseURL, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrNamespaceNotFound, err)
	}
	s := &Store{
		namespace: namespace,
		dataPath:  DataPath(o.baseURL, namespace),
		metaURL:   MetaPath(o.baseURL, namespace),
		opts:      o,
	}
	f, err := os.OpenFile(s.dataPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrNamespaceNotFound, err)
	}
	s.file = f
	if o.lock {
		if err := tryLockExclusive(f); err != nil {
			_ = f.Close()
			if errors.Is(err, errWouldBlock) {
				return nil, fmt.Errorf("%w: %v", storage.ErrNamespaceLocked, namespace)
			}
			return nil, fmt.Errorf("%w: lock: %v", storage.ErrNamespaceNotFound, err)
		}
		s.locked = true
	}
	info, err := f.Stat()
	if err != nil {
		_ = s.release()
		return nil, fmt.Errorf("%w: %v", storage.ErrNamespaceNotFound, err)
	}
	s.size = uint64(info.Size())
	if err := s.loadIndex(ctx); err != nil {
		_ = s.release()
		return nil, err
	}
	s.pageSize = s.index.PageSize()
	s.alloc = alloc.New(s.pageSize, s.index.Cursor(), s.index.Free())
	s.cache = cache.NewLRU(o.cachePages)
	s.logf("opened namespace %s: %d keys, page size %d, cursor %d", namespace, s.index.Len(), s.pageSize, s.alloc.Cursor())
	return s, nil
}

func (s *Store) loadIndex(ctx context.Context) error {
	exists, err := s.opts.fs.Exists(ctx, s.metaURL)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrMetadataDoesntExist, err)
	}
	if !exists {
		s.index = index.New(s.opts.pageSize)
		return nil
	}
	ix, err := index.Load(ctx, s.opts.fs, s.metaURL)
	if err != nil {
		return err
	}
	if ix.PageSize() != s.opts.pageSize {
		s.logf("namespace %s: using persisted page size %d (requested %d)", s.namespace, ix.PageSize(), s.opts.pageSize)
	}
	s.index = ix
	return nil
}

func (s *Store) logf(format string, args ...any) {
	if s.opts.logf != nil {
		s.opts.logf(format, args...)
	}
}

// Namespace returns the namespace name.
func (s *Store) Namespace() string { return s.namespace }

// PageSize returns the page size of the namespace.
func (s *Store) PageSize() uint64 { return s.pageSize }

// Write stores value under key, replacing any previous value.
func (s *Store) Write(key string, value []byte) error {
	if s.closed {
		return storage.ErrClosed
	}
	grant, err := s.alloc.Allocate(uint64(len(value)))
	if err != nil {
		return err
	}
	if err = s.writeAt(grant.Location, value); err != nil {
		return err
	}
	s.alloc.Commit(grant)
	if prev, ok := s.index.Remove(key); ok {
		s.alloc.Release(prev)
	}
	s.index.Set(key, grant.Location)
	s.cache.Invalidate(grant.Location.PageOffset(s.pageSize))

	s.stats.Writes++
	s.stats.BytesWritten += uint64(len(value))
	if grant.Reused {
		s.stats.Reused++
	}
	return nil
}

func (s *Store) writeAt(loc storage.Location, value []byte) error {
	pageEnd := loc.PageOffset(s.pageSize) + s.pageSize
	if s.size < pageEnd {
		if err := s.file.Truncate(int64(pageEnd)); err != nil {
			return fmt.Errorf("%w: extend to %d: %v", storage.ErrDataFileWrite, pageEnd, err)
		}
		s.size = pageEnd
	}
	if _, err := s.file.Seek(int64(loc.Offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDataFileSeek, err)
	}
	if _, err := s.file.Write(value); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDataFileWrite, err)
	}
	if s.opts.sync {
		if err := s.file.Sync(); err != nil {
			return fmt.Errorf("%w: sync: %v", storage.ErrDataFileWrite, err)
		}
	}
	return nil
}

// Read returns the value stored under key.
func (s *Store) Read(key string) ([]byte, error) {
	if s.closed {
		return nil, storage.ErrClosed
	}
	loc, ok := s.index.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", storage.ErrKeyNotFound, key)
	}
	p, err := s.page(loc.PageOffset(s.pageSize))
	if err != nil {
		return nil, err
	}
	value, err := p.Read(loc)
	if err != nil {
		return nil, err
	}
	s.stats.Reads++
	s.stats.BytesRead += uint64(len(value))
	return value, nil
}

func (s *Store) page(offset uint64) (*page.Page, error) {
	if p, ok := s.cache.Get(offset); ok {
		if p.Size() != s.pageSize {
			s.cache.Invalidate(offset)
			return nil, fmt.Errorf("%w: page %d has %d bytes", storage.ErrCacheReadFailed, offset, p.Size())
		}
		s.stats.CacheHits++
		return p, nil
	}
	s.stats.CacheMisses++
	if offset+s.pageSize > s.size {
		return nil, fmt.Errorf("%w: page %d, file size %d", storage.ErrFileTooSmall, offset, s.size)
	}
	p, err := page.Load(s.file, offset, s.pageSize)
	if err != nil {
		return nil, err
	}
	s.cache.Put(p)
	return p, nil
}

// Delete removes key; its reserved block is returned to the free ledger.
// The value bytes are left in place.
func (s *Store) Delete(key string) error {
	if s.closed {
		return storage.ErrClosed
	}
	block, ok := s.index.Remove(key)
	if !ok {
		return fmt.Errorf("%w: %q", storage.ErrKeyNotFound, key)
	}
	s.alloc.Release(block)
	s.stats.Deletes++
	return nil
}

// Has reports whether key is stored.
func (s *Store) Has(key string) bool {
	return s.index.Has(key)
}

// Keys returns the stored keys in ascending order.
func (s *Store) Keys() iter.Seq[string] {
	return s.index.Keys()
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return s.index.Len()
}

// Walk calls fn for every key in ascending order with its location and value.
func (s *Store) Walk(fn func(key string, loc storage.Location, value []byte) error) error {
	for key, loc := range s.index.Entries() {
		value, err := s.Read(key)
		if err != nil {
			return err
		}
		if err = fn(key, loc, value); err != nil {
			return err
		}
	}
	return nil
}

// Cursor returns the next unused offset at the end of the data file.
func (s *Store) Cursor() uint64 { return s.alloc.Cursor() }

// Free returns the free ledger.
func (s *Store) Free() []storage.Location { return s.alloc.Free() }

// Location returns the location stored under key.
func (s *Store) Location(key string) (storage.Location, bool) {
	return s.index.Get(key)
}

// Stats returns runtime metrics.
func (s *Store) Stats() storage.Stats { return s.stats }

// Status returns a dump of the index, cache and free ledger.
func (s *Store) Status() *storage.Status {
	status := &storage.Status{
		Namespace:   s.namespace,
		PageSize:    s.pageSize,
		Cursor:      s.alloc.Cursor(),
		Entries:     make([]storage.Entry, 0, s.index.Len()),
		CachedPages: s.cache.Offsets(),
		FreeBlocks:  s.alloc.Free(),
		Stats:       s.stats,
	}
	for key, loc := range s.index.Entries() {
		status.Entries = append(status.Entries, storage.Entry{Key: key, Location: loc})
	}
	return status
}

// Save flushes the data file and persists the index to the sidecar.
func (s *Store) Save(ctx context.Context) error {
	if s.closed {
		return storage.ErrClosed
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", storage.ErrDataFileWrite, err)
	}
	s.index.SetCursor(s.alloc.Cursor())
	s.index.SetFree(s.alloc.Free())
	if err := s.index.Save(ctx, s.opts.fs, s.metaURL); err != nil {
		return err
	}
	s.logf("saved namespace %s: %d keys", s.namespace, s.index.Len())
	return nil
}

// Close saves the namespace and releases the data file. Save and release failures
// are both reported. Closing a closed store is a no-op.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.logf("closing namespace %s and saving metadata", s.namespace)
	err := s.Save(context.Background())
	s.closed = true
	s.cache.Clear()
	return errors.Join(err, s.release())
}

func (s *Store) release() error {
	var errs []error
	if s.locked {
		if err := unlockFile(s.file); err != nil {
			errs = append(errs, fmt.Errorf("unlock %v: %w", s.dataPath, err))
		}
		s.locked = false
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %v: %w", s.dataPath, err))
	}
	return errors.Join(errs...)
}
