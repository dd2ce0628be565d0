package filestore

import (
	"github.com/viant/afs"
	"github.com/viant/quickkv/storage/cache"
	"github.com/viant/quickkv/storage/page"
)

// Option configures a Store.
type Option func(o *options)

type options struct {
	baseURL    string
	pageSize   uint64
	cachePages int
	sync       bool
	lock       bool
	logf       func(format string, args ...any)
	fs         afs.Service
}

func (o *options) withDefaults() {
	if o.baseURL == "" {
		o.baseURL = "."
	}
	if o.pageSize == 0 {
		o.pageSize = page.DefaultSize
	}
	if o.cachePages <= 0 {
		o.cachePages = cache.DefaultPages
	}
	if o.fs == nil {
		o.fs = afs.New()
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	o.withDefaults()
	return o
}

// WithBaseURL sets the directory holding namespace files. Defaults to the working directory.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithPageSize sets the page size for newly created namespaces. It must be a power of two.
// Existing namespaces keep the page size they were created with.
func WithPageSize(size uint64) Option {
	return func(o *options) { o.pageSize = size }
}

// WithCachePages bounds the page cache.
func WithCachePages(pages int) Option {
	return func(o *options) { o.cachePages = pages }
}

// WithSync makes every write fsync the data file before the index is updated.
func WithSync(enabled bool) Option {
	return func(o *options) { o.sync = enabled }
}

// WithLock takes an advisory exclusive lock on the data file for the store lifetime.
// Open fails with storage.ErrNamespaceLocked if another process holds it.
func WithLock(enabled bool) Option {
	return func(o *options) { o.lock = enabled }
}

// WithLogf sets a logger for lifecycle events.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(o *options) { o.logf = logf }
}

// WithFS sets the afs service used for the metadata sidecar.
func WithFS(fs afs.Service) Option {
	return func(o *options) { o.fs = fs }
}
