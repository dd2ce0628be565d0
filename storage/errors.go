package storage

import "errors"

// Open/config errors.
var (
	// ErrNamespaceNotFound is returned when the namespace data file cannot be opened or created.
	ErrNamespaceNotFound = errors.New("storage: namespace not found")
	// ErrNamespaceLocked indicates another writer holds the namespace lock.
	ErrNamespaceLocked = errors.New("storage: namespace locked by another writer")
	// ErrInvalidPageSize indicates a page size that is zero or not a power of two.
	ErrInvalidPageSize = errors.New("storage: invalid page size")
	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("storage: store closed")
)

// Lookup errors.
var (
	// ErrKeyNotFound indicates the key is absent from the index.
	ErrKeyNotFound = errors.New("storage: key not found")
)

// Validation errors.
var (
	// ErrValueTooLarge indicates a value that does not fit a single page.
	ErrValueTooLarge = errors.New("storage: value too large")
	// ErrInvalidValueLen indicates a page or value whose length contradicts the page size.
	ErrInvalidValueLen = errors.New("storage: invalid value length")
	// ErrPageReadOverflow indicates a location that spills past its page; the index and data disagree.
	ErrPageReadOverflow = errors.New("storage: page read overflow")
)

// I/O errors.
var (
	ErrDataFileSeek    = errors.New("storage: data file seek failed")
	ErrDataFileWrite   = errors.New("storage: data file write failed")
	ErrLoadPageFail    = errors.New("storage: load page failed")
	ErrFileTooSmall    = errors.New("storage: data file too small for page")
	ErrCacheReadFailed = errors.New("storage: cache read failed")
	ErrCacheEmpty      = errors.New("storage: cache empty")
)

// Persistence errors.
var (
	ErrMetadataSerialization = errors.New("storage: metadata serialization failed")
	ErrMetadataDoesntExist   = errors.New("storage: metadata does not exist")
	ErrMetadataSaveFailed    = errors.New("storage: metadata save failed")
	ErrMetadataCreateFailed  = errors.New("storage: metadata create failed")
)
