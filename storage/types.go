package storage

// Location identifies a value stored in a namespace data file.
//
// Offset: absolute byte offset within the data file where the value begins.
// Length: logical value length in bytes (not the reserved block size).
type Location struct {
	Offset uint64 `json:"offset"`
	Length uint64 `json:"length"`
}

// PageOffset returns the offset of the page holding the location start.
func (l Location) PageOffset(pageSize uint64) uint64 {
	return l.Offset - l.Offset%pageSize
}

// RelativeOffset returns the location start relative to its page.
func (l Location) RelativeOffset(pageSize uint64) uint64 {
	return l.Offset % pageSize
}

// End returns the first offset past the location.
func (l Location) End() uint64 {
	return l.Offset + l.Length
}

// FitsPage reports whether the location lies within a single page.
func (l Location) FitsPage(pageSize uint64) bool {
	return l.RelativeOffset(pageSize)+l.Length <= pageSize
}

// Stats exposes basic runtime metrics of an open namespace.
type Stats struct {
	Writes       uint64 `json:"writes"`
	Reads        uint64 `json:"reads"`
	Deletes      uint64 `json:"deletes"`
	CacheHits    uint64 `json:"cacheHits"`
	CacheMisses  uint64 `json:"cacheMisses"`
	BytesWritten uint64 `json:"bytesWritten"`
	BytesRead    uint64 `json:"bytesRead"`
	// Reused counts allocations served from the free ledger.
	Reused uint64 `json:"reused"`
}

// Entry pairs a key with its location.
type Entry struct {
	Key      string   `json:"key"`
	Location Location `json:"location"`
}

// Status is a point-in-time dump of a namespace state.
type Status struct {
	Namespace   string     `json:"namespace"`
	PageSize    uint64     `json:"pageSize"`
	Cursor      uint64     `json:"cursor"`
	Entries     []Entry    `json:"entries"`
	CachedPages []uint64   `json:"cachedPages"`
	FreeBlocks  []Location `json:"freeBlocks"`
	Stats       Stats      `json:"stats"`
}
