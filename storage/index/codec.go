package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/minio/highwayhash"
	"github.com/viant/bintly"
	"github.com/viant/quickkv/storage"
)

// Sidecar layout: [magic:4][highwayhash64(payload):8 LE][payload]
// payload is bintly encoded: pageSize, cursor, entry count, (key, offset, length)...,
// free count, (offset, length)...
var magic = []byte("QKV1")

const headerSize = 4 + 8

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

var (
	writers = bintly.NewWriters()
	readers = bintly.NewReaders()
)

func checksum(data []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	if _, err = h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// EncodeBinary encodes the index to a bintly stream.
func (ix *Index) EncodeBinary(stream *bintly.Writer) error {
	stream.Uint64(ix.pageSize)
	stream.Uint64(ix.cursor)
	stream.Int(len(ix.entries))
	for key, loc := range ix.Entries() {
		stream.String(key)
		stream.Uint64(loc.Offset)
		stream.Uint64(loc.Length)
	}
	stream.Int(len(ix.free))
	for _, block := range ix.free {
		stream.Uint64(block.Offset)
		stream.Uint64(block.Length)
	}
	return nil
}

// DecodeBinary decodes the index from a bintly stream.
func (ix *Index) DecodeBinary(stream *bintly.Reader) error {
	return ix.decode(stream, math.MaxInt)
}

// decode reads the index, rejecting entry and free counts above limit.
func (ix *Index) decode(stream *bintly.Reader, limit int) error {
	stream.Uint64(&ix.pageSize)
	stream.Uint64(&ix.cursor)
	var size int
	stream.Int(&size)
	if size < 0 || size > limit {
		return fmt.Errorf("invalid entry count %d", size)
	}
	ix.entries = make(map[string]storage.Location, size)
	for i := 0; i < size; i++ {
		var key string
		var loc storage.Location
		stream.String(&key)
		stream.Uint64(&loc.Offset)
		stream.Uint64(&loc.Length)
		ix.entries[key] = loc
	}
	stream.Int(&size)
	if size < 0 || size > limit {
		return fmt.Errorf("invalid free count %d", size)
	}
	ix.free = make([]storage.Location, 0, size)
	for i := 0; i < size; i++ {
		var block storage.Location
		stream.Uint64(&block.Offset)
		stream.Uint64(&block.Length)
		ix.free = append(ix.free, block)
	}
	return nil
}

// Encode serializes the index into the sidecar layout.
func (ix *Index) Encode() ([]byte, error) {
	writer := writers.Get()
	defer writers.Put(writer)
	if err := ix.EncodeBinary(writer); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrMetadataSerialization, err)
	}
	payload := writer.Bytes()
	sum, err := checksum(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrMetadataSerialization, err)
	}
	out := make([]byte, headerSize, headerSize+len(payload))
	copy(out, magic)
	binary.LittleEndian.PutUint64(out[4:headerSize], sum)
	return append(out, payload...), nil
}

// Decode parses a sidecar produced by Encode and validates it.
func Decode(data []byte) (ix *Index, err error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic) {
		return nil, fmt.Errorf("%w: missing header", storage.ErrMetadataSerialization)
	}
	payload := data[headerSize:]
	sum, err := checksum(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrMetadataSerialization, err)
	}
	if want := binary.LittleEndian.Uint64(data[4:headerSize]); want != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", storage.ErrMetadataSerialization)
	}
	defer func() {
		if r := recover(); r != nil {
			ix, err = nil, fmt.Errorf("%w: truncated payload: %v", storage.ErrMetadataSerialization, r)
		}
	}()
	reader := readers.Get()
	defer readers.Put(reader)
	if err = reader.FromBytes(slices.Clone(payload)); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrMetadataSerialization, err)
	}
	ix = &Index{}
	// every entry and free block takes at least two uint64 fields
	if err = ix.decode(reader, len(payload)/16); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrMetadataSerialization, err)
	}
	if err = ix.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrMetadataSerialization, err)
	}
	return ix, nil
}

func (ix *Index) validate() error {
	if !ValidPageSize(ix.pageSize) {
		return fmt.Errorf("%w: %d", storage.ErrInvalidPageSize, ix.pageSize)
	}
	var errs []error
	for key, loc := range ix.entries {
		if !loc.FitsPage(ix.pageSize) {
			errs = append(errs, fmt.Errorf("key %q: location [%d,%d) crosses a page", key, loc.Offset, loc.End()))
		}
	}
	for _, block := range ix.free {
		if !block.FitsPage(ix.pageSize) {
			errs = append(errs, fmt.Errorf("free block [%d,%d) crosses a page", block.Offset, block.End()))
		}
	}
	return errors.Join(errs...)
}

// ValidPageSize reports whether size is a non-zero power of two.
func ValidPageSize(size uint64) bool {
	return size != 0 && size&(size-1) == 0
}
