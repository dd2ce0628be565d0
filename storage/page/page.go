package page

import (
	"errors"
	"fmt"
	"io"

	"github.com/viant/quickkv/storage"
)

// DefaultSize is the page size used for new namespaces unless configured otherwise.
const DefaultSize uint64 = 1024

// Page is an in-memory copy of one page-aligned chunk of a data file.
type Page struct {
	Offset uint64
	Data   []byte
}

// New returns a zero-filled page.
func New(size uint64) *Page {
	return &Page{Data: make([]byte, size)}
}

// Load reads a full page starting at offset.
func Load(r io.ReaderAt, offset, size uint64) (*Page, error) {
	if offset%size != 0 {
		return nil, fmt.Errorf("%w: offset %d is not aligned to %d", storage.ErrLoadPageFail, offset, size)
	}
	p := New(size)
	n, err := r.ReadAt(p.Data, int64(offset))
	if err != nil && !(errors.Is(err, io.EOF) && uint64(n) == size) {
		return nil, fmt.Errorf("%w: read at %d: %v", storage.ErrLoadPageFail, offset, err)
	}
	p.Offset = offset
	return p, nil
}

// Size returns the page size.
func (p *Page) Size() uint64 {
	return uint64(len(p.Data))
}

// Read returns a copy of the bytes addressed by loc.
func (p *Page) Read(loc storage.Location) ([]byte, error) {
	size := p.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: empty page at %d", storage.ErrInvalidValueLen, p.Offset)
	}
	if loc.PageOffset(size) != p.Offset {
		return nil, fmt.Errorf("%w: location %d does not belong to page %d", storage.ErrPageReadOverflow, loc.Offset, p.Offset)
	}
	start := loc.RelativeOffset(size)
	if loc.Length > size || start+loc.Length > size {
		return nil, fmt.Errorf("%w: [%d,%d) exceeds page size %d", storage.ErrPageReadOverflow, start, start+loc.Length, size)
	}
	out := make([]byte, loc.Length)
	copy(out, p.Data[start:start+loc.Length])
	return out, nil
}
