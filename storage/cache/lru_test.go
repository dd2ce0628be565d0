package cache

import (
	"errors"
	"slices"
	"testing"

	"github.com/viant/quickkv/storage"
	"github.com/viant/quickkv/storage/page"
)

func newPage(offset uint64) *page.Page {
	p := page.New(128)
	p.Offset = offset
	return p
}

func TestLRU_GetPut(t *testing.T) {
	c := NewLRU(2)
	if _, ok := c.Get(0); ok {
		t.Fatalf("hit on empty cache")
	}
	c.Put(newPage(0))
	c.Put(newPage(128))
	p, ok := c.Get(0)
	if !ok || p.Offset != 0 {
		t.Fatalf("Get(0) = %v %v", p, ok)
	}
	evicted := c.Put(newPage(256))
	if evicted == nil || evicted.Offset != 128 {
		t.Fatalf("evicted = %v, want page 128", evicted)
	}
	if _, ok := c.Get(128); ok {
		t.Fatalf("evicted page still cached")
	}
	if got := c.Offsets(); !slices.Equal(got, []uint64{256, 0}) {
		t.Fatalf("Offsets = %v", got)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestLRU_PutReplaces(t *testing.T) {
	c := NewLRU(2)
	c.Put(newPage(0))
	replacement := newPage(0)
	replacement.Data[0] = 7
	if evicted := c.Put(replacement); evicted != nil {
		t.Fatalf("replacing evicted %v", evicted)
	}
	p, _ := c.Get(0)
	if p.Data[0] != 7 || c.Len() != 1 {
		t.Fatalf("replacement not stored")
	}
}

func TestLRU_Invalidate(t *testing.T) {
	c := NewLRU(4)
	c.Put(newPage(0))
	c.Put(newPage(128))
	if !c.Invalidate(0) {
		t.Fatalf("Invalidate(0) = false")
	}
	if c.Invalidate(0) {
		t.Fatalf("second Invalidate(0) = true")
	}
	if _, ok := c.Get(0); ok {
		t.Fatalf("invalidated page still cached")
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestLRU_Oldest(t *testing.T) {
	c := NewLRU(0)
	if c.Capacity() != 1 {
		t.Fatalf("Capacity = %d, want 1", c.Capacity())
	}
	if _, err := c.Oldest(); !errors.Is(err, storage.ErrCacheEmpty) {
		t.Fatalf("err = %v, want ErrCacheEmpty", err)
	}
	c.Put(newPage(512))
	p, err := c.Oldest()
	if err != nil || p.Offset != 512 {
		t.Fatalf("Oldest = %v %v", p, err)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Clear left %d pages", c.Len())
	}
}
