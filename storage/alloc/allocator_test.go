package alloc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/viant/quickkv/storage"
)

func TestBlockSize(t *testing.T) {
	testCases := []struct {
		n      uint64
		expect uint64
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {8, 8}, {9, 16}, {12, 16}, {40, 64}, {1000, 1024}, {1024, 1024}, {1025, 2048},
	}
	for _, tc := range testCases {
		if got := BlockSize(tc.n); got != tc.expect {
			t.Fatalf("BlockSize(%d) = %d, want %d", tc.n, got, tc.expect)
		}
	}
	if got := ReservedSize(90, 100); got != 100 {
		t.Fatalf("ReservedSize(90, 100) = %d, want 100", got)
	}
}

func allocate(t *testing.T, a *Allocator, n uint64) *Grant {
	t.Helper()
	grant, err := a.Allocate(n)
	if err != nil {
		t.Fatalf("allocate %d: %v", n, err)
	}
	a.Commit(grant)
	return grant
}

func TestAllocator_Sequential(t *testing.T) {
	a := New(128, 0, nil)
	for _, tc := range []struct {
		n      uint64
		offset uint64
		cursor uint64
	}{
		{8, 0, 8},
		{12, 8, 24},
		{16, 24, 40},
		{1, 40, 41},
	} {
		g := allocate(t, a, tc.n)
		if g.Location.Offset != tc.offset || g.Location.Length != tc.n {
			t.Fatalf("alloc %d: location = %+v, want offset %d", tc.n, g.Location, tc.offset)
		}
		if a.Cursor() != tc.cursor {
			t.Fatalf("alloc %d: cursor = %d, want %d", tc.n, a.Cursor(), tc.cursor)
		}
	}
	if len(a.Free()) != 0 {
		t.Fatalf("unexpected free ledger: %+v", a.Free())
	}
}

func TestAllocator_PageBoundarySpill(t *testing.T) {
	a := New(128, 100, nil)
	g := allocate(t, a, 40)
	if g.Location.Offset != 128 {
		t.Fatalf("offset = %d, want 128", g.Location.Offset)
	}
	if g.Padding == nil || *g.Padding != (storage.Location{Offset: 100, Length: 28}) {
		t.Fatalf("padding = %+v, want [100,128)", g.Padding)
	}
	if a.Cursor() != 192 {
		t.Fatalf("cursor = %d, want 192", a.Cursor())
	}
	if !reflect.DeepEqual(a.Free(), []storage.Location{{Offset: 100, Length: 28}}) {
		t.Fatalf("free = %+v", a.Free())
	}
}

func TestAllocator_ExactFitAtBoundary(t *testing.T) {
	a := New(128, 64, nil)
	g := allocate(t, a, 64)
	if g.Location.Offset != 64 || g.Padding != nil {
		t.Fatalf("grant = %+v", g)
	}
	if a.Cursor() != 128 {
		t.Fatalf("cursor = %d, want 128", a.Cursor())
	}
}

func TestAllocator_TooLarge(t *testing.T) {
	a := New(128, 12, nil)
	if _, err := a.Allocate(129); !errors.Is(err, storage.ErrValueTooLarge) {
		t.Fatalf("err = %v, want ErrValueTooLarge", err)
	}
	if a.Cursor() != 12 || len(a.Free()) != 0 {
		t.Fatalf("state changed on rejection")
	}
	g := allocate(t, a, 128)
	if g.Location.Offset != 128 {
		t.Fatalf("full page value offset = %d, want 128", g.Location.Offset)
	}
}

func TestAllocator_ReuseFirstFit(t *testing.T) {
	a := New(128, 256, []storage.Location{{Offset: 0, Length: 8}, {Offset: 64, Length: 32}})
	g := allocate(t, a, 20)
	if !g.Reused || g.Location.Offset != 64 {
		t.Fatalf("grant = %+v, want reuse at 64", g)
	}
	if a.Cursor() != 256 {
		t.Fatalf("cursor moved on reuse: %d", a.Cursor())
	}
	if !reflect.DeepEqual(a.Free(), []storage.Location{{Offset: 0, Length: 8}}) {
		t.Fatalf("free = %+v", a.Free())
	}

	g = allocate(t, a, 3)
	if !g.Reused || g.Location.Offset != 0 {
		t.Fatalf("grant = %+v, want reuse at 0", g)
	}
	if !reflect.DeepEqual(a.Free(), []storage.Location{{Offset: 4, Length: 4}}) {
		t.Fatalf("free after split = %+v", a.Free())
	}
}

func TestAllocator_AllocateIsSideEffectFree(t *testing.T) {
	a := New(128, 100, []storage.Location{{Offset: 8, Length: 8}})
	if _, err := a.Allocate(40); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if a.Cursor() != 100 || len(a.Free()) != 1 {
		t.Fatalf("allocate mutated state: cursor %d free %+v", a.Cursor(), a.Free())
	}
}

func TestAllocator_ReleaseCoalesces(t *testing.T) {
	testCases := []struct {
		description string
		release     []storage.Location
		expect      []storage.Location
	}{
		{
			description: "adjacent in one page",
			release:     []storage.Location{{Offset: 8, Length: 8}, {Offset: 0, Length: 8}, {Offset: 16, Length: 16}},
			expect:      []storage.Location{{Offset: 0, Length: 32}},
		},
		{
			description: "adjacent across pages stay split",
			release:     []storage.Location{{Offset: 120, Length: 8}, {Offset: 128, Length: 8}},
			expect:      []storage.Location{{Offset: 120, Length: 8}, {Offset: 128, Length: 8}},
		},
		{
			description: "gap keeps ranges apart",
			release:     []storage.Location{{Offset: 32, Length: 4}, {Offset: 0, Length: 4}},
			expect:      []storage.Location{{Offset: 0, Length: 4}, {Offset: 32, Length: 4}},
		},
		{
			description: "zero length ignored",
			release:     []storage.Location{{Offset: 32, Length: 0}},
			expect:      nil,
		},
	}
	for _, tc := range testCases {
		a := New(128, 256, nil)
		for _, block := range tc.release {
			a.Release(block)
		}
		got := a.Free()
		if len(got) == 0 && len(tc.expect) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.expect) {
			t.Fatalf("%s: free = %+v, want %+v", tc.description, got, tc.expect)
		}
	}
}
