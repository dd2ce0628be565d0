// Package alloc implements the block allocation policy of a namespace data file.
//
// Values are reserved in power-of-two blocks that never cross a page boundary.
// Free ranges (page padding skipped by the cursor and blocks released by delete or
// overwrite) are kept in an offset-ordered ledger that is consulted first-fit before
// the write cursor is extended.
package alloc

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/viant/quickkv/storage"
)

// BlockSize returns the reserved block size backing a value of length n.
func BlockSize(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

// ReservedSize returns BlockSize(n) capped at the page size.
func ReservedSize(n, pageSize uint64) uint64 {
	return min(BlockSize(n), pageSize)
}

// Grant describes a pending allocation. It is applied with Allocator.Commit.
type Grant struct {
	Location storage.Location
	Block    uint64
	// Cursor is the write cursor after the grant is committed.
	Cursor uint64
	// Padding is the range skipped to avoid crossing a page, if any.
	Padding *storage.Location
	// Reused is set when the block comes from the free ledger; slot is its ledger index.
	Reused bool
	slot   int
}

// Allocator hands out blocks from the free ledger and the write cursor.
type Allocator struct {
	pageSize uint64
	cursor   uint64
	free     []storage.Location
}

// New creates an allocator; free is copied and normalized.
func New(pageSize, cursor uint64, free []storage.Location) *Allocator {
	a := &Allocator{pageSize: pageSize, cursor: cursor}
	for _, block := range free {
		a.Release(block)
	}
	return a
}

// Cursor returns the next unused offset at the end of the data file.
func (a *Allocator) Cursor() uint64 { return a.cursor }

// PageSize returns the page size the allocator works with.
func (a *Allocator) PageSize() uint64 { return a.pageSize }

// Free returns a copy of the free ledger ordered by offset.
func (a *Allocator) Free() []storage.Location {
	return slices.Clone(a.free)
}

// Allocate plans a block for a value of the given length without changing state.
func (a *Allocator) Allocate(length uint64) (*Grant, error) {
	if length > a.pageSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds page size %d", storage.ErrValueTooLarge, length, a.pageSize)
	}
	block := ReservedSize(length, a.pageSize)
	for i, candidate := range a.free {
		if candidate.Length >= block {
			return &Grant{
				Location: storage.Location{Offset: candidate.Offset, Length: length},
				Block:    block,
				Cursor:   a.cursor,
				Reused:   true,
				slot:     i,
			}, nil
		}
	}
	grant := &Grant{Block: block, slot: -1}
	offset := a.cursor
	boundary := offset - offset%a.pageSize + a.pageSize
	if boundary-offset < block {
		grant.Padding = &storage.Location{Offset: offset, Length: boundary - offset}
		offset = boundary
	}
	grant.Location = storage.Location{Offset: offset, Length: length}
	grant.Cursor = offset + block
	return grant, nil
}

// Commit applies a grant returned by the latest Allocate call.
func (a *Allocator) Commit(grant *Grant) {
	if grant.Reused {
		candidate := a.free[grant.slot]
		if candidate.Length == grant.Block {
			a.free = slices.Delete(a.free, grant.slot, grant.slot+1)
		} else {
			a.free[grant.slot] = storage.Location{
				Offset: candidate.Offset + grant.Block,
				Length: candidate.Length - grant.Block,
			}
		}
		return
	}
	if grant.Padding != nil && grant.Padding.Length > 0 {
		a.Release(*grant.Padding)
	}
	a.cursor = grant.Cursor
}

// Release returns a range to the ledger, merging it with adjacent ranges of the same page.
func (a *Allocator) Release(block storage.Location) {
	if block.Length == 0 {
		return
	}
	i, _ := slices.BinarySearchFunc(a.free, block.Offset, func(l storage.Location, offset uint64) int {
		switch {
		case l.Offset < offset:
			return -1
		case l.Offset > offset:
			return 1
		}
		return 0
	})
	a.free = slices.Insert(a.free, i, block)
	if i+1 < len(a.free) && a.mergeable(a.free[i], a.free[i+1]) {
		a.free[i].Length = max(a.free[i].End(), a.free[i+1].End()) - a.free[i].Offset
		a.free = slices.Delete(a.free, i+1, i+2)
	}
	if i > 0 && a.mergeable(a.free[i-1], a.free[i]) {
		a.free[i-1].Length = max(a.free[i-1].End(), a.free[i].End()) - a.free[i-1].Offset
		a.free = slices.Delete(a.free, i, i+1)
	}
}

func (a *Allocator) mergeable(left, right storage.Location) bool {
	if left.End() < right.Offset {
		return false
	}
	return left.PageOffset(a.pageSize) == right.PageOffset(a.pageSize)
}
