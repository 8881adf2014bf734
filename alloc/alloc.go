// Package alloc tracks which blocks of a mounted volume are in use.
// The bitmap is not persisted: the filesystem derives it from the
// inode table on mount and keeps it current across mutations.
package alloc

import (
	"sync"
)

// Bitmap records per-block occupancy. Entry n is true iff block n is
// in use.
type Bitmap struct {
	lock *sync.Mutex // protects used
	used []bool
}

func MkBitmap(n uint64) *Bitmap {
	bm := &Bitmap{
		lock: new(sync.Mutex),
		used: make([]bool, n),
	}
	return bm
}

func (bm *Bitmap) Len() uint64 {
	return uint64(len(bm.used))
}

// MarkUsed records block n as occupied.
func (bm *Bitmap) MarkUsed(n uint64) {
	bm.lock.Lock()
	bm.used[n] = true
	bm.lock.Unlock()
}

// Free returns block n to the pool. Freeing a free block is a no-op.
func (bm *Bitmap) Free(n uint64) {
	bm.lock.Lock()
	bm.used[n] = false
	bm.lock.Unlock()
}

func (bm *Bitmap) InUse(n uint64) bool {
	bm.lock.Lock()
	defer bm.lock.Unlock()
	return bm.used[n]
}

// AllocNum claims the lowest free block and returns it. The second
// result is false when every block is taken.
func (bm *Bitmap) AllocNum() (uint64, bool) {
	bm.lock.Lock()
	defer bm.lock.Unlock()
	for n := uint64(0); n < uint64(len(bm.used)); n++ {
		if !bm.used[n] {
			bm.used[n] = true
			return n, true
		}
	}
	return 0, false
}

func (bm *Bitmap) NumFree() uint64 {
	bm.lock.Lock()
	defer bm.lock.Unlock()
	var n uint64
	for _, u := range bm.used {
		if !u {
			n++
		}
	}
	return n
}
