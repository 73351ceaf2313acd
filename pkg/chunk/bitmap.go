// pkg/chunk/bitmap.go

package chunk

import (
	"math"
	"math/bits"
)

// MaxBitmapCells is the largest chunk the bitmap64 encoding can hold.
const MaxBitmapCells = 64

// BitTable holds the single-bit mask of every bitmap position.
// It is built once and shared by all bitmap chunks of an environment.
type BitTable [MaxBitmapCells]uint64

func NewBitTable() *BitTable {
	var t BitTable
	for i := range t {
		t[i] = 1 << uint(i)
	}
	return &t
}

// Bit returns the mask for position pos.
func (t *BitTable) Bit(pos int) uint64 { return t[pos] }

// Full returns the mask with the first n positions set.
func (t *BitTable) Full(n int) uint64 {
	if n >= MaxBitmapCells {
		return ^uint64(0)
	}
	return t[n] - 1
}

type bitEntry struct {
	value float64
	mask  uint64
}

// bitmapCells maps each distinct value to the mask of positions holding it.
// Every position is set in exactly one mask.
type bitmapCells struct {
	table   *BitTable
	n       int
	entries []bitEntry
}

func newBitmapCells(table *BitTable, n int, noData float64) *bitmapCells {
	b := &bitmapCells{table: table, n: n}
	b.fill(n, noData)
	return b
}

func (b *bitmapCells) get(pos int) float64 {
	bit := b.table.Bit(pos)
	for _, e := range b.entries {
		if e.mask&bit != 0 {
			return e.value
		}
	}
	panic("bitmap64: position without value")
}

func (b *bitmapCells) set(pos int, v float64) float64 {
	bit := b.table.Bit(pos)
	var prev float64
	for i, e := range b.entries {
		if e.mask&bit == 0 {
			continue
		}
		prev = e.value
		if e.value == v {
			return prev
		}
		e.mask &^= bit
		if e.mask == 0 {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
		} else {
			b.entries[i].mask = e.mask
		}
		break
	}
	for i := range b.entries {
		if b.entries[i].value == v {
			b.entries[i].mask |= bit
			return prev
		}
	}
	b.entries = append(b.entries, bitEntry{v, bit})
	return prev
}

func (b *bitmapCells) setCost(pos int, v float64) int64 {
	for _, e := range b.entries {
		if e.value == v {
			return 0
		}
	}
	return bitmapEntrySize
}

func (b *bitmapCells) memSize() int64 { return int64(len(b.entries)) * bitmapEntrySize }

func (b *bitmapCells) fill(n int, v float64) {
	b.entries = append(b.entries[:0], bitEntry{v, b.table.Full(n)})
}

// count returns how many positions hold e.value.
func (e bitEntry) count() int64 { return int64(bits.OnesCount64(e.mask)) }

// valid checks that the values are distinct numbers and that the masks
// partition the n positions.
func (b *bitmapCells) valid() bool {
	var seen uint64
	var total int
	for i, e := range b.entries {
		if e.mask == 0 || seen&e.mask != 0 || math.IsNaN(e.value) {
			return false
		}
		for _, o := range b.entries[:i] {
			if o.value == e.value {
				return false
			}
		}
		seen |= e.mask
		total += bits.OnesCount64(e.mask)
	}
	return seen == b.table.Full(b.n) && total == b.n
}
