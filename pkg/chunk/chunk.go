// pkg/chunk/chunk.go

package chunk

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Encoding selects how a chunk keeps its cell values.
type Encoding uint8

const (
	Dense Encoding = iota + 1
	Sparse
	Bitmap64
)

var (
	ErrCapacity = errors.New("bitmap64 encoding holds at most 64 cells")
	ErrCorrupt  = errors.New("corrupted chunk data")
)

// ErrNaN rejects NaN cell values: NaN never equals itself, so the sparse and
// bitmap64 encodings could not find it again.
var ErrNaN = errors.New("NaN is not a valid cell value")

func (e Encoding) String() string {
	switch e {
	case Dense:
		return "dense"
	case Sparse:
		return "sparse"
	case Bitmap64:
		return "bitmap64"
	}
	return fmt.Sprintf("encoding(%d)", uint8(e))
}

// ParseEncoding is the inverse of Encoding.String.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "dense":
		return Dense, nil
	case "sparse":
		return Sparse, nil
	case "bitmap64", "bitmap":
		return Bitmap64, nil
	}
	return 0, errors.Errorf("unknown encoding: %q", s)
}

// approximate heap costs used for memory accounting
const (
	chunkOverhead   = 96
	denseCellSize   = 8
	sparseEntrySize = 40
	bitmapEntrySize = 16
)

// cells is implemented by denseCells, sparseCells and bitmapCells only.
type cells interface {
	get(pos int) float64
	set(pos int, v float64) float64
	setCost(pos int, v float64) int64
	memSize() int64
	fill(n int, v float64)
}

// Chunk owns the values of one rectangular sub-region of a grid.
// Local coordinates passed to its methods must be in range.
type Chunk struct {
	id       ID
	nrows    int
	ncols    int
	noData   float64
	cells    cells
	upToDate bool
}

// New creates a chunk of nrows x ncols cells, all holding noData.
// A fresh chunk is swap-up-to-date: an absent chunk file reads back as no-data.
func New(enc Encoding, id ID, nrows, ncols int, noData float64, table *BitTable) (*Chunk, error) {
	if nrows <= 0 || ncols <= 0 {
		return nil, errors.Errorf("invalid chunk extent %dx%d", nrows, ncols)
	}
	c := &Chunk{id: id, nrows: nrows, ncols: ncols, noData: noData, upToDate: true}
	n := nrows * ncols
	switch enc {
	case Dense:
		c.cells = newDenseCells(n, noData)
	case Sparse:
		c.cells = newSparseCells(noData)
	case Bitmap64:
		if n > MaxBitmapCells {
			return nil, errors.Wrapf(ErrCapacity, "chunk %s has %d cells", id, n)
		}
		if table == nil {
			return nil, errors.New("bitmap64 encoding needs a bit table")
		}
		c.cells = newBitmapCells(table, n, noData)
	default:
		return nil, errors.Errorf("unknown encoding %d", uint8(enc))
	}
	return c, nil
}

func (c *Chunk) ID() ID { return c.id }
func (c *Chunk) Rows() int { return c.nrows }
func (c *Chunk) Cols() int { return c.ncols }
func (c *Chunk) Len() int { return c.nrows * c.ncols }
func (c *Chunk) NoData() float64 { return c.noData }
func (c *Chunk) Contains(r, col int) bool {
	return r >= 0 && r < c.nrows && col >= 0 && col < c.ncols
}

// Encoding reports which representation holds the cells.
func (c *Chunk) Encoding() Encoding {
	switch c.cells.(type) {
	case *denseCells:
		return Dense
	case *sparseCells:
		return Sparse
	case *bitmapCells:
		return Bitmap64
	}
	panic("unreachable")
}

// SwapUpToDate reports whether the on-disk copy matches memory.
func (c *Chunk) SwapUpToDate() bool { return c.upToDate }

// MarkSwapped records a successful serialization.
func (c *Chunk) MarkSwapped() { c.upToDate = true }

// MarkDirty records that memory is ahead of the on-disk copy.
func (c *Chunk) MarkDirty() { c.upToDate = false }

func (c *Chunk) pos(r, col int) int { return r*c.ncols + col }

// Get returns the value at local (r, col).
func (c *Chunk) Get(r, col int) float64 {
	return c.cells.get(c.pos(r, col))
}

// Set stores v at local (r, col) and returns the previous value. v must not
// be NaN; callers check it against ErrNaN.
func (c *Chunk) Set(r, col int, v float64) float64 {
	c.upToDate = false
	return c.cells.set(c.pos(r, col), v)
}

// SetCost returns how many bytes Set(r, col, v) would add to MemSize.
func (c *Chunk) SetCost(r, col int, v float64) int64 {
	return c.cells.setCost(c.pos(r, col), v)
}

// Fill sets every cell to v.
func (c *Chunk) Fill(v float64) {
	c.upToDate = false
	c.cells.fill(c.Len(), v)
}

// MemSize estimates the heap bytes held by the chunk.
func (c *Chunk) MemSize() int64 {
	return chunkOverhead + c.cells.memSize()
}

// ToDense returns the cells in row-major order. Without includeNoData
// cells holding the no-data value are skipped.
func (c *Chunk) ToDense(includeNoData bool) []float64 {
	n := c.Len()
	switch cs := c.cells.(type) {
	case *denseCells:
		if includeNoData {
			out := make([]float64, n)
			copy(out, cs.vals)
			return out
		}
		out := make([]float64, 0, n)
		for _, v := range cs.vals {
			if v != c.noData {
				out = append(out, v)
			}
		}
		return out
	case *sparseCells:
		if includeNoData {
			out := make([]float64, n)
			for i := range out {
				out[i] = c.noData
			}
			for p, v := range cs.vals {
				out[p] = v
			}
			return out
		}
		ps := cs.positions()
		out := make([]float64, 0, len(ps))
		for _, p := range ps {
			out = append(out, cs.vals[int32(p)])
		}
		return out
	case *bitmapCells:
		out := make([]float64, 0, n)
		for p := 0; p < n; p++ {
			v := cs.get(p)
			if includeNoData || v != c.noData {
				out = append(out, v)
			}
		}
		return out
	}
	panic("unreachable")
}

// Convert returns a copy of the chunk in another encoding. The copy keeps
// the swap state of c.
func (c *Chunk) Convert(enc Encoding, table *BitTable) (*Chunk, error) {
	nc, err := New(enc, c.id, c.nrows, c.ncols, c.noData, table)
	if err != nil {
		return nil, err
	}
	for p, v := range c.ToDense(true) {
		if v != c.noData {
			nc.cells.set(p, v)
		}
	}
	nc.upToDate = c.upToDate
	return nc, nil
}

func (c *Chunk) String() string {
	return fmt.Sprintf("chunk %s (%dx%d %s)", c.id, c.nrows, c.ncols, c.Encoding())
}
