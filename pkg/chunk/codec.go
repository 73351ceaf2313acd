// pkg/chunk/codec.go

package chunk

import (
	"math"

	"RasterSwap/pkg/utils"

	"github.com/pkg/errors"
)

// header: encoding(1) row(4) col(4) nrows(4) ncols(4) nodata(8)
const headerSize = 1 + 4 + 4 + 4 + 4 + 8

const maxChunkSide = 1 << 16

// MaxEncodedSize bounds the length of MarshalBinary for a chunk of at most
// nrows x ncols cells, whatever its encoding.
func MaxEncodedSize(nrows, ncols int) int64 {
	n := int64(nrows) * int64(ncols)
	size := 4 + 12*n // sparse, the largest of dense and sparse
	if n <= MaxBitmapCells && 4+16*n > size {
		size = 4 + 16*n
	}
	return headerSize + size
}

// MarshalBinary serializes the chunk, encoding tag included.
func (c *Chunk) MarshalBinary() ([]byte, error) {
	var body int
	switch cs := c.cells.(type) {
	case *denseCells:
		body = 8 * len(cs.vals)
	case *sparseCells:
		body = 4 + 12*len(cs.vals)
	case *bitmapCells:
		body = 4 + 16*len(cs.entries)
	}
	b := utils.NewBuffer(uint32(headerSize + body))
	b.Put8(uint8(c.Encoding()))
	b.Put32(uint32(c.id.Row))
	b.Put32(uint32(c.id.Col))
	b.Put32(uint32(c.nrows))
	b.Put32(uint32(c.ncols))
	b.PutFloat64(c.noData)

	switch cs := c.cells.(type) {
	case *denseCells:
		for _, v := range cs.vals {
			b.PutFloat64(v)
		}
	case *sparseCells:
		b.Put32(uint32(len(cs.vals)))
		for _, p := range cs.positions() {
			b.Put32(uint32(p))
			b.PutFloat64(cs.vals[int32(p)])
		}
	case *bitmapCells:
		b.Put32(uint32(len(cs.entries)))
		for _, e := range cs.entries {
			b.PutFloat64(e.value)
			b.Put64(e.mask)
		}
	}
	return b.Bytes(), nil
}

// Unmarshal rebuilds a chunk serialized by MarshalBinary. The result is
// swap-up-to-date.
func Unmarshal(data []byte, table *BitTable) (*Chunk, error) {
	if len(data) < headerSize {
		return nil, errors.Wrapf(ErrCorrupt, "short header: %d bytes", len(data))
	}
	b := utils.ReadBuffer(data)
	enc := Encoding(b.Get8())
	id := ID{Row: int(b.Get32()), Col: int(b.Get32())}
	nrows, ncols := int(b.Get32()), int(b.Get32())
	noData := b.GetFloat64()
	if math.IsNaN(noData) {
		return nil, errors.Wrapf(ErrCorrupt, "chunk %s: NaN no-data value", id)
	}
	if nrows <= 0 || ncols <= 0 || nrows > maxChunkSide || ncols > maxChunkSide {
		return nil, errors.Wrapf(ErrCorrupt, "chunk %s: extent %dx%d", id, nrows, ncols)
	}
	if enc == Dense && b.Left() != 8*nrows*ncols {
		return nil, errors.Wrapf(ErrCorrupt, "chunk %s: dense body has %d bytes, want %d", id, b.Left(), 8*nrows*ncols)
	}

	c, err := New(enc, id, nrows, ncols, noData, table)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "chunk %s: %s", id, err)
	}
	n := c.Len()
	switch cs := c.cells.(type) {
	case *denseCells:
		for i := range cs.vals {
			if cs.vals[i] = b.GetFloat64(); math.IsNaN(cs.vals[i]) {
				return nil, errors.Wrapf(ErrCorrupt, "chunk %s: NaN at %d", id, i)
			}
		}
	case *sparseCells:
		if b.Left() < 4 {
			return nil, errors.Wrapf(ErrCorrupt, "chunk %s: missing sparse count", id)
		}
		cnt := int(b.Get32())
		if cnt > n || b.Left() != 12*cnt {
			return nil, errors.Wrapf(ErrCorrupt, "chunk %s: bad sparse body (%d entries)", id, cnt)
		}
		for i := 0; i < cnt; i++ {
			p := b.Get32()
			v := b.GetFloat64()
			if int(p) >= n {
				return nil, errors.Wrapf(ErrCorrupt, "chunk %s: position %d out of range", id, p)
			}
			if math.IsNaN(v) {
				return nil, errors.Wrapf(ErrCorrupt, "chunk %s: NaN at %d", id, p)
			}
			cs.set(int(p), v)
		}
	case *bitmapCells:
		if b.Left() < 4 {
			return nil, errors.Wrapf(ErrCorrupt, "chunk %s: missing bitmap count", id)
		}
		cnt := int(b.Get32())
		if cnt > n || b.Left() != 16*cnt {
			return nil, errors.Wrapf(ErrCorrupt, "chunk %s: bad bitmap body (%d entries)", id, cnt)
		}
		cs.entries = make([]bitEntry, cnt)
		for i := range cs.entries {
			cs.entries[i].value = b.GetFloat64()
			cs.entries[i].mask = b.Get64()
		}
		if !cs.valid() {
			return nil, errors.Wrapf(ErrCorrupt, "chunk %s: bitmap entries are not distinct values partitioning %d cells", id, n)
		}
	}
	c.upToDate = true
	return c, nil
}
