// pkg/grid/geometry.go

package grid

import (
	"RasterSwap/pkg/chunk"

	"github.com/pkg/errors"
)

var ErrOutOfRange = errors.New("cell out of range")

// Geometry is the cell extent of a grid and the nominal extent of its chunks.
// The last chunk row and column may be smaller than nominal.
type Geometry struct {
	NRows      int
	NCols      int
	ChunkNRows int
	ChunkNCols int
}

func (g Geometry) Validate() error {
	if g.NRows <= 0 || g.NCols <= 0 {
		return errors.Errorf("invalid grid extent %dx%d", g.NRows, g.NCols)
	}
	if g.ChunkNRows <= 0 || g.ChunkNCols <= 0 {
		return errors.Errorf("invalid chunk extent %dx%d", g.ChunkNRows, g.ChunkNCols)
	}
	return nil
}

func (g Geometry) NChunkRows() int { return (g.NRows + g.ChunkNRows - 1) / g.ChunkNRows }
func (g Geometry) NChunkCols() int { return (g.NCols + g.ChunkNCols - 1) / g.ChunkNCols }

// NChunks is the number of chunks covering the grid.
func (g Geometry) NChunks() int { return g.NChunkRows() * g.NChunkCols() }

func (g Geometry) ChunkRow(row int) int { return row / g.ChunkNRows }
func (g Geometry) ChunkCol(col int) int { return col / g.ChunkNCols }
func (g Geometry) LocalRow(row int) int { return row - g.ChunkRow(row)*g.ChunkNRows }
func (g Geometry) LocalCol(col int) int { return col - g.ChunkCol(col)*g.ChunkNCols }

// ChunkNRowsAt returns the number of cell rows in chunk row chunkRow, 0 when
// chunkRow is out of range.
func (g Geometry) ChunkNRowsAt(chunkRow int) int {
	n := g.NChunkRows()
	switch {
	case chunkRow < 0 || chunkRow >= n:
		return 0
	case chunkRow == n-1:
		return g.NRows - (n-1)*g.ChunkNRows
	}
	return g.ChunkNRows
}

// ChunkNColsAt returns the number of cell columns in chunk column chunkCol,
// 0 when chunkCol is out of range.
func (g Geometry) ChunkNColsAt(chunkCol int) int {
	n := g.NChunkCols()
	switch {
	case chunkCol < 0 || chunkCol >= n:
		return 0
	case chunkCol == n-1:
		return g.NCols - (n-1)*g.ChunkNCols
	}
	return g.ChunkNCols
}

func (g Geometry) Contains(row, col int) bool {
	return row >= 0 && row < g.NRows && col >= 0 && col < g.NCols
}

func (g Geometry) ContainsChunk(id chunk.ID) bool {
	return id.Row >= 0 && id.Row < g.NChunkRows() && id.Col >= 0 && id.Col < g.NChunkCols()
}

// ContainsLocal checks a chunk id and a position inside that chunk.
func (g Geometry) ContainsLocal(id chunk.ID, localRow, localCol int) bool {
	return g.ContainsChunk(id) &&
		localRow >= 0 && localRow < g.ChunkNRowsAt(id.Row) &&
		localCol >= 0 && localCol < g.ChunkNColsAt(id.Col)
}

// Locate resolves a cell to its chunk and the offset inside the chunk.
func (g Geometry) Locate(row, col int) (chunk.ID, int, int, error) {
	if !g.Contains(row, col) {
		return chunk.ID{}, 0, 0, errors.Wrapf(ErrOutOfRange, "cell (%d, %d) of %dx%d", row, col, g.NRows, g.NCols)
	}
	id := chunk.ID{Row: g.ChunkRow(row), Col: g.ChunkCol(col)}
	return id, g.LocalRow(row), g.LocalCol(col), nil
}

// Clamp moves a cell onto the nearest valid one.
func (g Geometry) Clamp(row, col int) (int, int) {
	return clamp(row, g.NRows-1), clamp(col, g.NCols-1)
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

// Cell is the inverse of Locate.
func (g Geometry) Cell(id chunk.ID, localRow, localCol int) (int, int) {
	return id.Row*g.ChunkNRows + localRow, id.Col*g.ChunkNCols + localCol
}

// ChunkIDs lists every chunk id row-major.
func (g Geometry) ChunkIDs() []chunk.ID {
	ids := make([]chunk.ID, 0, g.NChunks())
	for r := 0; r < g.NChunkRows(); r++ {
		for c := 0; c < g.NChunkCols(); c++ {
			ids = append(ids, chunk.ID{Row: r, Col: c})
		}
	}
	return ids
}
