// pkg/grid/cell.go

package grid

import (
	"math"

	"RasterSwap/pkg/chunk"

	"github.com/pkg/errors"
)

// GetCell returns the value of a cell, loading its chunk when needed.
func (g *Grid) GetCell(row, col int) (float64, error) {
	id, lr, lc, err := g.geo.Locate(row, col)
	if err != nil {
		return g.noData, err
	}
	return g.GetCellInChunk(id, lr, lc)
}

// SetCell writes a cell and returns its previous value.
func (g *Grid) SetCell(row, col int, v float64) (float64, error) {
	id, lr, lc, err := g.geo.Locate(row, col)
	if err != nil {
		return g.noData, err
	}
	return g.SetCellInChunk(id, lr, lc, v)
}

// InitCell writes a cell while the grid is being populated.
func (g *Grid) InitCell(row, col int, v float64) error {
	_, err := g.SetCell(row, col, v)
	return err
}

// GetCellInChunk reads a cell addressed by chunk and offset.
func (g *Grid) GetCellInChunk(id chunk.ID, localRow, localCol int) (float64, error) {
	if err := g.checkLocal(id, localRow, localCol); err != nil {
		return g.noData, err
	}
	sc := g.pin(id)
	defer sc.Release()
	c, err := g.fetch(sc, id)
	if err != nil {
		return g.noData, err
	}
	return c.Get(localRow, localCol), nil
}

// SetCellInChunk writes a cell addressed by chunk and offset and returns its
// previous value. The memory the write needs is charged before the chunk is
// touched, so a failed write leaves the cell unchanged.
func (g *Grid) SetCellInChunk(id chunk.ID, localRow, localCol int, v float64) (float64, error) {
	if err := g.checkLocal(id, localRow, localCol); err != nil {
		return g.noData, err
	}
	if math.IsNaN(v) {
		return g.noData, errors.Wrapf(chunk.ErrNaN, "cell (%d, %d) of chunk %s", localRow, localCol, id)
	}
	sc := g.pin(id)
	defer sc.Release()
	c, err := g.fetch(sc, id)
	if err != nil {
		return g.noData, err
	}
	cost := c.SetCost(localRow, localCol, v)
	if cost > 0 {
		if err = g.env.Do(sc, func() error { return g.env.Charge(cost) }); err != nil {
			return g.noData, errors.Wrapf(err, "set cell in chunk %s of %s", id, g.format.Name)
		}
	}
	before := c.MemSize()
	prev := c.Set(localRow, localCol, v)
	g.settle(c.MemSize() - before - cost)
	g.stats.OnCellChanged(prev, v)
	return prev, nil
}

// settle corrects the account after a write whose size change differs from
// what was charged for it.
func (g *Grid) settle(delta int64) {
	switch {
	case delta < 0:
		g.env.Release(-delta)
	case delta > 0:
		if err := g.env.Charge(delta); err != nil {
			logger.Warnf("grid %s over memory limit by a write: %s", g.format.Name, err)
		}
	}
}

// FillChunk sets every cell of chunk id to v.
func (g *Grid) FillChunk(id chunk.ID, v float64) error {
	if !g.geo.ContainsChunk(id) {
		return errors.Wrapf(ErrOutOfRange, "chunk %s", id)
	}
	if math.IsNaN(v) {
		return errors.Wrapf(chunk.ErrNaN, "fill chunk %s", id)
	}
	sc := g.pin(id)
	defer sc.Release()
	c, err := g.fetch(sc, id)
	if err != nil {
		return err
	}
	olds := c.ToDense(true)
	err = g.replace(sc, c, func() (*chunk.Chunk, error) {
		nc, err := chunk.New(c.Encoding(), id, c.Rows(), c.Cols(), g.noData, g.env.BitTable())
		if err != nil {
			return nil, err
		}
		nc.Fill(v)
		return nc, nil
	})
	if err != nil {
		return err
	}
	for _, old := range olds {
		if old != v {
			g.stats.OnCellChanged(old, v)
		}
	}
	return nil
}

// ChunkValues returns the cells of chunk id row-major; see chunk.ToDense.
func (g *Grid) ChunkValues(id chunk.ID, includeNoData bool) ([]float64, error) {
	if !g.geo.ContainsChunk(id) {
		return nil, errors.Wrapf(ErrOutOfRange, "chunk %s", id)
	}
	sc := g.pin(id)
	defer sc.Release()
	c, err := g.fetch(sc, id)
	if err != nil {
		return nil, err
	}
	return c.ToDense(includeNoData), nil
}

func (g *Grid) checkLocal(id chunk.ID, localRow, localCol int) error {
	if !g.geo.ContainsLocal(id, localRow, localCol) {
		return errors.Wrapf(ErrOutOfRange, "cell (%d, %d) of chunk %s", localRow, localCol, id)
	}
	return nil
}
