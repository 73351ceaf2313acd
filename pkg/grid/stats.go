// pkg/grid/stats.go

package grid

import "RasterSwap/pkg/chunk"

// Statistics is told about every committed cell write.
type Statistics interface {
	OnCellChanged(oldValue, newValue float64)
}

type NopStatistics struct{}

func (NopStatistics) OnCellChanged(oldValue, newValue float64) {}

// Summary aggregates every cell of the grid, chunk by chunk. Chunks that are
// not resident are loaded and may cause others to be swapped.
func (g *Grid) Summary() (chunk.Summary, error) {
	h := make(map[float64]int64)
	for _, id := range g.geo.ChunkIDs() {
		ch, err := g.chunkHistogram(id)
		if err != nil {
			return chunk.Summary{}, err
		}
		chunk.MergeHistogram(h, ch)
	}
	return chunk.Summarize(h, g.noData), nil
}

func (g *Grid) chunkHistogram(id chunk.ID) (map[float64]int64, error) {
	if c, ok := g.chunks[id]; ok {
		return c.Histogram(), nil
	}
	if !g.store.Exists(id) {
		n := int64(g.geo.ChunkNRowsAt(id.Row) * g.geo.ChunkNColsAt(id.Col))
		return map[float64]int64{g.noData: n}, nil
	}
	sc := g.pin(id)
	defer sc.Release()
	c, err := g.fetch(sc, id)
	if err != nil {
		return nil, err
	}
	return c.Histogram(), nil
}
