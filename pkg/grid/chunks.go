// pkg/grid/chunks.go

package grid

import (
	"RasterSwap/pkg/chunk"
	"RasterSwap/pkg/env"

	"github.com/pkg/errors"
)

// pin returns a scope that keeps id resident while the caller works on it.
func (g *Grid) pin(id chunk.ID) *env.Scope {
	sc := env.NewScope()
	sc.Pin(g, id)
	return sc
}

// fetch returns chunk id, making it resident when needed. The chunk is read
// from its swap file when one exists and created empty otherwise. id must be
// pinned in sc.
func (g *Grid) fetch(sc *env.Scope, id chunk.ID) (*chunk.Chunk, error) {
	if c, ok := g.chunks[id]; ok {
		return c, nil
	}
	var c *chunk.Chunk
	err := g.env.Do(sc, func() error {
		if c == nil {
			var err error
			if c, err = g.makeChunk(id); err != nil {
				return err
			}
		}
		return g.env.Charge(c.MemSize())
	})
	if err != nil {
		return nil, errors.Wrapf(err, "chunk %s of %s", id, g.format.Name)
	}
	g.chunks[id] = c
	return c, nil
}

func (g *Grid) makeChunk(id chunk.ID) (*chunk.Chunk, error) {
	if g.store.Exists(id) {
		return g.store.ReadChunk(id, g.env.BitTable())
	}
	nrows, ncols := g.geo.ChunkNRowsAt(id.Row), g.geo.ChunkNColsAt(id.Col)
	return chunk.New(g.ChunkEncoding(id), id, nrows, ncols, g.noData, g.env.BitTable())
}

// writeChunk saves c to its swap file and marks it clean. A stale snapshot is
// removed first so that it never shadows newer swap files.
func (g *Grid) writeChunk(c *chunk.Chunk) error {
	if g.snapshot {
		if err := g.store.RemoveCache(); err != nil {
			return errors.Wrap(err, "remove stale snapshot")
		}
		g.snapshot = false
	}
	if err := g.store.WriteChunk(c); err != nil {
		return err
	}
	c.MarkSwapped()
	return nil
}

// SwapChunk writes chunk id if it is dirty and drops it from memory. When the
// write fails the chunk stays resident and dirty.
func (g *Grid) SwapChunk(id chunk.ID) (bool, error) {
	c, ok := g.chunks[id]
	if !ok {
		return false, nil
	}
	if !c.SwapUpToDate() {
		if err := g.writeChunk(c); err != nil {
			return false, err
		}
	}
	delete(g.chunks, id)
	g.env.Release(c.MemSize())
	return true, nil
}

// SwapOut swaps every resident chunk of the grid. It goes on after a failed
// write and returns the number of chunks swapped with the first error.
func (g *Grid) SwapOut() (int, error) {
	var n int
	var first error
	for _, id := range g.ResidentChunks() {
		ok, err := g.SwapChunk(id)
		if err != nil {
			logger.Warnf("swap chunk %s of %s: %s", id, g.format.Name, err)
			if first == nil {
				first = err
			}
			continue
		}
		if ok {
			n++
		}
	}
	return n, first
}

// Flush writes chunk id if it is resident and dirty; it stays resident.
func (g *Grid) Flush(id chunk.ID) error {
	c, ok := g.chunks[id]
	if !ok || c.SwapUpToDate() {
		return nil
	}
	return g.writeChunk(c)
}

// FlushAll writes every dirty resident chunk. It goes on after a failed write
// and returns the first error; the chunks that could not be written stay dirty.
func (g *Grid) FlushAll() error {
	var n int
	var first error
	for _, id := range g.ResidentChunks() {
		c := g.chunks[id]
		if c.SwapUpToDate() {
			continue
		}
		if err := g.writeChunk(c); err != nil {
			logger.Warnf("flush chunk %s of %s: %s", id, g.format.Name, err)
			if first == nil {
				first = errors.Wrapf(err, "flush %s", g.format.Name)
			}
			continue
		}
		n++
	}
	if n > 0 {
		logger.Debugf("flushed %d chunks of %s", n, g.format.Name)
	}
	return first
}

// Clear resets every cell to no-data, dropping resident chunks and swap files.
// Each cell that held data is reported to the statistics collaborator, which
// loads swapped chunks back once to read their values.
func (g *Grid) Clear() error {
	if err := g.store.RemoveCache(); err != nil {
		return errors.Wrap(err, "remove snapshot")
	}
	g.snapshot = false
	ids, err := g.store.Chunks()
	if err != nil {
		return err
	}
	swapped := make(map[chunk.ID]bool, len(ids))
	for _, id := range ids {
		swapped[id] = true
	}
	_, quiet := g.stats.(NopStatistics)
	for _, id := range g.geo.ChunkIDs() {
		if _, ok := g.chunks[id]; !ok && (quiet || !swapped[id]) {
			continue
		}
		if err := g.clearChunk(id, swapped[id]); err != nil {
			return err
		}
	}
	return g.removeSwapFiles()
}

func (g *Grid) clearChunk(id chunk.ID, swapped bool) error {
	sc := g.pin(id)
	defer sc.Release()
	c, err := g.fetch(sc, id)
	if err != nil {
		return err
	}
	if swapped {
		if err = g.store.RemoveChunk(id); err != nil {
			return errors.Wrapf(err, "remove chunk %s", id)
		}
	}
	for _, v := range c.ToDense(false) {
		g.stats.OnCellChanged(v, g.noData)
	}
	delete(g.chunks, id)
	g.env.Release(c.MemSize())
	return nil
}

// Recode converts chunk id to another encoding.
func (g *Grid) Recode(id chunk.ID, enc chunk.Encoding) error {
	if !g.geo.ContainsChunk(id) {
		return errors.Wrapf(ErrOutOfRange, "chunk %s", id)
	}
	sc := g.pin(id)
	defer sc.Release()
	c, err := g.fetch(sc, id)
	if err != nil {
		return err
	}
	if c.Encoding() == enc {
		return nil
	}
	return g.replace(sc, c, func() (*chunk.Chunk, error) {
		return c.Convert(enc, g.env.BitTable())
	})
}

// replace swaps resident chunk c for the one built by build, charging the new
// chunk before the old one is released. c must be pinned in sc.
func (g *Grid) replace(sc *env.Scope, c *chunk.Chunk, build func() (*chunk.Chunk, error)) error {
	var nc *chunk.Chunk
	err := g.env.Do(sc, func() error {
		if nc == nil {
			var err error
			if nc, err = build(); err != nil {
				return err
			}
		}
		return g.env.Charge(nc.MemSize())
	})
	if err != nil {
		return errors.Wrapf(err, "rebuild chunk %s of %s", c.ID(), g.format.Name)
	}
	nc.MarkDirty()
	g.chunks[c.ID()] = nc
	g.env.Release(c.MemSize())
	return nil
}

// WriteCache flushes the grid and saves a snapshot of its resident map, which
// Open can load back with WarmStart.
func (g *Grid) WriteCache() error {
	if err := g.FlushAll(); err != nil {
		return err
	}
	ids := g.ResidentChunks()
	chunks := make([]*chunk.Chunk, 0, len(ids))
	for _, id := range ids {
		chunks = append(chunks, g.chunks[id])
	}
	if err := g.store.WriteCache(chunks); err != nil {
		return errors.Wrapf(err, "snapshot %s", g.format.Name)
	}
	g.snapshot = true
	logger.Debugf("saved snapshot of %d chunks of %s", len(chunks), g.format.Name)
	return nil
}

// warmStart loads the snapshot while it fits into the memory limit without
// swapping anything.
func (g *Grid) warmStart() {
	chunks, err := g.store.ReadCache(g.env.BitTable())
	if err != nil {
		logger.Debugf("no snapshot for %s: %s", g.format.Name, err)
		return
	}
	g.snapshot = true
	for _, c := range chunks {
		if !g.geo.ContainsChunk(c.ID()) || g.Resident(c.ID()) {
			continue
		}
		if err = g.env.Charge(c.MemSize()); err != nil {
			logger.Infof("snapshot of %s partially loaded: %s", g.format.Name, err)
			return
		}
		g.chunks[c.ID()] = c
	}
}
