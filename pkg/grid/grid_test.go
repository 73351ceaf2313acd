package grid

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"RasterSwap/pkg/chunk"
	"RasterSwap/pkg/env"
	"RasterSwap/pkg/swap"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T, limit int64) *env.Env {
	e, err := env.New(env.Config{MemoryLimit: limit})
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func createGrid(t *testing.T, e *env.Env, name string, geo Geometry, enc string) *Grid {
	g, err := Create(e, Config{
		Dir:      filepath.Join(t.TempDir(), name),
		Geometry: geo,
		NoData:   -9999,
		Encoding: enc,
	})
	require.NoError(t, err)
	return g
}

// accounted checks that the governor holds exactly the resident chunks.
func accounted(t *testing.T, e *env.Env, grids ...*Grid) {
	var n int64
	for _, g := range grids {
		n += g.ResidentSize()
	}
	assert.Equal(t, n, e.Used())
}

func pattern(row, col int) float64 {
	if (row+col)%5 == 0 {
		return -9999
	}
	return float64((row*7 + col) % 3)
}

func TestGetSet(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 10, NCols: 10, ChunkNRows: 4, ChunkNCols: 4}, "dense")

	v, err := g.GetCell(3, 3)
	require.NoError(t, err)
	assert.Equal(t, -9999.0, v)

	prev, err := g.SetCell(3, 3, 1.5)
	require.NoError(t, err)
	assert.Equal(t, -9999.0, prev)
	prev, err = g.SetCell(3, 3, 2.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, prev)
	v, err = g.GetCellInChunk(chunk.ID{Row: 0, Col: 0}, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	require.NoError(t, g.InitCell(9, 9, 4))
	v, err = g.GetCell(9, 9)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	_, err = g.SetCell(10, 0, 1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = g.GetCellInChunk(chunk.ID{Row: 2, Col: 2}, 2, 0)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	accounted(t, e, g)
}

type recorder struct {
	changes [][2]float64
}

func (r *recorder) OnCellChanged(oldValue, newValue float64) {
	r.changes = append(r.changes, [2]float64{oldValue, newValue})
}

func TestStatisticsCollaborator(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, "sparse")
	r := &recorder{}
	g.SetStatistics(r)
	_, err := g.SetCell(0, 0, 1)
	require.NoError(t, err)
	require.NoError(t, g.InitCell(0, 0, 2))
	_, err = g.SetCellInChunk(chunk.ID{Row: 1, Col: 1}, 1, 1, 3)
	require.NoError(t, err)
	_, err = g.SetCell(-1, 0, 3)
	require.Error(t, err)
	assert.Equal(t, [][2]float64{{-9999, 1}, {1, 2}, {-9999, 3}}, r.changes)

	g.SetStatistics(nil)
	assert.Equal(t, NopStatistics{}, g.Statistics())
}

func TestFillAndClearReportChanges(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, "sparse")
	r := &recorder{}
	g.SetStatistics(r)
	_, err := g.SetCell(0, 0, 1)
	require.NoError(t, err)
	_, err = g.SetCell(0, 1, 2)
	require.NoError(t, err)
	_, err = g.SetCell(3, 3, 5)
	require.NoError(t, err)
	ok, err := g.SwapChunk(chunk.ID{Row: 1, Col: 1})
	require.NoError(t, err)
	require.True(t, ok)

	r.changes = nil
	require.NoError(t, g.FillChunk(chunk.ID{}, 2))
	assert.Equal(t, [][2]float64{{1, 2}, {-9999, 2}, {-9999, 2}}, r.changes)

	r.changes = nil
	require.NoError(t, g.Clear())
	assert.Equal(t, [][2]float64{{2, -9999}, {2, -9999}, {2, -9999}, {2, -9999}, {5, -9999}}, r.changes)
	assert.Empty(t, g.ResidentChunks())
	assert.Equal(t, int64(0), e.Used())
	ids, err := g.store.Chunks()
	require.NoError(t, err)
	assert.Empty(t, ids)
	v, err := g.GetCell(3, 3)
	require.NoError(t, err)
	assert.Equal(t, -9999.0, v)
}

func TestNaNCellRejected(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, "bitmap64")
	r := &recorder{}
	g.SetStatistics(r)
	_, err := g.SetCell(1, 1, 4)
	require.NoError(t, err)
	used := e.Used()

	_, err = g.SetCell(1, 1, math.NaN())
	assert.True(t, errors.Is(err, chunk.ErrNaN))
	_, err = g.SetCellInChunk(chunk.ID{Row: 1, Col: 1}, 0, 0, math.NaN())
	assert.True(t, errors.Is(err, chunk.ErrNaN))
	err = g.FillChunk(chunk.ID{}, math.NaN())
	assert.True(t, errors.Is(err, chunk.ErrNaN))

	v, err := g.GetCell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
	assert.Equal(t, used, e.Used())
	assert.Equal(t, [][2]float64{{-9999, 4}}, r.changes)
	s, err := g.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Distinct)
}

func TestEvictionRoundTrip(t *testing.T) {
	cases := []struct {
		enc, comp, pass string
	}{
		{"dense", "none", ""},
		{"sparse", "lz4", ""},
		{"bitmap64", "zstd", "secret"},
		{"auto", "zstd", ""},
	}
	geo := Geometry{NRows: 10, NCols: 10, ChunkNRows: 4, ChunkNCols: 4}
	for _, c := range cases {
		t.Run(c.enc, func(t *testing.T) {
			e := newEnv(t, 0)
			g, err := Create(e, Config{
				Dir:         filepath.Join(t.TempDir(), "g"),
				Geometry:    geo,
				NoData:      -9999,
				Encoding:    c.enc,
				Compression: c.comp,
				Passphrase:  c.pass,
			})
			require.NoError(t, err)
			for row := 0; row < geo.NRows; row++ {
				for col := 0; col < geo.NCols; col++ {
					require.NoError(t, g.InitCell(row, col, pattern(row, col)))
				}
			}
			accounted(t, e, g)

			n, err := g.SwapOut()
			require.NoError(t, err)
			assert.Equal(t, geo.NChunks(), n)
			assert.Empty(t, g.ResidentChunks())
			assert.Equal(t, int64(0), e.Used())

			for row := 0; row < geo.NRows; row++ {
				for col := 0; col < geo.NCols; col++ {
					v, err := g.GetCell(row, col)
					require.NoError(t, err)
					assert.Equal(t, pattern(row, col), v, "(%d, %d)", row, col)
				}
			}
			accounted(t, e, g)
		})
	}
}

func TestCleanEvictionSkipsWrite(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 4, ChunkNRows: 4, ChunkNCols: 4}, "dense")
	id := chunk.ID{}

	// a chunk that was never written has nothing to save
	_, err := g.GetCell(0, 0)
	require.NoError(t, err)
	ok, err := g.SwapChunk(id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, g.store.Exists(id))

	_, err = g.SetCell(1, 1, 7)
	require.NoError(t, err)
	_, err = g.SwapOut()
	require.NoError(t, err)
	written, _ := g.store.IOStats()
	require.NotZero(t, written)
	fi, err := os.Stat(g.store.ChunkPath(id))
	require.NoError(t, err)

	v, err := g.GetCell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	assert.True(t, g.chunks[id].SwapUpToDate())
	ok, err = g.SwapChunk(id)
	require.NoError(t, err)
	assert.True(t, ok)

	again, _ := g.store.IOStats()
	assert.Equal(t, written, again)
	fi2, err := os.Stat(g.store.ChunkPath(id))
	require.NoError(t, err)
	assert.Equal(t, fi.ModTime(), fi2.ModTime())

	ok, err = g.SwapChunk(id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPinnedEvictionAcrossGrids(t *testing.T) {
	e := newEnv(t, 0)
	a := createGrid(t, e, "a", Geometry{NRows: 8, NCols: 10, ChunkNRows: 2, ChunkNCols: 2}, "dense")
	b := createGrid(t, e, "b", Geometry{NRows: 8, NCols: 10, ChunkNRows: 2, ChunkNCols: 2}, "dense")
	c := createGrid(t, e, "c", Geometry{NRows: 4, NCols: 10, ChunkNRows: 2, ChunkNCols: 2}, "dense")
	for i, g := range []*Grid{a, b, c} {
		for _, id := range g.geo.ChunkIDs() {
			row, col := g.geo.Cell(id, 1, 1)
			_, err := g.SetCell(row, col, float64(i*100+row*10+col))
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 50, e.Stats().Resident)
	accounted(t, e, a, b, c)
	e.SetMemoryLimit(e.Used())

	first := chunk.ID{Row: 0, Col: 0}
	second := chunk.ID{Row: 0, Col: 1}
	sc := env.NewScope()
	sc.Pin(a, first)
	require.NoError(t, e.Do(sc, func() error { return e.Charge(128) }))
	sc.Release()

	assert.True(t, a.Resident(first))
	assert.False(t, a.Resident(second))
	assert.True(t, a.store.Exists(second))
	assert.Equal(t, 49, e.Stats().Resident)

	// loading the swapped chunk evicts the first one in order
	v, err := a.GetCell(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 13.0, v)
	assert.False(t, a.Resident(first))
	assert.True(t, a.Resident(second))

	v, err = c.GetCell(3, 9)
	require.NoError(t, err)
	assert.Equal(t, 239.0, v)
	v, err = a.GetCell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 11.0, v)
	assert.Equal(t, 49, e.Stats().Resident)
	assert.LessOrEqual(t, e.Used(), e.Config().MemoryLimit)
	e.Release(128)
	accounted(t, e, a, b, c)
}

func TestExhaustedWhenNothingEvictable(t *testing.T) {
	e := newEnv(t, 100)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, "dense")
	_, err := g.GetCell(0, 0)
	assert.True(t, errors.Is(err, env.ErrExhausted))
	assert.Empty(t, g.ResidentChunks())
	assert.Equal(t, int64(0), e.Used())
}

func TestSetChargesBeforeWriting(t *testing.T) {
	// one sparse chunk: 96 bytes, each entry 40 more
	e := newEnv(t, 150)
	g := createGrid(t, e, "g", Geometry{NRows: 2, NCols: 2, ChunkNRows: 2, ChunkNCols: 2}, "sparse")
	_, err := g.SetCell(0, 0, 1)
	require.NoError(t, err)
	_, err = g.SetCell(0, 1, 2)
	assert.True(t, errors.Is(err, env.ErrExhausted))
	v, err := g.GetCell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, -9999.0, v)
	_, err = g.SetCell(0, 0, -9999)
	require.NoError(t, err)
	accounted(t, e, g)
}

func TestBitmapCapacity(t *testing.T) {
	e := newEnv(t, 0)
	_, err := Create(e, Config{
		Dir:      t.TempDir(),
		Geometry: Geometry{NRows: 20, NCols: 20, ChunkNRows: 10, ChunkNCols: 10},
		Encoding: "bitmap64",
	})
	assert.True(t, errors.Is(err, chunk.ErrCapacity))
	assert.Empty(t, e.Grids())

	g := createGrid(t, e, "g", Geometry{NRows: 20, NCols: 20, ChunkNRows: 10, ChunkNCols: 10}, "dense")
	err = g.Recode(chunk.ID{}, chunk.Bitmap64)
	assert.True(t, errors.Is(err, chunk.ErrCapacity))
	assert.Equal(t, chunk.Dense, g.chunks[chunk.ID{}].Encoding())
	accounted(t, e, g)
}

func TestAutoEncoding(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 12, NCols: 9, ChunkNRows: 8, ChunkNCols: 8}, "")
	assert.Equal(t, "auto", g.Format().Encoding)
	assert.Equal(t, chunk.Bitmap64, g.ChunkEncoding(chunk.ID{Row: 0, Col: 0}))
	assert.Equal(t, chunk.Bitmap64, g.ChunkEncoding(chunk.ID{Row: 1, Col: 1}))

	g = createGrid(t, e, "h", Geometry{NRows: 20, NCols: 20, ChunkNRows: 10, ChunkNCols: 10}, "auto")
	assert.Equal(t, chunk.Dense, g.ChunkEncoding(chunk.ID{}))
}

func TestFailedWriteKeepsChunkDirty(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, "dense")
	id := chunk.ID{Row: 1, Col: 0}
	_, err := g.SetCell(2, 1, 5)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(g.Dir()))

	_, err = g.SwapChunk(id)
	assert.Error(t, err)
	assert.Equal(t, 0, e.Evict(nil, true))
	assert.True(t, g.Resident(id))
	assert.False(t, g.chunks[id].SwapUpToDate())
	assert.Equal(t, uint64(1), e.Stats().WriteFailures)

	require.NoError(t, os.MkdirAll(g.Dir(), 0755))
	assert.Equal(t, 1, e.Evict(nil, false))
	v, err := g.GetCell(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestCloseKeepsDirtyChunksOnFailure(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, "dense")
	id := chunk.ID{Row: 1, Col: 1}
	_, err := g.SetCell(0, 0, 1)
	require.NoError(t, err)
	_, err = g.SetCell(3, 2, 7)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(g.Dir()))

	assert.Error(t, g.Close())
	assert.Len(t, e.Grids(), 1)
	assert.Len(t, g.ResidentChunks(), 2)
	assert.False(t, g.chunks[id].SwapUpToDate())
	accounted(t, e, g)
	v, err := g.GetCell(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	require.NoError(t, os.MkdirAll(g.Dir(), 0755))
	require.NoError(t, g.Close())
	assert.Empty(t, e.Grids())
	assert.Equal(t, int64(0), e.Used())
	_, err = os.Stat(g.store.ChunkPath(id))
	assert.NoError(t, err)
}

func TestFlush(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, "sparse")
	_, err := g.SetCell(0, 0, 1)
	require.NoError(t, err)
	_, err = g.SetCell(3, 3, 2)
	require.NoError(t, err)

	require.NoError(t, g.Flush(chunk.ID{}))
	assert.True(t, g.store.Exists(chunk.ID{}))
	assert.False(t, g.store.Exists(chunk.ID{Row: 1, Col: 1}))
	require.NoError(t, g.FlushAll())
	ids, err := g.store.Chunks()
	require.NoError(t, err)
	assert.Equal(t, []chunk.ID{{Row: 0, Col: 0}, {Row: 1, Col: 1}}, ids)
	assert.Len(t, g.ResidentChunks(), 2)
	for _, id := range ids {
		assert.True(t, g.chunks[id].SwapUpToDate())
	}
}

func TestReopen(t *testing.T) {
	e := newEnv(t, 0)
	dir := filepath.Join(t.TempDir(), "g")
	geo := Geometry{NRows: 6, NCols: 6, ChunkNRows: 4, ChunkNCols: 4}
	g, err := Create(e, Config{Dir: dir, Geometry: geo, NoData: -math.MaxFloat32, Encoding: "sparse", Compression: "lz4", Passphrase: "pw"})
	require.NoError(t, err)
	_, err = g.SetCell(5, 5, 3)
	require.NoError(t, err)
	require.NoError(t, g.Close())
	assert.Empty(t, e.Grids())
	assert.Equal(t, int64(0), e.Used())

	_, err = Open(e, Config{Dir: dir})
	assert.Error(t, err)

	g2, err := Open(e, Config{Dir: dir, Passphrase: "pw"})
	require.NoError(t, err)
	assert.Equal(t, g.UUID(), g2.UUID())
	assert.Equal(t, geo, g2.Geometry())
	assert.Equal(t, -math.MaxFloat32, g2.NoData())
	assert.Equal(t, "g", g2.Name())
	assert.Contains(t, g2.Format().Creator, "rasterswap/")
	v, err := g2.GetCell(5, 5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	v, err = g2.GetCell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, -math.MaxFloat32, v)

	_, err = Create(e, Config{Dir: dir, Geometry: geo})
	assert.Error(t, err)
	g3, err := Create(e, Config{Dir: dir, Geometry: geo, Force: true})
	require.NoError(t, err)
	assert.NotEqual(t, g.UUID(), g3.UUID())
	ids, err := g3.store.Chunks()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNaNNoData(t *testing.T) {
	e := newEnv(t, 0)
	_, err := Create(e, Config{Dir: t.TempDir(), Geometry: Geometry{NRows: 1, NCols: 1, ChunkNRows: 1, ChunkNCols: 1}, NoData: math.NaN()})
	assert.Error(t, err)
}

func TestWarmStart(t *testing.T) {
	e := newEnv(t, 0)
	dir := filepath.Join(t.TempDir(), "g")
	g, err := Create(e, Config{Dir: dir, Geometry: Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, Encoding: "bitmap64"})
	require.NoError(t, err)
	_, err = g.SetCell(0, 0, 1)
	require.NoError(t, err)
	_, err = g.SetCell(2, 2, 2)
	require.NoError(t, err)
	require.NoError(t, g.WriteCache())
	require.NoError(t, g.Close())
	snapshot := filepath.Join(dir, swap.CacheFile)
	assert.FileExists(t, snapshot)

	g, err = Open(e, Config{Dir: dir, WarmStart: true})
	require.NoError(t, err)
	assert.Equal(t, []chunk.ID{{Row: 0, Col: 0}, {Row: 1, Col: 1}}, g.ResidentChunks())
	accounted(t, e, g)
	v, err := g.GetCell(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	// a newer swap file makes the snapshot stale
	_, err = g.SetCell(2, 2, 3)
	require.NoError(t, err)
	require.NoError(t, g.Flush(chunk.ID{Row: 1, Col: 1}))
	assert.NoFileExists(t, snapshot)
	require.NoError(t, g.Close())

	g, err = Open(e, Config{Dir: dir, WarmStart: true})
	require.NoError(t, err)
	assert.Empty(t, g.ResidentChunks())
	v, err = g.GetCell(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestWarmStartWithinLimit(t *testing.T) {
	e := newEnv(t, 0)
	dir := filepath.Join(t.TempDir(), "g")
	g, err := Create(e, Config{Dir: dir, Geometry: Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, Encoding: "dense"})
	require.NoError(t, err)
	for _, id := range g.geo.ChunkIDs() {
		require.NoError(t, g.FillChunk(id, 1))
	}
	require.NoError(t, g.WriteCache())
	require.NoError(t, g.Close())

	e.SetMemoryLimit(300)
	g, err = Open(e, Config{Dir: dir, WarmStart: true})
	require.NoError(t, err)
	assert.Len(t, g.ResidentChunks(), 2)
	assert.LessOrEqual(t, e.Used(), int64(300))
}

func TestClear(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 4, ChunkNRows: 2, ChunkNCols: 2}, "dense")
	_, err := g.SetCell(0, 0, 1)
	require.NoError(t, err)
	_, err = g.SetCell(3, 3, 1)
	require.NoError(t, err)
	require.NoError(t, g.Flush(chunk.ID{}))
	require.NoError(t, g.Clear())
	assert.Equal(t, int64(0), e.Used())
	ids, err := g.store.Chunks()
	require.NoError(t, err)
	assert.Empty(t, ids)
	v, err := g.GetCell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, -9999.0, v)
}

func TestRecodeAndFill(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 8, NCols: 8, ChunkNRows: 4, ChunkNCols: 4}, "dense")
	id := chunk.ID{Row: 1, Col: 0}
	_, err := g.SetCell(5, 2, 6)
	require.NoError(t, err)
	require.NoError(t, g.Flush(id))

	require.NoError(t, g.Recode(id, chunk.Sparse))
	assert.Equal(t, chunk.Sparse, g.chunks[id].Encoding())
	assert.False(t, g.chunks[id].SwapUpToDate())
	v, err := g.GetCell(5, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
	accounted(t, e, g)

	require.NoError(t, g.FillChunk(id, 2))
	vals, err := g.ChunkValues(id, true)
	require.NoError(t, err)
	assert.Len(t, vals, 16)
	for _, v := range vals {
		assert.Equal(t, 2.0, v)
	}
	accounted(t, e, g)

	vals, err = g.ChunkValues(chunk.ID{}, false)
	require.NoError(t, err)
	assert.Empty(t, vals)
	assert.Error(t, g.Recode(chunk.ID{Row: 2}, chunk.Dense))
}

func TestSummary(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 4, NCols: 5, ChunkNRows: 2, ChunkNCols: 2}, "bitmap64")
	for _, c := range [][3]float64{{0, 0, 1}, {0, 4, 3}, {3, 3, 3}, {3, 4, 5}} {
		_, err := g.SetCell(int(c[0]), int(c[1]), c[2])
		require.NoError(t, err)
	}
	_, err := g.SwapChunk(chunk.ID{Row: 1, Col: 2})
	require.NoError(t, err)

	s, err := g.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.Count)
	assert.Equal(t, int64(16), s.NoDataCount)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 12.0, s.Sum)
	assert.Equal(t, []float64{3}, s.Mode)
}

func TestDestroy(t *testing.T) {
	e := newEnv(t, 0)
	g := createGrid(t, e, "g", Geometry{NRows: 2, NCols: 2, ChunkNRows: 1, ChunkNCols: 1}, "dense")
	_, err := g.SetCell(1, 1, 1)
	require.NoError(t, err)
	require.NoError(t, g.FlushAll())
	require.NoError(t, g.Destroy())
	assert.Empty(t, e.Grids())
	_, err = Open(e, Config{Dir: g.Dir()})
	assert.Error(t, err)
}
