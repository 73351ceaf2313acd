// pkg/grid/grid.go

package grid

import (
	"math"
	"path/filepath"
	"sort"
	"time"

	"RasterSwap/pkg/chunk"
	"RasterSwap/pkg/env"
	"RasterSwap/pkg/meta"
	"RasterSwap/pkg/swap"
	"RasterSwap/pkg/utils"
	"RasterSwap/pkg/version"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var logger = utils.GetLogger("rasterswap")

// EncodingAuto picks bitmap64 for chunks that fit into 64 cells and dense
// for the others.
const EncodingAuto = "auto"

// Config of a grid. Geometry, NoData, Encoding and Compression are only
// used by Create; Open takes them from the saved format.
type Config struct {
	Dir         string
	Name        string // defaults to the base name of Dir
	Meta        string // metadata URI, defaults to Dir
	Geometry    Geometry
	NoData      float64
	Encoding    string // dense, sparse, bitmap64 or auto
	Compression string
	Passphrase  string
	WriteLimit  int64
	ReadLimit   int64
	CacheSize   int64
	Force       bool // overwrite an existing different format
	WarmStart   bool // load the resident-map snapshot on Open
}

func (c *Config) name() string {
	if c.Name != "" {
		return c.Name
	}
	return filepath.Base(filepath.Clean(c.Dir))
}

func (c *Config) metaURI() string {
	if c.Meta != "" {
		return c.Meta
	}
	return c.Dir
}

// Grid is a 2-D raster of float64 cells stored as chunks. Only a working set
// of chunks is resident; the others live in swap files and are loaded on
// demand. A Grid is not safe for concurrent use.
type Grid struct {
	env    *env.Env
	store  *swap.Store
	meta   meta.Meta
	format meta.Format

	geo    Geometry
	noData float64
	enc    chunk.Encoding // 0 for auto
	stats  Statistics

	chunks   map[chunk.ID]*chunk.Chunk
	snapshot bool // D/cache matches the swap files
}

func parseEncoding(s string) (chunk.Encoding, error) {
	if s == "" || s == EncodingAuto {
		return 0, nil
	}
	return chunk.ParseEncoding(s)
}

// Create makes a new empty grid in conf.Dir and registers it with e.
func Create(e *env.Env, conf Config) (*Grid, error) {
	if conf.Dir == "" {
		return nil, errors.New("grid directory is required")
	}
	if err := conf.Geometry.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(conf.NoData) {
		return nil, errors.New("no-data value must not be NaN")
	}
	enc, err := parseEncoding(conf.Encoding)
	if err != nil {
		return nil, err
	}
	if enc == chunk.Bitmap64 {
		if n := conf.Geometry.ChunkNRows * conf.Geometry.ChunkNCols; n > chunk.MaxBitmapCells {
			return nil, errors.Wrapf(chunk.ErrCapacity, "%dx%d chunks hold %d cells", conf.Geometry.ChunkNRows, conf.Geometry.ChunkNCols, n)
		}
	}
	if conf.Compression == "" {
		conf.Compression = "none"
	}
	encName := EncodingAuto
	if enc != 0 {
		encName = enc.String()
	}
	format := meta.Format{
		Name:        conf.name(),
		UUID:        uuid.New().String(),
		Rows:        conf.Geometry.NRows,
		Cols:        conf.Geometry.NCols,
		ChunkRows:   conf.Geometry.ChunkNRows,
		ChunkCols:   conf.Geometry.ChunkNCols,
		NoData:      conf.NoData,
		Encoding:    encName,
		Compression: conf.Compression,
		Encrypted:   conf.Passphrase != "",
		Created:     time.Now().Unix(),
		Creator:     version.Creator(),
	}
	m, err := meta.NewClient(conf.metaURI(), &meta.Config{Name: format.Name})
	if err != nil {
		return nil, err
	}
	g, err := newGrid(e, conf, m, format)
	if err != nil {
		return nil, err
	}
	if err = m.Init(format, conf.Force); err != nil {
		g.store.Close()
		return nil, errors.Wrapf(err, "init grid %s", format.Name)
	}
	if conf.Force {
		if err = g.removeSwapFiles(); err != nil {
			g.store.Close()
			return nil, err
		}
	}
	e.Register(g)
	logger.Infof("Created grid %s (%s): %dx%d cells in %dx%d chunks, %s",
		format.Name, format.UUID, format.Rows, format.Cols, format.ChunkRows, format.ChunkCols, g.store)
	return g, nil
}

// Open loads an existing grid from conf.Dir and registers it with e.
func Open(e *env.Env, conf Config) (*Grid, error) {
	if conf.Dir == "" {
		return nil, errors.New("grid directory is required")
	}
	m, err := meta.NewClient(conf.metaURI(), &meta.Config{Name: conf.name()})
	if err != nil {
		return nil, err
	}
	format, err := m.Load()
	if err != nil {
		return nil, errors.Wrapf(err, "load grid %s", conf.Dir)
	}
	if format.Encrypted && conf.Passphrase == "" {
		return nil, errors.Errorf("grid %s is encrypted, a passphrase is required", format.Name)
	}
	g, err := newGrid(e, conf, m, *format)
	if err != nil {
		return nil, err
	}
	e.Register(g)
	if conf.WarmStart {
		g.warmStart()
	} else if utils.Exists(filepath.Join(conf.Dir, swap.CacheFile)) {
		g.snapshot = true
	}
	logger.Debugf("Opened grid %s with %d resident chunks", format.Name, len(g.chunks))
	return g, nil
}

func newGrid(e *env.Env, conf Config, m meta.Meta, format meta.Format) (*Grid, error) {
	geo := Geometry{NRows: format.Rows, NCols: format.Cols, ChunkNRows: format.ChunkRows, ChunkNCols: format.ChunkCols}
	if err := geo.Validate(); err != nil {
		return nil, errors.Wrapf(err, "grid %s", format.Name)
	}
	enc, err := parseEncoding(format.Encoding)
	if err != nil {
		return nil, err
	}
	var salt []byte
	if format.Encrypted {
		id, err := uuid.Parse(format.UUID)
		if err != nil {
			return nil, errors.Wrapf(err, "grid uuid %q", format.UUID)
		}
		salt = id[:]
	}
	store, err := swap.NewStore(swap.Config{
		Dir:          conf.Dir,
		Compression:  format.Compression,
		Passphrase:   conf.Passphrase,
		Salt:         salt,
		WriteLimit:   conf.WriteLimit,
		ReadLimit:    conf.ReadLimit,
		CacheSize:    conf.CacheSize,
		MaxChunkSize: chunk.MaxEncodedSize(geo.ChunkNRows, geo.ChunkNCols),
		MaxChunks:    geo.NChunks(),
	})
	if err != nil {
		return nil, err
	}
	return &Grid{
		env:    e,
		store:  store,
		meta:   m,
		format: format,
		geo:    geo,
		noData: format.NoData,
		enc:    enc,
		stats:  NopStatistics{},
		chunks: make(map[chunk.ID]*chunk.Chunk),
	}, nil
}

func (g *Grid) Name() string { return g.format.Name }
func (g *Grid) UUID() string { return g.format.UUID }
func (g *Grid) Dir() string { return g.store.Dir() }
func (g *Grid) Format() meta.Format { return g.format }
func (g *Grid) Geometry() Geometry { return g.geo }
func (g *Grid) NoData() float64 { return g.noData }
func (g *Grid) Store() *swap.Store { return g.store }
func (g *Grid) Statistics() Statistics { return g.stats }

// SetStatistics installs the collaborator told about cell writes; nil
// restores the no-op one.
func (g *Grid) SetStatistics(s Statistics) {
	if s == nil {
		s = NopStatistics{}
	}
	g.stats = s
}

func (g *Grid) String() string {
	return g.format.Name
}

// ChunkEncoding returns the encoding new chunk id is created with.
func (g *Grid) ChunkEncoding(id chunk.ID) chunk.Encoding {
	if g.enc != 0 {
		return g.enc
	}
	if g.geo.ChunkNRowsAt(id.Row)*g.geo.ChunkNColsAt(id.Col) <= chunk.MaxBitmapCells {
		return chunk.Bitmap64
	}
	return chunk.Dense
}

// ResidentChunks lists the resident chunk ids row-major.
func (g *Grid) ResidentChunks() []chunk.ID {
	ids := make([]chunk.ID, 0, len(g.chunks))
	for id := range g.chunks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

func (g *Grid) Resident(id chunk.ID) bool {
	_, ok := g.chunks[id]
	return ok
}

// ResidentSize is the accounted size of the resident chunks.
func (g *Grid) ResidentSize() int64 {
	var n int64
	for _, c := range g.chunks {
		n += c.MemSize()
	}
	return n
}

// Close writes every dirty chunk, drops the resident map and leaves e. When a
// chunk cannot be written the grid stays open and resident, so Close can be
// retried once the swap directory is usable again.
func (g *Grid) Close() error {
	if err := g.FlushAll(); err != nil {
		return err
	}
	g.env.Unregister(g)
	g.drop()
	g.store.Close()
	return nil
}

// Destroy removes the grid: swap files, snapshot and metadata.
func (g *Grid) Destroy() error {
	g.env.Unregister(g)
	g.drop()
	defer g.store.Close()
	if err := g.removeSwapFiles(); err != nil {
		return err
	}
	return g.meta.Destroy()
}

func (g *Grid) drop() {
	for id, c := range g.chunks {
		g.env.Release(c.MemSize())
		delete(g.chunks, id)
	}
}

func (g *Grid) removeSwapFiles() error {
	ids, err := g.store.Chunks()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err = g.store.RemoveChunk(id); err != nil {
			return errors.Wrapf(err, "remove chunk %s", id)
		}
	}
	g.snapshot = false
	return g.store.RemoveCache()
}
