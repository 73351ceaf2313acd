// pkg/env/env.go

package env

import (
	"sync"

	"RasterSwap/pkg/chunk"
	"RasterSwap/pkg/utils"

	"github.com/pkg/errors"
)

var logger = utils.GetLogger("rasterswap")

// ErrExhausted is returned when an allocation does not fit into the memory limit.
var ErrExhausted = errors.New("memory exhausted")

// Config for the memory governor.
type Config struct {
	MemoryLimit int64 // bytes available to resident chunks, 0 means unlimited
	ReserveSize int64 // slack held back and released first under pressure
	Bulk        bool  // swap every eligible chunk instead of the first one
}

// Swappable is a grid whose resident chunks can be swapped out.
type Swappable interface {
	Name() string
	// ResidentChunks lists the resident chunk ids in row-major order.
	ResidentChunks() []chunk.ID
	// SwapChunk writes the chunk if it is dirty and drops it from memory.
	// It reports false when the chunk was not resident.
	SwapChunk(id chunk.ID) (bool, error)
}

// Env coordinates memory across all the grids of a session.
type Env struct {
	sync.Mutex
	conf  Config
	table *chunk.BitTable
	grids []Swappable

	used    int64
	reserve []byte

	swaps         uint64
	retries       uint64
	writeFailures uint64
}

// New creates the environment and takes the memory reserve.
func New(conf Config) (*Env, error) {
	if conf.MemoryLimit < 0 || conf.ReserveSize < 0 {
		return nil, errors.Errorf("invalid memory config: %+v", conf)
	}
	if conf.MemoryLimit > 0 && conf.ReserveSize >= conf.MemoryLimit {
		return nil, errors.Errorf("reserve of %d bytes leaves nothing of the %d bytes limit", conf.ReserveSize, conf.MemoryLimit)
	}
	e := &Env{conf: conf, table: chunk.NewBitTable()}
	e.replenish()
	return e, nil
}

// BitTable returns the position masks shared by all bitmap64 chunks.
func (e *Env) BitTable() *chunk.BitTable { return e.table }

func (e *Env) Config() Config {
	e.Lock()
	defer e.Unlock()
	return e.conf
}

// SetMemoryLimit changes the limit; resident chunks above it are swapped
// lazily by the next allocation that does not fit.
func (e *Env) SetMemoryLimit(limit int64) {
	e.Lock()
	defer e.Unlock()
	e.conf.MemoryLimit = limit
}

// Register adds a grid to the eviction order.
func (e *Env) Register(g Swappable) {
	e.Lock()
	defer e.Unlock()
	for _, o := range e.grids {
		if o == g {
			return
		}
	}
	e.grids = append(e.grids, g)
}

func (e *Env) Unregister(g Swappable) {
	e.Lock()
	defer e.Unlock()
	for i, o := range e.grids {
		if o == g {
			e.grids = append(e.grids[:i], e.grids[i+1:]...)
			return
		}
	}
}

// Grids returns the registered grids in registration order.
func (e *Env) Grids() []Swappable {
	e.Lock()
	defer e.Unlock()
	gs := make([]Swappable, len(e.grids))
	copy(gs, e.grids)
	return gs
}

// Charge accounts n bytes, failing with ErrExhausted beyond the limit.
func (e *Env) Charge(n int64) error {
	e.Lock()
	defer e.Unlock()
	if n > 0 && e.conf.MemoryLimit > 0 && e.used+n > e.conf.MemoryLimit {
		return errors.Wrapf(ErrExhausted, "need %d bytes, %d of %d in use", n, e.used, e.conf.MemoryLimit)
	}
	e.used += n
	if e.used < 0 {
		e.used = 0
	}
	return nil
}

// Release gives back n accounted bytes.
func (e *Env) Release(n int64) {
	e.Lock()
	defer e.Unlock()
	e.used -= n
	if e.used < 0 {
		logger.Warnf("memory accounting went negative (%d), reset to zero", e.used)
		e.used = 0
	}
}

// Used returns the accounted bytes, reserve included.
func (e *Env) Used() int64 {
	e.Lock()
	defer e.Unlock()
	return e.used
}

func (e *Env) clearReserve() {
	e.Lock()
	defer e.Unlock()
	if e.reserve == nil {
		return
	}
	e.used -= int64(len(e.reserve))
	e.reserve = nil
	logger.Debugf("memory reserve released, %d bytes in use", e.used)
}

// replenish takes the reserve back if it fits; it never fails the caller.
func (e *Env) replenish() {
	e.Lock()
	defer e.Unlock()
	size := e.conf.ReserveSize
	if e.reserve != nil || size == 0 {
		return
	}
	if e.conf.MemoryLimit > 0 && e.used+size > e.conf.MemoryLimit {
		logger.Debugf("memory reserve deferred, %d of %d bytes in use", e.used, e.conf.MemoryLimit)
		return
	}
	e.reserve = make([]byte, size)
	e.used += size
}

// Reserved reports the bytes currently held by the reserve.
func (e *Env) Reserved() int64 {
	e.Lock()
	defer e.Unlock()
	return int64(len(e.reserve))
}

// Close releases the reserve and forgets every grid.
func (e *Env) Close() {
	e.clearReserve()
	e.Lock()
	e.grids = nil
	e.Unlock()
}

// Stats is a snapshot of the governor state.
type Stats struct {
	Grids         int
	Resident      int
	Used          int64
	Limit         int64
	Reserve       int64
	Swaps         uint64
	Retries       uint64
	WriteFailures uint64
}

func (e *Env) Stats() Stats {
	gs := e.Grids()
	var resident int
	for _, g := range gs {
		resident += len(g.ResidentChunks())
	}
	e.Lock()
	defer e.Unlock()
	return Stats{
		Grids:         len(gs),
		Resident:      resident,
		Used:          e.used,
		Limit:         e.conf.MemoryLimit,
		Reserve:       int64(len(e.reserve)),
		Swaps:         e.swaps,
		Retries:       e.retries,
		WriteFailures: e.writeFailures,
	}
}
