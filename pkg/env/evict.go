// pkg/env/evict.go

package env

import "github.com/pkg/errors"

// Evict swaps out resident chunks that are not pinned in sc, scanning grids
// in registration order and chunks row-major. Without bulk it stops at the
// first chunk swapped. A failed write leaves the chunk resident and the scan
// goes on. It returns the number of chunks swapped.
func (e *Env) Evict(sc *Scope, bulk bool) int {
	var n int
	for _, g := range e.Grids() {
		for _, id := range g.ResidentChunks() {
			if sc.Pinned(g, id) {
				continue
			}
			ok, err := g.SwapChunk(id)
			if err != nil {
				logger.Warnf("swap chunk %s of %s: %s", id, g.Name(), err)
				e.Lock()
				e.writeFailures++
				e.Unlock()
				continue
			}
			if !ok {
				continue
			}
			e.Lock()
			e.swaps++
			e.Unlock()
			n++
			if !bulk {
				return n
			}
		}
	}
	if n > 0 {
		logger.Debugf("swapped %d chunks, %d bytes in use", n, e.Used())
	}
	return n
}

// SwapAll swaps every chunk not pinned in sc.
func (e *Env) SwapAll(sc *Scope) int {
	return e.Evict(sc, true)
}

// Do runs op until it succeeds or fails with something other than memory
// exhaustion. On exhaustion the reserve is dropped, chunks outside sc are
// swapped and op is retried; when nothing can be swapped the exhaustion is
// returned to the caller.
func (e *Env) Do(sc *Scope, op func() error) error {
	for {
		err := op()
		if err == nil {
			e.replenish()
			return nil
		}
		if !errors.Is(err, ErrExhausted) {
			return err
		}
		e.clearReserve()
		if e.Evict(sc, e.Config().Bulk) == 0 {
			e.replenish()
			logger.Errorf("out of memory with %d chunks pinned: %s", sc.Len(), err)
			return errors.WithMessage(err, "no chunk can be swapped")
		}
		e.Lock()
		e.retries++
		e.Unlock()
		e.replenish()
	}
}
