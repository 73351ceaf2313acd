// pkg/env/scope.go

package env

import "RasterSwap/pkg/chunk"

// Scope is the do-not-swap set of one logical operation. Chunks pinned in
// a scope are skipped by eviction until the scope is released.
type Scope struct {
	pinned map[Swappable]map[chunk.ID]struct{}
}

func NewScope() *Scope {
	return &Scope{pinned: make(map[Swappable]map[chunk.ID]struct{})}
}

func (s *Scope) Pin(g Swappable, id chunk.ID) {
	ids, ok := s.pinned[g]
	if !ok {
		ids = make(map[chunk.ID]struct{})
		s.pinned[g] = ids
	}
	ids[id] = struct{}{}
}

func (s *Scope) Unpin(g Swappable, id chunk.ID) {
	if ids, ok := s.pinned[g]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.pinned, g)
		}
	}
}

// Pinned is safe on a nil scope.
func (s *Scope) Pinned(g Swappable, id chunk.ID) bool {
	if s == nil {
		return false
	}
	_, ok := s.pinned[g][id]
	return ok
}

// Len returns the number of pinned chunks.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	var n int
	for _, ids := range s.pinned {
		n += len(ids)
	}
	return n
}

// Release clears the scope; it must run before the operation returns.
func (s *Scope) Release() {
	if s == nil {
		return
	}
	for g := range s.pinned {
		delete(s.pinned, g)
	}
}
