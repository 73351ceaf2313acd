// pkg/chunk/sparse.go

package chunk

import "sort"

// sparseCells keeps only the cells that differ from noData.
type sparseCells struct {
	noData float64
	vals   map[int32]float64
}

func newSparseCells(noData float64) *sparseCells {
	return &sparseCells{noData: noData, vals: make(map[int32]float64)}
}

func (s *sparseCells) get(pos int) float64 {
	if v, ok := s.vals[int32(pos)]; ok {
		return v
	}
	return s.noData
}

func (s *sparseCells) set(pos int, v float64) float64 {
	prev := s.get(pos)
	if v == s.noData {
		delete(s.vals, int32(pos))
	} else {
		s.vals[int32(pos)] = v
	}
	return prev
}

func (s *sparseCells) setCost(pos int, v float64) int64 {
	if v == s.noData {
		return 0
	}
	if _, ok := s.vals[int32(pos)]; ok {
		return 0
	}
	return sparseEntrySize
}

func (s *sparseCells) memSize() int64 { return int64(len(s.vals)) * sparseEntrySize }

func (s *sparseCells) fill(n int, v float64) {
	if v == s.noData {
		s.vals = make(map[int32]float64)
		return
	}
	s.vals = make(map[int32]float64, n)
	for p := 0; p < n; p++ {
		s.vals[int32(p)] = v
	}
}

// positions returns the stored positions in ascending order.
func (s *sparseCells) positions() []int {
	ps := make([]int, 0, len(s.vals))
	for p := range s.vals {
		ps = append(ps, int(p))
	}
	sort.Ints(ps)
	return ps
}
