// pkg/chunk/stats.go

package chunk

import (
	"math"
	"sort"
)

// Histogram maps every value present in the chunk to the number of cells
// holding it, no-data included.
func (c *Chunk) Histogram() map[float64]int64 {
	h := make(map[float64]int64)
	switch cs := c.cells.(type) {
	case *denseCells:
		for _, v := range cs.vals {
			h[v]++
		}
	case *sparseCells:
		for _, v := range cs.vals {
			h[v]++
		}
		if missing := int64(c.Len() - len(cs.vals)); missing > 0 {
			h[c.noData] += missing
		}
	case *bitmapCells:
		// one step per distinct value, weighted by the mask popcount
		for _, e := range cs.entries {
			h[e.value] += e.count()
		}
	}
	return h
}

// MergeHistogram adds src into dst.
func MergeHistogram(dst, src map[float64]int64) {
	for v, n := range src {
		dst[v] += n
	}
}

// Summary holds aggregates over the data (non no-data) cells.
type Summary struct {
	Count       int64
	NoDataCount int64
	Distinct    int
	Min         float64
	Max         float64
	Sum         float64
	Mean        float64
	Mode        []float64
	Median      float64
}

// Summarize computes aggregates from a histogram. Min, Max, Mean and Median
// are NaN when there is no data cell.
func Summarize(h map[float64]int64, noData float64) Summary {
	s := Summary{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN(), Median: math.NaN()}
	values := make([]float64, 0, len(h))
	var best int64
	for v, n := range h {
		if n <= 0 {
			continue
		}
		if v == noData {
			s.NoDataCount += n
			continue
		}
		values = append(values, v)
		s.Count += n
		s.Sum += v * float64(n)
		if n > best {
			best = n
			s.Mode = s.Mode[:0]
		}
		if n == best {
			s.Mode = append(s.Mode, v)
		}
	}
	s.Distinct = len(values)
	if s.Count == 0 {
		s.Mode = nil
		return s
	}
	sort.Float64s(values)
	sort.Float64s(s.Mode)
	s.Min = values[0]
	s.Max = values[len(values)-1]
	s.Mean = s.Sum / float64(s.Count)

	lo, hi := (s.Count-1)/2, s.Count/2
	var seen int64
	var loV float64
	for _, v := range values {
		next := seen + h[v]
		if lo >= seen && lo < next {
			loV = v
		}
		if hi >= seen && hi < next {
			s.Median = (loV + v) / 2
			break
		}
		seen = next
	}
	return s
}

// Summary aggregates the chunk's own cells.
func (c *Chunk) Summary() Summary {
	return Summarize(c.Histogram(), c.noData)
}
