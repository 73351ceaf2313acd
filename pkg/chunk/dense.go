// pkg/chunk/dense.go

package chunk

type denseCells struct {
	vals []float64
}

func newDenseCells(n int, noData float64) *denseCells {
	d := &denseCells{vals: make([]float64, n)}
	d.fill(n, noData)
	return d
}

func (d *denseCells) get(pos int) float64 { return d.vals[pos] }

func (d *denseCells) set(pos int, v float64) float64 {
	prev := d.vals[pos]
	d.vals[pos] = v
	return prev
}

func (d *denseCells) setCost(pos int, v float64) int64 { return 0 }

func (d *denseCells) memSize() int64 { return int64(len(d.vals)) * denseCellSize }

func (d *denseCells) fill(_ int, v float64) {
	for i := range d.vals {
		d.vals[i] = v
	}
}
