// pkg/meta/config.go

package meta

// Config for clients.
type Config struct {
	Name     string // grid name, keys the record in shared backends
	Retries  int
	ReadOnly bool
}

// Format describes a grid; it is what D/thisFile holds.
type Format struct {
	Name        string
	UUID        string
	Rows        int
	Cols        int
	ChunkRows   int
	ChunkCols   int
	NoData      float64
	Encoding    string
	Compression string
	Encrypted   bool
	Created     int64
	Creator     string // build that created the grid
}
