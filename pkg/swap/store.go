// pkg/swap/store.go

package swap

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"RasterSwap/pkg/chunk"
	"RasterSwap/pkg/compress"
	"RasterSwap/pkg/utils"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/juju/ratelimit"
	"github.com/pkg/errors"
)

var logger = utils.GetLogger("rasterswap")

// CacheFile holds the resident-map snapshot of a grid.
const CacheFile = "cache"

const (
	defaultMaxChunkSize = 64 << 20
	defaultMaxChunks    = 1 << 16
)

// Config of a swap store.
type Config struct {
	Dir         string
	Compression string // none, lz4 or zstd
	Passphrase  string // encrypts swap files when set
	Salt        []byte // key derivation salt, the grid's uuid
	WriteLimit  int64  // bytes per second, 0 for unlimited
	ReadLimit   int64  // bytes per second, 0 for unlimited
	CacheSize   int64  // bytes of decoded chunk data kept after swapping, 0 disables

	MaxChunkSize int64 // largest serialized chunk a swap file may hold, 0 for 64 MiB
	MaxChunks    int   // most chunks a snapshot may hold, 0 for 65536
}

// Store persists chunks of one grid as files named after their ids.
type Store struct {
	dir   string
	comp  compress.Compressor
	enc   Encryptor
	up    *ratelimit.Bucket
	down  *ratelimit.Bucket
	cache *ristretto.Cache[string, []byte]

	chunkLimit int64
	cacheLimit int64

	written uint64
	read    uint64
}

func NewStore(conf Config) (*Store, error) {
	comp := compress.NewCompressor(conf.Compression)
	if comp == nil {
		return nil, errors.Errorf("unsupported compress algorithm: %s", conf.Compression)
	}
	if err := os.MkdirAll(conf.Dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create %s", conf.Dir)
	}
	if conf.MaxChunkSize <= 0 {
		conf.MaxChunkSize = defaultMaxChunkSize
	}
	if conf.MaxChunks <= 0 {
		conf.MaxChunks = defaultMaxChunks
	}
	s := &Store{
		dir:        conf.Dir,
		comp:       comp,
		up:         newBucket(conf.WriteLimit),
		down:       newBucket(conf.ReadLimit),
		chunkLimit: conf.MaxChunkSize,
		cacheLimit: 4 + int64(conf.MaxChunks)*(4+conf.MaxChunkSize),
	}
	if conf.Passphrase != "" {
		enc, err := NewAESEncryptor(conf.Passphrase, conf.Salt)
		if err != nil {
			return nil, err
		}
		s.enc = enc
	}
	if conf.CacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
			NumCounters: 10 * (conf.CacheSize>>12 + 1),
			MaxCost:     conf.CacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, errors.Wrap(err, "create swap cache")
		}
		s.cache = cache
	}
	return s, nil
}

func (s *Store) String() string {
	desc := fmt.Sprintf("file://%s (%s", s.dir, s.comp.Name())
	if s.enc != nil {
		desc += ", encrypted"
	}
	return desc + ")"
}

func (s *Store) Dir() string { return s.dir }

// ChunkPath returns the file of chunk id.
func (s *Store) ChunkPath(id chunk.ID) string {
	return filepath.Join(s.dir, id.String())
}

func (s *Store) Exists(id chunk.ID) bool {
	return utils.Exists(s.ChunkPath(id))
}

func (s *Store) writeFile(path string, raw []byte) error {
	data, err := encodeFrame(raw, s.comp, s.enc)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err = io.Copy(&limitedWriter{&buf, s.up}, bytes.NewReader(data)); err != nil {
		return err
	}
	if err = utils.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	s.written += uint64(len(data))
	return nil
}

func (s *Store) readFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(&limitedReader{f, s.down})
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	s.read += uint64(len(data))
	raw, err := decodeFrame(data, s.enc, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return raw, nil
}

// WriteChunk serializes c into its file. The caller marks it swapped.
func (s *Store) WriteChunk(c *chunk.Chunk) error {
	raw, err := c.MarshalBinary()
	if err != nil {
		return errors.Wrapf(err, "marshal %s", c)
	}
	path := s.ChunkPath(c.ID())
	if s.cache != nil {
		s.cache.Del(path)
	}
	if err = s.writeFile(path, raw); err != nil {
		return err
	}
	if s.cache != nil {
		// Set is buffered; wait so that the next read sees this version
		s.cache.Set(path, raw, int64(len(raw)))
		s.cache.Wait()
	}
	logger.Debugf("swap out %s to %s", c, path)
	return nil
}

// ReadChunk loads chunk id from its file.
func (s *Store) ReadChunk(id chunk.ID, table *chunk.BitTable) (*chunk.Chunk, error) {
	path := s.ChunkPath(id)
	raw, ok := s.cached(path)
	if !ok {
		var err error
		if raw, err = s.readFile(path, s.chunkLimit); err != nil {
			return nil, err
		}
	}
	c, err := chunk.Unmarshal(raw, table)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	if c.ID() != id {
		return nil, errors.Errorf("%s holds chunk %s", path, c.ID())
	}
	logger.Debugf("swap in %s from %s", c, path)
	return c, nil
}

func (s *Store) cached(path string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(path)
}

// RemoveChunk deletes the file of chunk id, if any.
func (s *Store) RemoveChunk(id chunk.ID) error {
	path := s.ChunkPath(id)
	if s.cache != nil {
		s.cache.Del(path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Chunks lists the ids that have a swap file, row-major.
func (s *Store) Chunks() ([]chunk.ID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []chunk.ID
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, err := chunk.ParseID(e.Name()); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids, nil
}

// Usage returns the number of swap files and their total size on disk.
func (s *Store) Usage() (files int, size int64, err error) {
	ids, err := s.Chunks()
	if err != nil {
		return 0, 0, err
	}
	for _, id := range ids {
		fi, err := os.Stat(s.ChunkPath(id))
		if err != nil {
			continue
		}
		files++
		size += fi.Size()
	}
	return files, size, nil
}

// IOStats returns the bytes written and read through the store.
func (s *Store) IOStats() (written, read uint64) {
	return s.written, s.read
}

// WriteCache stores a snapshot of the given resident chunks.
func (s *Store) WriteCache(chunks []*chunk.Chunk) error {
	parts := make([][]byte, 0, len(chunks))
	size := 4
	for _, c := range chunks {
		raw, err := c.MarshalBinary()
		if err != nil {
			return errors.Wrapf(err, "marshal %s", c)
		}
		parts = append(parts, raw)
		size += 4 + len(raw)
	}
	b := utils.NewBuffer(uint32(size))
	b.Put32(uint32(len(parts)))
	for _, p := range parts {
		b.Put32(uint32(len(p)))
		b.Put(p)
	}
	return s.writeFile(filepath.Join(s.dir, CacheFile), b.Bytes())
}

// ReadCache loads the snapshot written by WriteCache.
func (s *Store) ReadCache(table *chunk.BitTable) ([]*chunk.Chunk, error) {
	raw, err := s.readFile(filepath.Join(s.dir, CacheFile), s.cacheLimit)
	if err != nil {
		return nil, err
	}
	b := utils.ReadBuffer(raw)
	if b.Left() < 4 {
		return nil, errors.New("short cache snapshot")
	}
	n := int(b.Get32())
	chunks := make([]*chunk.Chunk, 0, n)
	for i := 0; i < n; i++ {
		if b.Left() < 4 {
			return nil, errors.Errorf("cache snapshot truncated at chunk %d", i)
		}
		l := int(b.Get32())
		if b.Left() < l {
			return nil, errors.Errorf("cache snapshot truncated at chunk %d", i)
		}
		c, err := chunk.Unmarshal(b.Get(l), table)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// RemoveCache deletes the snapshot, if any.
func (s *Store) RemoveCache() error {
	err := os.Remove(filepath.Join(s.dir, CacheFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) Close() {
	if s.cache != nil {
		s.cache.Close()
		s.cache = nil
	}
}
