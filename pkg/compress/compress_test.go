package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func testCompress(t *testing.T, c Compressor) {
	src := bytes.Repeat([]byte("raster chunk 0123456789"), 200)
	dst := make([]byte, c.CompressBound(len(src)))
	n, err := c.Compress(dst, src)
	require.NoError(t, err, c.Name())

	out := make([]byte, len(src))
	m, err := c.Decompress(out, dst[:n])
	require.NoError(t, err, c.Name())
	require.Equal(t, len(src), m)
	require.True(t, bytes.Equal(src, out[:m]), c.Name())
}

func TestCompressors(t *testing.T) {
	for _, name := range []string{"none", "lz4", "zstd"} {
		c := NewCompressor(name)
		require.NotNil(t, c, name)
		testCompress(t, c)
	}
}

func TestUnknownCompressor(t *testing.T) {
	require.Nil(t, NewCompressor("brotli"))
}
