package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFormat() Format {
	return Format{
		Name:        "dem",
		UUID:        "5b1f4a46-3d3c-4a3e-9b7f-7b0c7d3f3a10",
		Rows:        100,
		Cols:        80,
		ChunkRows:   16,
		ChunkCols:   16,
		NoData:      -9999,
		Encoding:    "dense",
		Compression: "lz4",
	}
}

func TestFileMeta(t *testing.T) {
	dir := t.TempDir()
	m, err := NewClient(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "file", m.Name())

	_, err = m.Load()
	assert.True(t, os.IsNotExist(err))

	f := testFormat()
	require.NoError(t, m.Init(f, false))
	assert.FileExists(t, filepath.Join(dir, ThisFile))
	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, f, *got)

	require.NoError(t, m.Init(f, false), "same format is accepted")
	g := f
	g.Rows = 200
	assert.Error(t, m.Init(g, false))
	require.NoError(t, m.Init(g, true))
	got, err = m.Load()
	require.NoError(t, err)
	assert.Equal(t, 200, got.Rows)

	require.NoError(t, m.Destroy())
	require.NoError(t, m.Destroy())
	_, err = m.Load()
	assert.Error(t, err)
}

func TestFileURI(t *testing.T) {
	dir := t.TempDir()
	m, err := NewClient("file://"+dir, nil)
	require.NoError(t, err)
	require.NoError(t, m.Init(testFormat(), false))
	assert.FileExists(t, filepath.Join(dir, ThisFile))
}

func TestReadOnly(t *testing.T) {
	m, err := NewClient(t.TempDir(), &Config{ReadOnly: true})
	require.NoError(t, err)
	assert.Error(t, m.Init(testFormat(), false))
}

func TestDrivers(t *testing.T) {
	_, err := NewClient("tikv://127.0.0.1:2379", nil)
	assert.Error(t, err)

	_, err = NewClient("redis://127.0.0.1:6379/1", nil)
	assert.Error(t, err, "redis needs a grid name")

	m, err := NewClient("redis://127.0.0.1:6379/1", &Config{Name: "dem"})
	require.NoError(t, err)
	assert.Equal(t, "redis", m.Name())
}
