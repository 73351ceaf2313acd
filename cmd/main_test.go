package main

import (
	"path/filepath"
	"testing"

	"RasterSwap/pkg/env"
	"RasterSwap/pkg/grid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) {
	require.NoError(t, newApp().Run(append([]string{"rasterswap", "--no-agent", "--quiet"}, args...)))
}

func TestCommands(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dem")
	run(t, "create", "--rows", "20", "--cols", "30", "--chunk-rows", "8", "--chunk-cols", "8",
		"--encoding", "sparse", "--compress", "zstd", dir)
	run(t, "set", "--memory", "4K", "--reserve", "0", dir, "1", "2", "3.5", "19", "29", "7")
	run(t, "fill", "--memory", "2K", "--reserve", "256", "--row", "10", "--height", "5",
		"--random", "--density", "0.5", "--snapshot", dir)
	run(t, "get", dir, "1", "2", "0", "0")
	run(t, "info", dir)
	run(t, "stats", dir)
	run(t, "flush", "--memory", "10M", dir)

	e, err := env.New(env.Config{})
	require.NoError(t, err)
	defer e.Close()
	g, err := grid.Open(e, grid.Config{Dir: dir, WarmStart: true})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ResidentChunks())
	v, err := g.GetCell(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
	v, err = g.GetCell(19, 29)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	require.NoError(t, g.Close())

	run(t, "rmr", dir)
	assert.NoDirExists(t, dir)
}
