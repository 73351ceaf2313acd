// cmd/info.go

package main

import (
	"fmt"
	"runtime"

	"RasterSwap/pkg/utils"
	"RasterSwap/pkg/version"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func infoFlags() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show format and swap usage of grids",
		ArgsUsage: "DIR ...",
		Action:    info,
		Flags:     storageFlags(),
	}
}

func info(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() < 1 {
		logger.Infof("DIR is needed")
		return nil
	}
	e := newEnv(ctx)
	defer e.Close()
	for i := 0; i < ctx.Args().Len(); i++ {
		path := ctx.Args().Get(i)
		g := openGrid(ctx, e, path)
		f := g.Format()
		geo := g.Geometry()
		files, size, err := g.Store().Usage()
		if err != nil {
			logger.Errorf("usage of %s: %s", path, err)
		}
		fmt.Println(path, ":")
		fmt.Printf("  name:      %s\n", f.Name)
		fmt.Printf("  uuid:      %s\n", f.UUID)
		fmt.Printf("  cells:     %d x %d\n", geo.NRows, geo.NCols)
		fmt.Printf("  chunks:    %d x %d of %d x %d cells\n", geo.NChunkRows(), geo.NChunkCols(), geo.ChunkNRows, geo.ChunkNCols)
		fmt.Printf("  no-data:   %v\n", f.NoData)
		fmt.Printf("  encoding:  %s\n", f.Encoding)
		fmt.Printf("  storage:   %s\n", g.Store())
		fmt.Printf("  swapped:   %d of %d chunks, %s\n", files, geo.NChunks(), humanize.IBytes(uint64(size)))
		fmt.Printf("  resident:  %d chunks, %s\n", len(g.ResidentChunks()), humanize.IBytes(uint64(g.ResidentSize())))
		closeGrid(g)
	}
	ru := utils.GetRusage()
	fmt.Printf("rasterswap %s on %s: utime %.3fs, stime %.3fs, max rss %s\n",
		version.Version(), runtime.GOOS, ru.GetUtime(), ru.GetStime(), humanize.IBytes(ru.MaxRSS()))
	return nil
}
