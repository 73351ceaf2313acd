// cmd/create.go

package main

import (
	"regexp"

	"RasterSwap/pkg/compress"
	"RasterSwap/pkg/grid"

	"github.com/urfave/cli/v2"
)

var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9\-_]{0,61}[a-z0-9]$`)

func create(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Args().Len() < 1 {
		logger.Fatalf("DIR is required")
	}
	conf := gridConfig(c, c.Args().Get(0))
	conf.Name = c.String("name")
	if conf.Name != "" && !validName.MatchString(conf.Name) {
		logger.Fatalf("invalid name: %s, only lower case letters, numbers, - and _ are allowed, and the length should be 2 to 63 characters.", conf.Name)
	}
	if compress.NewCompressor(c.String("compress")) == nil {
		logger.Fatalf("Unsupported compress algorithm: %s", c.String("compress"))
	}
	conf.Geometry = grid.Geometry{
		NRows:      c.Int("rows"),
		NCols:      c.Int("cols"),
		ChunkNRows: c.Int("chunk-rows"),
		ChunkNCols: c.Int("chunk-cols"),
	}
	conf.NoData = c.Float64("no-data")
	conf.Encoding = c.String("encoding")
	conf.Compression = c.String("compress")
	conf.Force = c.Bool("force")

	e := newEnv(c)
	defer e.Close()
	if c.Bool("no-update") {
		if g, err := grid.Open(e, conf); err == nil {
			logger.Infof("Grid %s already exists", g)
			closeGrid(g)
			return nil
		}
	}
	g, err := grid.Create(e, conf)
	if err != nil {
		logger.Fatalf("create: %s", err)
	}
	logger.Infof("Grid is created as %+v", g.Format())
	closeGrid(g)
	return nil
}

func createFlags() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "create an empty grid",
		ArgsUsage: "DIR",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "name of the grid, defaults to the directory name",
			},
			&cli.IntFlag{
				Name:     "rows",
				Required: true,
				Usage:    "number of cell rows",
			},
			&cli.IntFlag{
				Name:     "cols",
				Required: true,
				Usage:    "number of cell columns",
			},
			&cli.IntFlag{
				Name:  "chunk-rows",
				Value: 256,
				Usage: "number of cell rows per chunk",
			},
			&cli.IntFlag{
				Name:  "chunk-cols",
				Value: 256,
				Usage: "number of cell columns per chunk",
			},
			&cli.Float64Flag{
				Name:  "no-data",
				Value: -9999,
				Usage: "value of cells without data",
			},
			&cli.StringFlag{
				Name:  "encoding",
				Value: grid.EncodingAuto,
				Usage: "chunk encoding (dense, sparse, bitmap64, auto)",
			},
			&cli.StringFlag{
				Name:  "compress",
				Value: "none",
				Usage: "compression algorithm of swap files (lz4, zstd, none)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite an existing grid",
			},
			&cli.BoolFlag{
				Name:  "no-update",
				Usage: "don't touch an existing grid",
			},
		}, storageFlags()...),
		Action: create,
	}
}
