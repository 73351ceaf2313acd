// cmd/fill.go

package main

import (
	"math/rand"

	"RasterSwap/pkg/utils"

	"github.com/urfave/cli/v2"
)

func fill(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Args().Len() < 1 {
		logger.Fatalf("DIR is required")
	}
	e := newEnv(c)
	defer e.Close()
	g := openGrid(c, e, c.Args().Get(0))
	geo := g.Geometry()

	r0, c0 := geo.Clamp(c.Int("row"), c.Int("col"))
	r1, c1 := geo.NRows, geo.NCols
	if n := c.Int("height"); n > 0 && r0+n < r1 {
		r1 = r0 + n
	}
	if n := c.Int("width"); n > 0 && c0+n < c1 {
		c1 = c0 + n
	}

	value := c.Float64("value")
	random := c.Bool("random")
	lo, hi := c.Float64("min"), c.Float64("max")
	rnd := rand.New(rand.NewSource(c.Int64("seed")))
	density := c.Float64("density")

	progress, bar := utils.NewProgressBar("filling rows: ", int64(r1-r0), c.Bool("quiet"))
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			if density < 1 && rnd.Float64() >= density {
				continue
			}
			v := value
			if random {
				v = lo + rnd.Float64()*(hi-lo)
			}
			if err := g.InitCell(row, col, v); err != nil {
				logger.Fatalf("fill (%d, %d): %s", row, col, err)
			}
		}
		bar.Increment()
	}
	bar.SetTotal(0, true)
	progress.Wait()

	if c.Bool("snapshot") {
		if err := g.WriteCache(); err != nil {
			logger.Fatalf("snapshot: %s", err)
		}
	}
	st := e.Stats()
	logger.Infof("Filled %dx%d cells of %s, %d chunks resident, %d swapped, %d retries",
		r1-r0, c1-c0, g, st.Resident, st.Swaps, st.Retries)
	closeGrid(g)
	return nil
}

func fillFlags() *cli.Command {
	return &cli.Command{
		Name:      "fill",
		Usage:     "fill a rectangle of cells with a value or random values",
		ArgsUsage: "DIR",
		Flags: append([]cli.Flag{
			&cli.IntFlag{Name: "row", Usage: "first row"},
			&cli.IntFlag{Name: "col", Usage: "first column"},
			&cli.IntFlag{Name: "height", Usage: "number of rows, 0 for all"},
			&cli.IntFlag{Name: "width", Usage: "number of columns, 0 for all"},
			&cli.Float64Flag{
				Name:  "value",
				Usage: "value of the cells",
			},
			&cli.BoolFlag{
				Name:  "random",
				Usage: "use uniform random values in [min, max)",
			},
			&cli.Float64Flag{Name: "min", Value: 0},
			&cli.Float64Flag{Name: "max", Value: 1},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "seed of the random generator"},
			&cli.Float64Flag{
				Name:  "density",
				Value: 1,
				Usage: "fraction of the cells written",
			},
			&cli.BoolFlag{
				Name:  "snapshot",
				Usage: "save the resident-map snapshot at the end",
			},
		}, storageFlags()...),
		Action: fill,
	}
}
