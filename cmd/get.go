// cmd/get.go

package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

func parseCell(c *cli.Context, i int) int {
	s := c.Args().Get(i)
	n, err := strconv.Atoi(s)
	if err != nil {
		logger.Fatalf("invalid coordinate %q: %s", s, err)
	}
	return n
}

func get(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Args().Len() < 3 || c.Args().Len()%2 != 1 {
		logger.Fatalf("DIR and pairs of ROW COL are required")
	}
	e := newEnv(c)
	defer e.Close()
	g := openGrid(c, e, c.Args().Get(0))
	defer closeGrid(g)
	for i := 1; i < c.Args().Len(); i += 2 {
		row, col := parseCell(c, i), parseCell(c, i+1)
		if c.Bool("clamp") {
			row, col = g.Geometry().Clamp(row, col)
		}
		v, err := g.GetCell(row, col)
		if err != nil {
			logger.Errorf("get (%d, %d): %s", row, col, err)
			continue
		}
		if v == g.NoData() && !c.Bool("raw") {
			fmt.Printf("%d %d nodata\n", row, col)
		} else {
			fmt.Printf("%d %d %v\n", row, col, v)
		}
	}
	return nil
}

func getFlags() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "print values of cells",
		ArgsUsage: "DIR ROW COL [ROW COL ...]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "clamp",
				Usage: "move coordinates outside of the grid onto its border",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "print the no-data value instead of nodata",
			},
		}, storageFlags()...),
		Action: get,
	}
}
