// cmd/set.go

package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

func set(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Args().Len() < 4 || (c.Args().Len()-1)%3 != 0 {
		logger.Fatalf("DIR and triples of ROW COL VALUE are required")
	}
	e := newEnv(c)
	defer e.Close()
	g := openGrid(c, e, c.Args().Get(0))
	for i := 1; i < c.Args().Len(); i += 3 {
		row, col := parseCell(c, i), parseCell(c, i+1)
		s := c.Args().Get(i + 2)
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			logger.Fatalf("invalid value %q: %s", s, err)
		}
		prev, err := g.SetCell(row, col, v)
		if err != nil {
			logger.Fatalf("set (%d, %d): %s", row, col, err)
		}
		if c.Bool("print") {
			fmt.Printf("%d %d %v -> %v\n", row, col, prev, v)
		}
	}
	closeGrid(g)
	return nil
}

func setFlags() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "write values of cells",
		ArgsUsage: "DIR ROW COL VALUE [ROW COL VALUE ...]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "print",
				Usage: "print the previous values",
			},
		}, storageFlags()...),
		Action: set,
	}
}
