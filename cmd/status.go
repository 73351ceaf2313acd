// cmd/status.go

package main

import (
	"encoding/json"
	"fmt"
	"math"

	"RasterSwap/pkg/chunk"
	"RasterSwap/pkg/env"
	"RasterSwap/pkg/meta"

	"github.com/urfave/cli/v2"
)

type sections struct {
	Setting *meta.Format
	Summary *summary
	Memory  env.Stats
}

// summary replaces the NaN aggregates of an empty grid, which JSON can't hold.
type summary struct {
	chunk.Summary
	Min    *float64
	Max    *float64
	Mean   *float64
	Median *float64
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func printJson(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatalf("json: %s", err)
	}
	fmt.Println(string(output))
}

func stats(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("DIR is needed")
	}
	e := newEnv(ctx)
	defer e.Close()
	g := openGrid(ctx, e, ctx.Args().Get(0))
	defer closeGrid(g)

	f := g.Format()
	if ctx.Bool("format") {
		printJson(&sections{Setting: &f})
		return nil
	}
	s, err := g.Summary()
	if err != nil {
		logger.Fatalf("summary: %s", err)
	}
	printJson(&sections{
		Setting: &f,
		Summary: &summary{Summary: s, Min: finite(s.Min), Max: finite(s.Max), Mean: finite(s.Mean), Median: finite(s.Median)},
		Memory:  e.Stats(),
	})
	return nil
}

func statsFlags() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "show the format and aggregates of a grid",
		ArgsUsage: "DIR",
		Action:    stats,
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "only show the format",
			},
		}, storageFlags()...),
	}
}
