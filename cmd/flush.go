// cmd/flush.go

package main

import (
	"RasterSwap/pkg/utils"

	"github.com/urfave/cli/v2"
)

// flush loads the swapped chunks that fit into memory and saves them as the
// resident-map snapshot, so that later commands can start warm with --warm.
func flush(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Args().Len() < 1 {
		logger.Fatalf("DIR is required")
	}
	e := newEnv(c)
	defer e.Close()
	g := openGrid(c, e, c.Args().Get(0))
	if c.Bool("drop") {
		if err := g.Store().RemoveCache(); err != nil {
			logger.Fatalf("remove snapshot: %s", err)
		}
		closeGrid(g)
		return nil
	}
	ids, err := g.Store().Chunks()
	if err != nil {
		logger.Fatalf("list chunks: %s", err)
	}
	progress, bar := utils.NewProgressBar("loading chunks: ", int64(len(ids)), c.Bool("quiet"))
	for _, id := range ids {
		if e.Config().MemoryLimit > 0 && e.Used() >= e.Config().MemoryLimit {
			break
		}
		if _, err = g.ChunkValues(id, false); err != nil {
			logger.Fatalf("load chunk %s: %s", id, err)
		}
		bar.Increment()
	}
	bar.SetTotal(0, true)
	progress.Wait()
	if err = g.WriteCache(); err != nil {
		logger.Fatalf("snapshot: %s", err)
	}
	logger.Infof("Saved %d resident chunks of %s", len(g.ResidentChunks()), g)
	closeGrid(g)
	return nil
}

func flushFlags() *cli.Command {
	return &cli.Command{
		Name:      "flush",
		Usage:     "save the resident-map snapshot of a grid",
		ArgsUsage: "DIR",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "drop",
				Usage: "remove the snapshot instead",
			},
		}, storageFlags()...),
		Action: flush,
	}
}
