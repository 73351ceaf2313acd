// cmd/rmr.go

package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

func rmrFlags() *cli.Command {
	return &cli.Command{
		Name:      "rmr",
		Usage:     "remove grids with their swap files and metadata",
		ArgsUsage: "DIR ...",
		Action:    rmr,
		Flags:     storageFlags(),
	}
}

func rmr(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() < 1 {
		logger.Infof("DIR is needed")
		return nil
	}
	e := newEnv(ctx)
	defer e.Close()
	for i := 0; i < ctx.Args().Len(); i++ {
		path := ctx.Args().Get(i)
		p, err := filepath.Abs(path)
		if err != nil {
			logger.Errorf("abs of %s: %s", path, err)
			continue
		}
		g := openGrid(ctx, e, p)
		if err = g.Destroy(); err != nil {
			logger.Errorf("remove %s: %s", path, err)
			continue
		}
		// only an empty directory goes, anything else was not ours
		if err = os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warnf("keep %s: %s", p, err)
		}
		logger.Infof("Removed grid %s", path)
	}
	return nil
}
