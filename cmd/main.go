// cmd/main.go

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"RasterSwap/pkg/env"
	"RasterSwap/pkg/grid"
	"RasterSwap/pkg/utils"
	"RasterSwap/pkg/version"

	"github.com/dustin/go-humanize"
	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var logger = utils.GetLogger("rasterswap")

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		logger.Fatal(err)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = &cli.BoolFlag{
		Name: "version", Aliases: []string{"V"},
		Usage: "print only the version",
	}
	return &cli.App{
		Name:                 "rasterswap",
		Usage:                "out-of-core storage for large raster grids",
		Version:              version.Version(),
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Before:               setup,
		Commands: []*cli.Command{
			createFlags(),
			fillFlags(),
			getFlags(),
			setFlags(),
			infoFlags(),
			statsFlags(),
			flushFlags(),
			rmrFlags(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"debug", "v"},
			Usage:   "enable debug log",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only warning and errors",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "enable trace log",
		},
		&cli.BoolFlag{
			Name:  "no-agent",
			Usage: "disable gops agent",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "path of log file",
		},
	}
}

func setup(c *cli.Context) error {
	setLoggerLevel(c)
	if p := c.String("log"); p != "" {
		if err := utils.SetOutFile(p); err != nil {
			return fmt.Errorf("open log file %s: %s", p, err)
		}
	}
	if !c.Bool("no-agent") {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			logger.Debugf("start gops agent: %s", err)
		}
	}
	return nil
}

func setLoggerLevel(c *cli.Context) {
	if c.Bool("trace") {
		utils.SetLogLevel(logrus.TraceLevel)
	} else if c.Bool("verbose") {
		utils.SetLogLevel(logrus.DebugLevel)
	} else if c.Bool("quiet") {
		utils.SetLogLevel(logrus.WarnLevel)
	} else {
		utils.SetLogLevel(logrus.InfoLevel)
	}
}

// storageFlags are shared by every command that opens a grid.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "meta",
			Usage: "metadata URI (file path or redis://host:port/db), defaults to the grid directory",
		},
		&cli.StringFlag{
			Name:    "passphrase",
			Usage:   "passphrase of encrypted swap files",
			EnvVars: []string{"RASTERSWAP_PASSPHRASE"},
		},
		&cli.StringFlag{
			Name:  "memory",
			Value: "256M",
			Usage: "memory available to resident chunks, 0 for unlimited",
		},
		&cli.StringFlag{
			Name:  "reserve",
			Value: "1M",
			Usage: "memory held back and released first under pressure",
		},
		&cli.BoolFlag{
			Name:  "bulk",
			Usage: "swap every eligible chunk under pressure instead of the first one",
		},
		&cli.StringFlag{
			Name:  "write-limit",
			Value: "0",
			Usage: "bandwidth limit for writing swap files per second, 0 for unlimited",
		},
		&cli.StringFlag{
			Name:  "read-limit",
			Value: "0",
			Usage: "bandwidth limit for reading swap files per second, 0 for unlimited",
		},
		&cli.StringFlag{
			Name:  "cache-size",
			Value: "0",
			Usage: "size of the cache of recently swapped chunks",
		},
		&cli.BoolFlag{
			Name:  "warm",
			Usage: "load the resident-map snapshot when opening",
		},
	}
}

func parseBytes(c *cli.Context, name string) int64 {
	s := c.String(name)
	n, err := humanize.ParseBytes(s)
	if err != nil {
		logger.Fatalf("invalid --%s %q: %s", name, s, err)
	}
	return int64(n)
}

func newEnv(c *cli.Context) *env.Env {
	e, err := env.New(env.Config{
		MemoryLimit: parseBytes(c, "memory"),
		ReserveSize: parseBytes(c, "reserve"),
		Bulk:        c.Bool("bulk"),
	})
	if err != nil {
		logger.Fatalf("memory: %s", err)
	}
	return e
}

func gridConfig(c *cli.Context, dir string) grid.Config {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logger.Fatalf("abs of %s: %s", dir, err)
	}
	return grid.Config{
		Dir:        abs,
		Meta:       c.String("meta"),
		Passphrase: c.String("passphrase"),
		WriteLimit: parseBytes(c, "write-limit"),
		ReadLimit:  parseBytes(c, "read-limit"),
		CacheSize:  parseBytes(c, "cache-size"),
		WarmStart:  c.Bool("warm"),
	}
}

func openGrid(c *cli.Context, e *env.Env, dir string) *grid.Grid {
	g, err := grid.Open(e, gridConfig(c, dir))
	if err != nil {
		logger.Fatalf("open %s: %s", dir, err)
	}
	return g
}

func closeGrid(g *grid.Grid) {
	if err := g.Close(); err != nil {
		logger.Fatalf("close %s: %s", g, err)
	}
}
