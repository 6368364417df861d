package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	rdxcli "reportdex/internal/cli"
)

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to YAML config file"},
		&cli.StringFlag{Name: "dir", Usage: "report documents directory"},
		&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
	}

	app := &cli.App{
		Name:  "reportdex",
		Usage: "index and serve video-summary reports with faceted search",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the query API over HTTP",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "backend", Usage: "memory or sqlite"},
					&cli.StringFlag{Name: "addr", Usage: "listen address"},
					&cli.BoolFlag{Name: "watch", Usage: "refresh on filesystem events"},
					&cli.IntFlag{Name: "refresh-interval", Usage: "minimum seconds between change checks"},
				}, commonFlags...),
				Action: rdxcli.ServeAction,
			},
			{
				Name:   "rebuild",
				Usage:  "rebuild the in-memory index once and print the count",
				Flags:  commonFlags,
				Action: rdxcli.RebuildAction,
			},
			{
				Name:   "import",
				Usage:  "import a report directory into the SQLite table",
				Flags:  commonFlags,
				Action: rdxcli.ImportAction,
			},
			{
				Name:  "stats",
				Usage: "print the indexed report count",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "backend", Usage: "memory or sqlite"},
				}, commonFlags...),
				Action: rdxcli.StatsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
