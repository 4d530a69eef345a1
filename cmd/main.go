// cmd/main.go

package main

import (
	"os"

	"ChunkStore/pkg/chunk"
	"ChunkStore/pkg/utils"
	"ChunkStore/pkg/version"

	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var logger = utils.GetLogger("chunkstore")

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"debug"},
			Usage:   "enable debug log",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only warning and errors",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "path of log file",
		},
		&cli.BoolFlag{
			Name:  "gops",
			Usage: "start a gops agent for diagnostics",
		},
		&cli.Int64Flag{
			Name:  "upload-limit",
			Usage: "bandwidth limit for chunk saves in bytes/s",
		},
		&cli.Int64Flag{
			Name:  "download-limit",
			Usage: "bandwidth limit for chunk loads in bytes/s",
		},
		&cli.BoolFlag{
			Name:  "sync",
			Usage: "sync the medium after every flush",
		},
	}
}

func setLoggerLevel(c *cli.Context) {
	if c.Bool("verbose") {
		utils.SetLogLevel(logrus.DebugLevel)
	} else if c.Bool("quiet") {
		utils.SetLogLevel(logrus.WarnLevel)
	} else {
		utils.SetLogLevel(logrus.InfoLevel)
	}
	if p := c.String("log"); p != "" {
		if err := utils.SetOutFile(p); err != nil {
			logger.Warnf("open log file %s: %s", p, err)
		}
	}
}

// storeConfig opens existing stores only, commands creating media clear ModeExisting.
func storeConfig(c *cli.Context) *chunk.Config {
	return &chunk.Config{
		Slots:         uint32(c.Uint("slots")),
		Mode:          chunk.ModeExisting,
		Sync:          c.Bool("sync"),
		UploadLimit:   c.Int64("upload-limit"),
		DownloadLimit: c.Int64("download-limit"),
	}
}

// openStore opens the STORE argument at position i or exits.
func openStore(c *cli.Context, i int, conf *chunk.Config) *chunk.Manager {
	if c.Args().Len() <= i {
		logger.Fatalf("STORE is needed")
	}
	warnMisplacedFlags(c)
	uri := c.Args().Get(i)
	m, err := chunk.Open(uri, conf)
	if err != nil {
		logger.Fatalf("open %s: %s", uri, err)
	}
	return m
}

// misplacedFlags returns the arguments that look like flags. They are left
// unparsed once the first positional argument is seen.
func misplacedFlags(args []string) []string {
	var flags []string
	for _, a := range args {
		if len(a) > 1 && a[0] == '-' && (a[1] < '0' || a[1] > '9') {
			flags = append(flags, a)
		}
	}
	return flags
}

func warnMisplacedFlags(c *cli.Context) {
	for _, a := range misplacedFlags(c.Args().Slice()) {
		logger.Warnf("%s after the arguments is not parsed as a flag, put flags before them", a)
	}
}

// closeStore flushes and closes m, exiting on failure.
func closeStore(m *chunk.Manager) {
	if err := m.Flush(); err != nil {
		logger.Fatalf("flush: %s", err)
	}
	if err := m.Close(); err != nil {
		logger.Fatalf("close: %s", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "chunkstore",
		Usage:                "fixed-size chunk storage on memory, files and block devices",
		Version:              version.Version(),
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Before: func(c *cli.Context) error {
			setLoggerLevel(c)
			if c.Bool("gops") {
				if err := agent.Listen(agent.Options{}); err != nil {
					logger.Warnf("start gops agent: %s", err)
				}
			}
			return nil
		},
		Commands: []*cli.Command{
			formatFlags(),
			statusFlags(),
			allocFlags(),
			freeFlags(),
			readFlags(),
			writeFlags(),
			dumpFlags(),
			restoreFlags(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}
