// cmd/format.go

package main

import (
	"strings"

	"ChunkStore/pkg/chunk"
	"ChunkStore/pkg/utils"

	"github.com/urfave/cli/v2"
)

func format(c *cli.Context) error {
	if c.Args().Len() < 1 {
		logger.Fatalf("STORE is needed")
	}
	if flags := misplacedFlags(c.Args().Slice()); len(flags) > 0 {
		logger.Fatalf("flags %v come after STORE and are not parsed, put them before it", flags)
	}
	uri := c.Args().Get(0)
	slots := c.Uint("slots")
	if slots == 0 {
		logger.Fatalf("--slots should be > 0")
	}
	if strings.HasPrefix(uri, "dev://") && !c.Bool("force") {
		logger.Fatalf("formatting a device drops its chunk map, use --force to confirm")
	}
	if path := strings.TrimPrefix(uri, "file://"); !strings.Contains(path, "://") && utils.Exists(path) && !c.Bool("force") {
		logger.Fatalf("%s already exists, use --force to overwrite it", path)
	}

	conf := storeConfig(c)
	conf.Mode = chunk.ModeOverride
	m, err := chunk.Open(uri, conf)
	if err != nil {
		logger.Fatalf("format %s: %s", uri, err)
	}
	f := m.Format()
	closeStore(m)
	logger.Infof("Store is formatted as %+v", f)
	return nil
}

func formatFlags() *cli.Command {
	return &cli.Command{
		Name:      "format",
		Usage:     "initialize a store",
		ArgsUsage: "STORE",
		Description: `
STORE is one of mem://, file://PATH (or a bare PATH), dev://DEVICE,
redis://HOST:PORT/DB?name=KEY or sftp://USER@HOST:PORT/PATH.
Flags go before STORE:

  chunkstore format --slots 4096 /tmp/chunks.img`,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "slots",
				Value: 1024,
				Usage: "number of chunk slots",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite existing store",
			},
		},
		Action: format,
	}
}
