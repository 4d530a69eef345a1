// cmd/dump.go

package main

import (
	"io"
	"os"

	"ChunkStore/pkg/chunk"
	"ChunkStore/pkg/compress"
	"ChunkStore/pkg/utils"

	"github.com/urfave/cli/v2"
)

func compressor(c *cli.Context) compress.Compressor {
	comp := compress.NewCompressor(c.String("compress"))
	if comp == nil {
		logger.Fatalf("Unsupported compress algorithm: %s", c.String("compress"))
	}
	return comp
}

func dump(c *cli.Context) error {
	comp := compressor(c)
	m := openStore(c, 0, storeConfig(c))
	defer closeStore(m)

	var w io.Writer = os.Stdout
	if c.Args().Len() > 1 && c.Args().Get(1) != "-" {
		fp, err := os.OpenFile(c.Args().Get(1), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer fp.Close()
		w = fp
	}
	progress, bar := utils.NewProgressBar("Dumped chunks: ", int64(m.Stats().Used), c.Bool("quiet") || w == os.Stdout)
	if err := chunk.Dump(w, m, comp, bar.Increment); err != nil {
		logger.Fatalf("dump: %s", err)
	}
	progress.Wait()
	logger.Infof("Dump %d chunks with %s compression", m.Stats().Used, comp.Name())
	return nil
}

func restore(c *cli.Context) error {
	comp := compressor(c)
	if c.Args().Len() < 2 {
		logger.Fatalf("FILE and STORE are needed")
	}
	var r io.Reader = os.Stdin
	if src := c.Args().Get(0); src != "-" {
		fp, err := os.Open(src)
		if err != nil {
			return err
		}
		defer fp.Close()
		r = fp
	}
	conf := storeConfig(c)
	conf.Mode &^= chunk.ModeExisting
	m := openStore(c, 1, conf)
	defer closeStore(m)

	progress, bar := utils.NewProgressBar("Restored chunks: ", 0, c.Bool("quiet"))
	n, err := chunk.Restore(r, m, comp, bar.Increment)
	if err != nil {
		logger.Fatalf("restore: %s", err)
	}
	bar.SetTotal(int64(n), true)
	progress.Wait()
	logger.Infof("Restored %d chunks", n)
	return nil
}

func dumpFlags() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "export the used chunks of a store",
		ArgsUsage: "STORE [FILE]",
		Action:    dump,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "compress",
				Value: "zstd",
				Usage: "compression algorithm (lz4, zstd, none)",
			},
		},
	}
}

func restoreFlags() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "import chunks from a dump into a store",
		ArgsUsage: "FILE STORE",
		Action:    restore,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "compress",
				Value: "zstd",
				Usage: "compression algorithm (lz4, zstd, none)",
			},
			&cli.UintFlag{
				Name:  "slots",
				Value: 1024,
				Usage: "number of chunk slots when the store is created",
			},
		},
	}
}
