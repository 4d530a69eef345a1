// cmd/chunks.go

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"ChunkStore/pkg/chunk"

	"github.com/urfave/cli/v2"
)

func parseID(c *cli.Context, i int) chunk.ID {
	if c.Args().Len() <= i {
		logger.Fatalf("ID is needed")
	}
	id, err := strconv.ParseUint(c.Args().Get(i), 10, 32)
	if err != nil {
		logger.Fatalf("invalid ID %s: %s", c.Args().Get(i), err)
	}
	return chunk.ID(id)
}

func alloc(c *cli.Context) error {
	m := openStore(c, 0, storeConfig(c))
	n := c.Int("count")
	for i := 0; i < n; i++ {
		id, err := m.Create()
		if err != nil {
			closeStore(m)
			logger.Fatalf("allocate chunk %d of %d: %s", i+1, n, err)
		}
		fmt.Println(id)
	}
	closeStore(m)
	return nil
}

func free(c *cli.Context) error {
	m := openStore(c, 0, storeConfig(c))
	for i := 1; i < c.Args().Len(); i++ {
		id := parseID(c, i)
		if err := m.Delete(id); err != nil {
			logger.Errorf("free %d: %s", id, err)
		}
	}
	closeStore(m)
	return nil
}

func read(c *cli.Context) error {
	m := openStore(c, 0, storeConfig(c))
	defer closeStore(m)
	id := parseID(c, 1)
	ch, err := m.Get(id)
	if err != nil {
		return fmt.Errorf("read %d: %s", id, err)
	}
	if c.Bool("hex") {
		fmt.Printf("next: %s\n", ch.Info.Next)
		fmt.Print(hex.Dump(ch.Data[:]))
		return nil
	}
	_, err = os.Stdout.Write(ch.Data[:])
	return err
}

func write(c *cli.Context) error {
	m := openStore(c, 0, storeConfig(c))
	defer closeStore(m)
	id := parseID(c, 1)
	if c.Args().Len() < 3 {
		return fmt.Errorf("DATA is needed")
	}
	data := []byte(c.Args().Get(2))
	if c.Bool("hex") {
		var err error
		if data, err = hex.DecodeString(string(data)); err != nil {
			return fmt.Errorf("decode %s: %s", c.Args().Get(2), err)
		}
	}
	if len(data) > chunk.DataSize {
		logger.Warnf("DATA is %d bytes, only %d are stored", len(data), chunk.DataSize)
	}
	return m.Update(id, func(ch *chunk.Chunk) {
		ch.SetData(data)
	})
}

func allocFlags() *cli.Command {
	return &cli.Command{
		Name:      "alloc",
		Usage:     "allocate chunks and print their ids",
		ArgsUsage: "STORE",
		Action:    alloc,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Value:   1,
				Usage:   "number of chunks to allocate",
			},
		},
	}
}

func freeFlags() *cli.Command {
	return &cli.Command{
		Name:      "free",
		Usage:     "release chunks",
		ArgsUsage: "STORE ID ...",
		Action:    free,
	}
}

func readFlags() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "print the payload of a chunk",
		ArgsUsage: "STORE ID",
		Action:    read,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "hex",
				Usage: "hex dump the header and payload",
			},
		},
	}
}

func writeFlags() *cli.Command {
	return &cli.Command{
		Name:      "write",
		Usage:     "replace the payload of a chunk",
		ArgsUsage: "STORE ID DATA",
		Action:    write,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "hex",
				Usage: "DATA is hex encoded",
			},
		},
	}
}
