// cmd/status.go

package main

import (
	"encoding/json"
	"fmt"

	"ChunkStore/pkg/chunk"

	"github.com/urfave/cli/v2"
)

type sections struct {
	Setting chunk.Format
	Stats   chunk.Stats
	Used    []chunk.ID `json:",omitempty"`
}

func printJson(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatalf("json: %s", err)
	}
	fmt.Println(string(output))
}

func status(ctx *cli.Context) error {
	m := openStore(ctx, 0, storeConfig(ctx))
	defer func() {
		if err := m.Close(); err != nil {
			logger.Errorf("close: %s", err)
		}
	}()

	s := sections{Setting: m.Format(), Stats: m.Stats()}
	if ctx.Bool("slots-used") {
		for id := chunk.ID(0); id < m.Slots(); id++ {
			if used, _ := m.Used(id); used {
				s.Used = append(s.Used, id)
			}
		}
	}
	printJson(&s)
	return nil
}

func statusFlags() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show layout and allocation of a store",
		ArgsUsage: "STORE",
		Action:    status,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "slots-used",
				Aliases: []string{"u"},
				Usage:   "list the allocated slots",
			},
		},
	}
}
