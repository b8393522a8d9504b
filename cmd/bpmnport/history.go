package main

import (
	"context"
	"encoding/json"
	"fmt"

	cli "github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List persisted analysis reports and migrated templates",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum records per resource",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "templates",
				Usage: "List template history instead of report history",
			},
		},
		Action: runHistory,
	}
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	setup(cmd)

	s, err := openStore(ctx, cmd)
	if err != nil {
		return cli.Exit(fmt.Sprintf("open run history: %v", err), 1)
	}
	defer s.Close()

	var out any
	if cmd.Bool("templates") {
		out, err = s.ListTemplates(ctx, cmd.Int("limit"))
	} else {
		out, err = s.ListReports(ctx, cmd.Int("limit"))
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("list history: %v", err), 1)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("serialize history: %v", err), 1)
	}
	fmt.Println(string(data))
	return nil
}
