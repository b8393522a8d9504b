package main

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/bpmnport/internal/analysis"
	"github.com/rendis/bpmnport/internal/logging"
	"github.com/rendis/bpmnport/internal/migrate"
	"github.com/rendis/bpmnport/pkg/mcp"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Expose analyze/migrate/history as MCP tools over stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "extractor",
				Usage: "Condition field extraction strategy: heuristic, expr or cel",
				Value: "heuristic",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Run without the run-history database",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	setup(cmd)
	logger := logging.WithModule("serve")

	extractor, err := buildExtractor(cmd.String("extractor"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	deps := mcp.PortServerDeps{
		Analyzer: analysis.NewAnalyzer(analysis.DefaultScoring(), logger),
		Migrator: migrate.NewMigrator(extractor, logger),
		Logger:   logger,
	}

	if !cmd.Bool("no-history") {
		s, err := openStore(ctx, cmd)
		if err != nil {
			return cli.Exit(fmt.Sprintf("open run history: %v", err), 1)
		}
		defer s.Close()
		deps.Store = s
	}

	logger.Info("MCP server listening on stdio")
	if err := mcp.NewPortServer(deps).Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
