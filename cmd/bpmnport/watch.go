package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/bpmnport/internal/analysis"
	"github.com/rendis/bpmnport/internal/logging"
	"github.com/rendis/bpmnport/internal/watch"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-analyze a drop directory of BPMN documents on a cron schedule",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron schedule (5-field) for directory scans",
				Value:   "*/5 * * * *",
				Sources: cli.EnvVars("BPMNPORT_WATCH_SCHEDULE"),
			},
		},
		Action: runWatch,
	}
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	setup(cmd)
	logger := logging.WithModule("watch")

	dir := cmd.Args().First()
	if dir == "" {
		return cli.Exit("usage: bpmnport watch <dir>", 1)
	}

	s, err := openStore(ctx, cmd)
	if err != nil {
		return cli.Exit(fmt.Sprintf("open run history: %v", err), 1)
	}
	defer s.Close()

	analyzer := analysis.NewAnalyzer(analysis.DefaultScoring(), logger)
	watcher, err := watch.NewWatcher(dir, cmd.String("schedule"), analyzer, s, logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	<-ctx.Done()
	watcher.Stop()
	logger.Info("watcher stopped")
	return nil
}
