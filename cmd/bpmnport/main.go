package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/bpmnport/internal/logging"
	"github.com/rendis/bpmnport/internal/store"
)

func main() {
	cmd := &cli.Command{
		Name:                  "bpmnport",
		Usage:                 "Analyze BPMN documents and migrate them to checklist templates",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("BPMNPORT_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "db-path",
				Usage:   "Run-history database path (default: ~/.bpmnport/bpmnport.db)",
				Sources: cli.EnvVars("BPMNPORT_DB_PATH"),
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			migrateCommand(),
			historyCommand(),
			watchCommand(),
			serveCommand(),
			versionCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup installs logging from the global flag.
func setup(cmd *cli.Command) {
	logging.Setup(cmd.String("log-level"))
}

// openStore opens (and migrates) the run-history database.
func openStore(ctx context.Context, cmd *cli.Command) (store.Store, error) {
	dbPath := cmd.String("db-path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir := filepath.Join(home, ".bpmnport")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
		dbPath = filepath.Join(dir, "bpmnport.db")
	}

	s, err := store.NewLibSQLStore("file:" + dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
