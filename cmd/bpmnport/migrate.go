package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/bpmnport/internal/analysis"
	"github.com/rendis/bpmnport/internal/bpmn"
	"github.com/rendis/bpmnport/internal/logging"
	"github.com/rendis/bpmnport/internal/migrate"
	"github.com/rendis/bpmnport/internal/template"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "Convert a BPMN document into target template JSON, one file per pool",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (additional pools get a numeric suffix)",
				Value:   "template.json",
			},
			&cli.StringSliceFlag{
				Name:  "tags",
				Usage: "Tags attached to the emitted template",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Mark the emitted template as public",
			},
			&cli.BoolFlag{
				Name:  "allow-guests",
				Usage: "Allow guest access on the emitted template",
			},
			&cli.IntFlag{
				Name:  "archive-days",
				Usage: "Auto-archive processes after N days",
			},
			&cli.StringFlag{
				Name:  "extractor",
				Usage: "Condition field extraction strategy: heuristic, expr or cel",
				Value: "heuristic",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Persist the intermediate templates to run history",
			},
		},
		Action: runMigrate,
	}
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	setup(cmd)
	logger := logging.WithModule("migrate")

	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("usage: bpmnport migrate <file>", 1)
	}
	ctx = logging.WithDocumentID(ctx, filepath.Base(path))

	defs, err := bpmn.ParseFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("document did not parse: %v", err), 1)
	}

	// The analysis report is advisory; it never gates migration.
	analyzer := analysis.NewAnalyzer(analysis.DefaultScoring(), logger)
	report := analyzer.Analyze(defs)
	logger.InfoContext(ctx, "analysis summary",
		"feasibility", report.FeasibilityPercentage,
		"complexity", string(report.Complexity),
		"critical_issues", len(report.CriticalIssues))

	extractor, err := buildExtractor(cmd.String("extractor"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	migrator := migrate.NewMigrator(extractor, logger)
	templates := migrator.Migrate(defs)

	if cmd.Bool("save") {
		s, err := openStore(ctx, cmd)
		if err != nil {
			return cli.Exit(fmt.Sprintf("open run history: %v", err), 1)
		}
		defer s.Close()
		for _, tpl := range templates {
			if err := s.SaveTemplate(ctx, tpl, path); err != nil {
				return cli.Exit(fmt.Sprintf("persist template: %v", err), 1)
			}
		}
	}

	emitter, err := template.NewEmitter()
	if err != nil {
		return cli.Exit(fmt.Sprintf("initialize emitter: %v", err), 1)
	}
	opts := template.EmitOptions{
		Tags:        cmd.StringSlice("tags"),
		Public:      cmd.Bool("public"),
		AllowGuests: cmd.Bool("allow-guests"),
		ArchiveDays: cmd.Int("archive-days"),
	}

	output := cmd.String("output")
	for i, tpl := range templates {
		data, err := emitter.Emit(tpl, opts)
		if err != nil {
			return cli.Exit(fmt.Sprintf("emit template for process %s: %v", tpl.ProcessID, err), 1)
		}
		target := outputPath(output, i)
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return cli.Exit(fmt.Sprintf("write %s: %v", target, err), 1)
		}
		logger.InfoContext(ctx, "template written",
			"file", target,
			"steps", len(tpl.Steps),
			"manual_review", tpl.ManualReviewCount())
	}
	return nil
}

func buildExtractor(name string) (migrate.FieldExtractor, error) {
	switch name {
	case "", "heuristic":
		return migrate.NewHeuristicExtractor(), nil
	case "expr":
		return migrate.NewExprExtractor(), nil
	case "cel":
		return migrate.NewCELExtractor()
	default:
		return nil, fmt.Errorf("unknown extractor %q (want heuristic, expr or cel)", name)
	}
}

// outputPath suffixes additional pool outputs: template.json, template_2.json, ...
func outputPath(base string, index int) string {
	if index == 0 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), index+1, ext)
}
