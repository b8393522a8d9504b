package main

import (
	"context"
	"encoding/json"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/bpmnport/internal/analysis"
	"github.com/rendis/bpmnport/internal/logging"
	"github.com/rendis/bpmnport/internal/query"
)

// Feasibility thresholds keyed to process exit codes.
const (
	feasibilityHard = 30 // below: exit 2
	feasibilitySoft = 60 // below: exit 1
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Produce a migration feasibility report for a BPMN document",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "jq expression applied to the report before printing",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Persist the report to run history",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	setup(cmd)
	logger := logging.WithModule("analyze")

	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("usage: bpmnport analyze <file>", 1)
	}

	analyzer := analysis.NewAnalyzer(analysis.DefaultScoring(), logger)
	report := analyzer.AnalyzeFile(path)

	if cmd.Bool("save") {
		s, err := openStore(ctx, cmd)
		if err != nil {
			return cli.Exit(fmt.Sprintf("open run history: %v", err), 1)
		}
		defer s.Close()
		id, err := s.SaveReport(ctx, report)
		if err != nil {
			return cli.Exit(fmt.Sprintf("persist report: %v", err), 1)
		}
		logger.InfoContext(ctx, "report persisted", "report_id", id)
	}

	var out any = report
	if expr := cmd.String("query"); expr != "" {
		result, err := query.NewEngine().Run(ctx, expr, report)
		if err != nil {
			return cli.Exit(fmt.Sprintf("query failed: %v", err), 1)
		}
		out = result
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("serialize report: %v", err), 1)
	}
	fmt.Println(string(data))

	// Low feasibility is signalled through the exit code so scripted batch callers
	// can triage documents without parsing the report.
	switch {
	case report.FeasibilityPercentage < feasibilityHard:
		return cli.Exit("", 2)
	case report.FeasibilityPercentage < feasibilitySoft:
		return cli.Exit("", 1)
	}
	return nil
}
