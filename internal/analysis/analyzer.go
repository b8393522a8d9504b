package analysis

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rendis/bpmnport/internal/bpmn"
	"github.com/rendis/bpmnport/pkg/schema"
)

// Analyzer performs the read-only feasibility pass over a parsed document.
// Safe for reuse across documents; holds no per-document state.
type Analyzer struct {
	scoring ScoringConfig
	logger  *slog.Logger
}

// NewAnalyzer creates an Analyzer. logger may be nil.
func NewAnalyzer(scoring ScoringConfig, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{scoring: scoring, logger: logger}
}

// AnalyzeFile parses and analyzes the document at path. It never returns an
// error: parse and I/O failures come back as a degraded report with the Error
// field set, so a batch caller survives one bad document.
func (a *Analyzer) AnalyzeFile(path string) *schema.AnalysisReport {
	defs, err := bpmn.ParseFile(path)
	if err != nil {
		a.logger.Warn("document analysis failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return schema.ErrorReport(path, err)
	}
	report := a.Analyze(defs)
	report.DocumentPath = path
	return report
}

// Analyze runs the full analysis over an already-parsed document:
// tier classification of every inventory element, then the structural hazard
// checks, each independently additive to the complexity score.
func (a *Analyzer) Analyze(defs *bpmn.Definitions) *schema.AnalysisReport {
	report := &schema.AnalysisReport{
		DiscoveredAt:     time.Now().UTC(),
		CriticalIssues:   []string{},
		Warnings:         []string{},
		Recommendations:  []string{},
		ElementBreakdown: map[string]int{},
	}
	report.Warnings = append(report.Warnings, defs.Warnings...)

	score := 0
	for _, p := range defs.Processes {
		score += a.classifyElements(p, report)
		score += a.checkHazards(p, report)
	}
	score += a.checkCollaboration(defs.Collaboration, report)

	report.ComplexityScore = score
	report.FeasibilityPercentage = Feasibility(
		report.SupportedElements, report.PartialElements, report.UnsupportedElements)
	report.Complexity, report.EstimatedEffortHours = a.scoring.Band(score)
	report.Recommendation = Recommend(report.FeasibilityPercentage)

	if len(report.CriticalIssues) > 0 {
		report.AddRecommendation("Resolve critical issues before converting; affected constructs need manual redesign.")
	}
	if report.UnsupportedElements > 5 {
		report.AddRecommendation("High unsupported-element count; consider splitting the process into smaller documents.")
	}

	a.logger.Debug("analysis complete",
		slog.Int("elements", report.ElementCount),
		slog.Int("score", score),
		slog.Float64("feasibility", report.FeasibilityPercentage))
	return report
}

// classifyElements buckets every inventory element by its tier table entry
// and returns the accumulated per-element weight.
func (a *Analyzer) classifyElements(p *bpmn.Process, report *schema.AnalysisReport) int {
	score := 0
	for _, el := range p.Elements {
		class, ok := Classify(el.Type)
		if !ok {
			continue // not part of the classified inventory
		}
		report.ElementCount++
		report.ElementBreakdown[el.Type]++
		score += class.Weight

		switch class.Tier {
		case schema.TierSupported:
			report.SupportedElements++
		case schema.TierPartial:
			report.PartialElements++
			report.AddWarning(fmt.Sprintf(
				"Partial support: %s %q converts with adjustments", el.Type, el.DisplayName()))
		case schema.TierUnsupported:
			report.UnsupportedElements++
			report.AddCritical(fmt.Sprintf(
				"Not supported: %s %q cannot be converted automatically", el.Type, el.DisplayName()))
		}
	}
	return score
}

// checkHazards runs the per-process structural checks. Each is independent
// and purely additive; none of them aborts the analysis.
func (a *Analyzer) checkHazards(p *bpmn.Process, report *schema.AnalysisReport) int {
	score := 0

	// Flow cycles invalidate linear step ordering, so this runs on the raw
	// flow graph before any derived ordering exists.
	if at, found := FindCycle(p); found {
		score += a.scoring.CyclePenalty
		report.AddCritical(fmt.Sprintf(
			"LOOP detected: sequence flows in process %s cycle through element %s; steps cannot be ordered linearly", p.ID, at))
	}

	eventSubs := 0
	boundaries := 0
	for _, el := range p.Elements {
		if el.Type == "subProcess" && el.Attrs["triggeredByEvent"] == "true" {
			eventSubs++
		}
		if el.Type == "boundaryEvent" {
			boundaries++
		}
	}
	if eventSubs > 0 {
		score += eventSubs * a.scoring.EventSubprocessPenalty
		report.AddCritical(fmt.Sprintf(
			"%d event sub-process(es) in process %s trigger outside the normal flow and have no target equivalent", eventSubs, p.ID))
	}
	if boundaries > 0 {
		score += boundaries * a.scoring.BoundaryEventPenalty
		report.AddCritical(fmt.Sprintf(
			"%d boundary event(s) in process %s interrupt tasks and have no target equivalent", boundaries, p.ID))
	}

	for _, f := range p.Flows {
		if isComplexCondition(f.Condition) {
			score += a.scoring.ComplexConditionPenalty
			report.AddWarning(fmt.Sprintf(
				"Flow %s carries a complex condition; only simple comparisons become visibility rules", f.ID))
		}
	}
	return score
}

// checkCollaboration scores multi-pool and message-flow hazards.
func (a *Analyzer) checkCollaboration(collab *bpmn.Collaboration, report *schema.AnalysisReport) int {
	if collab == nil {
		return 0
	}
	score := 0
	if n := len(collab.Participants); n > 1 {
		score += (n - 1) * a.scoring.ExtraPoolPenalty
		report.AddWarning(fmt.Sprintf(
			"Collaboration has %d pools; each pool becomes an independent template", n))
	}
	for _, mf := range collab.MessageFlows {
		score += a.scoring.MessageFlowPenalty
		report.AddWarning(fmt.Sprintf(
			"Message flow %s crosses pools and must be wired manually", mf.ID))
	}
	return score
}

// isComplexCondition flags condition expressions with logical operators or
// function calls. Plain string containment, deliberately not a parser: the
// analyzer only estimates difficulty, it never evaluates conditions.
func isComplexCondition(cond string) bool {
	if cond == "" {
		return false
	}
	return strings.Contains(cond, "&&") ||
		strings.Contains(cond, "||") ||
		strings.Contains(cond, "function")
}
