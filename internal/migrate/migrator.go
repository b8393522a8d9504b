package migrate

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rendis/bpmnport/internal/analysis"
	"github.com/rendis/bpmnport/internal/bpmn"
	"github.com/rendis/bpmnport/pkg/schema"
)

// Migrator walks a parsed element inventory and emits the intermediate
// step/rule representation. It is local-best-effort throughout: any element
// it cannot confidently transform becomes a flagged placeholder rather than
// aborting the migration. The only hard precondition is a parsed document.
type Migrator struct {
	extractor FieldExtractor
	logger    *slog.Logger
}

// NewMigrator creates a Migrator. A nil extractor selects the default
// string-heuristic strategy; logger may be nil.
func NewMigrator(extractor FieldExtractor, logger *slog.Logger) *Migrator {
	if extractor == nil {
		extractor = NewHeuristicExtractor()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{extractor: extractor, logger: logger}
}

// Migrate emits one independent IntermediateTemplate per process (pool).
// No cross-pool step linkage is created: message flows between pools surface
// as template warnings to be wired manually.
func (m *Migrator) Migrate(defs *bpmn.Definitions) []*schema.IntermediateTemplate {
	templates := make([]*schema.IntermediateTemplate, 0, len(defs.Processes))
	for _, p := range defs.Processes {
		templates = append(templates, m.migrateProcess(defs, p))
	}
	return templates
}

func (m *Migrator) migrateProcess(defs *bpmn.Definitions, p *bpmn.Process) *schema.IntermediateTemplate {
	tpl := &schema.IntermediateTemplate{
		ID:        uuid.New().String(),
		Name:      templateName(defs, p),
		ProcessID: p.ID,
	}

	ordered, warnings := traversalOrder(p)
	tpl.Warnings = append(tpl.Warnings, warnings...)

	for i, el := range ordered {
		step := m.emitStep(p, el)
		step.Position = i + 1
		tpl.Steps = append(tpl.Steps, step)
	}

	groupParallelTargets(p, tpl)
	m.messageFlowWarnings(defs, p, tpl)

	m.logger.Debug("process migrated",
		slog.String("process_id", p.ID),
		slog.Int("steps", len(tpl.Steps)),
		slog.Int("manual_review", tpl.ManualReviewCount()))
	return tpl
}

// emitStep maps one flow node to exactly one intermediate step. The switch is
// exhaustive by construction: anything without a dedicated mapping falls
// through to a placeholder, so no element is ever silently dropped.
func (m *Migrator) emitStep(p *bpmn.Process, el *bpmn.Element) *schema.IntermediateStep {
	switch {
	case analysis.IsTaskKind(el.Type):
		return m.taskStep(el)
	case el.Type == "startEvent":
		return eventStep(el, "Start")
	case el.Type == "endEvent":
		return eventStep(el, "Complete")
	case el.Type == "exclusiveGateway":
		return m.decisionStep(p, el)
	case el.Type == "parallelGateway":
		return parallelStep(p, el)
	default:
		return placeholderStep(el)
	}
}

func (m *Migrator) taskStep(el *bpmn.Element) *schema.IntermediateStep {
	step := &schema.IntermediateStep{
		Name:              el.DisplayName(),
		Kind:              schema.StepTask,
		SourceElementID:   el.ID,
		SourceElementType: el.Type,
	}
	if class, ok := analysis.Classify(el.Type); ok && class.Tier == schema.TierPartial {
		step.RequiresManualReview = true
		step.Notes = append(step.Notes, fmt.Sprintf(
			"%s has only partial support; verify the converted step", el.Type))
	}
	return step
}

func eventStep(el *bpmn.Element, fallbackName string) *schema.IntermediateStep {
	name := el.Name
	if name == "" {
		name = fallbackName
	}
	return &schema.IntermediateStep{
		Name:              name,
		Kind:              schema.StepTask,
		SourceElementID:   el.ID,
		SourceElementType: el.Type,
	}
}

// decisionStep converts an exclusive gateway. The clean shape is a binary
// split with a condition on each branch; every branch becomes one
// conditional-visibility rule keyed on a kickoff-form field extracted from
// the condition text. Anything else still emits a decision step, flagged for
// manual review.
func (m *Migrator) decisionStep(p *bpmn.Process, el *bpmn.Element) *schema.IntermediateStep {
	step := &schema.IntermediateStep{
		Name:              el.DisplayName(),
		Kind:              schema.StepDecision,
		SourceElementID:   el.ID,
		SourceElementType: el.Type,
	}

	out := p.Outgoing(el.ID)
	conditioned := 0
	for _, f := range out {
		if f.Condition != "" {
			conditioned++
		}
	}

	if len(out) != 2 || conditioned != 2 {
		step.RequiresManualReview = true
		step.Notes = append(step.Notes, fmt.Sprintf(
			"gateway has %d outgoing flows (%d conditioned); branching must be reviewed manually",
			len(out), conditioned))
		return step
	}

	for _, f := range out {
		rule := schema.ConditionalRule{
			TargetElementID: f.TargetRef,
			SourceFlowID:    f.ID,
		}
		extracted, err := m.extractor.Extract(f.Condition)
		if err != nil {
			rule.RequiresManualReview = true
			step.RequiresManualReview = true
			step.Notes = append(step.Notes, fmt.Sprintf(
				"condition on flow %s could not be mapped to a form field", f.ID))
		} else {
			rule.Field = extracted.Field
			rule.Operator = extracted.Operator
			rule.Value = extracted.Value
		}
		step.Rules = append(step.Rules, rule)
	}
	return step
}

// parallelStep converts a parallel gateway into a same-position step group.
// The grouping is visual only: the target platform has no concurrent
// execution semantics, so no ordering is implied between grouped steps.
func parallelStep(p *bpmn.Process, el *bpmn.Element) *schema.IntermediateStep {
	step := &schema.IntermediateStep{
		Name:              el.DisplayName(),
		Kind:              schema.StepParallelGroup,
		SourceElementID:   el.ID,
		SourceElementType: el.Type,
		Notes:             []string{"visual grouping only; grouped steps have no ordering guarantee"},
	}
	for _, f := range p.Outgoing(el.ID) {
		if target := p.ElementByID(f.TargetRef); target != nil {
			step.GroupMembers = append(step.GroupMembers, target.ID)
		}
	}
	return step
}

// placeholderStep is the fallback for every unsupported or unrecognized
// element, carrying the source id/type/name so output stays traceable.
func placeholderStep(el *bpmn.Element) *schema.IntermediateStep {
	return &schema.IntermediateStep{
		Name:                 el.DisplayName(),
		Kind:                 schema.StepPlaceholder,
		SourceElementID:      el.ID,
		SourceElementType:    el.Type,
		RequiresManualReview: true,
		Notes: []string{fmt.Sprintf(
			"%s has no automatic conversion; recreate manually", el.Type)},
	}
}

// groupParallelTargets assigns one shared nominal position to all tasks
// directly downstream of each parallel split.
func groupParallelTargets(p *bpmn.Process, tpl *schema.IntermediateTemplate) {
	for _, gw := range tpl.Steps {
		if gw.Kind != schema.StepParallelGroup || len(gw.GroupMembers) == 0 {
			continue
		}
		minPos := 0
		var members []*schema.IntermediateStep
		for _, id := range gw.GroupMembers {
			if s := tpl.StepBySource(id); s != nil {
				members = append(members, s)
				if minPos == 0 || s.Position < minPos {
					minPos = s.Position
				}
			}
		}
		for _, s := range members {
			s.Position = minPos
		}
	}
}

// messageFlowWarnings surfaces cross-pool message flows touching this
// process as textual warnings.
func (m *Migrator) messageFlowWarnings(defs *bpmn.Definitions, p *bpmn.Process, tpl *schema.IntermediateTemplate) {
	if defs.Collaboration == nil {
		return
	}
	poolID := ""
	for _, part := range defs.Collaboration.Participants {
		if part.ProcessRef == p.ID {
			poolID = part.ID
		}
	}
	for _, mf := range defs.Collaboration.MessageFlows {
		if p.ElementByID(mf.SourceRef) != nil || p.ElementByID(mf.TargetRef) != nil ||
			mf.SourceRef == poolID || mf.TargetRef == poolID {
			tpl.Warnings = append(tpl.Warnings, fmt.Sprintf(
				"message flow %s crosses pool boundaries; wire the hand-off manually", mf.ID))
		}
	}
}

// templateName prefers the pool name of a collaboration participant over the
// process name.
func templateName(defs *bpmn.Definitions, p *bpmn.Process) string {
	if defs.Collaboration != nil {
		for _, part := range defs.Collaboration.Participants {
			if part.ProcessRef == p.ID && part.Name != "" {
				return part.Name
			}
		}
	}
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
