package schema

// StepKind enumerates the kinds of intermediate steps. The set is closed:
// any source construct without a dedicated mapping degrades to StepPlaceholder.
type StepKind string

const (
	StepTask          StepKind = "task"
	StepDecision      StepKind = "decision"
	StepParallelGroup StepKind = "parallel_group"
	StepPlaceholder   StepKind = "placeholder"
)

// IntermediateStep is one entry of the intermediate representation consumed by
// the template emitter. Every top-level flow node of a process maps to exactly
// one step, placeholders included, so output is always traceable to source.
type IntermediateStep struct {
	Name                 string            `json:"name"`
	Kind                 StepKind          `json:"kind"`
	SourceElementID      string            `json:"source_element_id"`
	SourceElementType    string            `json:"source_element_type"`
	Position             int               `json:"position"`
	Condition            string            `json:"condition,omitempty"`
	Rules                []ConditionalRule `json:"rules,omitempty"`
	GroupMembers         []string          `json:"group_members,omitempty"`
	RequiresManualReview bool              `json:"requires_manual_review"`
	Notes                []string          `json:"notes,omitempty"`
}

// ConditionalRule is a conditional-visibility rule attached to a decision
// step. Field/Operator/Value are best-effort extractions from the source flow
// condition, not an evaluated expression.
type ConditionalRule struct {
	Field                string `json:"field"`
	Operator             string `json:"operator,omitempty"`
	Value                string `json:"value,omitempty"`
	TargetElementID      string `json:"target_element_id"`
	SourceFlowID         string `json:"source_flow_id"`
	RequiresManualReview bool   `json:"requires_manual_review"`
}

// IntermediateTemplate is the migrator output for one process (pool).
// Multi-pool collaborations produce one independent template per pool;
// cross-pool message flows are surfaced as warnings, never auto-wired.
type IntermediateTemplate struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	ProcessID string              `json:"process_id"`
	Steps     []*IntermediateStep `json:"steps"`
	Warnings  []string            `json:"warnings,omitempty"`
}

// StepBySource returns the step emitted for the given source element ID,
// or nil if no such step exists.
func (t *IntermediateTemplate) StepBySource(elementID string) *IntermediateStep {
	for _, s := range t.Steps {
		if s.SourceElementID == elementID {
			return s
		}
	}
	return nil
}

// ManualReviewCount returns the number of steps flagged for manual follow-up.
func (t *IntermediateTemplate) ManualReviewCount() int {
	n := 0
	for _, s := range t.Steps {
		if s.RequiresManualReview {
			n++
		}
	}
	return n
}
