package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/bpmnport/pkg/schema"
)

// EmitOptions carries the target-platform options set at the CLI surface.
type EmitOptions struct {
	Tags        []string
	Public      bool
	AllowGuests bool
	ArchiveDays int
}

// TargetTemplate is the target platform's template JSON shape.
type TargetTemplate struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Summary         string       `json:"summary,omitempty"`
	Tags            []string     `json:"tags"`
	IsPublic        bool         `json:"is_public"`
	GuestEnabled    bool         `json:"guest_enabled"`
	AutoArchiveDays int          `json:"auto_archive_days,omitempty"`
	Steps           []TargetStep `json:"steps"`
	Rules           []TargetRule `json:"rules"`
	Warnings        []string     `json:"warnings,omitempty"`
}

// TargetStep is one checklist step of the emitted template.
type TargetStep struct {
	Title          string `json:"title"`
	StepType       string `json:"step_type"`
	Position       int    `json:"position"`
	Description    string `json:"description,omitempty"`
	SourceRef      string `json:"source_ref"`
	RequiresReview bool   `json:"requires_review"`
}

// TargetRule is a conditional-visibility rule of the emitted template.
type TargetRule struct {
	StepRef        string `json:"step_ref"`
	Field          string `json:"field"`
	Operator       string `json:"operator,omitempty"`
	Value          string `json:"value,omitempty"`
	TargetRef      string `json:"target_ref"`
	RequiresReview bool   `json:"requires_review"`
}

// Emitter serializes intermediate templates to the target template JSON and
// validates every emitted document against the embedded schema. Safe for
// concurrent use once constructed.
type Emitter struct {
	schema *jsonschema.Schema
}

// NewEmitter compiles the embedded target-template schema.
func NewEmitter() (*Emitter, error) {
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(targetSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal target template schema: %w", err)
	}
	if err := c.AddResource(targetSchemaID, doc); err != nil {
		return nil, fmt.Errorf("add target template schema: %w", err)
	}
	compiled, err := c.Compile(targetSchemaID)
	if err != nil {
		return nil, fmt.Errorf("compile target template schema: %w", err)
	}
	return &Emitter{schema: compiled}, nil
}

// Emit serializes one intermediate template. The output is schema-validated
// before being returned; a validation failure means an emitter bug, reported
// as an error rather than written downstream.
func (e *Emitter) Emit(tpl *schema.IntermediateTemplate, opts EmitOptions) ([]byte, error) {
	if tpl == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "intermediate template is nil")
	}

	out := TargetTemplate{
		ID:              tpl.ID,
		Title:           tpl.Name,
		Summary:         fmt.Sprintf("Migrated from process %s", tpl.ProcessID),
		Tags:            append([]string{}, opts.Tags...),
		IsPublic:        opts.Public,
		GuestEnabled:    opts.AllowGuests,
		AutoArchiveDays: opts.ArchiveDays,
		Steps:           make([]TargetStep, 0, len(tpl.Steps)),
		Rules:           []TargetRule{},
		Warnings:        tpl.Warnings,
	}

	for _, step := range tpl.Steps {
		out.Steps = append(out.Steps, TargetStep{
			Title:          step.Name,
			StepType:       stepType(step.Kind),
			Position:       step.Position,
			Description:    strings.Join(step.Notes, "\n"),
			SourceRef:      step.SourceElementID,
			RequiresReview: step.RequiresManualReview,
		})
		for _, rule := range step.Rules {
			out.Rules = append(out.Rules, TargetRule{
				StepRef:        step.SourceElementID,
				Field:          rule.Field,
				Operator:       rule.Operator,
				Value:          rule.Value,
				TargetRef:      rule.TargetElementID,
				RequiresReview: rule.RequiresManualReview,
			})
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "serialize template").WithCause(err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "reparse emitted template").WithCause(err)
	}
	if err := e.schema.Validate(doc); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"emitted template violates target schema: %s", err.Error()).WithCause(err)
	}
	return data, nil
}

// stepType maps the closed StepKind set to target step types. The placeholder
// arm doubles as the default so unknown kinds stay visible instead of
// vanishing.
func stepType(kind schema.StepKind) string {
	switch kind {
	case schema.StepTask:
		return "task"
	case schema.StepDecision:
		return "decision"
	case schema.StepParallelGroup:
		return "group"
	default:
		return "placeholder"
	}
}
