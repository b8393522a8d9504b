package template

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/bpmnport/pkg/schema"
)

func sampleIntermediate() *schema.IntermediateTemplate {
	return &schema.IntermediateTemplate{
		ID:        "tpl-1",
		Name:      "Order Handling",
		ProcessID: "order",
		Steps: []*schema.IntermediateStep{
			{
				Name:              "Receive order",
				Kind:              schema.StepTask,
				SourceElementID:   "t1",
				SourceElementType: "task",
				Position:          1,
			},
			{
				Name:              "Amount check",
				Kind:              schema.StepDecision,
				SourceElementID:   "gw",
				SourceElementType: "exclusiveGateway",
				Position:          2,
				Rules: []schema.ConditionalRule{
					{Field: "amount", Operator: ">", Value: "500", TargetElementID: "high", SourceFlowID: "f1"},
					{Field: "amount", Operator: "<=", Value: "500", TargetElementID: "low", SourceFlowID: "f2"},
				},
			},
			{
				Name:                 "Wait for reply",
				Kind:                 schema.StepPlaceholder,
				SourceElementID:      "ebg",
				SourceElementType:    "eventBasedGateway",
				Position:             3,
				RequiresManualReview: true,
				Notes:                []string{"eventBasedGateway has no automatic conversion; recreate manually"},
			},
		},
		Warnings: []string{"message flow mf1 crosses pool boundaries; wire the hand-off manually"},
	}
}

func TestEmit(t *testing.T) {
	e, err := NewEmitter()
	require.NoError(t, err)

	data, err := e.Emit(sampleIntermediate(), EmitOptions{
		Tags:        []string{"migrated", "orders"},
		Public:      true,
		AllowGuests: false,
		ArchiveDays: 30,
	})
	require.NoError(t, err)

	var out TargetTemplate
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "tpl-1", out.ID)
	assert.Equal(t, "Order Handling", out.Title)
	assert.Contains(t, out.Summary, "order")
	assert.Equal(t, []string{"migrated", "orders"}, out.Tags)
	assert.True(t, out.IsPublic)
	assert.False(t, out.GuestEnabled)
	assert.Equal(t, 30, out.AutoArchiveDays)

	require.Len(t, out.Steps, 3)
	assert.Equal(t, "task", out.Steps[0].StepType)
	assert.Equal(t, "decision", out.Steps[1].StepType)
	assert.Equal(t, "placeholder", out.Steps[2].StepType)
	assert.Equal(t, "ebg", out.Steps[2].SourceRef)
	assert.True(t, out.Steps[2].RequiresReview)
	assert.Contains(t, out.Steps[2].Description, "recreate manually")

	require.Len(t, out.Rules, 2)
	assert.Equal(t, "gw", out.Rules[0].StepRef)
	assert.Equal(t, "amount", out.Rules[0].Field)
	assert.Equal(t, "high", out.Rules[0].TargetRef)

	require.Len(t, out.Warnings, 1)
}

// Rules must serialize as an empty array, not null, when no decision exists.
func TestEmit_EmptyRules(t *testing.T) {
	e, err := NewEmitter()
	require.NoError(t, err)

	tpl := &schema.IntermediateTemplate{
		ID:        "tpl-2",
		Name:      "Flat checklist",
		ProcessID: "p1",
		Steps: []*schema.IntermediateStep{
			{Name: "Only step", Kind: schema.StepTask, SourceElementID: "t1", SourceElementType: "task", Position: 1},
		},
	}
	data, err := e.Emit(tpl, EmitOptions{})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, "[]", string(raw["rules"]))
	assert.JSONEq(t, "[]", string(raw["tags"]))
}

func TestEmit_NilTemplate(t *testing.T) {
	e, err := NewEmitter()
	require.NoError(t, err)

	_, err = e.Emit(nil, EmitOptions{})
	require.Error(t, err)
}

func TestEmit_SchemaViolation(t *testing.T) {
	e, err := NewEmitter()
	require.NoError(t, err)

	// An untitled template violates the minLength constraint.
	tpl := &schema.IntermediateTemplate{ID: "tpl-3", Name: "", ProcessID: "p1"}
	_, err = e.Emit(tpl, EmitOptions{})
	require.Error(t, err)

	var perr *schema.PortError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, schema.ErrCodeValidation, perr.Code)
}

func TestEmit_PositionZeroRejected(t *testing.T) {
	e, err := NewEmitter()
	require.NoError(t, err)

	tpl := &schema.IntermediateTemplate{
		ID:        "tpl-4",
		Name:      "Bad positions",
		ProcessID: "p1",
		Steps: []*schema.IntermediateStep{
			{Name: "Step", Kind: schema.StepTask, SourceElementID: "t1", SourceElementType: "task", Position: 0},
		},
	}
	_, err = e.Emit(tpl, EmitOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target schema")
}

func TestStepType(t *testing.T) {
	assert.Equal(t, "task", stepType(schema.StepTask))
	assert.Equal(t, "decision", stepType(schema.StepDecision))
	assert.Equal(t, "group", stepType(schema.StepParallelGroup))
	assert.Equal(t, "placeholder", stepType(schema.StepPlaceholder))
	assert.Equal(t, "placeholder", stepType(schema.StepKind("bogus")))
}
