package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/bpmnport/pkg/schema"
)

func sampleReport() *schema.AnalysisReport {
	return &schema.AnalysisReport{
		DocumentPath:          "order.bpmn",
		FeasibilityPercentage: 75,
		Complexity:            schema.ComplexityModerate,
		ComplexityScore:       16,
		ElementCount:          6,
		CriticalIssues:        []string{"Not supported: boundaryEvent \"late\" cannot be converted automatically"},
		Warnings:              []string{"w1", "w2"},
		ElementBreakdown:      map[string]int{"task": 3, "boundaryEvent": 1},
	}
}

func TestRun_SingleResult(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	got, err := e.Run(ctx, ".feasibility_percentage", sampleReport())
	require.NoError(t, err)
	assert.EqualValues(t, 75, got)

	got, err = e.Run(ctx, ".complexity", sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "moderate", got)
}

func TestRun_Pipeline(t *testing.T) {
	e := NewEngine()

	got, err := e.Run(context.Background(), ".warnings | length", sampleReport())
	require.NoError(t, err)
	assert.EqualValues(t, 2, got)

	got, err = e.Run(context.Background(), ".element_breakdown.task", sampleReport())
	require.NoError(t, err)
	assert.EqualValues(t, 3, got)
}

func TestRun_MultipleResults(t *testing.T) {
	got, err := NewEngine().Run(context.Background(), ".warnings[]", sampleReport())
	require.NoError(t, err)
	assert.Equal(t, []any{"w1", "w2"}, got)
}

func TestRun_NoResults(t *testing.T) {
	got, err := NewEngine().Run(context.Background(), ".warnings[] | select(. == \"nope\")", sampleReport())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRun_MapDocument(t *testing.T) {
	doc := map[string]any{"steps": []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	}}
	got, err := NewEngine().Run(context.Background(), "[.steps[].name]", doc)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got)
}

func TestRun_EmptyExpression(t *testing.T) {
	_, err := NewEngine().Run(context.Background(), "", sampleReport())
	require.Error(t, err)

	var perr *schema.PortError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, schema.ErrCodeQuery, perr.Code)
}

func TestRun_ParseError(t *testing.T) {
	_, err := NewEngine().Run(context.Background(), ".[[", sampleReport())
	require.Error(t, err)

	var perr *schema.PortError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, schema.ErrCodeQuery, perr.Code)
}

func TestRun_EvaluationError(t *testing.T) {
	_, err := NewEngine().Run(context.Background(), `error("boom")`, sampleReport())
	require.Error(t, err)

	var perr *schema.PortError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, schema.ErrCodeQuery, perr.Code)
	assert.Contains(t, perr.Message, "boom")
}

func TestRun_CachesCompiledExpressions(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	_, err := e.Run(ctx, ".complexity", sampleReport())
	require.NoError(t, err)
	_, err = e.Run(ctx, ".complexity", sampleReport())
	require.NoError(t, err)

	e.mu.RLock()
	defer e.mu.RUnlock()
	assert.Len(t, e.cache, 1)
}
