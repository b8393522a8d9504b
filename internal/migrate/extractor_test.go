package migrate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/bpmnport/pkg/schema"
)

func requireUnmappable(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var perr *schema.PortError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, schema.ErrCodeUnmappable, perr.Code)
}

func TestUnwrapExpression(t *testing.T) {
	assert.Equal(t, "amount > 500", unwrapExpression("${amount > 500}"))
	assert.Equal(t, "amount > 500", unwrapExpression("#{amount > 500}"))
	assert.Equal(t, "amount > 500", unwrapExpression("  ${ amount > 500 }  "))
	assert.Equal(t, "amount > 500", unwrapExpression("amount > 500"))
	assert.Equal(t, "", unwrapExpression("${}"))
}

// --- heuristic ---

func TestHeuristicExtractor_Comparison(t *testing.T) {
	e := NewHeuristicExtractor()
	assert.Equal(t, "heuristic", e.Name())

	got, err := e.Extract("${amount > 500}")
	require.NoError(t, err)
	assert.Equal(t, &ExtractedCondition{Field: "amount", Operator: ">", Value: "500"}, got)

	got, err = e.Extract(`status == "approved"`)
	require.NoError(t, err)
	assert.Equal(t, &ExtractedCondition{Field: "status", Operator: "==", Value: "approved"}, got)

	got, err = e.Extract("${order.total <= 99.5}")
	require.NoError(t, err)
	assert.Equal(t, &ExtractedCondition{Field: "order.total", Operator: "<=", Value: "99.5"}, got)
}

func TestHeuristicExtractor_BareIdentifier(t *testing.T) {
	got, err := NewHeuristicExtractor().Extract("${approved}")
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Field)
	assert.Empty(t, got.Operator)
}

func TestHeuristicExtractor_SkipsReservedWords(t *testing.T) {
	got, err := NewHeuristicExtractor().Extract("${not approved}")
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Field)
}

func TestHeuristicExtractor_Unmappable(t *testing.T) {
	e := NewHeuristicExtractor()

	_, err := e.Extract("${}")
	requireUnmappable(t, err)

	_, err = e.Extract("${true}")
	requireUnmappable(t, err)

	_, err = e.Extract("123 > 456")
	requireUnmappable(t, err)
}

// --- expr ---

func TestExprExtractor_Comparison(t *testing.T) {
	e := NewExprExtractor()
	assert.Equal(t, "expr", e.Name())

	got, err := e.Extract("${amount > 500}")
	require.NoError(t, err)
	assert.Equal(t, &ExtractedCondition{Field: "amount", Operator: ">", Value: "500"}, got)

	got, err = e.Extract(`status == "approved"`)
	require.NoError(t, err)
	assert.Equal(t, &ExtractedCondition{Field: "status", Operator: "==", Value: "approved"}, got)
}

func TestExprExtractor_NestedLeftSide(t *testing.T) {
	got, err := NewExprExtractor().Extract("(total + fee) > 100")
	require.NoError(t, err)
	assert.Equal(t, "total", got.Field)
	assert.Equal(t, ">", got.Operator)
	assert.Equal(t, "100", got.Value)
}

func TestExprExtractor_LogicalFallsBackToIdentifier(t *testing.T) {
	got, err := NewExprExtractor().Extract(`amount > 500 and status == "open"`)
	require.NoError(t, err)
	assert.Equal(t, "amount", got.Field)
	assert.Empty(t, got.Operator)
}

func TestExprExtractor_Unmappable(t *testing.T) {
	e := NewExprExtractor()

	_, err := e.Extract("${}")
	requireUnmappable(t, err)

	_, err = e.Extract("${>>>}")
	requireUnmappable(t, err)

	_, err = e.Extract("true")
	requireUnmappable(t, err)
}

// --- cel ---

func newCEL(t *testing.T) *CELExtractor {
	t.Helper()
	e, err := NewCELExtractor()
	require.NoError(t, err)
	return e
}

func TestCELExtractor_Comparison(t *testing.T) {
	e := newCEL(t)
	assert.Equal(t, "cel", e.Name())

	got, err := e.Extract("${amount > 500}")
	require.NoError(t, err)
	assert.Equal(t, &ExtractedCondition{Field: "amount", Operator: ">", Value: "500"}, got)

	got, err = e.Extract(`status == "approved"`)
	require.NoError(t, err)
	assert.Equal(t, &ExtractedCondition{Field: "status", Operator: "==", Value: "approved"}, got)
}

func TestCELExtractor_SelectChain(t *testing.T) {
	got, err := newCEL(t).Extract("order.total >= 10")
	require.NoError(t, err)
	assert.Equal(t, "order.total", got.Field)
	assert.Equal(t, ">=", got.Operator)
	assert.Equal(t, "10", got.Value)
}

func TestCELExtractor_Unmappable(t *testing.T) {
	e := newCEL(t)

	_, err := e.Extract("${}")
	requireUnmappable(t, err)

	_, err = e.Extract("${&&&}")
	requireUnmappable(t, err)
}

// All strategies must agree on the canonical binary-comparison shape.
func TestExtractors_AgreeOnSimpleComparison(t *testing.T) {
	extractors := []FieldExtractor{
		NewHeuristicExtractor(),
		NewExprExtractor(),
		newCEL(t),
	}
	for _, e := range extractors {
		got, err := e.Extract("${amount > 500}")
		require.NoError(t, err, e.Name())
		assert.Equal(t, "amount", got.Field, e.Name())
		assert.Equal(t, ">", got.Operator, e.Name())
		assert.Equal(t, "500", got.Value, e.Name())
	}
}
