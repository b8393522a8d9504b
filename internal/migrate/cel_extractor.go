package migrate

import (
	"fmt"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"

	"github.com/rendis/bpmnport/pkg/schema"
)

// CELExtractor parses the condition as a CEL expression and inspects the
// parsed representation. Parse-only: conditions are never type-checked or
// evaluated, so undeclared variables are fine.
type CELExtractor struct {
	env *cel.Env
}

// NewCELExtractor creates the CEL-parse extractor.
func NewCELExtractor() (*CELExtractor, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &CELExtractor{env: env}, nil
}

// Name returns the strategy identifier.
func (e *CELExtractor) Name() string {
	return "cel"
}

var celComparisons = map[string]string{
	operators.Equals:        "==",
	operators.NotEquals:     "!=",
	operators.Greater:       ">",
	operators.GreaterEquals: ">=",
	operators.Less:          "<",
	operators.LessEquals:    "<=",
}

// Extract parses the condition and reads field, operator and value from a
// top-level comparison call, falling back to the first identifier.
func (e *CELExtractor) Extract(condition string) (*ExtractedCondition, error) {
	s := unwrapExpression(condition)
	if s == "" {
		return nil, schema.NewError(schema.ErrCodeUnmappable, "empty condition expression")
	}

	parsed, iss := e.env.Parse(s)
	if iss != nil && iss.Err() != nil {
		return nil, schema.NewErrorf(schema.ErrCodeUnmappable,
			"condition %q is not a parseable CEL expression: %s", condition, iss.Err().Error()).
			WithCause(iss.Err())
	}
	root := parsed.NativeRep().Expr()

	if root.Kind() == celast.CallKind {
		call := root.AsCall()
		if op, ok := celComparisons[call.FunctionName()]; ok && len(call.Args()) == 2 {
			if field := leftmostIdent(call.Args()[0]); field != "" {
				return &ExtractedCondition{
					Field:    field,
					Operator: op,
					Value:    celLiteralText(call.Args()[1]),
				}, nil
			}
		}
	}

	if field := leftmostIdent(root); field != "" {
		return &ExtractedCondition{Field: field}, nil
	}
	return nil, schema.NewErrorf(schema.ErrCodeUnmappable,
		"no field name recognizable in condition %q", condition)
}

// leftmostIdent descends the parsed expression looking for an identifier.
func leftmostIdent(e celast.Expr) string {
	switch e.Kind() {
	case celast.IdentKind:
		return e.AsIdent()
	case celast.SelectKind:
		sel := e.AsSelect()
		if base := leftmostIdent(sel.Operand()); base != "" {
			return base + "." + sel.FieldName()
		}
		return sel.FieldName()
	case celast.CallKind:
		for _, arg := range e.AsCall().Args() {
			if id := leftmostIdent(arg); id != "" {
				return id
			}
		}
	}
	return ""
}

// celLiteralText renders a literal argument as plain text, or "" for
// non-literal value sides.
func celLiteralText(e celast.Expr) string {
	if e.Kind() != celast.LiteralKind {
		return ""
	}
	return fmt.Sprintf("%v", e.AsLiteral().Value())
}

var _ FieldExtractor = (*CELExtractor)(nil)
