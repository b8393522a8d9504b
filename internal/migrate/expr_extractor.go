package migrate

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/rendis/bpmnport/pkg/schema"
)

// ExprExtractor parses the condition with expr-lang and walks the AST instead
// of pattern-matching text. More robust than the heuristic on nested or
// parenthesized expressions, at the price of rejecting non-expr syntax.
type ExprExtractor struct{}

// NewExprExtractor creates the expr-lang AST extractor.
func NewExprExtractor() *ExprExtractor {
	return &ExprExtractor{}
}

// Name returns the strategy identifier.
func (e *ExprExtractor) Name() string {
	return "expr"
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, ">": true, "<": true, ">=": true, "<=": true,
}

// Extract parses the condition and reads field, operator and value from the
// top-level comparison node when present, otherwise from the first
// identifier anywhere in the tree.
func (e *ExprExtractor) Extract(condition string) (*ExtractedCondition, error) {
	s := unwrapExpression(condition)
	if s == "" {
		return nil, schema.NewError(schema.ErrCodeUnmappable, "empty condition expression")
	}

	tree, err := parser.Parse(s)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeUnmappable,
			"condition %q is not a parseable expression: %s", condition, err.Error()).WithCause(err)
	}

	if bin, ok := tree.Node.(*ast.BinaryNode); ok && comparisonOps[bin.Operator] {
		if field := firstIdentifier(bin.Left); field != "" {
			return &ExtractedCondition{
				Field:    field,
				Operator: bin.Operator,
				Value:    literalText(bin.Right),
			}, nil
		}
	}

	if field := firstIdentifier(tree.Node); field != "" {
		return &ExtractedCondition{Field: field}, nil
	}
	return nil, schema.NewErrorf(schema.ErrCodeUnmappable,
		"no field name recognizable in condition %q", condition)
}

// firstIdentifier walks the subtree and returns the first identifier found.
func firstIdentifier(node ast.Node) string {
	v := &identVisitor{}
	ast.Walk(&node, v)
	return v.found
}

type identVisitor struct {
	found string
}

func (v *identVisitor) Visit(node *ast.Node) {
	if v.found != "" {
		return
	}
	if id, ok := (*node).(*ast.IdentifierNode); ok {
		v.found = id.Value
	}
}

// literalText renders the value side of a comparison as plain text.
func literalText(node ast.Node) string {
	switch n := node.(type) {
	case *ast.StringNode:
		return n.Value
	case *ast.IntegerNode:
		return fmt.Sprintf("%d", n.Value)
	case *ast.FloatNode:
		return fmt.Sprintf("%g", n.Value)
	case *ast.BoolNode:
		return fmt.Sprintf("%t", n.Value)
	default:
		return strings.Trim(node.String(), `"'`)
	}
}

var _ FieldExtractor = (*ExprExtractor)(nil)
