package migrate

import (
	"regexp"
	"strings"

	"github.com/rendis/bpmnport/pkg/schema"
)

// ExtractedCondition is the best-effort decomposition of a flow condition
// into a kickoff-form field, comparison operator and literal value.
type ExtractedCondition struct {
	Field    string
	Operator string
	Value    string
}

// FieldExtractor turns a raw condition expression into a form-field binding.
// Extraction is inherently heuristic; implementations trade robustness for
// fidelity. Three implementations: Heuristic (strings), Expr (AST walk),
// CEL (parsed representation).
type FieldExtractor interface {
	Name() string
	Extract(condition string) (*ExtractedCondition, error)
}

// unwrapExpression strips ${...} / #{...} template wrappers and whitespace so
// all extractors see the bare expression text.
func unwrapExpression(condition string) string {
	s := strings.TrimSpace(condition)
	for _, prefix := range []string{"${", "#{"} {
		if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, "}") {
			s = strings.TrimSpace(s[len(prefix) : len(s)-1])
		}
	}
	return s
}

var (
	comparisonRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\s*(==|!=|>=|<=|>|<)\s*(.+)$`)
	identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
)

// reserved words that never name a form field.
var reservedIdents = map[string]bool{
	"true": true, "false": true, "null": true, "nil": true,
	"and": true, "or": true, "not": true,
}

// HeuristicExtractor is the default strategy: plain string matching, no
// expression parsing. Handles the common `field <op> literal` shape and falls
// back to the first identifier in the text.
type HeuristicExtractor struct{}

// NewHeuristicExtractor creates the default string-heuristic extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Name returns the strategy identifier.
func (e *HeuristicExtractor) Name() string {
	return "heuristic"
}

// Extract decomposes the condition text. Returns ErrCodeUnmappable when no
// field name can be recognized; callers degrade to manual review, never fail.
func (e *HeuristicExtractor) Extract(condition string) (*ExtractedCondition, error) {
	s := unwrapExpression(condition)
	if s == "" {
		return nil, schema.NewError(schema.ErrCodeUnmappable, "empty condition expression")
	}

	if m := comparisonRe.FindStringSubmatch(s); m != nil {
		return &ExtractedCondition{
			Field:    m[1],
			Operator: m[2],
			Value:    strings.Trim(strings.TrimSpace(m[3]), `"'`),
		}, nil
	}

	for _, ident := range identifierRe.FindAllString(s, -1) {
		if !reservedIdents[ident] {
			return &ExtractedCondition{Field: ident}, nil
		}
	}
	return nil, schema.NewErrorf(schema.ErrCodeUnmappable,
		"no field name recognizable in condition %q", condition)
}

var _ FieldExtractor = (*HeuristicExtractor)(nil)
