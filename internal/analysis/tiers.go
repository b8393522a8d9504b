package analysis

import "github.com/rendis/bpmnport/pkg/schema"

// Classification binds an element type to its support tier and fixed
// complexity weight. Assignment is a pure function of the type: the same
// element type always yields the same tier and weight, regardless of
// document content.
type Classification struct {
	Tier   schema.Tier
	Weight int
}

// elementClasses is the fixed lookup table for all recognized element types.
// Kept as data, not control flow, so tier assignment stays trivially testable.
var elementClasses = map[string]Classification{
	// Fully supported: direct equivalents in the target step model.
	"startEvent":       {schema.TierSupported, 1},
	"endEvent":         {schema.TierSupported, 1},
	"task":             {schema.TierSupported, 1},
	"userTask":         {schema.TierSupported, 1},
	"manualTask":       {schema.TierSupported, 1},
	"exclusiveGateway": {schema.TierSupported, 1},
	"lane":             {schema.TierSupported, 1},

	// Partially supported: convert with caveats, flagged for adjustment.
	"serviceTask":                 {schema.TierPartial, 3},
	"sendTask":                    {schema.TierPartial, 3},
	"receiveTask":                 {schema.TierPartial, 3},
	"scriptTask":                  {schema.TierPartial, 4},
	"businessRuleTask":            {schema.TierPartial, 4},
	"parallelGateway":             {schema.TierPartial, 4},
	"inclusiveGateway":            {schema.TierPartial, 5},
	"subProcess":                  {schema.TierPartial, 5},
	"callActivity":                {schema.TierPartial, 4},
	"intermediateCatchEvent":      {schema.TierPartial, 3},
	"intermediateThrowEvent":      {schema.TierPartial, 3},
	"standardLoopCharacteristics": {schema.TierPartial, 4},
	"timerEventDefinition":        {schema.TierPartial, 3},
	"messageEventDefinition":      {schema.TierPartial, 3},

	// Not supported: no analog in a linear checklist, manual redesign needed.
	"eventBasedGateway":                {schema.TierUnsupported, 8},
	"complexGateway":                   {schema.TierUnsupported, 8},
	"boundaryEvent":                    {schema.TierUnsupported, 8},
	"multiInstanceLoopCharacteristics": {schema.TierUnsupported, 8},
	"transaction":                      {schema.TierUnsupported, 8},
	"adHocSubProcess":                  {schema.TierUnsupported, 8},
	"errorEventDefinition":             {schema.TierUnsupported, 6},
	"signalEventDefinition":            {schema.TierUnsupported, 6},
	"escalationEventDefinition":        {schema.TierUnsupported, 6},
	"compensateEventDefinition":        {schema.TierUnsupported, 6},
}

// Classify returns the tier classification for an element type.
// The second return is false for types absent from the lookup table.
func Classify(elementType string) (Classification, bool) {
	c, ok := elementClasses[elementType]
	return c, ok
}

// taskKinds are the element types the migrator maps straight to task steps.
var taskKinds = map[string]bool{
	"task":             true,
	"userTask":         true,
	"manualTask":       true,
	"serviceTask":      true,
	"sendTask":         true,
	"receiveTask":      true,
	"scriptTask":       true,
	"businessRuleTask": true,
}

// IsTaskKind reports whether the element type maps directly to a task step.
func IsTaskKind(elementType string) bool {
	return taskKinds[elementType]
}
