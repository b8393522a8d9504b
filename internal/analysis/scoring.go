package analysis

import "github.com/rendis/bpmnport/pkg/schema"

// ScoringConfig holds the structural-penalty constants and complexity band
// thresholds. The defaults carry no special authority: they are tuning knobs,
// kept as data so deployments can recalibrate without code changes.
type ScoringConfig struct {
	CyclePenalty            int
	EventSubprocessPenalty  int
	BoundaryEventPenalty    int
	ComplexConditionPenalty int
	ExtraPoolPenalty        int
	MessageFlowPenalty      int

	// Band thresholds: score < SimpleBelow is simple, < ModerateBelow is
	// moderate, < ComplexBelow is complex, anything above is very_complex.
	SimpleBelow   int
	ModerateBelow int
	ComplexBelow  int

	SimpleHours      int
	ModerateHours    int
	ComplexHours     int
	VeryComplexHours int
}

// DefaultScoring returns the stock penalty and band constants.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		CyclePenalty:            20,
		EventSubprocessPenalty:  10,
		BoundaryEventPenalty:    8,
		ComplexConditionPenalty: 2,
		ExtraPoolPenalty:        5,
		MessageFlowPenalty:      3,

		SimpleBelow:   10,
		ModerateBelow: 30,
		ComplexBelow:  60,

		SimpleHours:      1,
		ModerateHours:    4,
		ComplexHours:     8,
		VeryComplexHours: 16,
	}
}

// Band maps a cumulative complexity score to its band and effort estimate.
func (c ScoringConfig) Band(score int) (schema.Complexity, int) {
	switch {
	case score < c.SimpleBelow:
		return schema.ComplexitySimple, c.SimpleHours
	case score < c.ModerateBelow:
		return schema.ComplexityModerate, c.ModerateHours
	case score < c.ComplexBelow:
		return schema.ComplexityComplex, c.ComplexHours
	default:
		return schema.ComplexityVeryComplex, c.VeryComplexHours
	}
}

// Feasibility computes the weighted completeness percentage over the three
// tier buckets. Defined as 0 for an empty inventory.
func Feasibility(supported, partial, unsupported int) float64 {
	total := supported + partial + unsupported
	if total == 0 {
		return 0
	}
	return float64(supported*100+partial*50) / float64(total)
}

// Recommend maps a feasibility percentage to the go/no-go signal.
func Recommend(feasibility float64) schema.Recommendation {
	switch {
	case feasibility < 30:
		return schema.NotRecommended
	case feasibility <= 60:
		return schema.PartialMigrate
	default:
		return schema.GoodCandidate
	}
}
