package schema

import "time"

// Tier classifies how well an element type converts to the target platform.
type Tier string

const (
	TierSupported   Tier = "supported"
	TierPartial     Tier = "partial"
	TierUnsupported Tier = "unsupported"
)

// Complexity bands derived from the cumulative complexity score.
type Complexity string

const (
	ComplexitySimple      Complexity = "simple"
	ComplexityModerate    Complexity = "moderate"
	ComplexityComplex     Complexity = "complex"
	ComplexityVeryComplex Complexity = "very_complex"
	// ComplexityError marks a report produced from an unparsable document.
	ComplexityError Complexity = "error"
)

// Recommendation is the go/no-go signal derived from the feasibility percentage.
type Recommendation string

const (
	NotRecommended Recommendation = "not_recommended"
	PartialMigrate Recommendation = "partial"
	GoodCandidate  Recommendation = "good_candidate"
)

// AnalysisReport is the JSON-serializable output of the process-graph analyzer.
// It is advisory: the migrator runs independently of its verdict.
type AnalysisReport struct {
	DocumentPath          string         `json:"document_path,omitempty"`
	DiscoveredAt          time.Time      `json:"discovered_at"`
	FeasibilityPercentage float64        `json:"feasibility_percentage"`
	Complexity            Complexity     `json:"complexity"`
	ComplexityScore       int            `json:"complexity_score"`
	ElementCount          int            `json:"element_count"`
	SupportedElements     int            `json:"supported_elements"`
	PartialElements       int            `json:"partial_elements"`
	UnsupportedElements   int            `json:"unsupported_elements"`
	EstimatedEffortHours  int            `json:"estimated_manual_effort_hours"`
	Recommendation        Recommendation `json:"recommendation"`
	CriticalIssues        []string       `json:"critical_issues"`
	Warnings              []string       `json:"warnings"`
	Recommendations       []string       `json:"recommendations"`
	ElementBreakdown      map[string]int `json:"element_breakdown"`
	Error                 string         `json:"error,omitempty"`
}

// AddCritical appends a critical-issue string.
func (r *AnalysisReport) AddCritical(message string) {
	r.CriticalIssues = append(r.CriticalIssues, message)
}

// AddWarning appends a warning string.
func (r *AnalysisReport) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// AddRecommendation appends a recommendation string.
func (r *AnalysisReport) AddRecommendation(message string) {
	r.Recommendations = append(r.Recommendations, message)
}

// ErrorReport builds the degraded report returned when the document cannot be
// analyzed at all. The analyzer reports failures in-band instead of aborting.
func ErrorReport(path string, err error) *AnalysisReport {
	return &AnalysisReport{
		DocumentPath:     path,
		DiscoveredAt:     time.Now().UTC(),
		Complexity:       ComplexityError,
		Recommendation:   NotRecommended,
		CriticalIssues:   []string{},
		Warnings:         []string{},
		Recommendations:  []string{},
		ElementBreakdown: map[string]int{},
		Error:            err.Error(),
	}
}
