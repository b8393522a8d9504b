package store

import (
	"context"
	"time"

	"github.com/rendis/bpmnport/pkg/schema"
)

// Store is the persistence contract for run history. The graph itself is
// never persisted; only final reports and emitted templates are.
// All implementations must be safe for concurrent use.
type Store interface {
	// Reports
	SaveReport(ctx context.Context, report *schema.AnalysisReport) (string, error)
	GetReport(ctx context.Context, id string) (*schema.AnalysisReport, error)
	ListReports(ctx context.Context, limit int) ([]*ReportRecord, error)

	// Templates
	SaveTemplate(ctx context.Context, tpl *schema.IntermediateTemplate, documentPath string) error
	GetTemplate(ctx context.Context, id string) (*schema.IntermediateTemplate, error)
	ListTemplates(ctx context.Context, limit int) ([]*TemplateRecord, error)

	// Maintenance
	Migrate(ctx context.Context) error

	// Lifecycle
	Close() error
}

// ReportRecord is one row of analysis history.
type ReportRecord struct {
	ID           string            `json:"id"`
	DocumentPath string            `json:"document_path"`
	Feasibility  float64           `json:"feasibility_percentage"`
	Complexity   schema.Complexity `json:"complexity"`
	CreatedAt    time.Time         `json:"created_at"`
}

// TemplateRecord is one row of migration history.
type TemplateRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DocumentPath string    `json:"document_path"`
	StepCount    int       `json:"step_count"`
	CreatedAt    time.Time `json:"created_at"`
}
