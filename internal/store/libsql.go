package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/rendis/bpmnport/pkg/schema"
)

// LibSQLStore implements the Store interface using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// --- Reports ---

// SaveReport persists an analysis report and returns its generated ID.
func (s *LibSQLStore) SaveReport(ctx context.Context, report *schema.AnalysisReport) (string, error) {
	if report == nil {
		return "", schema.NewError(schema.ErrCodeStore, "report is nil")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return "", schema.NewError(schema.ErrCodeStore, "marshal report").WithCause(err)
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, document_path, feasibility, complexity, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, report.DocumentPath, report.FeasibilityPercentage, string(report.Complexity),
		string(payload), time.Now().UTC(),
	)
	if err != nil {
		return "", schema.NewError(schema.ErrCodeStore, "insert report").WithCause(err)
	}
	return id, nil
}

// GetReport loads a persisted analysis report by ID.
func (s *LibSQLStore) GetReport(ctx context.Context, id string) (*schema.AnalysisReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("report", id)
	}
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "query report").WithCause(err)
	}
	report := &schema.AnalysisReport{}
	if err := json.Unmarshal([]byte(payload), report); err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "unmarshal report").WithCause(err)
	}
	return report, nil
}

// ListReports returns the most recent report records, newest first.
func (s *LibSQLStore) ListReports(ctx context.Context, limit int) ([]*ReportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_path, feasibility, complexity, created_at
		 FROM reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "query reports").WithCause(err)
	}
	defer rows.Close()

	var records []*ReportRecord
	for rows.Next() {
		r := &ReportRecord{}
		var complexity string
		if err := rows.Scan(&r.ID, &r.DocumentPath, &r.Feasibility, &complexity, &r.CreatedAt); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "scan report row").WithCause(err)
		}
		r.Complexity = schema.Complexity(complexity)
		records = append(records, r)
	}
	return records, rows.Err()
}

// --- Templates ---

// SaveTemplate persists an intermediate template under its own ID.
func (s *LibSQLStore) SaveTemplate(ctx context.Context, tpl *schema.IntermediateTemplate, documentPath string) error {
	if tpl == nil {
		return schema.NewError(schema.ErrCodeStore, "template is nil")
	}
	payload, err := json.Marshal(tpl)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "marshal template").WithCause(err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, document_path, step_count, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload=excluded.payload, step_count=excluded.step_count`,
		tpl.ID, tpl.Name, documentPath, len(tpl.Steps), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "insert template").WithCause(err)
	}
	return nil
}

// GetTemplate loads a persisted intermediate template by ID.
func (s *LibSQLStore) GetTemplate(ctx context.Context, id string) (*schema.IntermediateTemplate, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM templates WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("template", id)
	}
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "query template").WithCause(err)
	}
	tpl := &schema.IntermediateTemplate{}
	if err := json.Unmarshal([]byte(payload), tpl); err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "unmarshal template").WithCause(err)
	}
	return tpl, nil
}

// ListTemplates returns the most recent template records, newest first.
func (s *LibSQLStore) ListTemplates(ctx context.Context, limit int) ([]*TemplateRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, document_path, step_count, created_at
		 FROM templates ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "query templates").WithCause(err)
	}
	defer rows.Close()

	var records []*TemplateRecord
	for rows.Next() {
		r := &TemplateRecord{}
		if err := rows.Scan(&r.ID, &r.Name, &r.DocumentPath, &r.StepCount, &r.CreatedAt); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "scan template row").WithCause(err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func storeNotFound(kind, id string) *schema.PortError {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %s not found", kind, id)
}

var _ Store = (*LibSQLStore)(nil)
