package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rendis/bpmnport/internal/bpmn"
)

// handleAnalyze runs the feasibility analysis over one document.
func (s *PortServer) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	save := req.GetBool("save", false)

	report := s.analyzer.AnalyzeFile(path)

	if save {
		if s.store == nil {
			return mcp.NewToolResultError("run history persistence is not configured"), nil
		}
		id, saveErr := s.store.SaveReport(ctx, report)
		if saveErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to persist report: %v", saveErr)), nil
		}
		s.logger.InfoContext(ctx, "report persisted", "report_id", id)
	}

	return marshalResult(report)
}

// handleMigrate converts one document into intermediate templates.
func (s *PortServer) handleMigrate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	save := req.GetBool("save", false)

	defs, parseErr := bpmn.ParseFile(path)
	if parseErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("document did not parse: %v", parseErr)), nil
	}

	templates := s.migrator.Migrate(defs)

	if save {
		if s.store == nil {
			return mcp.NewToolResultError("run history persistence is not configured"), nil
		}
		for _, tpl := range templates {
			if saveErr := s.store.SaveTemplate(ctx, tpl, path); saveErr != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to persist template: %v", saveErr)), nil
			}
		}
	}

	return marshalResult(templates)
}

// handleHistory lists past runs from the store.
func (s *PortServer) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resource, err := req.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError("resource is required"), nil
	}
	if s.store == nil {
		return mcp.NewToolResultError("run history persistence is not configured"), nil
	}
	limit := req.GetInt("limit", 20)

	switch resource {
	case "reports":
		records, listErr := s.store.ListReports(ctx, limit)
		if listErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list reports: %v", listErr)), nil
		}
		return marshalResult(records)
	case "templates":
		records, listErr := s.store.ListTemplates(ctx, limit)
		if listErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list templates: %v", listErr)), nil
		}
		return marshalResult(records)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown resource %q", resource)), nil
	}
}

// marshalResult renders any value as an indented-JSON tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
