package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/bpmnport/internal/analysis"
	"github.com/rendis/bpmnport/internal/migrate"
	"github.com/rendis/bpmnport/internal/store"
)

// PortServerDeps holds the dependencies for creating a PortServer.
// Store may be nil; the history tool then reports that persistence is off.
type PortServerDeps struct {
	Analyzer *analysis.Analyzer
	Migrator *migrate.Migrator
	Store    store.Store
	Logger   *slog.Logger
}

// PortServer wraps an MCP server with bpmnport-specific tool handlers.
type PortServer struct {
	analyzer  *analysis.Analyzer
	migrator  *migrate.Migrator
	store     store.Store
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewPortServer creates a PortServer with the three tools registered.
func NewPortServer(deps PortServerDeps) *PortServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &PortServer{
		analyzer: deps.Analyzer,
		migrator: deps.Migrator,
		store:    deps.Store,
		logger:   logger,
	}

	mcpSrv := server.NewMCPServer(
		"bpmnport",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("bpmnport converts BPMN process documents into checklist templates. Use bpmn.analyze to get a migration feasibility report, bpmn.migrate to produce the intermediate template, and bpmn.history to list past runs."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *PortServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *PortServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *PortServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: analyzeTool(), Handler: s.handleAnalyze},
		{Tool: migrateTool(), Handler: s.handleMigrate},
		{Tool: historyTool(), Handler: s.handleHistory},
	}
}

// --- Tool definitions ---

func analyzeTool() mcp.Tool {
	return mcp.NewTool("bpmn.analyze",
		mcp.WithDescription("Analyze a BPMN document and return the migration feasibility report"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the BPMN XML document")),
		mcp.WithBoolean("save", mcp.Description("Persist the report to run history (default: false)")),
	)
}

func migrateTool() mcp.Tool {
	return mcp.NewTool("bpmn.migrate",
		mcp.WithDescription("Convert a BPMN document into intermediate checklist templates, one per pool"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the BPMN XML document")),
		mcp.WithBoolean("save", mcp.Description("Persist the templates to run history (default: false)")),
	)
}

func historyTool() mcp.Tool {
	return mcp.NewTool("bpmn.history",
		mcp.WithDescription("List past analysis reports or migrated templates"),
		mcp.WithString("resource", mcp.Required(),
			mcp.Enum("reports", "templates"),
			mcp.Description("Type of history records to list"),
		),
		mcp.WithNumber("limit", mcp.Description("Maximum records to return (default: 20)")),
	)
}
