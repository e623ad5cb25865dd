package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/report"
	"github.com/abdidvp/harmonizer/internal/bootstrap"
	"github.com/abdidvp/harmonizer/internal/domain"
)

type handlers struct {
	projectPath string
	cfg         Config
}

// registerTools registers all harmonizer MCP tools on the given server.
func registerTools(s *server.MCPServer, h *handlers) {
	// 1. harmonizer_scan
	s.AddTool(
		mcplib.NewTool("harmonizer_scan",
			mcplib.WithDescription("Diagnose the project's Python environment and return the full report as JSON"),
			mcplib.WithString("path", mcplib.Description("Project directory, absolute or relative to the server's project")),
			mcplib.WithString("checks", mcplib.Description("Comma-separated checks to run: os, python, venv, dependencies, config, quirks (default: all enabled)")),
		),
		h.handleScan,
	)

	// 2. harmonizer_fix
	s.AddTool(
		mcplib.NewTool("harmonizer_fix",
			mcplib.WithDescription("Scan the project and apply the automated fixes (config files, virtual environment, dependencies). Defaults to a dry run."),
			mcplib.WithString("path", mcplib.Description("Project directory, absolute or relative to the server's project")),
			mcplib.WithBoolean("dry_run", mcplib.Description("Report what would change without changing anything (default: true)")),
		),
		h.handleFix,
	)

	// 3. harmonizer_recommendations
	s.AddTool(
		mcplib.NewTool("harmonizer_recommendations",
			mcplib.WithDescription("Suggest config files to add and platform-specific practices for the project"),
			mcplib.WithString("path", mcplib.Description("Project directory, absolute or relative to the server's project")),
			mcplib.WithString("os_type", mcplib.Description("Target platform instead of the detected one: windows_native, wsl, linux or macos")),
		),
		h.handleRecommendations,
	)
}

// newServices wires the outbound adapters for one tool call. Fix calls run
// with AutoYes, so no confirmer is needed.
func (h *handlers) newServices() *bootstrap.Services {
	return bootstrap.New(bootstrap.Options{Settings: h.cfg.Settings, Log: h.cfg.Log})
}

func (h *handlers) resolvePath(request mcplib.CallToolRequest) string {
	path, _ := request.GetArguments()["path"].(string)
	switch {
	case path == "":
		return h.projectPath
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(h.projectPath, path)
	}
}

func (h *handlers) handleScan(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	phases := h.cfg.Settings.EnabledPhases()
	if checks, _ := request.GetArguments()["checks"].(string); checks != "" {
		checked, err := domain.ParsePhases([]string{checks})
		if err != nil {
			return errorResult(err.Error()), nil
		}
		phases = domain.SelectPhases(checked, nil)
	}

	svc := h.newServices()
	defer svc.Close()

	scanTime := time.Now()
	status, err := svc.Scan.Scan(ctx, h.resolvePath(request), phases)
	if err != nil {
		return errorResult(fmt.Sprintf("scan failed: %v", err)), nil
	}
	return jsonResult(report.Build(status, scanTime))
}

func (h *handlers) handleFix(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	dryRun := true
	if v, ok := request.GetArguments()["dry_run"].(bool); ok {
		dryRun = v
	}

	svc := h.newServices()
	defer svc.Close()

	scanTime := time.Now()
	status, err := svc.Scan.Scan(ctx, h.resolvePath(request), nil)
	if err != nil {
		return errorResult(fmt.Sprintf("fix failed: %v", err)), nil
	}

	h.cfg.Log.Info("applying fixes over mcp",
		zap.String("project", status.ProjectPath),
		zap.Bool("dry_run", dryRun),
	)
	results := svc.Fix.ApplyAll(ctx, status, domain.FixOptions{DryRun: dryRun, AutoYes: true})
	return jsonResult(report.Build(status, scanTime, report.WithFixes(append([]domain.FixResult{}, results...))))
}

func (h *handlers) handleRecommendations(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	target := domain.OSUnknown
	if raw, _ := request.GetArguments()["os_type"].(string); raw != "" {
		if target = domain.ParseOSType(raw); target == domain.OSUnknown {
			return errorResult(fmt.Sprintf("unknown os_type %q", raw)), nil
		}
	}

	svc := h.newServices()
	defer svc.Close()

	status, err := svc.Scan.Scan(ctx, h.resolvePath(request), []domain.Phase{domain.PhaseOS})
	if err != nil {
		return errorResult(fmt.Sprintf("recommendations failed: %v", err)), nil
	}
	if target != domain.OSUnknown {
		status.OSType = target
	}
	return jsonResult(struct {
		OSType          domain.OSType `json:"os_type"`
		Recommendations []string      `json:"recommendations"`
	}{status.OSType, bootstrap.Recommendations(status)})
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
