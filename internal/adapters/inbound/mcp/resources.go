package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/report"
)

const (
	reportURI   = "harmonizer://report"
	settingsURI = "harmonizer://settings"
)

// registerResources registers all harmonizer MCP resources on the given server.
func registerResources(s *server.MCPServer, h *handlers) {
	// 1. harmonizer://report - fresh scan of the project
	s.AddResource(
		mcplib.NewResource(
			reportURI,
			"Environment Report",
			mcplib.WithResourceDescription("Diagnostic report for the project's Python environment"),
			mcplib.WithMIMEType("application/json"),
		),
		h.handleReportResource,
	)

	// 2. harmonizer://settings - effective settings
	s.AddResource(
		mcplib.NewResource(
			settingsURI,
			"Settings",
			mcplib.WithResourceDescription("Effective harmonizer settings after file and environment overrides"),
			mcplib.WithMIMEType("application/json"),
		),
		h.handleSettingsResource,
	)
}

func (h *handlers) handleReportResource(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	svc := h.newServices()
	defer svc.Close()

	scanTime := time.Now()
	status, err := svc.Scan.Scan(ctx, h.projectPath, h.cfg.Settings.EnabledPhases())
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return jsonResource(reportURI, report.Build(status, scanTime))
}

func (h *handlers) handleSettingsResource(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	return jsonResource(settingsURI, h.cfg.Settings)
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
