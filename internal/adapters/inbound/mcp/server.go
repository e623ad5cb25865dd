package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// Config carries the settings and logger shared by every tool call.
type Config struct {
	Settings domain.Settings
	Log      *zap.Logger
}

// NewHarmonizerMCPServer creates a new MCP server with all harmonizer tools
// and resources registered. The projectPath is the default project for
// every tool call.
func NewHarmonizerMCPServer(projectPath string, cfg Config) *server.MCPServer {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if len(cfg.Settings.PythonCandidates) == 0 {
		cfg.Settings = domain.DefaultSettings()
	}

	s := server.NewMCPServer(
		"harmonizer",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	h := &handlers{projectPath: projectPath, cfg: cfg}
	registerTools(s, h)
	registerResources(s, h)

	return s
}
