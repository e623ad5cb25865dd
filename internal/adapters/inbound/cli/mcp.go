package cli

import (
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/abdidvp/harmonizer/internal/adapters/inbound/mcp"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/settings"
	"github.com/abdidvp/harmonizer/internal/logging"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the harmonizer MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(g))
	return cmd
}

func newMCPServeCmd(g *globalFlags) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start harmonizer MCP server (stdio)",
		Long:  "Start the harmonizer MCP server using stdio transport. This lets AI coding assistants scan the project environment, preview fixes and read recommendations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			absPath, err := filepath.Abs(projectPath)
			if err != nil {
				return usageError(err)
			}

			cfg, _, err := settings.New().Load(absPath, g.configFile)
			if err != nil {
				return usageError(err)
			}
			// stdout is the transport; logs stay on stderr.
			log, closeLog, err := logging.New(logging.Options{
				Out:     cmd.ErrOrStderr(),
				Verbose: g.verbose || cfg.Verbose,
				File:    g.logFile,
			})
			if err != nil {
				return usageError(err)
			}
			defer closeLog()

			s := mcpadapter.NewHarmonizerMCPServer(absPath, mcpadapter.Config{Settings: cfg, Log: log})
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}
