package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	verbose    bool
	noColor    bool
	logFile    string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "harmonizer",
		Short: "Diagnose and fix Python project environments",
		Long: "Harmonizer inspects a Python project's environment (OS, interpreter, virtual environment, " +
			"dependencies and config files), reports what is wrong and applies safe automated fixes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "Settings file (defaults to .harmonizer.json in the project)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&g.logFile, "log-file", "", "Append JSON logs to this file")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newScanCmd(g))
	cmd.AddCommand(newFixCmd(g))
	cmd.AddCommand(newInitConfigCmd())
	cmd.AddCommand(newMCPCmd(g))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. Interrupting ctx stops the scan or fix in progress
// and yields an ExitError with code 130.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
