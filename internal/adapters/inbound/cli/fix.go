package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/application"
	"github.com/abdidvp/harmonizer/internal/domain"
)

func newFixCmd(g *globalFlags) *cobra.Command {
	var (
		dryRun     bool
		yes        bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "fix [path]",
		Short: "Apply automated fixes to a Python project",
		Long: "Scan the project, then create missing config files, set up a virtual environment and " +
			"install missing dependencies. Each fixer asks for confirmation unless --yes is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g, args, sessionOptions{confirmer: newConfirmer(cmd)})
			if err != nil {
				return err
			}
			defer s.close()

			opts := domain.FixOptions{
				DryRun:  dryRun || s.settings.DryRun,
				AutoYes: yes || s.settings.AutoFix || !s.settings.ConfirmFixes,
			}

			// Fixers read every part of the status, so the full scan runs
			// regardless of the scan_* settings.
			ctx := cmd.Context()
			scanTime := time.Now()
			status, err := s.svc.Scan.Scan(ctx, s.path, nil)
			if err != nil {
				return err
			}
			if err := interrupted(ctx); err != nil {
				return err
			}
			s.log.Info("applying fixes",
				zap.String("project", s.path),
				zap.Int("fixable_issues", len(status.FixableIssues())),
				zap.Bool("dry_run", opts.DryRun),
			)

			results := s.svc.Fix.ApplyAll(ctx, status, opts)
			rendered := reportOutput{
				status:   status,
				scanTime: scanTime,
				fixes:    append([]domain.FixResult{}, results...),
				timings:  s.timings(),
				json:     jsonOutput || s.settings.JSONOutput,
				render:   s.render,
			}
			if err := rendered.write(cmd.OutOrStdout()); err != nil {
				return err
			}
			if err := interrupted(ctx); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if !r.Success && !application.Skipped(r) {
					failed++
				}
			}
			if failed > 0 {
				return &ExitError{Code: ExitIssues, Err: fmt.Errorf("%d fix(es) failed", failed)}
			}
			if !opts.DryRun && !rendered.json {
				fmt.Fprintln(cmd.OutOrStdout(), "\n  Run `harmonizer scan` to verify the environment.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without changing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply fixes without asking for confirmation")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the scan and fix results as JSON")

	return cmd
}
