package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/report"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/tui"
	"github.com/abdidvp/harmonizer/internal/bootstrap"
	"github.com/abdidvp/harmonizer/internal/domain"
)

func newScanCmd(g *globalFlags) *cobra.Command {
	var (
		jsonOutput  bool
		recommend   bool
		check       []string
		skip        []string
		output      string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Diagnose a Python project's environment",
		Long: "Run the environment checks (os, python, venv, dependencies, config, quirks) against a " +
			"project and report every issue found. Exits 1 when an error-severity issue is present.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g, args, sessionOptions{metricsFile: metricsFile})
			if err != nil {
				return err
			}
			defer s.close()

			phases, err := resolvePhases(s.settings, check, skip)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			scanTime := time.Now()
			status, err := s.svc.Scan.Scan(ctx, s.path, phases)
			if err != nil {
				return err
			}
			if err := interrupted(ctx); err != nil {
				return err
			}

			var recs []string
			if recommend {
				recs = bootstrap.Recommendations(status)
			}

			out, render := cmd.OutOrStdout(), s.render
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating report file: %w", err)
				}
				defer f.Close()
				out, render = f, tui.NewRenderer(false)
			}

			rendered := reportOutput{
				status:   status,
				scanTime: scanTime,
				recs:     recs,
				timings:  s.timings(),
				json:     jsonOutput || s.settings.JSONOutput,
				render:   render,
			}
			if err := rendered.write(out); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", output)
			}

			if status.HasErrors() {
				return &ExitError{Code: ExitIssues}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&recommend, "recommend", false, "Include config and platform recommendations")
	cmd.Flags().StringSliceVar(&check, "check", nil, "Run only these checks (os,python,venv,dependencies,config,quirks)")
	cmd.Flags().StringSliceVar(&skip, "skip", nil, "Skip these checks")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus phase metrics to this file")
	cmd.MarkFlagsMutuallyExclusive("check", "skip")

	return cmd
}

// reportOutput renders a scan, and the fixes applied after it, as text or
// JSON.
type reportOutput struct {
	status   domain.EnvironmentStatus
	scanTime time.Time
	recs     []string
	fixes    []domain.FixResult
	timings  []domain.PhaseTiming
	json     bool
	render   *tui.Renderer
}

func (r reportOutput) write(w io.Writer) error {
	if r.json {
		return report.Write(w, report.Build(r.status, r.scanTime,
			report.WithFixes(r.fixes),
			report.WithRecommendations(r.recs),
			report.WithPerformance(r.timings),
		))
	}
	if r.fixes != nil {
		_, err := fmt.Fprint(w, r.render.Fixes(r.fixes))
		return err
	}
	_, err := fmt.Fprint(w, r.render.Status(r.status, tui.ReportOptions{
		ScanTime:        r.scanTime,
		Recommendations: r.recs,
		Timings:         r.timings,
	}))
	return err
}
