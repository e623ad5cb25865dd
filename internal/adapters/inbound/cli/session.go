package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/prompt"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/settings"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/tui"
	"github.com/abdidvp/harmonizer/internal/bootstrap"
	"github.com/abdidvp/harmonizer/internal/domain"
	"github.com/abdidvp/harmonizer/internal/logging"
)

// session is the per-invocation state of a scan or fix command.
type session struct {
	path     string
	settings domain.Settings
	log      *zap.Logger
	svc      *bootstrap.Services
	render   *tui.Renderer
	verbose  bool
	stderr   io.Writer
	closeLog func() error
}

type sessionOptions struct {
	metricsFile string
	confirmer   domain.Confirmer
}

func openSession(cmd *cobra.Command, g *globalFlags, args []string, opts sessionOptions) (*session, error) {
	// 1. resolve the project directory
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, usageError(fmt.Errorf("resolving path: %w", err))
	}

	// 2. settings file and HARMONIZER_* overrides
	cfg, source, err := settings.New().Load(absPath, g.configFile)
	if err != nil {
		return nil, usageError(err)
	}

	// 3. logger on stderr, so stdout carries only the report
	log, closeLog, err := logging.New(logging.Options{
		Out:     cmd.ErrOrStderr(),
		Verbose: g.verbose || cfg.Verbose,
		File:    g.logFile,
	})
	if err != nil {
		return nil, usageError(err)
	}
	if source != "" {
		log.Debug("settings loaded", zap.String("file", source))
	}

	svc := bootstrap.New(bootstrap.Options{
		Settings:    cfg,
		Log:         log,
		Confirmer:   opts.confirmer,
		MetricsFile: opts.metricsFile,
	})
	return &session{
		path:     absPath,
		settings: cfg,
		log:      log,
		svc:      svc,
		render:   tui.NewRenderer(colorEnabled(g, cfg, cmd.OutOrStdout())),
		verbose:  g.verbose || cfg.Verbose,
		stderr:   cmd.ErrOrStderr(),
		closeLog: closeLog,
	}, nil
}

// close flushes metrics and the log file. Failures are logged before the
// log itself is closed.
func (s *session) close() {
	if err := s.svc.Close(); err != nil {
		s.log.Warn("closing services", zap.Error(err))
	}
	if err := s.closeLog(); err != nil {
		fmt.Fprintf(s.stderr, "harmonizer: closing log: %v\n", err)
	}
}

// timings returns the per-phase cost of this session's scans when verbose
// output is on.
func (s *session) timings() []domain.PhaseTiming {
	if !s.verbose {
		return nil
	}
	t, err := s.svc.Metrics.Timings()
	if err != nil {
		s.log.Warn("reading phase timings", zap.Error(err))
		return nil
	}
	return t
}

// colorEnabled honors --no-color, the color_output setting and NO_COLOR,
// then falls back to terminal detection on out.
func colorEnabled(g *globalFlags, cfg domain.Settings, out io.Writer) bool {
	if g.noColor || !cfg.ColorOutput {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newConfirmer prompts on the command's stdin when it is a file; any other
// reader declines every fix.
func newConfirmer(cmd *cobra.Command) domain.Confirmer {
	if in, ok := cmd.InOrStdin().(*os.File); ok {
		return prompt.New(in, cmd.ErrOrStderr())
	}
	return prompt.Static(false)
}

// resolvePhases turns --check/--skip into the phases to run. Without
// --check the scan_* settings decide.
func resolvePhases(cfg domain.Settings, check, skip []string) ([]domain.Phase, error) {
	checked, err := domain.ParsePhases(check)
	if err != nil {
		return nil, usageError(err)
	}
	skipped, err := domain.ParsePhases(skip)
	if err != nil {
		return nil, usageError(err)
	}

	base := checked
	if len(base) == 0 {
		base = cfg.EnabledPhases()
		if len(base) == 0 {
			return nil, usageError(errors.New("every check is disabled in settings"))
		}
	}
	phases := domain.SelectPhases(base, skipped)
	if len(phases) == 0 {
		return nil, usageError(errors.New("no checks left to run"))
	}
	return phases, nil
}
