// Package bootstrap assembles the outbound adapters and application
// services for one command invocation.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/configfiles"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/deps"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/metrics"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/osinfo"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/python"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/quirks"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/runner"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/venv"
	"github.com/abdidvp/harmonizer/internal/application"
	"github.com/abdidvp/harmonizer/internal/domain"
)

// Services is everything a scan or fix command needs.
type Services struct {
	Runtime *application.Runtime
	Metrics *metrics.Recorder
	Runner  domain.CommandRunner
	Scan    *application.ScanService
	Fix     *application.FixService
}

// Options tune New.
type Options struct {
	Settings domain.Settings
	Log      *zap.Logger
	// Confirmer approves fixes. Nil declines every prompt.
	Confirmer domain.Confirmer
	// MetricsFile, when set, receives the Prometheus textfile on Close.
	MetricsFile string
}

func New(opts Options) *Services {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	rec := metrics.New()
	rt := application.NewRuntime(log, rec)
	rt.Fixes = rec
	if opts.MetricsFile != "" {
		path := opts.MetricsFile
		rt.OnClose(func() error { return rec.WriteTextfile(path) })
	}

	r := runner.New(log.Named("runner"))
	return &Services{
		Runtime: rt,
		Metrics: rec,
		Runner:  r,
		Scan:    application.NewScanService(Detectors(opts.Settings, r, log), rt),
		Fix:     application.NewFixService(r, opts.Confirmer, rt),
	}
}

// Detectors builds the production detector for every phase.
func Detectors(cfg domain.Settings, r domain.CommandRunner, log *zap.Logger) application.Detectors {
	return application.Detectors{
		OS: osinfo.New(r),
		Python: python.New(r,
			python.WithCandidates(cfg.PythonCandidates...),
			python.WithTimeout(cfg.CommandTimeout()),
		),
		Venv:   venv.New(),
		Deps:   deps.New(r),
		Config: configfiles.New(log.Named("config")),
		Quirks: quirks.New(log.Named("quirks"), quirks.WithWalk(cfg.MaxDepth, cfg.FollowSymlinks)),
	}
}

// Close flushes metrics and the logger.
func (s *Services) Close() error {
	err := s.Runtime.Close()
	_ = s.Runtime.Log.Sync()
	return err
}

// Recommendations combines config file suggestions for the project with
// platform tips for the scanned OS.
func Recommendations(status domain.EnvironmentStatus) []string {
	var out []string
	for _, r := range configfiles.Recommendations(status.ProjectPath) {
		out = append(out, fmt.Sprintf("Add %s: %s", r.File, r.Reason))
	}
	return append(out, quirks.Recommendations(status.OSType)...)
}
