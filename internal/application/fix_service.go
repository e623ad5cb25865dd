package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// FixService runs the fixers against a completed scan:
// config -> venv -> dependencies.
type FixService struct {
	runner  domain.CommandRunner
	confirm domain.Confirmer
	rt      *Runtime
}

func NewFixService(r domain.CommandRunner, confirm domain.Confirmer, rt *Runtime) *FixService {
	return &FixService{runner: r, confirm: confirm, rt: rt}
}

// Fixers returns the fixers for status in application order. Later fixers
// benefit from earlier ones: the dependency install targets the venv the
// venv fixer may have created.
func (s *FixService) Fixers(status domain.EnvironmentStatus) []Fixer {
	log := s.rt.logger()
	return []Fixer{
		NewConfigFixer(status, log.Named("config")),
		NewVenvFixer(status, s.runner, log.Named("venv")),
		NewDependencyFixer(status, s.runner, log.Named("dependency")),
	}
}

// ApplyAll runs every fixer and returns all results in order. A cancelled
// context stops before the next fixer.
func (s *FixService) ApplyAll(ctx context.Context, status domain.EnvironmentStatus, opts domain.FixOptions) []domain.FixResult {
	log := s.rt.logger()
	var results []domain.FixResult
	for _, f := range s.Fixers(status) {
		if ctx.Err() != nil {
			log.Debug("fix run interrupted", zap.String("next_fixer", f.Name()))
			break
		}
		out := ApplyFixes(ctx, f, opts, s.confirm)
		for _, r := range out {
			log.Debug("fix result",
				zap.String("fixer", r.Fixer),
				zap.Bool("success", r.Success),
				zap.Bool("dry_run", r.DryRun),
				zap.String("message", r.Message),
			)
		}
		results = append(results, out...)
	}
	if s.rt != nil && s.rt.Fixes != nil {
		s.rt.Fixes.RecordFixes(results)
	}
	return results
}
