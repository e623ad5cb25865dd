package domain_test

import (
	"testing"
	"time"

	"github.com/abdidvp/harmonizer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := domain.DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, 5, s.Timeout)
	assert.Equal(t, 3, s.MaxDepth)
	assert.True(t, s.ConfirmFixes)
	assert.Equal(t, 5*time.Second, s.CommandTimeout())
	assert.Equal(t, domain.AllPhases, s.EnabledPhases())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Settings)
		errMsg string
	}{
		{"zero timeout", func(s *domain.Settings) { s.Timeout = 0 }, "timeout must be positive"},
		{"negative depth", func(s *domain.Settings) { s.MaxDepth = -1 }, "max_depth"},
		{"auto fix with dry run", func(s *domain.Settings) { s.AutoFix = true; s.DryRun = true }, "cannot both be enabled"},
		{"no interpreters", func(s *domain.Settings) { s.PythonCandidates = nil }, "python_candidates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSettings_EnabledPhasesKeepsOrder(t *testing.T) {
	s := domain.DefaultSettings()
	s.ScanPython = false
	s.ScanConfigFiles = false
	assert.Equal(t, []domain.Phase{
		domain.PhaseOS, domain.PhaseVenv, domain.PhaseDependencies, domain.PhaseQuirks,
	}, s.EnabledPhases())
}
