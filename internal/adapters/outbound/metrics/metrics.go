// Package metrics records scan phase timings and fix outcomes in a
// private Prometheus registry that can be exported as a textfile.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/abdidvp/harmonizer/internal/domain"
)

const namespace = "harmonizer"

// Recorder implements domain.PhaseObserver.
type Recorder struct {
	registry      *prometheus.Registry
	phaseDuration *prometheus.HistogramVec
	phaseIssues   *prometheus.CounterVec
	fixes         *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of each scan phase.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"phase"}),
		phaseIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_issues_total",
			Help:      "Issues recorded by each scan phase.",
		}, []string{"phase"}),
		fixes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixes_total",
			Help:      "Fix results by fixer and outcome.",
		}, []string{"fixer", "success", "dry_run"}),
	}
	r.registry.MustRegister(r.phaseDuration, r.phaseIssues, r.fixes)
	return r
}

func (r *Recorder) ObservePhase(phase domain.Phase, elapsed time.Duration, issues int) {
	r.phaseDuration.WithLabelValues(string(phase)).Observe(elapsed.Seconds())
	r.phaseIssues.WithLabelValues(string(phase)).Add(float64(issues))
}

// RecordFixes counts fix results.
func (r *Recorder) RecordFixes(results []domain.FixResult) {
	for _, res := range results {
		r.fixes.WithLabelValues(res.Fixer, strconv.FormatBool(res.Success), strconv.FormatBool(res.DryRun)).Inc()
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

// Timings reads per-phase totals back from the registry in execution order.
func (r *Recorder) Timings() ([]domain.PhaseTiming, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}
	byPhase := map[string]*domain.PhaseTiming{}
	get := func(phase string) *domain.PhaseTiming {
		if t, ok := byPhase[phase]; ok {
			return t
		}
		t := &domain.PhaseTiming{Phase: phase}
		byPhase[phase] = t
		return t
	}
	for _, mf := range families {
		switch mf.GetName() {
		case namespace + "_phase_duration_seconds":
			for _, m := range mf.GetMetric() {
				t := get(phaseLabel(m))
				t.Runs = m.GetHistogram().GetSampleCount()
				t.Seconds = m.GetHistogram().GetSampleSum()
			}
		case namespace + "_phase_issues_total":
			for _, m := range mf.GetMetric() {
				get(phaseLabel(m)).Issues = m.GetCounter().GetValue()
			}
		}
	}

	var out []domain.PhaseTiming
	for _, p := range domain.AllPhases {
		if t, ok := byPhase[string(p)]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func phaseLabel(m *dto.Metric) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == "phase" {
			return lp.GetValue()
		}
	}
	return ""
}
