package application

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// Runtime carries the process-wide collaborators of a scan or fix run.
// The entry point builds one and passes it down explicitly.
type Runtime struct {
	Log      *zap.Logger
	Observer domain.PhaseObserver
	// Fixes is optional.
	Fixes domain.FixObserver

	closers []func() error
}

// NewRuntime returns a runtime. Nil arguments are replaced by no-op
// implementations.
func NewRuntime(log *zap.Logger, observer domain.PhaseObserver) *Runtime {
	if log == nil {
		log = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Runtime{Log: log, Observer: observer}
}

// OnClose registers fn to run when the runtime is closed. Closers run in
// reverse registration order.
func (r *Runtime) OnClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

// Close runs the registered closers and returns their joined errors.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func (r *Runtime) logger() *zap.Logger {
	if r == nil || r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Runtime) observer() domain.PhaseObserver {
	if r == nil || r.Observer == nil {
		return nopObserver{}
	}
	return r.Observer
}

type nopObserver struct{}

func (nopObserver) ObservePhase(domain.Phase, time.Duration, int) {}
