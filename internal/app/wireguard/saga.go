package wireguard

import (
	"context"
	"log/slog"

	"github.com/h44z/wg-agent/internal/domain"
)

// sagaStep is one reversible action of a multi-step operation.
type sagaStep struct {
	name string
	// reached is the interface state after the step succeeded. Steps that do not advance the state leave it 0.
	reached    domain.InterfaceState
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error // optional
}

// saga runs steps in order. On the first failure the compensations of all completed steps run in reverse
// order, unless rollback is disabled. A step must change at most one thing, a failed step has nothing to undo.
type saga struct {
	name     string
	target   string
	rollback bool
	state    domain.InterfaceState
	steps    []sagaStep
}

func newSaga(name, target string, initial domain.InterfaceState, rollback bool) *saga {
	return &saga{
		name:     name,
		target:   target,
		rollback: rollback,
		state:    initial,
	}
}

func (s *saga) add(step sagaStep) *saga {
	s.steps = append(s.steps, step)
	return s
}

// State returns the last state that was reached.
func (s *saga) State() domain.InterfaceState {
	return s.state
}

// execute returns a *domain.StepError if a step failed.
func (s *saga) execute(ctx context.Context) error {
	for i, step := range s.steps {
		slog.Debug("executing step", "operation", s.name, "target", s.target, "step", step.name)

		if err := step.run(ctx); err != nil {
			stepErr := &domain.StepError{Step: step.name, State: s.state, Err: err}
			if s.rollback {
				stepErr.Cleanup = s.compensate(ctx, s.steps[:i])
				stepErr.RolledBack = len(stepErr.Cleanup) == 0
			} else {
				slog.Warn("operation failed, leaving partial state",
					"operation", s.name, "target", s.target, "step", step.name, "state", s.state)
			}
			return stepErr
		}

		if step.reached > s.state {
			s.state = step.reached
		}
	}

	return nil
}

func (s *saga) compensate(ctx context.Context, completed []sagaStep) []error {
	// compensations must run even if the request was cancelled
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			slog.Error("compensation failed",
				"operation", s.name, "target", s.target, "step", step.name, "error", err)
			errs = append(errs, err)
			continue
		}
		slog.Debug("compensated step", "operation", s.name, "target", s.target, "step", step.name)
	}
	return errs
}
