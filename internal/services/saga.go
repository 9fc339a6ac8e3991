package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
)

// ErrCompensationFailed is joined into a saga error when undoing the
// completed steps did not fully succeed.
var ErrCompensationFailed = errors.New("compensation failed")

type compensation struct {
	step string
	undo func(ctx context.Context) error
}

// saga runs a sequence of steps. When a step fails, the undo actions of the
// steps that already completed run in reverse order.
type saga struct {
	name string
	log  *log.Logger
	done []compensation
}

func newSaga(name string, logger *log.Logger) *saga {
	return &saga{name: name, log: logger.With("saga", name)}
}

// Step runs do. undo may be nil for steps that cannot be reversed.
func (s *saga) Step(ctx context.Context, step string, do, undo func(ctx context.Context) error) error {
	if err := do(ctx); err != nil {
		s.log.Error("Saga step failed", "step", step, "error", err)
		if cerr := s.compensate(ctx); cerr != nil {
			return errors.Join(err, fmt.Errorf("%w: %w", ErrCompensationFailed, cerr))
		}
		return err
	}

	s.log.Debug("Saga step completed", "step", step)
	if undo != nil {
		s.done = append(s.done, compensation{step: step, undo: undo})
	}
	return nil
}

// compensate keeps going after a failed undo so every step gets its chance.
// It ignores cancellation of ctx, since the request may have been abandoned.
func (s *saga) compensate(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, c := range slices.Backward(s.done) {
		if err := c.undo(ctx); err != nil {
			s.log.Error("Compensation failed", "step", c.step, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", c.step, err))
			continue
		}
		s.log.Warn("Step compensated", "step", c.step)
	}
	s.done = nil
	return errors.Join(errs...)
}
