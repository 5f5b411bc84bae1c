package engine

import (
	"context"
	"time"
)

// DefaultStepInterval is the presentation delay between two steps
const DefaultStepInterval = 600 * time.Millisecond

// Stepper replays a resolved run one event per call. It adds no logic of
// its own, so stepping and batch execution can never disagree.
type Stepper struct {
	result *RunResult
	next   int
}

// NewStepper wraps a result produced by Simulate
func NewStepper(result *RunResult) *Stepper {
	return &Stepper{result: result}
}

// Step returns the next event, or false once every event was emitted
func (s *Stepper) Step() (StepEvent, bool) {
	if s.next >= len(s.result.Events) {
		return StepEvent{}, false
	}
	ev := s.result.Events[s.next]
	s.next++
	return ev, true
}

// Done reports whether all events have been emitted
func (s *Stepper) Done() bool {
	return s.next >= len(s.result.Events)
}

// Outcome returns the terminal outcome once the replay is done
func (s *Stepper) Outcome() (Outcome, bool) {
	if !s.Done() {
		return Outcome{}, false
	}
	return s.result.Outcome, true
}

// Position returns the avatar position after the last emitted step
func (s *Stepper) Position(start Position) Position {
	if s.next == 0 {
		return start
	}
	return s.result.Events[s.next-1].To
}

// Playback emits the events of result at a fixed interval and delivers the
// outcome after the last one. Each emit call returns before the next step
// is admitted. Cancelling ctx stops emission and drops the outcome; the
// returned error is ctx.Err() in that case.
func Playback(ctx context.Context, result *RunResult, interval time.Duration, emit func(StepEvent), done func(Outcome)) error {
	if interval <= 0 {
		interval = DefaultStepInterval
	}

	stepper := NewStepper(result)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		// A tick may race with cancellation; cancellation wins
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ev, ok := stepper.Step()
		if !ok {
			outcome, _ := stepper.Outcome()
			if done != nil {
				done(outcome)
			}
			return nil
		}
		if emit != nil {
			emit(ev)
		}
	}
}
