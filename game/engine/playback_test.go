package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStepper_MatchesBatchResult(t *testing.T) {
	level := starLevel()
	result := Simulate(level, program(Right, Down, Down, Right))
	stepper := NewStepper(result)

	if pos := stepper.Position(level.StartPos); pos != level.StartPos {
		t.Errorf("Expected start position before stepping, got %s", pos)
	}
	if _, ok := stepper.Outcome(); ok {
		t.Error("Expected no outcome before replay finished")
	}

	var steps []StepEvent
	for {
		ev, ok := stepper.Step()
		if !ok {
			break
		}
		steps = append(steps, ev)
	}

	if len(steps) != len(result.Events) {
		t.Fatalf("Expected %d steps, got %d", len(result.Events), len(steps))
	}
	if stepper.Position(level.StartPos) != result.FinalPos {
		t.Errorf("Expected stepper to end at %s, got %s", result.FinalPos, stepper.Position(level.StartPos))
	}
	outcome, ok := stepper.Outcome()
	if !ok || outcome.Kind != OutcomeWon {
		t.Errorf("Expected won outcome after replay, got %v (%v)", outcome.Kind, ok)
	}
}

func TestPlayback_EmitsInOrderThenOutcome(t *testing.T) {
	result := Simulate(starLevel(), program(Right, Down, Down, Right))

	var got []int
	var outcome *Outcome
	err := Playback(context.Background(), result, time.Millisecond,
		func(ev StepEvent) {
			if outcome != nil {
				t.Error("Step emitted after outcome")
			}
			got = append(got, ev.Index)
		},
		func(o Outcome) { outcome = &o },
	)
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}

	for i, idx := range got {
		if idx != i {
			t.Errorf("Expected step %d, got %d", i, idx)
		}
	}
	if len(got) != 4 {
		t.Errorf("Expected 4 steps, got %d", len(got))
	}
	if outcome == nil || outcome.Kind != OutcomeWon {
		t.Errorf("Expected won outcome, got %v", outcome)
	}
}

func TestPlayback_CancelDropsOutcome(t *testing.T) {
	result := Simulate(starLevel(), program(Right, Down, Down, Right))
	ctx, cancel := context.WithCancel(context.Background())

	steps := 0
	doneCalled := false
	err := Playback(ctx, result, time.Millisecond,
		func(ev StepEvent) {
			steps++
			if steps == 2 {
				cancel()
			}
		},
		func(Outcome) { doneCalled = true },
	)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if steps != 2 {
		t.Errorf("Expected emission to stop after 2 steps, got %d", steps)
	}
	if doneCalled {
		t.Error("Expected outcome to be dropped after cancellation")
	}
}

func TestPlayback_EmptyRun(t *testing.T) {
	result := Simulate(starLevel(), nil)

	var outcome Outcome
	err := Playback(context.Background(), result, time.Millisecond, nil, func(o Outcome) { outcome = o })
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	if outcome.Kind != OutcomeIncomplete {
		t.Errorf("Expected incomplete outcome, got %s", outcome.Kind)
	}
}
