package engine

// GoalPolicy decides whether stepping onto the goal ends a run
type GoalPolicy string

const (
	// GoalAlwaysTerminal ends the run on goal arrival regardless of stars
	GoalAlwaysTerminal GoalPolicy = "always"
	// GoalTerminalWhenSatisfied ends the run on goal arrival only when
	// enough stars were collected; otherwise the queue keeps executing
	GoalTerminalWhenSatisfied GoalPolicy = "when_satisfied"
)

// ParseGoalPolicy maps a policy name to a GoalPolicy, defaulting to
// GoalAlwaysTerminal for empty or unknown input
func ParseGoalPolicy(s string) GoalPolicy {
	if GoalPolicy(s) == GoalTerminalWhenSatisfied {
		return GoalTerminalWhenSatisfied
	}
	return GoalAlwaysTerminal
}

type simOptions struct {
	goalPolicy GoalPolicy
}

// SimOption configures Simulate
type SimOption func(*simOptions)

// WithGoalPolicy overrides the goal arrival policy
func WithGoalPolicy(p GoalPolicy) SimOption {
	return func(o *simOptions) {
		o.goalPolicy = p
	}
}

// runState is the mutable context owned by a single Simulate call
type runState struct {
	pos       Position
	collected map[Position]bool
	order     []Position
}

// Simulate executes commands in order against level and returns every
// committed step plus the terminal outcome. It is pure: the same inputs
// always produce the same result, and commands is never retained.
func Simulate(level *Level, commands []Command, opts ...SimOption) *RunResult {
	options := simOptions{goalPolicy: GoalAlwaysTerminal}
	for _, opt := range opts {
		opt(&options)
	}

	program := make([]Command, len(commands))
	copy(program, commands)

	state := &runState{
		pos:       level.StartPos,
		collected: make(map[Position]bool),
	}
	result := &RunResult{
		LevelID: level.ID,
		Events:  []StepEvent{},
	}

	var (
		failure   CollisionReason
		attempted *Position
		failedAt  = -1
	)

	for i, cmd := range program {
		next := cmd.Direction.Apply(state.pos)

		// Rejected moves never commit
		if !level.InBounds(next) {
			failure, failedAt = ReasonBounds, i
			attempted = &next
			break
		}
		tile := level.TileAt(next)
		if tile == Wall {
			failure, failedAt = ReasonWall, i
			attempted = &next
			break
		}

		event := StepEvent{
			Index:     i,
			CommandID: cmd.ID,
			Direction: cmd.Direction,
			From:      state.pos,
			To:        next,
			Tile:      tile,
		}
		state.pos = next

		if tile == Star && !state.collected[next] {
			state.collected[next] = true
			state.order = append(state.order, next)
			star := next
			event.Collected = &star
		}
		event.StarsCollected = len(state.order)

		if tile == Goal {
			event.ReachedGoal = true
		}
		result.Events = append(result.Events, event)

		if tile == Goal && goalEndsRun(options.goalPolicy, len(state.order), level.MinStarsToWin) {
			break
		}
	}

	result.FinalPos = state.pos
	result.Executed = len(result.Events)
	result.Collected = append([]Position{}, state.order...)
	result.Outcome = classify(level, state, failure, attempted, failedAt)
	return result
}

func goalEndsRun(policy GoalPolicy, collected, required int) bool {
	if policy == GoalTerminalWhenSatisfied {
		return collected >= required
	}
	return true
}

func classify(level *Level, state *runState, failure CollisionReason, attempted *Position, failedAt int) Outcome {
	out := Outcome{
		Reason:         failure,
		FinalPos:       state.pos,
		Attempted:      attempted,
		FailedAt:       failedAt,
		StarsCollected: len(state.order),
		StarsRequired:  level.MinStarsToWin,
	}

	switch {
	case failure == ReasonBounds:
		out.Kind = OutcomeFailedBounds
	case failure == ReasonWall:
		out.Kind = OutcomeFailedWall
	case level.TileAt(state.pos) == Goal:
		if out.StarsCollected >= level.MinStarsToWin {
			out.Kind = OutcomeWon
		} else {
			out.Kind = OutcomeInsufficientStars
		}
	default:
		out.Kind = OutcomeIncomplete
	}
	return out
}
