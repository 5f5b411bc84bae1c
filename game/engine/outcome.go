package engine

// OutcomeKind classifies how a run ended
type OutcomeKind string

const (
	OutcomeWon               OutcomeKind = "won"
	OutcomeFailedBounds      OutcomeKind = "failed_bounds"
	OutcomeFailedWall        OutcomeKind = "failed_wall"
	OutcomeInsufficientStars OutcomeKind = "failed_insufficient_stars"
	OutcomeIncomplete        OutcomeKind = "failed_incomplete"
)

// CollisionReason explains a collision failure
type CollisionReason string

const (
	ReasonNone   CollisionReason = ""
	ReasonBounds CollisionReason = "bounds"
	ReasonWall   CollisionReason = "wall"
)

// Outcome is the terminal result of a run. It carries data only; choosing
// the text shown to a player is left to the caller.
type Outcome struct {
	Kind           OutcomeKind     `json:"kind"`
	Reason         CollisionReason `json:"reason,omitempty"`
	FinalPos       Position        `json:"final_pos"`
	Attempted      *Position       `json:"attempted,omitempty"`
	FailedAt       int             `json:"failed_at"`
	StarsCollected int             `json:"stars_collected"`
	StarsRequired  int             `json:"stars_required"`
}

// Won reports whether the run reached the goal with enough stars
func (o Outcome) Won() bool {
	return o.Kind == OutcomeWon
}

// IsCollision reports whether the run stopped on a bounds or wall hit
func (o Outcome) IsCollision() bool {
	return o.Kind == OutcomeFailedBounds || o.Kind == OutcomeFailedWall
}

// StarsMissing returns how many more stars were needed, or 0
func (o Outcome) StarsMissing() int {
	if missing := o.StarsRequired - o.StarsCollected; missing > 0 {
		return missing
	}
	return 0
}

// StepEvent describes one committed move
type StepEvent struct {
	Index          int       `json:"index"`
	CommandID      string    `json:"command_id"`
	Direction      Direction `json:"direction"`
	From           Position  `json:"from"`
	To             Position  `json:"to"`
	Tile           TileType  `json:"tile"`
	Collected      *Position `json:"collected,omitempty"`
	StarsCollected int       `json:"stars_collected"`
	ReachedGoal    bool      `json:"reached_goal,omitempty"`
}

// RunResult is the full, already-resolved record of a run
type RunResult struct {
	LevelID   int         `json:"level_id"`
	Events    []StepEvent `json:"events"`
	Outcome   Outcome     `json:"outcome"`
	Collected []Position  `json:"collected"`
	FinalPos  Position    `json:"final_pos"`
	Executed  int         `json:"executed"`
}
