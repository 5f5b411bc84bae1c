package service

import (
	"time"

	"github.com/wricardo/robo-path/game/engine"
)

// SessionStatus tracks where a session is in its run lifecycle
type SessionStatus string

const (
	StatusIdle     SessionStatus = "idle"
	StatusRunning  SessionStatus = "running"
	StatusFinished SessionStatus = "finished"
)

// Event types published to an EventSink
const (
	EventStep      = "step"
	EventOutcome   = "outcome"
	EventQueue     = "queue"
	EventReset     = "reset"
	EventCancelled = "cancelled"
)

// Rejection codes returned when a queue mutation is refused
const (
	RejectFull             = "full"
	RejectLocked           = "locked"
	RejectInvalidDirection = "invalid_direction"
)

// LevelInfo provides summary information about a level
type LevelInfo struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	GridSize         int    `json:"grid_size"`
	MaxCommands      int    `json:"max_commands"`
	MinStarsToWin    int    `json:"min_stars_to_win"`
	Stars            int    `json:"stars"`
	Winnable         bool   `json:"winnable"`
	ShortestSolution int    `json:"shortest_solution,omitempty"`
	Source           string `json:"source,omitempty"`
	Locked           bool   `json:"locked"`
}

// SessionInfo provides information about a level session
type SessionInfo struct {
	ID             string            `json:"id"`
	LevelID        int               `json:"level_id"`
	LevelName      string            `json:"level_name"`
	Status         SessionStatus     `json:"status"`
	Queue          []engine.Command  `json:"queue"`
	MaxCommands    int               `json:"max_commands"`
	Position       engine.Position   `json:"position"`
	Collected      []engine.Position `json:"collected"`
	LastOutcome    *engine.Outcome   `json:"last_outcome,omitempty"`
	Grid           []string          `json:"grid"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	Level          *engine.Level     `json:"level,omitempty"`
}

// QueueResult is the outcome of a queue mutation. A refused append is not
// an error: Accepted is false and Rejection carries the code.
type QueueResult struct {
	Accepted  bool             `json:"accepted"`
	Rejection string           `json:"rejection,omitempty"`
	Command   *engine.Command  `json:"command,omitempty"`
	Queue     []engine.Command `json:"queue"`
	Remaining int              `json:"remaining"`
}

// RunOptions configures a single run
type RunOptions struct {
	// Animate streams the steps through the EventSink at Interval instead
	// of returning only the batch result
	Animate  bool
	Interval time.Duration
	Policy   engine.GoalPolicy
}

// RunResult contains the resolved run plus its presentation strings
type RunResult struct {
	SessionID string             `json:"session_id"`
	LevelID   int                `json:"level_id"`
	Events    []engine.StepEvent `json:"events"`
	Outcome   *engine.Outcome    `json:"outcome,omitempty"`
	Message   string             `json:"message"`
	Hint      string             `json:"hint,omitempty"`
	Unlocked  bool               `json:"unlocked"`
	Progress  int                `json:"progress"`
	Animated  bool               `json:"animated"`
}

// ProgressInfo reports the persisted unlock state
type ProgressInfo struct {
	HighestUnlocked int  `json:"highest_unlocked"`
	TotalLevels     int  `json:"total_levels"`
	Completed       bool `json:"completed"`
}

// SolveResult is a shortest winning program for a level
type SolveResult struct {
	LevelID    int                `json:"level_id"`
	Winnable   bool               `json:"winnable"`
	Directions []engine.Direction `json:"directions,omitempty"`
	Length     int                `json:"length"`
	Stars      int                `json:"stars"`
}
