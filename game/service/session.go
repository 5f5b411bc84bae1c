package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/robo-path/game/engine"
)

// Session represents an active level session: one level, one command queue
// and at most one run at a time
type Session struct {
	ID             string
	Level          *engine.Level
	Queue          *engine.Queue
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu     sync.Mutex
	status SessionStatus
	last   *engine.RunResult
	cancel context.CancelFunc
	runID  uint64
}

// NewSession creates an idle session with an empty queue sized for level
func NewSession(id string, level *engine.Level) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		Level:          level,
		Queue:          engine.NewQueue(level.MaxCommands),
		CreatedAt:      now,
		LastAccessedAt: now,
		status:         StatusIdle,
	}
}

// Touch records an access
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastAccessedAt = time.Now()
	s.mu.Unlock()
}

// LastAccess returns the time of the last recorded access
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAccessedAt
}

// Status returns the current run status
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastResult returns the most recent finished run, or nil
func (s *Session) LastResult() *engine.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// BeginRun marks the session as running and locks the queue. cancel is
// invoked if the run is cancelled or reset before it finishes. The
// returned token must be passed to FinishRun.
func (s *Session) BeginRun(cancel context.CancelFunc) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusRunning {
		return 0, ErrRunInProgress
	}

	s.runID++
	s.status = StatusRunning
	s.cancel = cancel
	s.last = nil
	s.Queue.Lock()
	return s.runID, nil
}

// FinishRun records result for the run identified by token and unlocks the
// queue. It returns false when that run was already cancelled or reset.
func (s *Session) FinishRun(token uint64, result *engine.RunResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning || s.runID != token {
		return false
	}

	s.status = StatusFinished
	s.last = result
	s.cancel = nil
	s.Queue.Unlock()
	return true
}

// CancelRun stops the active run and returns the session to its start
// state. It reports whether a run was active.
func (s *Session) CancelRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning {
		return false
	}
	s.stopLocked()
	return true
}

// ResetRun returns the avatar to the start. The queue is kept so the
// player can edit and retry.
func (s *Session) ResetRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.runID++
	s.status = StatusIdle
	s.last = nil
	s.Queue.Unlock()
}

// Position returns where the avatar rests: the final position of the last
// finished run, otherwise the level start
func (s *Session) Position() engine.Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last != nil {
		return s.last.FinalPos
	}
	return s.Level.StartPos
}

// Info builds the externally visible view of the session
func (s *Session) Info() *SessionInfo {
	s.mu.Lock()
	status, last, accessed := s.status, s.last, s.LastAccessedAt
	s.mu.Unlock()

	pos := s.Level.StartPos
	collected := []engine.Position{}
	var outcome *engine.Outcome
	if last != nil {
		pos = last.FinalPos
		collected = append(collected, last.Collected...)
		o := last.Outcome
		outcome = &o
	}

	return &SessionInfo{
		ID:             s.ID,
		LevelID:        s.Level.ID,
		LevelName:      s.Level.Name,
		Status:         status,
		Queue:          s.Queue.Snapshot(),
		MaxCommands:    s.Queue.Cap(),
		Position:       pos,
		Collected:      collected,
		LastOutcome:    outcome,
		Grid:           engine.RenderASCII(s.Level, pos, collected),
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: accessed,
		Level:          s.Level,
	}
}
