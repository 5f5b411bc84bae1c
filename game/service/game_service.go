package service

import (
	"context"
	"errors"

	"github.com/wricardo/robo-path/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLevelNotFound   = errors.New("level not found")
	ErrLevelLocked     = errors.New("level is locked")
	ErrEmptyQueue      = errors.New("command queue is empty")
	ErrRunInProgress   = errors.New("a run is already in progress")
	ErrNoActiveRun     = errors.New("no run in progress")
)

// GameService defines all game-related operations
type GameService interface {
	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	GetLevel(ctx context.Context, levelID int) (*engine.Level, error)
	SolveLevel(ctx context.Context, levelID int) (*SolveResult, error)
	GetProgress(ctx context.Context) (*ProgressInfo, error)

	// Session Management
	CreateSession(ctx context.Context, levelID int) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Command Queue
	AddCommand(ctx context.Context, sessionID, direction string) (*QueueResult, error)
	ClearCommands(ctx context.Context, sessionID string) (*QueueResult, error)

	// Execution
	Run(ctx context.Context, sessionID string, opts RunOptions) (*RunResult, error)
	Cancel(ctx context.Context, sessionID string) (*SessionInfo, error)
	Reset(ctx context.Context, sessionID string) (*SessionInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, level *engine.Level) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelCatalog provides the static level set
type LevelCatalog interface {
	Get(id int) (*engine.Level, error)
	List() []*engine.Level
	Infos() []*LevelInfo
}

// EventSink receives run events for live delivery (the websocket hub)
type EventSink interface {
	Publish(sessionID, event string, data any)
}
