package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wricardo/robo-path/game/engine"
	"github.com/wricardo/robo-path/game/hint"
	"github.com/wricardo/robo-path/game/progress"
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the structured logger
func WithLogger(logger *log.Logger) Option {
	return func(s *gameServiceImpl) {
		s.logger = logger
	}
}

// WithEventSink enables animated runs, delivered step by step to sink
func WithEventSink(sink EventSink) Option {
	return func(s *gameServiceImpl) {
		s.sink = sink
	}
}

// WithLocale selects the language of headlines and rule hints
func WithLocale(locale string) Option {
	return func(s *gameServiceImpl) {
		s.locale = hint.NormalizeLocale(locale)
	}
}

// WithStepInterval sets the default delay between animated steps
func WithStepInterval(d time.Duration) Option {
	return func(s *gameServiceImpl) {
		s.interval = d
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelCatalog
	progress progress.Store
	narrator hint.Narrator
	sink     EventSink
	logger   *log.Logger
	locale   string
	interval time.Duration

	// serializes the load-then-save of progress.Advance
	progressMu sync.Mutex
}

// NewGameService creates a new game service instance. narrator may be nil;
// narration always falls back to the rule table.
func NewGameService(sessions SessionManager, levels LevelCatalog, store progress.Store, narrator hint.Narrator, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
		progress: store,
		logger:   log.Default(),
		locale:   hint.LocaleEnglish,
		interval: engine.DefaultStepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.narrator = hint.WithFallback(narrator, s.locale, s.logger)
	return s
}

// ListLevels returns every level with its lock state
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	highest, err := s.progress.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	infos := s.levels.Infos()
	for _, info := range infos {
		info.Locked = !progress.Unlocked(info.ID, highest)
	}
	return infos, nil
}

// GetLevel returns a level definition
func (s *gameServiceImpl) GetLevel(ctx context.Context, levelID int) (*engine.Level, error) {
	return s.levels.Get(levelID)
}

// SolveLevel returns a shortest winning program for a level
func (s *gameServiceImpl) SolveLevel(ctx context.Context, levelID int) (*SolveResult, error) {
	level, err := s.levels.Get(levelID)
	if err != nil {
		return nil, err
	}

	solution, ok := engine.Solve(level)
	return &SolveResult{
		LevelID:    level.ID,
		Winnable:   ok,
		Directions: solution.Directions,
		Length:     solution.Length,
		Stars:      solution.Stars,
	}, nil
}

// GetProgress returns the persisted unlock state
func (s *gameServiceImpl) GetProgress(ctx context.Context) (*ProgressInfo, error) {
	highest, err := s.progress.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	levels := s.levels.List()
	completed := len(levels) > 0 && highest > levels[len(levels)-1].ID
	return &ProgressInfo{
		HighestUnlocked: highest,
		TotalLevels:     len(levels),
		Completed:       completed,
	}, nil
}

// CreateSession opens a session on levelID. Zero picks the furthest
// unlocked level.
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID int) (*SessionInfo, error) {
	highest, err := s.progress.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	var level *engine.Level
	if levelID == 0 {
		level = s.furthestUnlocked(highest)
		if level == nil {
			return nil, fmt.Errorf("%w: no levels available", ErrLevelNotFound)
		}
	} else {
		level, err = s.levels.Get(levelID)
		if err != nil {
			return nil, err
		}
		if !progress.Unlocked(level.ID, highest) {
			return nil, fmt.Errorf("%w: level %d (unlocked up to %d)", ErrLevelLocked, level.ID, highest)
		}
	}

	session, err := s.sessions.Create("", level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created", "session", session.ID, "level", level.ID)
	return session.Info(), nil
}

func (s *gameServiceImpl) furthestUnlocked(highest int) *engine.Level {
	var pick *engine.Level
	for _, level := range s.levels.List() {
		if pick == nil || progress.Unlocked(level.ID, highest) {
			pick = level
		}
	}
	return pick
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Info(), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sess.Info())
	}
	return result, nil
}

// DeleteSession removes a session, stopping any run in progress
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// AddCommand appends one direction to the session queue. A full or locked
// queue is reported through QueueResult, not as an error.
func (s *gameServiceImpl) AddCommand(ctx context.Context, sessionID, direction string) (*QueueResult, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	cmd, err := session.Queue.Append(engine.Direction(direction))
	switch {
	case errors.Is(err, engine.ErrInvalidDirection):
		return nil, err
	case errors.Is(err, engine.ErrQueueFull):
		return s.queueResult(session, nil, RejectFull), nil
	case errors.Is(err, engine.ErrQueueLocked):
		return s.queueResult(session, nil, RejectLocked), nil
	case err != nil:
		return nil, err
	}

	s.persist(session.ID)
	result := s.queueResult(session, &cmd, "")
	s.publish(session.ID, EventQueue, result)
	return result, nil
}

// ClearCommands empties the session queue
func (s *gameServiceImpl) ClearCommands(ctx context.Context, sessionID string) (*QueueResult, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := session.Queue.Clear(); err != nil {
		if errors.Is(err, engine.ErrQueueLocked) {
			return s.queueResult(session, nil, RejectLocked), nil
		}
		return nil, err
	}

	s.persist(session.ID)
	result := s.queueResult(session, nil, "")
	s.publish(session.ID, EventQueue, result)
	return result, nil
}

func (s *gameServiceImpl) queueResult(session *Session, cmd *engine.Command, rejection string) *QueueResult {
	queue := session.Queue.Snapshot()
	return &QueueResult{
		Accepted:  rejection == "",
		Rejection: rejection,
		Command:   cmd,
		Queue:     queue,
		Remaining: session.Queue.Cap() - len(queue),
	}
}

// Run executes the queued program. Without animation the resolved result
// is returned directly. With animation the steps are streamed to the
// event sink and the returned result carries no outcome yet; the outcome
// event follows the last step unless the run is cancelled first.
func (s *gameServiceImpl) Run(ctx context.Context, sessionID string, opts RunOptions) (*RunResult, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Queue.Len() == 0 {
		return nil, ErrEmptyQueue
	}

	// The run may outlive the request when animated
	runCtx, cancel := context.WithCancel(context.Background())
	token, err := session.BeginRun(cancel)
	if err != nil {
		cancel()
		return nil, err
	}

	commands := session.Queue.Snapshot()
	if len(commands) == 0 {
		session.CancelRun()
		return nil, ErrEmptyQueue
	}

	level := session.Level
	policy := opts.Policy
	if policy == "" {
		policy = engine.GoalAlwaysTerminal
	}
	result := engine.Simulate(level, commands, engine.WithGoalPolicy(policy))

	s.logger.Debug("run started",
		"session", session.ID, "level", level.ID, "commands", len(commands), "animate", opts.Animate)

	if !opts.Animate || s.sink == nil {
		defer cancel()
		final, ok := s.complete(ctx, session, token, result, commands)
		if !ok {
			return nil, fmt.Errorf("run on session %s was cancelled: %w", session.ID, ErrNoActiveRun)
		}
		return final, nil
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = s.interval
	}

	go func() {
		defer cancel()
		err := engine.Playback(runCtx, result, interval,
			func(ev engine.StepEvent) {
				s.sink.Publish(session.ID, EventStep, ev)
			},
			func(engine.Outcome) {
				narrateCtx, done := context.WithTimeout(context.Background(), hint.DefaultTimeout)
				defer done()
				if final, ok := s.complete(narrateCtx, session, token, result, commands); ok {
					s.sink.Publish(session.ID, EventOutcome, final)
				}
			},
		)
		if err != nil {
			s.logger.Debug("playback stopped", "session", session.ID, "err", err)
		}
	}()

	return &RunResult{
		SessionID: session.ID,
		LevelID:   level.ID,
		Animated:  true,
	}, nil
}

// complete records the result on the session, saves progress on a win and
// attaches the narration. It returns false if the run was cancelled.
func (s *gameServiceImpl) complete(ctx context.Context, session *Session, token uint64, result *engine.RunResult, commands []engine.Command) (*RunResult, bool) {
	if !session.FinishRun(token, result) {
		return nil, false
	}

	level := session.Level
	outcome := result.Outcome
	final := &RunResult{
		SessionID: session.ID,
		LevelID:   level.ID,
		Events:    result.Events,
		Outcome:   &outcome,
		Message:   hint.Headline(outcome, s.locale),
	}

	if outcome.Won() {
		s.progressMu.Lock()
		highest, advanced, err := progress.Advance(ctx, s.progress, level.ID)
		s.progressMu.Unlock()
		if err != nil {
			s.logger.Error("failed to save progress", "level", level.ID, "err", err)
		}
		final.Progress = highest
		final.Unlocked = advanced

		// The fallback narrator never fails
		final.Message, _ = s.narrator.DescribeWin(ctx, outcome.StarsCollected)
	} else {
		if highest, err := s.progress.Load(ctx); err == nil {
			final.Progress = highest
		}
		final.Hint, _ = s.narrator.DescribeFailure(ctx, hint.FailureRequest{
			Level:    level,
			Commands: commands,
			Outcome:  outcome,
			FinalPos: result.FinalPos,
		})
	}

	s.logger.Info("run finished",
		"session", session.ID, "level", level.ID, "outcome", outcome.Kind,
		"steps", result.Executed, "stars", outcome.StarsCollected, "unlocked", final.Unlocked)
	return final, true
}

// Cancel stops a run in progress and returns the avatar to the start
func (s *gameServiceImpl) Cancel(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if !session.CancelRun() {
		return nil, ErrNoActiveRun
	}

	s.logger.Info("run cancelled", "session", session.ID)
	info := session.Info()
	s.publish(session.ID, EventCancelled, info)
	return info, nil
}

// Reset returns the session to its start state, keeping the queue
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.ResetRun()
	info := session.Info()
	s.publish(session.ID, EventReset, info)
	return info, nil
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(session.ID)
	return session, nil
}

func (s *gameServiceImpl) persist(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "err", err)
	}
}

func (s *gameServiceImpl) publish(sessionID, event string, data any) {
	if s.sink != nil {
		s.sink.Publish(sessionID, event, data)
	}
}
