package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/robo-path/game/engine"
	"github.com/wricardo/robo-path/game/service"
)

func createTestLevel() *engine.Level {
	return engine.MustCompileLevel(engine.LevelDef{
		ID:          1,
		Name:        "Test Level",
		Description: "Test level",
		GridSize:    4,
		Layout: []string{
			"S...",
			"....",
			"..G.",
			"....",
		},
		StartPos:    engine.Position{X: 0, Y: 0},
		MaxCommands: 5,
	})
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	t.Run("generated id", func(t *testing.T) {
		session, err := manager.Create("", level)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
		if session.Status() != service.StatusIdle {
			t.Errorf("Expected idle session, got %s", session.Status())
		}
		if session.Queue.Cap() != level.MaxCommands {
			t.Errorf("Expected queue cap %d, got %d", level.MaxCommands, session.Queue.Cap())
		}
	})

	t.Run("explicit id", func(t *testing.T) {
		session, err := manager.Create("Mine", level)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "Mine" {
			t.Errorf("Expected ID Mine, got %s", session.ID)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := manager.Create("mine", level)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := manager.Create("../etc", level)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("missing level", func(t *testing.T) {
		if _, err := manager.Create("x", nil); err == nil {
			t.Error("Expected error without a level")
		}
	})
}

func TestManager_GetCaseInsensitive(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("AbCd", createTestLevel())

	for _, id := range []string{"AbCd", "abcd", "ABCD"} {
		got, err := manager.Get(id)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", id, err)
		}
		if got != created {
			t.Errorf("Get(%s) returned a different session", id)
		}
	}

	if _, err := manager.Get("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if !errors.Is(ErrSessionNotFound, service.ErrSessionNotFound) {
		t.Error("Expected session errors to match service errors")
	}
}

func TestManager_ListAndDelete(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	manager.Create("one", level)
	time.Sleep(time.Millisecond)
	manager.Create("two", level)

	list := manager.List()
	if len(list) != 2 || list[0].ID != "one" || list[1].ID != "two" {
		t.Fatalf("Expected sessions oldest first, got %v", list)
	}

	if err := manager.Delete("ONE"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
	if err := manager.Delete("one"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_DeleteCancelsRun(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("run", createTestLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := session.BeginRun(cancel); err != nil {
		t.Fatal(err)
	}

	if err := manager.Delete("run"); err != nil {
		t.Fatal(err)
	}
	if ctx.Err() == nil {
		t.Error("Expected deleting a session to cancel its run")
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	old, _ := manager.Create("old", level)
	manager.Create("new", level)

	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if _, err := manager.Get("old"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected expired session to be gone")
	}
	if _, err := manager.Get("new"); err != nil {
		t.Error("Expected fresh session to survive")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("acc", createTestLevel())
	before := session.LastAccess()

	time.Sleep(2 * time.Millisecond)
	if err := manager.UpdateLastAccessed("acc"); err != nil {
		t.Fatal(err)
	}
	if !session.LastAccess().After(before) {
		t.Error("Expected last access time to move forward")
	}

	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentCreate(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", level)
			if err != nil {
				t.Errorf("Create failed: %v", err)
				return
			}
			ids <- strings.ToLower(session.ID)
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Errorf("Duplicate session ID %s", id)
		}
		seen[id] = true
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestSession_SingleRun(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("single", createTestLevel())
	session.Queue.Append(engine.Right)

	ctx, cancel := context.WithCancel(context.Background())
	token, err := session.BeginRun(cancel)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	if _, err := session.BeginRun(func() {}); !errors.Is(err, service.ErrRunInProgress) {
		t.Errorf("Expected ErrRunInProgress, got %v", err)
	}
	if _, err := session.Queue.Append(engine.Down); !errors.Is(err, engine.ErrQueueLocked) {
		t.Errorf("Expected queue to be locked during a run, got %v", err)
	}

	if !session.CancelRun() {
		t.Fatal("Expected CancelRun to report an active run")
	}
	if ctx.Err() == nil {
		t.Error("Expected run context to be cancelled")
	}
	if session.FinishRun(token, &engine.RunResult{}) {
		t.Error("Expected a cancelled run not to finish")
	}
	if session.Status() != service.StatusIdle || session.Queue.Locked() {
		t.Errorf("Expected idle unlocked session, got %s (locked=%v)", session.Status(), session.Queue.Locked())
	}
	if session.Queue.Len() != 1 {
		t.Errorf("Expected cancel to keep the queue, got %d commands", session.Queue.Len())
	}
}

func TestSession_FinishAndReset(t *testing.T) {
	level := createTestLevel()
	session := service.NewSession("fin", level)

	token, _ := session.BeginRun(func() {})
	result := engine.Simulate(level, []engine.Command{{ID: "a", Direction: engine.Right}})
	if !session.FinishRun(token, result) {
		t.Fatal("Expected run to finish")
	}

	if session.Status() != service.StatusFinished {
		t.Errorf("Expected finished status, got %s", session.Status())
	}
	if session.Position() != (engine.Position{X: 1, Y: 0}) {
		t.Errorf("Expected avatar at (1,0), got %s", session.Position())
	}
	info := session.Info()
	if info.LastOutcome == nil || info.LastOutcome.Kind != engine.OutcomeIncomplete {
		t.Errorf("Expected incomplete outcome in info, got %+v", info.LastOutcome)
	}
	if info.Grid[0] != "SR.." {
		t.Errorf("Expected avatar in rendered grid, got %q", info.Grid[0])
	}

	session.ResetRun()
	if session.Position() != level.StartPos || session.LastResult() != nil {
		t.Error("Expected reset to return the avatar to the start")
	}
	if session.CancelRun() {
		t.Error("Expected no active run after reset")
	}
}
