package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/robo-path/api"
	"github.com/wricardo/robo-path/game/config"
	"github.com/wricardo/robo-path/game/engine"
	"github.com/wricardo/robo-path/game/progress"
	"github.com/wricardo/robo-path/game/service"
	"github.com/wricardo/robo-path/game/session"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(service.ProgressInfo{HighestUnlocked: body["n"]})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var result service.ProgressInfo
	if err := client.apiCall(context.Background(), "POST", "/echo", map[string]int{"n": 3}, &result); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if result.HighestUnlocked != 3 {
		t.Errorf("Expected 3, got %d", result.HighestUnlocked)
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json" {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "level is locked"})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/json", nil, nil)
	if err == nil || err.Error() != "level is locked" {
		t.Errorf("Expected API error message, got %v", err)
	}

	err = client.apiCall(context.Background(), "GET", "/plain", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error: 502") {
		t.Errorf("Expected status error, got %v", err)
	}

	unreachable := NewClient("http://127.0.0.1:1")
	if err := unreachable.apiCall(context.Background(), "GET", "/", nil, nil); err == nil {
		t.Error("Expected connection error")
	}
}

func TestArgumentHelpers(t *testing.T) {
	args := map[string]any{
		"id":    float64(3),
		"list":  []any{"up", 4, "left"},
		"csv":   "up, right,,down",
		"plain": []string{"down"},
	}

	if intArg(args, "id") != 3 || intArg(args, "missing") != 0 {
		t.Error("intArg mismatch")
	}
	if got := stringsArg(args, "list"); len(got) != 2 || got[1] != "left" {
		t.Errorf("Unexpected list %v", got)
	}
	if got := stringsArg(args, "csv"); len(got) != 3 || got[2] != "down" {
		t.Errorf("Unexpected csv %v", got)
	}
	if got := stringsArg(args, "plain"); len(got) != 1 {
		t.Errorf("Unexpected plain %v", got)
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)

		resp := service.SessionInfo{
			ID:        "ab12",
			LevelID:   body["level_id"],
			LevelName: "Watch the Rock!",
			Grid:      []string{"...G", "R##.", "....", "...."},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), callRequest("create_session", map[string]any{"level_id": float64(2)}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"ab12", "Level 2", "R##."} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestFormatRunResult(t *testing.T) {
	attempted := engine.Position{X: 2, Y: 1}
	failed := &service.RunResult{
		SessionID: "ab12",
		Events: []engine.StepEvent{
			{Index: 0, Direction: engine.Right, From: engine.Position{X: 0, Y: 1}, To: engine.Position{X: 1, Y: 1}},
		},
		Outcome: &engine.Outcome{
			Kind:      engine.OutcomeFailedWall,
			Reason:    engine.ReasonWall,
			FinalPos:  engine.Position{X: 1, Y: 1},
			Attempted: &attempted,
			FailedAt:  1,
		},
		Message: "Bonk! A big rock is blocking the way.",
		Hint:    "Watch out for the rock! Try finding a way around it.",
	}

	text := formatRunResult(failed)
	for _, want := range []string{"FAILED", "Bonk!", "Hint: Watch out", "1. right (0,1)->(1,1)", "Blocked at command 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %s", want, text)
		}
	}

	animated := formatRunResult(&service.RunResult{SessionID: "ab12", Animated: true})
	if !strings.Contains(animated, "Run started") {
		t.Errorf("Unexpected animated text %s", animated)
	}
}

func TestFormatSolution(t *testing.T) {
	won := formatSolution(&service.SolveResult{
		LevelID: 1, Winnable: true, Length: 2,
		Directions: []engine.Direction{engine.Right, engine.Down},
	})
	if !strings.Contains(won, "right, down") {
		t.Errorf("Unexpected solution text %s", won)
	}

	lost := formatSolution(&service.SolveResult{LevelID: 4})
	if !strings.Contains(lost, "cannot be won") {
		t.Errorf("Unexpected unwinnable text %s", lost)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", map[string]any{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, content := range []string{"GAME OBJECTIVE:", "GRID LEGEND:", "MOVEMENT COMMANDS:", "WORKFLOW:"} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

// TestClient_Integration drives the tools against the real REST server
func TestClient_Integration(t *testing.T) {
	logger := log.New(io.Discard)
	levels, err := config.NewManager("")
	if err != nil {
		t.Fatalf("Failed to load levels: %v", err)
	}
	svc := service.NewGameService(session.NewManager(session.WithLogger(logger)), levels, progress.NewMemoryStore(), nil,
		service.WithLogger(logger), service.WithStepInterval(time.Millisecond))
	ts := httptest.NewServer(api.NewServer(svc, nil, logger))
	defer ts.Close()

	client := NewClient(ts.URL)
	ctx := context.Background()

	result, _ := client.handleCreateSession(ctx, callRequest("create_session", map[string]any{}))
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("create_session failed: %s", text)
	}

	sessions, _ := svc.ListSessions(ctx)
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	id := sessions[0].ID

	result, _ = client.handleQueueCommands(ctx, callRequest("queue_commands", map[string]any{
		"session_id": id,
		"directions": []any{"down", "down", "right", "right", "up", "up"},
		"intent":     "go home",
	}))
	text = resultText(t, result)
	if !strings.Contains(text, "Queued 5 of 6") || !strings.Contains(text, "full") {
		t.Errorf("Expected the cap to stop the sixth command, got: %s", text)
	}

	result, _ = client.handleClearCommands(ctx, callRequest("clear_commands", map[string]any{"session_id": id}))
	if !strings.Contains(resultText(t, result), "5 commands available") {
		t.Errorf("Unexpected clear result: %s", resultText(t, result))
	}

	client.handleQueueCommands(ctx, callRequest("queue_commands", map[string]any{
		"session_id": id,
		"directions": []any{"down", "down", "right", "right"},
	}))
	result, _ = client.handleRunProgram(ctx, callRequest("run_program", map[string]any{"session_id": id}))
	text = resultText(t, result)
	if !strings.Contains(text, "WON") || !strings.Contains(text, "Level 2 unlocked") {
		t.Errorf("Expected an unlocking win, got: %s", text)
	}

	result, _ = client.handleGetProgress(ctx, callRequest("get_progress", nil))
	if !strings.Contains(resultText(t, result), "Highest unlocked level: 2 of 3") {
		t.Errorf("Unexpected progress: %s", resultText(t, result))
	}

	result, _ = client.handleListLevels(ctx, callRequest("list_levels", nil))
	text = resultText(t, result)
	if !strings.Contains(text, "2. Watch the Rock! [unlocked]") || !strings.Contains(text, "3. Star Hunter [locked]") {
		t.Errorf("Unexpected levels: %s", text)
	}

	result, _ = client.handleSolveLevel(ctx, callRequest("solve_level", map[string]any{"level_id": float64(3)}))
	if !strings.Contains(resultText(t, result), "10 commands") {
		t.Errorf("Unexpected solution: %s", resultText(t, result))
	}

	result, _ = client.handleResetSession(ctx, callRequest("reset_session", map[string]any{"session_id": id}))
	if !strings.Contains(resultText(t, result), "Status: idle") {
		t.Errorf("Unexpected reset: %s", resultText(t, result))
	}

	result, _ = client.handleGetSession(ctx, callRequest("get_session", map[string]any{"session_id": "zzzz"}))
	if !result.IsError {
		t.Error("Expected error result for unknown session")
	}
}
