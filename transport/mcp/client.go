package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/robo-path/game/engine"
	"github.com/wricardo/robo-path/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Runs may wait on a remote narrator
			Timeout: 15 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Robo Path",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Robo Path - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Write a program of arrow commands that walks Robo (R) from the start to home (G).
Some levels require collecting stars (*) on the way. Rocks (#) and the grid edge stop the run.

AVAILABLE TOOLS:
- list_levels: List levels and which are unlocked
- solve_level: Shortest winning program for a level
- get_progress: Highest unlocked level
- create_session: Start a session on a level
- get_session: Session details with the grid
- list_sessions: List active sessions
- queue_commands: Append directions to the program
- clear_commands: Empty the program
- run_program: Execute the queued program
- reset_session: Put Robo back at the start (program is kept)
- game_instructions: Rules and legend`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Levels and progress
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List all levels with size, command limit, stars and lock state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_level",
		Description: "Find the shortest winning program for a level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"level_id": map[string]any{
					"type":        "integer",
					"description": "Level to solve",
				},
			},
			Required: []string{"level_id"},
		},
	}, c.handleSolveLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_progress",
		Description: "Get the highest unlocked level",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGetProgress)

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new session on a level. Without level_id the furthest unlocked level is used.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"level_id": map[string]any{
					"type":        "integer",
					"description": "Level to play (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get a session with its grid, queued program and last outcome",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Program editing and execution
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "queue_commands",
		Description: "Append directions to the session program. Stops at the level's command limit.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"directions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Directions to append in order",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the plan behind these commands (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "directions"},
		},
	}, c.handleQueueCommands)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_commands",
		Description: "Remove every queued command",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleClearCommands)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_program",
		Description: "Run the queued program and report the outcome",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"policy": map[string]any{
					"type":        "string",
					"enum":        []string{"always", "when_satisfied"},
					"description": "Whether reaching home always ends the run (default always)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunProgram)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_session",
		Description: "Return Robo to the start. The queued program is kept.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleResetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules, legend and tips",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a JSON number argument; zero when absent
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

func stringsArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		// Tolerate "up,right,down"
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}

// Tool handlers

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count  int                 `json:"count"`
		Levels []service.LevelInfo `json:"levels"`
	}
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Levels (%d):\n\n", response.Count)
	for _, l := range response.Levels {
		state := "unlocked"
		if l.Locked {
			state = "locked"
		}
		fmt.Fprintf(&b, "%d. %s [%s] %dx%d, max %d commands, stars %d (need %d)\n",
			l.ID, l.Name, state, l.GridSize, l.GridSize, l.MaxCommands, l.Stars, l.MinStarsToWin)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleSolveLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	levelID := intArg(request.GetArguments(), "level_id")
	if levelID <= 0 {
		return mcp.NewToolResultError("level_id is required"), nil
	}

	var solution service.SolveResult
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/levels/%d/solution", levelID), nil, &solution); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolution(&solution)), nil
}

func (c *Client) handleGetProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var progress service.ProgressInfo
	if err := c.apiCall(ctx, "GET", "/api/progress", nil, &progress); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Highest unlocked level: %d of %d", progress.HighestUnlocked, progress.TotalLevels)
	if progress.Completed {
		result += "\nAll levels completed!"
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]int{}
	if levelID := intArg(request.GetArguments(), "level_id"); levelID > 0 {
		body["level_id"] = levelID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\n\n%s", session.ID, formatSessionInfo(&session))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Level %d %s, %s, Created: %s)\n",
			s.ID, s.LevelID, s.LevelName, s.Status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleQueueCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	directions := stringsArg(args, "directions")

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = stringArg(args, "intent")

	if len(directions) == 0 {
		return mcp.NewToolResultError("directions must not be empty"), nil
	}

	var response struct {
		Added  int                 `json:"added"`
		Result service.QueueResult `json:"result"`
	}
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/commands", sessionID),
		map[string]any{"directions": directions}, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatQueueResult(response.Added, len(directions), &response.Result)), nil
}

func (c *Client) handleClearCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var result service.QueueResult
	if err := c.apiCall(ctx, "DELETE", fmt.Sprintf("/api/sessions/%s/commands", sessionID), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Program cleared. %d commands available.", result.Remaining)), nil
}

func (c *Client) handleRunProgram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	body := map[string]any{}
	if policy := stringArg(args, "policy"); policy != "" {
		body["policy"] = policy
	}

	var result service.RunResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/run", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleResetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var response struct {
		Message string               `json:"message"`
		Session *service.SessionInfo `json:"session"`
	}
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message
	if response.Session != nil {
		result += "\n\n" + formatSessionInfo(response.Session)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Robo Path - Instructions

GAME OBJECTIVE:
Program Robo with a list of arrow commands, then run it. Robo must end on home (G).
Levels that require stars only count as won when enough stars were collected first.

GRID LEGEND:
- R: Robo
- S: Start tile
- G: Home (goal)
- *: Star (collected the first time Robo steps on it)
- #: Rock (blocks movement)
- .: Empty ground
Row 0 is the top row, column 0 is the left column. "up" decreases the row.

HOW A RUN WORKS:
- Commands execute one at a time, in order.
- Leaving the grid or walking into a rock stops the run immediately. The failed move does not happen.
- Reaching home ends the run. Without enough stars that counts as a failure.
- If the program ends anywhere else, Robo did not reach home.
- Each level limits how many commands the program may hold.

MOVEMENT COMMANDS:
- up, down, left, right (or u, d, l, r)

WORKFLOW:
1. create_session (optionally with level_id)
2. get_session to read the grid
3. queue_commands with your whole plan
4. run_program and read the outcome and hint
5. reset_session or clear_commands, fix the plan, and run again

PROGRESS:
Winning a level unlocks the next one. Locked levels cannot be played.

Good luck getting Robo home!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s - Level %d: %s\n", session.ID, session.LevelID, session.LevelName)
	fmt.Fprintf(&b, "Status: %s\n", session.Status)
	fmt.Fprintf(&b, "Robo at: (%d,%d)\n", session.Position.X, session.Position.Y)
	if session.Level != nil {
		l := session.Level
		fmt.Fprintf(&b, "Home at: (%d,%d)  Stars needed: %d of %d\n", l.GoalPos.X, l.GoalPos.Y, l.MinStarsToWin, l.TotalStars())
	}
	fmt.Fprintf(&b, "Program (%d/%d): %s\n", len(session.Queue), session.MaxCommands, formatCommands(session.Queue))

	if len(session.Grid) > 0 {
		b.WriteString("\nGrid:\n")
		for _, row := range session.Grid {
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}

	if session.LastOutcome != nil {
		fmt.Fprintf(&b, "\nLast outcome: %s\n", session.LastOutcome.Kind)
	}
	return b.String()
}

func formatCommands(cmds []engine.Command) string {
	if len(cmds) == 0 {
		return "(empty)"
	}
	dirs := make([]string, len(cmds))
	for i, cmd := range cmds {
		dirs[i] = string(cmd.Direction)
	}
	return strings.Join(dirs, ", ")
}

func formatQueueResult(added, requested int, result *service.QueueResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Queued %d of %d commands.\n", added, requested)
	if !result.Accepted {
		switch result.Rejection {
		case service.RejectFull:
			b.WriteString("The program is full; remaining commands were not added.\n")
		case service.RejectLocked:
			b.WriteString("A run is in progress; the program cannot be edited.\n")
		}
	}
	fmt.Fprintf(&b, "Program: %s\n", formatCommands(result.Queue))
	fmt.Fprintf(&b, "Commands left: %d\n", result.Remaining)
	return b.String()
}

func formatRunResult(result *service.RunResult) string {
	var b strings.Builder

	if result.Outcome == nil {
		fmt.Fprintf(&b, "Run started for session %s; watch the live stream for steps.\n", result.SessionID)
		return b.String()
	}

	outcome := result.Outcome
	status := "FAILED"
	if outcome.Won() {
		status = "WON"
	}
	fmt.Fprintf(&b, "%s: %s\n", status, result.Message)
	if result.Hint != "" {
		fmt.Fprintf(&b, "Hint: %s\n", result.Hint)
	}

	b.WriteString("\nSteps:\n")
	for _, ev := range result.Events {
		line := fmt.Sprintf("%d. %s (%d,%d)->(%d,%d)", ev.Index+1, ev.Direction, ev.From.X, ev.From.Y, ev.To.X, ev.To.Y)
		if ev.Collected != nil {
			line += " star!"
		}
		if ev.ReachedGoal {
			line += " home"
		}
		b.WriteString(line + "\n")
	}
	if outcome.Attempted != nil {
		fmt.Fprintf(&b, "Blocked at command %d trying to enter (%d,%d): %s\n",
			outcome.FailedAt+1, outcome.Attempted.X, outcome.Attempted.Y, outcome.Reason)
	}

	fmt.Fprintf(&b, "\nFinal position: (%d,%d)\n", outcome.FinalPos.X, outcome.FinalPos.Y)
	fmt.Fprintf(&b, "Stars: %d (need %d)\n", outcome.StarsCollected, outcome.StarsRequired)
	if result.Unlocked {
		fmt.Fprintf(&b, "Level %d unlocked!\n", result.Progress)
	}
	return b.String()
}

func formatSolution(solution *service.SolveResult) string {
	if !solution.Winnable {
		return fmt.Sprintf("Level %d cannot be won within its command limit.", solution.LevelID)
	}

	dirs := make([]string, len(solution.Directions))
	for i, d := range solution.Directions {
		dirs[i] = string(d)
	}
	return fmt.Sprintf("Level %d shortest solution (%d commands, %d stars): %s",
		solution.LevelID, solution.Length, solution.Stars, strings.Join(dirs, ", "))
}
