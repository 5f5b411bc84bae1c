package hint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/robo-path/game/engine"
)

// DefaultTimeout bounds a single remote narration call
const DefaultTimeout = 8 * time.Second

// RemoteNarrator asks a text-generation endpoint for the message. The
// endpoint accepts {"prompt": "..."} and answers {"text": "..."}.
type RemoteNarrator struct {
	endpoint   string
	locale     string
	httpClient *http.Client
}

// NewRemoteNarrator creates a narrator posting prompts to endpoint
func NewRemoteNarrator(endpoint, locale string, timeout time.Duration) *RemoteNarrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RemoteNarrator{
		endpoint: endpoint,
		locale:   NormalizeLocale(locale),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type promptResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (n *RemoteNarrator) DescribeFailure(ctx context.Context, req FailureRequest) (string, error) {
	return n.generate(ctx, failurePrompt(req, n.locale))
}

func (n *RemoteNarrator) DescribeWin(ctx context.Context, starsCollected int) (string, error) {
	prompt := fmt.Sprintf(`Write a short celebration message in %s for a 7-year-old who just finished a coding puzzle.
They collected %d stars.
Be enthusiastic! Use emojis. Max 15 words.`, languageName(n.locale), starsCollected)
	return n.generate(ctx, prompt)
}

func (n *RemoteNarrator) generate(ctx context.Context, prompt string) (string, error) {
	data, err := json.Marshal(promptRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("narration request failed: %w", err)
	}
	defer resp.Body.Close()

	var out promptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode < 400 {
		return "", fmt.Errorf("failed to decode narration: %w", err)
	}
	if resp.StatusCode >= 400 {
		if out.Error != "" {
			return "", fmt.Errorf("narration error: %s", out.Error)
		}
		return "", fmt.Errorf("narration error: status %d", resp.StatusCode)
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func failurePrompt(req FailureRequest, locale string) string {
	dirs := make([]string, len(req.Commands))
	for i, c := range req.Commands {
		dirs[i] = string(c.Direction)
	}

	gridSize := 0
	goal := engine.Position{}
	if req.Level != nil {
		gridSize = req.Level.GridSize
		goal = req.Level.GoalPos
	}

	return fmt.Sprintf(`You are a friendly robot helper named "Robo" for a 7-year-old child learning coding logic.
The child is playing a grid-based movement game.

Context:
- Level Goal: Get to the goal while collecting stars.
- Grid Size: %dx%d.
- Current Robot Position: %s.
- Goal Position: %s.
- User's Command Sequence: %s.
- Why they failed: %s.

Task:
Give a very short, encouraging hint in %s.
Do NOT give the direct answer.
Use simple words suitable for a 1st grader.
Keep it under 20 words.`,
		gridSize, gridSize, req.FinalPos, goal, strings.Join(dirs, ", "),
		Headline(req.Outcome, LocaleEnglish), languageName(locale))
}

func languageName(locale string) string {
	if locale == LocaleIndonesian {
		return "Indonesian (Bahasa Indonesia)"
	}
	return "English"
}
