package hint

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wricardo/robo-path/game/engine"
)

func testLevel() *engine.Level {
	return engine.MustCompileLevel(engine.LevelDef{
		ID:          1,
		Name:        "Hint Level",
		GridSize:    4,
		Layout:      []string{"S...", "....", "..G.", "...."},
		StartPos:    engine.Position{X: 0, Y: 0},
		MaxCommands: 5,
	})
}

func TestHeadline(t *testing.T) {
	tests := []struct {
		outcome engine.Outcome
		locale  string
		want    string
	}{
		{engine.Outcome{Kind: engine.OutcomeFailedBounds}, "id", "Aduh! Robo menabrak batas dunia!"},
		{engine.Outcome{Kind: engine.OutcomeFailedWall}, "id", "Dug! Ada batu besar menghalangi jalan."},
		{engine.Outcome{Kind: engine.OutcomeInsufficientStars, StarsRequired: 2, StarsCollected: 1}, "id", "Yah! Kamu butuh 2 bintang, tapi baru punya 1."},
		{engine.Outcome{Kind: engine.OutcomeIncomplete}, "id", "Robot belum sampai di rumah."},
		{engine.Outcome{Kind: engine.OutcomeWon, StarsCollected: 3}, "id", "Luar biasa! 3 Bintang! 🌟🌟🌟"},
		{engine.Outcome{Kind: engine.OutcomeWon, StarsCollected: 1}, "id-ID", "Hebat! Kamu berhasil! 🎉"},
		{engine.Outcome{Kind: engine.OutcomeWon}, "id", "Hore! Kamu menang! 🎈"},
		{engine.Outcome{Kind: engine.OutcomeFailedWall}, "en", "Bonk! A big rock is blocking the way."},
		{engine.Outcome{Kind: engine.OutcomeFailedWall}, "fr", "Bonk! A big rock is blocking the way."},
	}

	for _, tt := range tests {
		if got := Headline(tt.outcome, tt.locale); got != tt.want {
			t.Errorf("Headline(%s, %s) = %q, want %q", tt.outcome.Kind, tt.locale, got, tt.want)
		}
	}
}

func TestRuleNarrator_DescribeFailure(t *testing.T) {
	ctx := context.Background()
	n := NewRuleNarrator("id")

	tests := []struct {
		kind engine.OutcomeKind
		want string
	}{
		{engine.OutcomeFailedWall, "Awas ada batu! Coba cari jalan memutar ya."},
		{engine.OutcomeFailedBounds, "Hati-hati, jangan sampai keluar jalur!"},
		{engine.OutcomeInsufficientStars, "Cari jalan yang melewati bintang ya!"},
	}
	for _, tt := range tests {
		got, err := n.DescribeFailure(ctx, FailureRequest{Outcome: engine.Outcome{Kind: tt.kind}})
		if err != nil {
			t.Fatalf("Unexpected error %v", err)
		}
		if got != tt.want {
			t.Errorf("DescribeFailure(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}

	got, _ := n.DescribeFailure(ctx, FailureRequest{
		Level:    testLevel(),
		Outcome:  engine.Outcome{Kind: engine.OutcomeIncomplete},
		FinalPos: engine.Position{X: 1, Y: 1},
	})
	if !strings.HasPrefix(got, "Jangan menyerah!") || !strings.Contains(got, "2 langkah") {
		t.Errorf("Expected encouragement with distance, got %q", got)
	}
}

func TestRuleNarrator_DescribeWin(t *testing.T) {
	n := NewRuleNarrator("en")
	got, err := n.DescribeWin(context.Background(), 0)
	if err != nil || got != "Hooray! You won! 🎈" {
		t.Errorf("Unexpected win message %q (%v)", got, err)
	}
}

func TestRemoteNarrator(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		var req promptRequest
		json.Unmarshal(body, &req)
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(promptResponse{Text: "  Try again, friend!  "})
	}))
	defer server.Close()

	n := NewRemoteNarrator(server.URL, "id", time.Second)
	text, err := n.DescribeFailure(context.Background(), FailureRequest{
		Level:    testLevel(),
		Commands: []engine.Command{{ID: "a", Direction: engine.Right}, {ID: "b", Direction: engine.Up}},
		Outcome:  engine.Outcome{Kind: engine.OutcomeFailedBounds},
		FinalPos: engine.Position{X: 1, Y: 0},
	})
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	if text != "Try again, friend!" {
		t.Errorf("Expected trimmed text, got %q", text)
	}
	for _, want := range []string{"right, up", "Indonesian", "(1,0)", "(2,2)", "4x4"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("Expected prompt to contain %q:\n%s", want, gotPrompt)
		}
	}
}

func TestRemoteNarrator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty text", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(promptResponse{Text: "   "})
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(promptResponse{Error: "quota"})
		}},
		{"garbage", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			json.NewEncoder(w).Encode(promptResponse{Text: "late"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			n := NewRemoteNarrator(server.URL, "en", 50*time.Millisecond)
			if _, err := n.DescribeWin(context.Background(), 1); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

type failingNarrator struct{}

func (failingNarrator) DescribeFailure(ctx context.Context, req FailureRequest) (string, error) {
	return "", errors.New("offline")
}

func (failingNarrator) DescribeWin(ctx context.Context, stars int) (string, error) {
	return "", ErrEmptyText
}

func TestWithFallback(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard)

	tests := []struct {
		name    string
		primary Narrator
	}{
		{"nil narrator", nil},
		{"failing narrator", failingNarrator{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := WithFallback(tt.primary, "id", logger)

			text, err := n.DescribeFailure(ctx, FailureRequest{Outcome: engine.Outcome{Kind: engine.OutcomeFailedWall}})
			if err != nil || text != "Awas ada batu! Coba cari jalan memutar ya." {
				t.Errorf("Expected rule hint, got %q (%v)", text, err)
			}

			text, err = n.DescribeWin(ctx, 2)
			if err != nil || text != "Hebat! Kamu berhasil! 🎉" {
				t.Errorf("Expected rule win message, got %q (%v)", text, err)
			}
		})
	}
}

func TestWithFallback_PrefersPrimary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(promptResponse{Text: "Yay!"})
	}))
	defer server.Close()

	n := WithFallback(NewRemoteNarrator(server.URL, "en", time.Second), "en", log.New(io.Discard))
	text, _ := n.DescribeWin(context.Background(), 0)
	if text != "Yay!" {
		t.Errorf("Expected remote text, got %q", text)
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"":      "en",
		"ID":    "id",
		"id_ID": "id",
		"en-US": "en",
		"de":    "en",
	}
	for in, want := range tests {
		if got := NormalizeLocale(in); got != want {
			t.Errorf("NormalizeLocale(%q) = %q, want %q", in, got, want)
		}
	}
}
