package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLevel(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	return path
}

const validYAML = `id: 1
name: "First Steps"
grid_size: 4
start_pos: { x: 0, y: 0 }
max_commands: 5
min_stars_to_win: 0
layout:
  - "S..."
  - "...."
  - "..G."
  - "...."
`

const validJSON = `{
	"id": 2,
	"name": "Watch the Rock!",
	"grid_size": 4,
	"start_pos": {"x": 0, "y": 1},
	"max_commands": 8,
	"min_stars_to_win": 0,
	"layout": ["...G", "S##.", "....", "...."]
}`

func hasError(result Result, substr string) bool {
	for _, e := range result.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestFile_Valid(t *testing.T) {
	dir := t.TempDir()

	for name, content := range map[string]string{"01.yaml": validYAML, "02.json": validJSON} {
		result := File(writeLevel(t, dir, name, content))
		if !result.Valid {
			t.Errorf("%s: expected valid level, got errors: %v", name, result.Errors)
		}
		if result.File != name {
			t.Errorf("Expected file name %s, got %s", name, result.File)
		}
		if len(result.Info) == 0 {
			t.Errorf("%s: expected summary info", name)
		}
	}
}

func TestFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{
			name:    "malformed json",
			file:    "bad.json",
			content: `{"id": 1, invalid json}`,
			want:    "Invalid level file",
		},
		{
			name:    "unknown field",
			file:    "extra.yaml",
			content: validYAML + "max_speed: 10\n",
			want:    "Invalid level file",
		},
		{
			name:    "bad character",
			file:    "char.json",
			content: `{"id": 1, "name": "x", "grid_size": 2, "start_pos": {"x": 0, "y": 0}, "max_commands": 3, "layout": ["SX", ".G"]}`,
			want:    "invalid character 'X'",
		},
		{
			name:    "walled off goal",
			file:    "walled.json",
			content: `{"id": 1, "name": "x", "grid_size": 3, "start_pos": {"x": 0, "y": 0}, "max_commands": 10, "layout": ["S..", "..#", ".#G"]}`,
			want:    "goal at (2,2) is walled off",
		},
		{
			name:    "stars unreachable",
			file:    "stars.json",
			content: `{"id": 1, "name": "x", "grid_size": 3, "start_pos": {"x": 0, "y": 0}, "max_commands": 10, "min_stars_to_win": 1, "layout": ["S.G", "##.", "*#."]}`,
			want:    "1 stars needed but only 0 reachable",
		},
		{
			name:    "too few commands",
			file:    "cap.json",
			content: `{"id": 1, "name": "x", "grid_size": 4, "start_pos": {"x": 0, "y": 0}, "max_commands": 5, "layout": ["S...", "....", "....", "...G"]}`,
			want:    "No program of at most 5 commands",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := File(writeLevel(t, t.TempDir(), tt.file, tt.content))
			if result.Valid {
				t.Fatal("Expected invalid level")
			}
			if !hasError(result, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestFile_Missing(t *testing.T) {
	result := File(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid || !hasError(result, "Failed to read file") {
		t.Errorf("Expected read failure, got %+v", result)
	}
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "01.yaml", validYAML)
	writeLevel(t, dir, "02.json", validJSON)
	writeLevel(t, dir, "03-copy.yml", validYAML)
	writeLevel(t, dir, "notes.txt", "not a level")

	results, err := Dir(dir)
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 level files, got %d", len(results))
	}

	if !results[0].Valid || !results[1].Valid {
		t.Errorf("Expected first two files valid: %+v", results[:2])
	}
	if results[2].Valid || !hasError(results[2], "Duplicate level id 1 (also used by 01.yaml)") {
		t.Errorf("Expected duplicate id error, got %+v", results[2])
	}
	if AllValid(results) {
		t.Error("Expected AllValid to be false")
	}
	if !AllValid(results[:2]) {
		t.Error("Expected AllValid to be true for valid files")
	}
}

func TestDir_Missing(t *testing.T) {
	if _, err := Dir("/non/existent/path"); err == nil {
		t.Error("Expected error for missing directory")
	}
}
