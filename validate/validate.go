// Package validate reports on a directory of level files one file at a
// time. Where the level catalog stops at the first bad file, this package
// keeps going and collects every problem it finds. It checks:
//   - JSON or YAML structure with no unknown fields
//   - grid size, allowed characters, exactly one goal and a legal start
//   - that the goal and enough stars are connected to the start
//   - that a program within the command cap wins the level
//   - that level ids are unique across the directory
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/robo-path/game/config"
	"github.com/wricardo/robo-path/game/engine"
)

// Result captures the outcome of validating a single file. Errors lists
// the problems found; Info carries a summary when the file is valid.
type Result struct {
	File    string
	LevelID int
	Valid   bool
	Errors  []string
	Info    []string
}

func (r *Result) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// File loads and validates a single level file
func File(path string) Result {
	result := Result{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	def, err := config.ParseLevelFile(path, data)
	if err != nil {
		result.fail("Invalid level file: %v", err)
		return result
	}
	result.LevelID = def.ID

	if err := engine.ValidateLevelDef(&def); err != nil {
		result.fail("%v", err)
		return result
	}

	level, err := engine.CompileLevel(def)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	checkConnectivity(level, &result)
	if !result.Valid {
		return result
	}

	solution, ok := engine.Solve(level)
	if !ok {
		result.fail("No program of at most %d commands wins this level", level.MaxCommands)
		return result
	}

	result.Info = append(result.Info,
		fmt.Sprintf("Name: %s", level.Name),
		fmt.Sprintf("Grid: %dx%d", level.GridSize, level.GridSize),
		fmt.Sprintf("Walls: %d", engine.CountTiles(level.Grid, engine.Wall)),
		fmt.Sprintf("Stars: %d (need %d)", level.TotalStars(), level.MinStarsToWin),
		fmt.Sprintf("Shortest program: %d of %d commands", solution.Length, level.MaxCommands),
	)
	return result
}

// Dir validates every level file in dir, sorted by file name, and flags
// level ids used by more than one file
func Dir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsLevelFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	owners := make(map[int]string)
	for _, name := range names {
		result := File(filepath.Join(dir, name))
		if result.LevelID > 0 {
			if first, taken := owners[result.LevelID]; taken {
				result.fail("Duplicate level id %d (also used by %s)", result.LevelID, first)
			} else {
				owners[result.LevelID] = name
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// AllValid reports whether every result is valid
func AllValid(results []Result) bool {
	for _, r := range results {
		if !r.Valid {
			return false
		}
	}
	return true
}

// checkConnectivity flood-fills from the start over non-wall tiles and
// fails when the goal, or enough stars to win, cannot be reached at all
func checkConnectivity(level *engine.Level, result *Result) {
	visited := map[engine.Position]bool{level.StartPos: true}
	queue := []engine.Position{level.StartPos}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.Directions {
			next := dir.Apply(current)
			if !level.InBounds(next) || visited[next] || level.TileAt(next) == engine.Wall {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	if !visited[level.GoalPos] {
		result.fail("Connectivity failure: goal at %s is walled off from the start", level.GoalPos)
	}

	reachable := 0
	for _, star := range level.Stars {
		if visited[star] {
			reachable++
		} else {
			result.Info = append(result.Info, fmt.Sprintf("Unreachable star at %s", star))
		}
	}
	if reachable < level.MinStarsToWin {
		result.fail("Connectivity failure: %d stars needed but only %d reachable", level.MinStarsToWin, reachable)
	}
}
