// Command analyze prints quick, human-readable heuristics about a level
// set. It summarizes dimensions, command caps, walls and stars, highlights
// stars that lie beyond the command cap by Manhattan distance, and reports
// the shortest winning program with the slack it leaves.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/wricardo/robo-path/game/config"
	"github.com/wricardo/robo-path/game/engine"
)

// Analysis is the summary of one level
type Analysis struct {
	ID              int
	Name            string
	GridSize        int
	MaxCommands     int
	MinStarsToWin   int
	Walls           int
	Stars           int
	GoalDistance    int
	NearestStar     *engine.Position
	StarDistance    int
	UnreachableStar []engine.Position
	Winnable        bool
	Shortest        []engine.Direction
	Slack           int
}

func main() {
	dir := ""
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	levels, err := config.NewManager(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading levels: %v\n", err)
		os.Exit(1)
	}

	for _, level := range levels.List() {
		fmt.Printf("\n=== Analyzing level %d ===\n", level.ID)
		printAnalysis(os.Stdout, analyzeLevel(level))
	}
}

func analyzeLevel(level *engine.Level) Analysis {
	a := Analysis{
		ID:            level.ID,
		Name:          level.Name,
		GridSize:      level.GridSize,
		MaxCommands:   level.MaxCommands,
		MinStarsToWin: level.MinStarsToWin,
		Walls:         engine.CountTiles(level.Grid, engine.Wall),
		Stars:         level.TotalStars(),
		GoalDistance:  engine.ManhattanDistance(level.StartPos, level.GoalPos),
	}

	if star, d, ok := engine.NearestStar(level, level.StartPos, nil); ok {
		a.NearestStar = &star
		a.StarDistance = d
	}

	for _, star := range level.Stars {
		if engine.ManhattanDistance(level.StartPos, star) > level.MaxCommands {
			a.UnreachableStar = append(a.UnreachableStar, star)
		}
	}

	if solution, ok := engine.Solve(level); ok {
		a.Winnable = true
		a.Shortest = solution.Directions
		a.Slack = level.MaxCommands - solution.Length
	}

	return a
}

func printAnalysis(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.GridSize, a.GridSize)
	fmt.Fprintf(w, "Max Commands: %d\n", a.MaxCommands)
	fmt.Fprintf(w, "Walls: %d\n", a.Walls)
	fmt.Fprintf(w, "Stars: %d (need %d)\n", a.Stars, a.MinStarsToWin)
	fmt.Fprintf(w, "Start to goal distance: %d\n", a.GoalDistance)
	if a.NearestStar != nil {
		fmt.Fprintf(w, "Nearest star: (%d, %d) at distance %d\n", a.NearestStar.X, a.NearestStar.Y, a.StarDistance)
	}

	if a.GoalDistance > a.MaxCommands {
		fmt.Fprintf(w, "CRITICAL: goal is %d moves away but only %d commands fit\n", a.GoalDistance, a.MaxCommands)
	}

	if len(a.UnreachableStar) > 0 {
		fmt.Fprintf(w, "WARNING: %d stars are further than the command cap from the start\n", len(a.UnreachableStar))
		for i, p := range a.UnreachableStar {
			if i == 5 {
				fmt.Fprintf(w, "   ... and %d more\n", len(a.UnreachableStar)-5)
				break
			}
			fmt.Fprintf(w, "   Unreachable star: (%d, %d)\n", p.X, p.Y)
		}
	}

	if !a.Winnable {
		fmt.Fprintf(w, "CRITICAL: no program within %d commands wins this level\n", a.MaxCommands)
		return
	}

	fmt.Fprintf(w, "OK: shortest winning program has %d commands (slack %d):", len(a.Shortest), a.Slack)
	for _, d := range a.Shortest {
		fmt.Fprintf(w, " %s", d)
	}
	fmt.Fprintln(w)
}
