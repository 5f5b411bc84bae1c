package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/robo-path/game/engine"
	"github.com/wricardo/robo-path/game/service"
	"github.com/wricardo/robo-path/validate"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	wonStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hintStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// tileStyles colors the glyphs produced by engine.RenderASCII
var tileStyles = map[rune]lipgloss.Style{
	'R': lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
	'S': lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	'G': lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	'*': lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	'#': lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	'.': lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

// renderGrid draws rows of legend characters inside a bordered board
func renderGrid(rows []string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, 0, len(row))
		for _, ch := range row {
			style, ok := tileStyles[ch]
			if !ok {
				style = lipgloss.NewStyle()
			}
			cells = append(cells, style.Render(string(ch)))
		}
		lines[i] = strings.Join(cells, " ")
	}
	return boardStyle.Render(strings.Join(lines, "\n"))
}

func renderLevelTable(levels []*service.LevelInfo) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Levels"))
	b.WriteByte('\n')

	for _, l := range levels {
		line := fmt.Sprintf("%2d. %-18s %dx%d  max %2d  stars %d/%d",
			l.ID, l.Name, l.GridSize, l.GridSize, l.MaxCommands, l.MinStarsToWin, l.Stars)
		switch {
		case l.Locked:
			line = lockedStyle.Render(line + "  locked")
		case !l.Winnable:
			line = failStyle.Render(line + "  unwinnable")
		default:
			line += fmt.Sprintf("  best %d", l.ShortestSolution)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderStep(ev engine.StepEvent) string {
	line := fmt.Sprintf("%d. %-5s (%d,%d) -> (%d,%d)", ev.Index+1, ev.Direction, ev.From.X, ev.From.Y, ev.To.X, ev.To.Y)
	if ev.Collected != nil {
		line += " " + tileStyles['*'].Render("*")
	}
	return line
}

// renderOutcome prints the headline, the hint and the unlock notice
func renderOutcome(result *service.RunResult) string {
	if result.Outcome == nil {
		return ""
	}

	var b strings.Builder
	if result.Outcome.Won() {
		b.WriteString(wonStyle.Render(result.Message))
	} else {
		b.WriteString(failStyle.Render(result.Message))
	}
	b.WriteByte('\n')

	if result.Hint != "" {
		b.WriteString(hintStyle.Render(result.Hint))
		b.WriteByte('\n')
	}
	if result.Unlocked {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Level %d unlocked!", result.Progress)))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderSolution(level *engine.Level, solution *service.SolveResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Level %d: %s", level.ID, level.Name)))
	b.WriteByte('\n')
	b.WriteString(renderGrid(engine.RenderASCII(level, level.StartPos, nil)))
	b.WriteByte('\n')

	if !solution.Winnable {
		b.WriteString(failStyle.Render("No program within the command limit wins this level."))
		b.WriteByte('\n')
		return b.String()
	}

	dirs := make([]string, len(solution.Directions))
	for i, d := range solution.Directions {
		dirs[i] = string(d)
	}
	fmt.Fprintf(&b, "Shortest program (%d of %d commands, %d stars): %s\n",
		solution.Length, level.MaxCommands, solution.Stars, strings.Join(dirs, " "))
	return b.String()
}

func renderValidation(results []validate.Result) string {
	var b strings.Builder
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(&b, "%s %s\n", wonStyle.Render("VALID"), r.File)
		} else {
			fmt.Fprintf(&b, "%s %s\n", failStyle.Render("INVALID"), r.File)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
		for _, info := range r.Info {
			b.WriteString(hintStyle.Render("  "+info) + "\n")
		}
	}

	if validate.AllValid(results) {
		fmt.Fprintf(&b, "%d level files valid\n", len(results))
	}
	return b.String()
}
