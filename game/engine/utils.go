package engine

import "strings"

// CountTiles counts the cells of a specific type in the grid
func CountTiles(grid [][]TileType, tile TileType) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell == tile {
				count++
			}
		}
	}
	return count
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// NearestStar finds the closest star not in collected and returns its
// position and distance
func NearestStar(level *Level, from Position, collected []Position) (Position, int, bool) {
	taken := make(map[Position]bool, len(collected))
	for _, p := range collected {
		taken[p] = true
	}

	minDistance := -1
	var nearest Position
	for _, star := range level.Stars {
		if taken[star] {
			continue
		}
		if d := ManhattanDistance(from, star); minDistance == -1 || d < minDistance {
			minDistance = d
			nearest = star
		}
	}
	return nearest, minDistance, minDistance >= 0
}

// RenderASCII draws the level using the layout legend, marking the avatar
// with 'R' and collected stars as empty cells
func RenderASCII(level *Level, avatar Position, collected []Position) []string {
	taken := make(map[Position]bool, len(collected))
	for _, p := range collected {
		taken[p] = true
	}

	lines := make([]string, 0, level.GridSize)
	for y, row := range level.Grid {
		var b strings.Builder
		for x, tile := range row {
			p := Position{X: x, Y: y}
			switch {
			case p == avatar:
				b.WriteRune('R')
			case tile == Star && taken[p]:
				b.WriteRune(Empty.Char())
			default:
				b.WriteRune(tile.Char())
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}
