package engine

import (
	"fmt"
	"strings"
)

// TileType represents the content of a single grid cell
type TileType string

const (
	Empty TileType = "empty"
	Wall  TileType = "wall"
	Start TileType = "start"
	Goal  TileType = "goal"
	Star  TileType = "star"

	// Validation constants
	MinGridSize      = 1
	MaxGridSize      = 8
	MaxCommandsLimit = 20
)

// Legend maps layout characters to tile types
var Legend = map[rune]TileType{
	'.': Empty,
	'#': Wall,
	'S': Start,
	'G': Goal,
	'*': Star,
}

// Char returns the layout character for the tile type
func (t TileType) Char() rune {
	for ch, tile := range Legend {
		if tile == t {
			return ch
		}
	}
	return '?'
}

// Position represents x,y coordinates (x = column, y = row)
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Key returns the "x,y" key used for the collected star set
func (p Position) Key() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a single movement intent
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts user input ("UP", "right", "l") into a Direction
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Delta returns the coordinate shift for the direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Apply returns the position shifted one cell in the direction
func (d Direction) Apply(p Position) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Command is one queued directional move. ID is only used by clients to
// key list rendering.
type Command struct {
	ID        string    `json:"id"`
	Direction Direction `json:"direction"`
}

// LevelDef is the on-disk definition of a level (JSON or YAML)
type LevelDef struct {
	ID            int      `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	GridSize      int      `json:"grid_size" yaml:"grid_size"`
	Layout        []string `json:"layout" yaml:"layout"`
	StartPos      Position `json:"start_pos" yaml:"start_pos"`
	MaxCommands   int      `json:"max_commands" yaml:"max_commands"`
	MinStarsToWin int      `json:"min_stars_to_win" yaml:"min_stars_to_win"`
}

// Level is a validated, immutable level. Grid is indexed [row][col].
type Level struct {
	LevelDef
	Grid    [][]TileType `json:"grid"`
	GoalPos Position     `json:"goal_pos"`
	Stars   []Position   `json:"stars"`
}

// InBounds reports whether p lies on the grid
func (l *Level) InBounds(p Position) bool {
	return p.X >= 0 && p.X < l.GridSize && p.Y >= 0 && p.Y < l.GridSize
}

// TileAt returns the tile at p. Callers must check InBounds first.
func (l *Level) TileAt(p Position) TileType {
	return l.Grid[p.Y][p.X]
}

// TotalStars returns the number of star tiles on the grid
func (l *Level) TotalStars() int {
	return len(l.Stars)
}
