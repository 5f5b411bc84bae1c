package engine

import (
	"fmt"
)

// ValidateLevelDef validates a level definition for correctness and playability
func ValidateLevelDef(def *LevelDef) error {
	// Validate required fields
	if def.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidLevel, def.ID)
	}
	if def.Name == "" {
		return fmt.Errorf("%w: level %d: name is required", ErrInvalidLevel, def.ID)
	}

	// Validate grid size
	if def.GridSize < MinGridSize || def.GridSize > MaxGridSize {
		return fmt.Errorf("%w: level %d: grid_size must be between %d and %d, got %d",
			ErrInvalidLevel, def.ID, MinGridSize, MaxGridSize, def.GridSize)
	}

	// Validate command cap
	if def.MaxCommands < 1 || def.MaxCommands > MaxCommandsLimit {
		return fmt.Errorf("%w: level %d: max_commands must be between 1 and %d, got %d",
			ErrInvalidLevel, def.ID, MaxCommandsLimit, def.MaxCommands)
	}

	// Validate layout
	if len(def.Layout) != def.GridSize {
		return fmt.Errorf("%w: level %d: layout must have %d rows to match grid_size, got %d",
			ErrInvalidLevel, def.ID, def.GridSize, len(def.Layout))
	}

	goals := 0
	stars := 0
	for i, row := range def.Layout {
		cells := []rune(row)
		if len(cells) != def.GridSize {
			return fmt.Errorf("%w: level %d: row %d must have %d characters to match grid_size, got %d",
				ErrInvalidLevel, def.ID, i+1, def.GridSize, len(cells))
		}
		for j, ch := range cells {
			tile, ok := Legend[ch]
			if !ok {
				return fmt.Errorf("%w: level %d: invalid character '%c' at row %d, col %d",
					ErrInvalidLevel, def.ID, ch, i+1, j+1)
			}
			switch tile {
			case Goal:
				goals++
			case Star:
				stars++
			}
		}
	}

	if goals != 1 {
		return fmt.Errorf("%w: level %d: layout must contain exactly one goal (G), got %d", ErrInvalidLevel, def.ID, goals)
	}

	// Validate spawn
	start := def.StartPos
	if start.X < 0 || start.X >= def.GridSize || start.Y < 0 || start.Y >= def.GridSize {
		return fmt.Errorf("%w: level %d: start_pos %s is out of bounds", ErrInvalidLevel, def.ID, start)
	}
	if Legend[[]rune(def.Layout[start.Y])[start.X]] == Wall {
		return fmt.Errorf("%w: level %d: start_pos %s is a wall", ErrInvalidLevel, def.ID, start)
	}
	if Legend[[]rune(def.Layout[start.Y])[start.X]] == Goal {
		return fmt.Errorf("%w: level %d: start_pos %s is the goal", ErrInvalidLevel, def.ID, start)
	}

	// Validate star requirement
	if def.MinStarsToWin < 0 || def.MinStarsToWin > stars {
		return fmt.Errorf("%w: level %d: min_stars_to_win must be between 0 and %d stars on the grid, got %d",
			ErrInvalidLevel, def.ID, stars, def.MinStarsToWin)
	}

	return nil
}

// CompileLevel validates a definition and builds its immutable grid
func CompileLevel(def LevelDef) (*Level, error) {
	if err := ValidateLevelDef(&def); err != nil {
		return nil, err
	}

	layout := make([]string, len(def.Layout))
	copy(layout, def.Layout)
	def.Layout = layout

	level := &Level{
		LevelDef: def,
		Grid:     make([][]TileType, def.GridSize),
	}

	for y, row := range def.Layout {
		level.Grid[y] = make([]TileType, def.GridSize)
		for x, ch := range []rune(row) {
			tile := Legend[ch]
			level.Grid[y][x] = tile
			switch tile {
			case Goal:
				level.GoalPos = Position{X: x, Y: y}
			case Star:
				level.Stars = append(level.Stars, Position{X: x, Y: y})
			}
		}
	}

	return level, nil
}

// MustCompileLevel is like CompileLevel but panics on invalid input.
// Intended for tests and static tables.
func MustCompileLevel(def LevelDef) *Level {
	level, err := CompileLevel(def)
	if err != nil {
		panic(err)
	}
	return level
}
