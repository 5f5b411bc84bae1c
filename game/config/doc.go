// Package config provides the level catalog for Robo Path.
//
// The config package handles:
//   - Loading level definitions from JSON or YAML files
//   - Falling back to the embedded default levels
//   - Validation of every level at load time
//   - Summaries with star counts and shortest solution length
//
// Level Format:
//
// Each file holds one level. The layout is one string per row using the
// legend '.' empty, '#' wall, 'S' start, 'G' goal, '*' star:
//
//	id: 3
//	name: "Star Hunter"
//	grid_size: 5
//	start_pos: { x: 0, y: 0 }
//	max_commands: 10
//	min_stars_to_win: 1
//	layout:
//	  - "S...."
//	  - "##.#."
//	  - ".*..."
//	  - ".###."
//	  - "....G"
//
// Usage:
//
//	manager, err := config.NewManager("levels", config.WithStrict(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.Get(1)
//
// A malformed level, or a duplicate id, fails NewManager. With strict mode
// a level that no program within its command limit can win is rejected too.
package config
