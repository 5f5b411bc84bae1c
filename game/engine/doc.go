// Package engine provides the core logic for the Robo Path puzzle game.
//
// The engine package implements the game mechanics including:
//   - Level definitions, validation, and compiled grids
//   - The bounded command queue a player fills before a run
//   - The simulator that executes a program against a level
//   - Step-by-step replay and timed playback of a resolved run
//   - A breadth-first solver used for winnability checks and hints
//
// Core Types:
//
// Level is an immutable grid built by CompileLevel from a LevelDef loaded
// from JSON or YAML. Queue holds the player's Commands. Simulate consumes a
// Level and a command snapshot and returns a RunResult holding the step
// events and the terminal Outcome.
//
// Usage:
//
//	level, err := engine.CompileLevel(def)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	queue := engine.NewQueue(level.MaxCommands)
//	queue.Append(engine.Right)
//	queue.Append(engine.Down)
//
//	result := engine.Simulate(level, queue.Snapshot())
//	if result.Outcome.Won() {
//		fmt.Println("home!")
//	}
//
// Game Rules:
//
// Robo starts on the level's start position and executes each command in
// order. A move that would leave the grid or enter a wall is rejected
// before it commits and ends the run. Stars are collected once per run.
// Reaching the goal ends the run; it is a win when at least MinStarsToWin
// stars were collected. Running out of commands elsewhere is a failure.
package engine
