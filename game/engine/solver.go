package engine

import "math/bits"

// Solution is a shortest winning program for a level
type Solution struct {
	Directions []Direction `json:"directions"`
	Length     int         `json:"length"`
	Stars      int         `json:"stars"`
}

// Commands converts the solution into queue commands with synthetic ids
func (s Solution) Commands() []Command {
	cmds := make([]Command, len(s.Directions))
	for i, d := range s.Directions {
		cmds[i] = Command{ID: "solution", Direction: d}
	}
	return cmds
}

type searchNode struct {
	pos  Position
	mask uint64
}

type searchLink struct {
	prev searchNode
	dir  Direction
}

// Solve searches breadth-first over (position, collected stars) for the
// shortest program that wins the level within its command cap. The goal
// policy must match the one used to run the program.
func Solve(level *Level, opts ...SimOption) (Solution, bool) {
	options := simOptions{goalPolicy: GoalAlwaysTerminal}
	for _, opt := range opts {
		opt(&options)
	}

	starIndex := make(map[Position]int, len(level.Stars))
	for i, p := range level.Stars {
		if i >= 64 {
			break
		}
		starIndex[p] = i
	}

	start := searchNode{pos: level.StartPos}
	parents := map[searchNode]searchLink{}
	seen := map[searchNode]bool{start: true}
	frontier := []searchNode{start}

	for depth := 0; depth < level.MaxCommands && len(frontier) > 0; depth++ {
		var next []searchNode
		for _, node := range frontier {
			for _, dir := range Directions {
				to := dir.Apply(node.pos)
				if !level.InBounds(to) || level.TileAt(to) == Wall {
					continue
				}

				mask := node.mask
				if idx, ok := starIndex[to]; ok {
					mask |= 1 << uint(idx)
				}
				child := searchNode{pos: to, mask: mask}
				if seen[child] {
					continue
				}

				if level.TileAt(to) == Goal {
					stars := bits.OnesCount64(mask)
					if stars >= level.MinStarsToWin {
						parents[child] = searchLink{prev: node, dir: dir}
						return buildSolution(parents, start, child, stars), true
					}
					if options.goalPolicy != GoalTerminalWhenSatisfied {
						continue
					}
				}

				seen[child] = true
				parents[child] = searchLink{prev: node, dir: dir}
				next = append(next, child)
			}
		}
		frontier = next
	}

	return Solution{}, false
}

func buildSolution(parents map[searchNode]searchLink, start, end searchNode, stars int) Solution {
	var reversed []Direction
	for node := end; node != start; {
		link := parents[node]
		reversed = append(reversed, link.dir)
		node = link.prev
	}

	dirs := make([]Direction, len(reversed))
	for i := range reversed {
		dirs[i] = reversed[len(reversed)-1-i]
	}
	return Solution{Directions: dirs, Length: len(dirs), Stars: stars}
}

// Winnable reports whether some program within the command cap wins
func Winnable(level *Level, opts ...SimOption) bool {
	_, ok := Solve(level, opts...)
	return ok
}
