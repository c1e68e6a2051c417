// Package world provides the toroidal square grid and spatial data structures.
// Positions use plain (x, y) cell coordinates with wraparound at the edges.
package world

import "fmt"

// AgentID is a unique identifier for an occupant of a grid cell.
// Declared here so the grid can store occupants without importing agents.
type AgentID uint64

// Position is a cell coordinate on the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the position as "(x,y)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns |dx| + |dy| between two positions.
// This is the distance metric for every target and cost comparison.
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Chebyshev returns max(|dx|, |dy|) between two positions, ignoring wraparound.
func Chebyshev(a, b Position) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// StepToward returns the cell one greedy step from `from` toward `to`.
// Each axis moves independently by -1, 0 or +1 to reduce the signed gap.
// The result is not wrapped; callers pass it through Grid.Wrap.
func StepToward(from, to Position) Position {
	return Position{X: from.X + sign(to.X-from.X), Y: from.Y + sign(to.Y-from.Y)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
