// Movement policies. Each tick an agent picks at most one cell to step into.
// Policies only decide; the engine applies the move through the Registry.
package agents

import (
	"math/rand"

	"github.com/talgya/warzone/internal/world"
)

const (
	GroupRadius  = 2 // Chebyshev radius for military group membership
	MinGroupSize = 4 // below this the soldier counts itself in its group
)

// CivilianStep walks a civilian between crowded areas.
// On reaching its goal it draws a new one (excluding the one just reached)
// and stays put for the tick; otherwise it takes one greedy step toward the
// goal, sidestepping hazard cells.
func CivilianStep(a *Agent, reg *Registry, areas []world.Position, rng *rand.Rand) (world.Position, bool) {
	if a.Pos == a.Civilian.Goal {
		a.Civilian.Goal = nextGoal(a.Civilian.Goal, areas, rng)
		return a.Pos, false
	}
	grid := reg.Grid()
	next := grid.Wrap(world.StepToward(a.Pos, a.Civilian.Goal))
	return avoidHazard(reg, a.Pos, next)
}

func nextGoal(reached world.Position, areas []world.Position, rng *rand.Rand) world.Position {
	choices := make([]world.Position, 0, len(areas))
	for _, p := range areas {
		if p != reached {
			choices = append(choices, p)
		}
	}
	if len(choices) == 0 {
		return reached
	}
	return choices[rng.Intn(len(choices))]
}

// avoidHazard returns next unless it holds a hazard marker, in which case the
// first non-hazard cell among the other neighbors of from is taken. When every
// neighbor is hazardous the agent stays.
func avoidHazard(reg *Registry, from, next world.Position) (world.Position, bool) {
	if next == from {
		return from, false
	}
	if !reg.IsHazard(next) {
		return next, true
	}
	for _, c := range reg.Grid().Neighborhood(from, 1, false) {
		if c == next || reg.IsHazard(c) {
			continue
		}
		return c, true
	}
	return from, false
}

// MilitaryStep moves a soldier toward the densest civilian concentration.
// It first looks at its 8 neighbors; if none holds a civilian it heads for the
// globally densest civilian cell, one step at a time.
func MilitaryStep(a *Agent, reg *Registry) (world.Position, bool) {
	a.Military.Group = militaryGroup(a, reg)

	if target, ok := densestNeighbor(a, reg); ok {
		return target, true
	}

	goal, ok := densestCivilianCell(a.Pos, reg)
	if !ok || goal == a.Pos {
		return a.Pos, false
	}
	next := reg.Grid().Wrap(world.StepToward(a.Pos, goal))
	return avoidHazard(reg, a.Pos, next)
}

func militaryGroup(a *Agent, reg *Registry) []AgentID {
	var group []AgentID
	for _, cell := range reg.Grid().Neighborhood(a.Pos, GroupRadius, true) {
		for _, other := range reg.At(cell) {
			if other.Kind == KindMilitary && other.ID != a.ID {
				group = append(group, other.ID)
			}
		}
	}
	if len(group) < MinGroupSize {
		group = append(group, a.ID)
	}
	return group
}

func densestNeighbor(a *Agent, reg *Registry) (world.Position, bool) {
	best := 0
	var target world.Position
	for _, cell := range reg.Grid().Neighborhood(a.Pos, 1, false) {
		if reg.IsHazard(cell) {
			continue
		}
		if n := reg.CountAt(cell, KindCivilian); n > best {
			best = n
			target = cell
		}
	}
	return target, best > 0
}

// densestCivilianCell scans every live civilian and returns the cell with the
// most of them. Ties go to the cell nearest from (Manhattan), then to the
// first cell in grid enumeration order.
func densestCivilianCell(from world.Position, reg *Registry) (world.Position, bool) {
	counts := make(map[world.Position]int)
	reg.Each(KindCivilian, func(c *Agent) {
		counts[c.Pos]++
	})
	if len(counts) == 0 {
		return world.Position{}, false
	}

	grid := reg.Grid()
	var best world.Position
	bestN := 0
	for cell, n := range counts {
		switch {
		case n > bestN:
		case n < bestN:
			continue
		case closer(grid, from, cell, best):
		default:
			continue
		}
		best, bestN = cell, n
	}
	return best, true
}

// closer orders candidate cells by Manhattan distance to from, then by
// enumeration rank, so selection does not depend on map iteration order.
func closer(grid *world.Grid, from, a, b world.Position) bool {
	da, db := world.Manhattan(from, a), world.Manhattan(from, b)
	if da != db {
		return da < db
	}
	return grid.CellIndex(a) < grid.CellIndex(b)
}

// InsurgentStep refreshes the insurgent's claimed target and steps toward it.
// Insurgents do not avoid hazards.
func InsurgentStep(a *Agent, reg *Registry, guardLimit int) (world.Position, bool) {
	target := AllocateTarget(a, reg, guardLimit)
	if target == nil {
		return a.Pos, false
	}
	next := reg.Grid().Wrap(world.StepToward(a.Pos, *target))
	return next, next != a.Pos
}
