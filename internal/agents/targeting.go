package agents

import (
	"github.com/talgya/warzone/internal/world"
)

// DefaultGuardLimit is the military head-count at which a cell stops being a target.
const DefaultGuardLimit = 4

// AllocateTarget picks the insurgent's target cell for this tick and records it
// on the agent. Candidates are cells holding at least one civilian and fewer
// than guardLimit soldiers, minus cells currently claimed by any other live
// insurgent. The nearest candidate (Manhattan) wins; ties go to the first cell
// in grid enumeration order. With no candidate the target is cleared and nil
// is returned.
//
// Claims are checked against the latest state, so whichever contender
// activates first in a tick keeps a contested cell.
func AllocateTarget(a *Agent, reg *Registry, guardLimit int) *world.Position {
	a.Insurgent.Target = nil

	civilians := make(map[world.Position]int)
	reg.Each(KindCivilian, func(c *Agent) {
		civilians[c.Pos]++
	})
	military := make(map[world.Position]int)
	reg.Each(KindMilitary, func(m *Agent) {
		military[m.Pos]++
	})
	claimed := make(map[world.Position]bool)
	reg.Each(KindInsurgent, func(other *Agent) {
		if other.ID != a.ID && other.Insurgent.Target != nil {
			claimed[*other.Insurgent.Target] = true
		}
	})

	grid := reg.Grid()
	var best world.Position
	found := false
	for cell := range civilians {
		if military[cell] >= guardLimit || claimed[cell] {
			continue
		}
		if !found || closer(grid, a.Pos, cell, best) {
			best = cell
			found = true
		}
	}
	if !found {
		return nil
	}
	a.Insurgent.Target = &best
	return a.Insurgent.Target
}

// DuplicateClaims returns target cells claimed by more than one live insurgent.
// It is empty whenever the allocator's exclusion holds.
func DuplicateClaims(reg *Registry) []world.Position {
	seen := make(map[world.Position]int)
	var dups []world.Position
	reg.Each(KindInsurgent, func(a *Agent) {
		if a.Insurgent.Target == nil {
			return
		}
		t := *a.Insurgent.Target
		seen[t]++
		if seen[t] == 2 {
			dups = append(dups, t)
		}
	})
	return dups
}
