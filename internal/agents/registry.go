package agents

import (
	"fmt"

	"github.com/talgya/warzone/internal/world"
)

// IntegrityViolation reports that an agent's recorded position and its grid
// membership disagree. It never surfaces in correct operation.
type IntegrityViolation struct {
	AgentID AgentID
	Reason  string
}

func (e *IntegrityViolation) Error() string {
	return fmt.Sprintf("integrity violation: agent %d: %s", e.AgentID, e.Reason)
}

// Registry owns the live agents and their grid membership. Every placement,
// move and removal goes through it so that Agent.Pos and the grid cell that
// lists the agent always change together.
type Registry struct {
	grid   *world.Grid
	agents map[AgentID]*Agent
	order  []AgentID // creation order; may hold removed ids until compacted
	dead   int       // removed ids still present in order
	counts [NumKinds]int
	hazard map[world.Position]AgentID
	nextID AgentID
}

// NewRegistry creates an empty registry over the given grid.
func NewRegistry(grid *world.Grid) *Registry {
	return &Registry{
		grid:   grid,
		agents: make(map[AgentID]*Agent),
		hazard: make(map[world.Position]AgentID),
		nextID: 1,
	}
}

// Grid returns the grid the registry places agents on.
func (r *Registry) Grid() *world.Grid {
	return r.grid
}

// Add creates an agent of the given kind at pos and places it on the grid.
func (r *Registry) Add(kind Kind, pos world.Position) *Agent {
	pos = r.grid.Wrap(pos)
	a := &Agent{ID: r.nextID, Kind: kind, Pos: pos}
	r.nextID++

	r.agents[a.ID] = a
	r.order = append(r.order, a.ID)
	r.counts[kind]++
	r.grid.Place(a.ID, pos)
	if kind == KindHazard {
		r.hazard[pos] = a.ID
	}
	return a
}

// AddHazard marks pos as hazardous. Returns false if the cell already holds a marker.
func (r *Registry) AddHazard(pos world.Position) (*Agent, bool) {
	pos = r.grid.Wrap(pos)
	if id, ok := r.hazard[pos]; ok {
		return r.agents[id], false
	}
	return r.Add(KindHazard, pos), true
}

// Get returns a live agent by id.
func (r *Registry) Get(id AgentID) (*Agent, bool) {
	a, ok := r.agents[id]
	return a, ok
}

// Alive reports whether id refers to a live agent.
func (r *Registry) Alive(id AgentID) bool {
	_, ok := r.agents[id]
	return ok
}

// Move relocates a to the (wrapped) cell `to`, updating both the grid and a.Pos.
func (r *Registry) Move(a *Agent, to world.Position) {
	if a.Kind == KindHazard {
		panic(&IntegrityViolation{AgentID: a.ID, Reason: "hazard markers never move"})
	}
	to = r.grid.Wrap(to)
	if !r.grid.Move(a.ID, a.Pos, to) {
		panic(&IntegrityViolation{AgentID: a.ID, Reason: "not found in grid cell " + a.Pos.String()})
	}
	a.Pos = to
}

// Remove deletes a live agent from the registry and its grid cell.
// Hazard markers are permanent and cannot be removed.
func (r *Registry) Remove(id AgentID) *Agent {
	a, ok := r.agents[id]
	if !ok {
		return nil
	}
	if a.Kind == KindHazard {
		panic(&IntegrityViolation{AgentID: id, Reason: "hazard markers are permanent"})
	}
	if !r.grid.Remove(id, a.Pos) {
		panic(&IntegrityViolation{AgentID: id, Reason: "not found in grid cell " + a.Pos.String()})
	}
	delete(r.agents, id)
	r.counts[a.Kind]--
	r.dead++
	if r.dead > len(r.order)/2 {
		r.compact()
	}
	return a
}

func (r *Registry) compact() {
	live := r.order[:0]
	for _, id := range r.order {
		if _, ok := r.agents[id]; ok {
			live = append(live, id)
		}
	}
	r.order = live
	r.dead = 0
}

// IDs returns a snapshot of live agent ids in creation order.
func (r *Registry) IDs() []AgentID {
	out := make([]AgentID, 0, len(r.agents))
	for _, id := range r.order {
		if _, ok := r.agents[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Each calls fn for every live agent of the given kind, in creation order.
func (r *Registry) Each(kind Kind, fn func(a *Agent)) {
	for _, id := range r.order {
		if a, ok := r.agents[id]; ok && a.Kind == kind {
			fn(a)
		}
	}
}

// Len returns the number of live agents of every kind, hazards included.
func (r *Registry) Len() int {
	return len(r.agents)
}

// Counts returns live agents per kind.
func (r *Registry) Counts() Counts {
	return Counts{
		Civilians:  r.counts[KindCivilian],
		Military:   r.counts[KindMilitary],
		Insurgents: r.counts[KindInsurgent],
		Hazards:    r.counts[KindHazard],
	}
}

// IsHazard reports whether pos holds a hazard marker.
func (r *Registry) IsHazard(pos world.Position) bool {
	_, ok := r.hazard[r.grid.Wrap(pos)]
	return ok
}

// CountAt returns the number of agents of the given kind in cell pos.
func (r *Registry) CountAt(pos world.Position, kind Kind) int {
	n := 0
	for _, id := range r.grid.Occupants(pos) {
		if a, ok := r.agents[id]; ok && a.Kind == kind {
			n++
		}
	}
	return n
}

// At returns the live agents in cell pos, in placement order.
func (r *Registry) At(pos world.Position) []*Agent {
	ids := r.grid.Occupants(pos)
	out := make([]*Agent, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.agents[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// CountAround sums agents of the given kinds across the Moore ring of radius
// around pos, center excluded.
func (r *Registry) CountAround(pos world.Position, radius int, kinds ...Kind) int {
	n := 0
	for _, cell := range r.grid.Neighborhood(pos, radius, false) {
		for _, k := range kinds {
			n += r.CountAt(cell, k)
		}
	}
	return n
}

// Verify checks that every live agent is listed in its recorded cell and that
// every grid occupant is a live agent recorded in that cell. It returns the
// first violation found, or nil.
func (r *Registry) Verify() error {
	for _, id := range r.IDs() {
		a := r.agents[id]
		if !r.grid.InBounds(a.Pos) {
			return &IntegrityViolation{AgentID: id, Reason: "position out of bounds " + a.Pos.String()}
		}
		if !r.grid.Contains(id, a.Pos) {
			return &IntegrityViolation{AgentID: id, Reason: "missing from grid cell " + a.Pos.String()}
		}
	}
	var err error
	seen := 0
	r.grid.Cells(func(p world.Position, occupants []AgentID) {
		for _, id := range occupants {
			if err != nil {
				return
			}
			seen++
			a, ok := r.agents[id]
			if !ok {
				err = &IntegrityViolation{AgentID: id, Reason: "in grid cell " + p.String() + " but not registered"}
				return
			}
			if a.Pos != p {
				err = &IntegrityViolation{AgentID: id, Reason: "listed in " + p.String() + " but recorded at " + a.Pos.String()}
			}
		}
	})
	if err != nil {
		return err
	}
	if seen != len(r.agents) {
		return &IntegrityViolation{Reason: fmt.Sprintf("grid lists %d occupants, registry holds %d agents", seen, len(r.agents))}
	}
	return nil
}
