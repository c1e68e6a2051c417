// Agent spawning: creates the initial populations at random cells.
package agents

import (
	"math/rand"

	"github.com/talgya/warzone/internal/world"
)

// Spawner creates agents in a registry using the run's random source.
type Spawner struct {
	rng   *rand.Rand
	areas []world.Position
}

// NewSpawner creates a spawner. areas is the crowded-area set civilians draw goals from.
func NewSpawner(rng *rand.Rand, areas []world.Position) *Spawner {
	return &Spawner{rng: rng, areas: areas}
}

// SpawnPopulation creates count agents of the given kind at uniformly random
// cells. Overlapping placements are allowed.
func (s *Spawner) SpawnPopulation(reg *Registry, kind Kind, count int) []*Agent {
	grid := reg.Grid()
	out := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		x := s.rng.Intn(grid.Width)
		y := s.rng.Intn(grid.Height)
		out = append(out, s.SpawnAt(reg, kind, world.Position{X: x, Y: y}))
	}
	return out
}

// SpawnAt creates one agent of the given kind at pos and fills its payload.
func (s *Spawner) SpawnAt(reg *Registry, kind Kind, pos world.Position) *Agent {
	a := reg.Add(kind, pos)
	if kind == KindCivilian {
		if len(s.areas) > 0 {
			a.Civilian.Goal = s.areas[s.rng.Intn(len(s.areas))]
		} else {
			a.Civilian.Goal = a.Pos
		}
		a.Civilian.Morale = s.rng.Intn(11)
	}
	return a
}
