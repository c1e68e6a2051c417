package engine

import (
	"math/rand"

	"github.com/talgya/warzone/internal/agents"
)

// Scheduler activates every live agent once per tick in a fresh random order.
// It has no notion of the run being finished; the caller stops ticking.
type Scheduler struct {
	rng *rand.Rand
}

// NewScheduler creates a scheduler drawing permutations from rng.
func NewScheduler(rng *rand.Rand) *Scheduler {
	return &Scheduler{rng: rng}
}

// Order returns a uniformly random permutation of ids. The input is not modified.
func (s *Scheduler) Order(ids []agents.AgentID) []agents.AgentID {
	order := make([]agents.AgentID, len(ids))
	copy(order, ids)
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

// Run activates each id in order, skipping any that alive reports as gone.
// Removals made by an earlier activation are therefore honoured later in the
// same pass. Returns the number of activations performed.
func (s *Scheduler) Run(order []agents.AgentID, alive func(agents.AgentID) bool, activate func(agents.AgentID)) int {
	n := 0
	for _, id := range order {
		if !alive(id) {
			continue
		}
		activate(id)
		n++
	}
	return n
}
