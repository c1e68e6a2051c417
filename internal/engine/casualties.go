package engine

import "github.com/talgya/warzone/internal/agents"

// Cause identifies what removed an agent.
type Cause uint8

const (
	CauseEncirclement Cause = iota // insurgent neutralized by surrounding soldiers
	CauseCrowdCrush                // civilians/soldiers destroyed near an insurgent
	numCauses
)

func (c Cause) String() string {
	switch c {
	case CauseEncirclement:
		return "encirclement"
	case CauseCrowdCrush:
		return "crowd_crush"
	}
	return "unknown"
}

// CasualtyTracker accumulates removals per cause and kind, and hazard markers created.
type CasualtyTracker struct {
	removed [numCauses][agents.NumKinds]int
	hazards int
}

// Record counts one removal.
func (t *CasualtyTracker) Record(cause Cause, kind agents.Kind) {
	t.removed[cause][kind]++
}

// RecordHazard counts one new hazard marker.
func (t *CasualtyTracker) RecordHazard() {
	t.hazards++
}

// Count returns removals of kind attributed to cause.
func (t *CasualtyTracker) Count(cause Cause, kind agents.Kind) int {
	return t.removed[cause][kind]
}

// Total returns removals of kind from every cause.
func (t *CasualtyTracker) Total(kind agents.Kind) int {
	n := 0
	for c := Cause(0); c < numCauses; c++ {
		n += t.removed[c][kind]
	}
	return n
}

// Hazards returns the number of hazard markers created.
func (t *CasualtyTracker) Hazards() int {
	return t.hazards
}
