// Package agents provides the kind-tagged agent model, the live-agent registry,
// the initial spawner, and the per-kind movement and targeting policies.
package agents

import (
	"github.com/talgya/warzone/internal/world"
)

// AgentID is a unique identifier for an agent. Ids are never reused within a run.
type AgentID = world.AgentID

// Kind tags which population an agent belongs to.
type Kind uint8

const (
	KindCivilian  Kind = iota
	KindMilitary
	KindInsurgent
	KindHazard // Permanent terrain marker left by a crowd-crush
)

// NumKinds is the number of agent kinds.
const NumKinds = 4

// Populations lists the three kinds whose extinction ends a run.
var Populations = [3]Kind{KindCivilian, KindMilitary, KindInsurgent}

var kindNames = [NumKinds]string{"civilian", "military", "insurgent", "hazard"}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Agent is a single occupant of the grid. Kind selects which payload is meaningful.
type Agent struct {
	ID   AgentID        `json:"id"`
	Kind Kind           `json:"kind"`
	Pos  world.Position `json:"pos"`

	Civilian  CivilianState  `json:"civilian"`
	Military  MilitaryState  `json:"military"`
	Insurgent InsurgentState `json:"insurgent"`
}

// CivilianState is the civilian payload.
type CivilianState struct {
	Goal   world.Position `json:"goal"`
	Morale int            `json:"morale"` // 0–10, informational only
}

// MilitaryState is the military payload.
type MilitaryState struct {
	// Group is the set of nearby allies, recomputed every tick. Informational:
	// it never gates movement.
	Group []AgentID `json:"group,omitempty"`
}

// InsurgentState is the insurgent payload.
type InsurgentState struct {
	Target *world.Position `json:"target,omitempty"`
}

// Counts holds live agents per kind.
type Counts struct {
	Civilians  int `json:"civilians"`
	Military   int `json:"military"`
	Insurgents int `json:"insurgents"`
	Hazards    int `json:"hazards"`
}

// Of returns the count for a kind.
func (c Counts) Of(k Kind) int {
	switch k {
	case KindCivilian:
		return c.Civilians
	case KindMilitary:
		return c.Military
	case KindInsurgent:
		return c.Insurgents
	case KindHazard:
		return c.Hazards
	}
	return 0
}

// AnyExtinct reports whether one of the three populations has no live agents.
func (c Counts) AnyExtinct() bool {
	return c.Civilians == 0 || c.Military == 0 || c.Insurgents == 0
}
