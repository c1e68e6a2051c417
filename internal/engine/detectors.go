package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/warzone/internal/agents"
)

// checkEncirclement removes the insurgent when at least EncircleThreshold
// soldiers stand in the 8 cells around it. Returns true if it was removed.
func (s *Simulation) checkEncirclement(a *agents.Agent) bool {
	n := s.reg.CountAround(a.Pos, 1, agents.KindMilitary)
	if n < s.rules.EncircleThreshold {
		return false
	}
	s.reg.Remove(a.ID)
	s.casualties.Record(CauseEncirclement, agents.KindInsurgent)
	s.logEvent(CauseEncirclement.String(),
		fmt.Sprintf("insurgent %d neutralized at %s by %d soldiers", a.ID, a.Pos, n))
	slog.Debug("insurgent neutralized", "tick", s.tick, "id", a.ID, "pos", a.Pos.String(), "soldiers", n)
	return true
}

// checkCrowdCrush fires when the 24-cell ring around the insurgent holds more
// than CrushThreshold civilians and soldiers: every civilian and soldier in the
// 3×3 block centered on the insurgent is destroyed and each of the 9 cells
// becomes a permanent hazard. Returns true if the event fired.
func (s *Simulation) checkCrowdCrush(a *agents.Agent) bool {
	n := s.reg.CountAround(a.Pos, 2, agents.KindCivilian, agents.KindMilitary)
	if n <= s.rules.CrushThreshold {
		return false
	}

	killed := 0
	created := 0
	for _, cell := range s.grid.Neighborhood(a.Pos, 1, true) {
		for _, victim := range s.reg.At(cell) {
			if victim.Kind != agents.KindCivilian && victim.Kind != agents.KindMilitary {
				continue
			}
			s.reg.Remove(victim.ID)
			s.casualties.Record(CauseCrowdCrush, victim.Kind)
			killed++
		}
		if _, ok := s.reg.AddHazard(cell); ok {
			s.casualties.RecordHazard()
			created++
		}
	}

	s.logEvent(CauseCrowdCrush.String(),
		fmt.Sprintf("crowd crush near insurgent %d at %s: %d killed, %d hazard cells", a.ID, a.Pos, killed, created))
	slog.Debug("crowd crush", "tick", s.tick, "insurgent", a.ID, "pos", a.Pos.String(),
		"crowd", n, "killed", killed, "hazards", created)
	return true
}
