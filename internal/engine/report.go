// End-of-run report: pure derived statistics over initial and final counts.
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/warzone/internal/agents"
)

// Rate is an optional per-tick rate. Invalid when no ticks elapsed.
type Rate struct {
	Value float64
	Valid bool
}

// MarshalJSON encodes an invalid rate as null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or null.
func (r *Rate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Rate{}
		return nil
	}
	if err := json.Unmarshal(b, &r.Value); err != nil {
		return err
	}
	r.Valid = true
	return nil
}

func (r Rate) String() string {
	if !r.Valid {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", r.Value)
}

// NotApplicable is the text reported for a ratio whose divisor population is zero.
const NotApplicable = "not applicable"

// Ratio is a final-population ratio, not applicable when the divisor is zero.
type Ratio struct {
	Value float64
	Valid bool
}

func ratio(num, den int) Ratio {
	if den == 0 {
		return Ratio{}
	}
	return Ratio{Value: float64(num) / float64(den), Valid: true}
}

func (r Ratio) String() string {
	if !r.Valid {
		return NotApplicable
	}
	return fmt.Sprintf("%.2f", r.Value)
}

// MarshalJSON encodes a ratio as a number, or the string "not applicable".
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return json.Marshal(NotApplicable)
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or the "not applicable" string.
func (r *Ratio) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = Ratio{}
		return nil
	}
	if err := json.Unmarshal(b, &r.Value); err != nil {
		return err
	}
	r.Valid = true
	return nil
}

// PopulationReport summarizes one population over the run.
type PopulationReport struct {
	Initial       int  `json:"initial"`
	Final         int  `json:"final"`
	Casualties    int  `json:"casualties"`
	AttritionRate Rate `json:"attrition_rate"` // casualties per tick
}

// Ratios are the pairwise final-population ratios.
type Ratios struct {
	CiviliansToMilitary   Ratio `json:"civilians_to_military"`
	CiviliansToInsurgents Ratio `json:"civilians_to_insurgents"`
	MilitaryToInsurgents  Ratio `json:"military_to_insurgents"`
}

// Report is the structured end-of-run result. It is a comparable value.
type Report struct {
	Ticks uint64 `json:"ticks"`

	Civilians  PopulationReport `json:"civilians"`
	Military   PopulationReport `json:"military"`
	Insurgents PopulationReport `json:"insurgents"`

	TerroristsNeutralized int `json:"terrorists_neutralized"`
	MilitaryLosses        int `json:"military_losses"`
	CivilianCasualties    int `json:"civilian_casualties"`
	HazardZones           int `json:"hazard_zones"`

	// Removals per cause, all kinds combined.
	Encirclements int `json:"encirclements"`
	CrowdCrushed  int `json:"crowd_crushed"`

	Ratios Ratios `json:"ratios"`
}

// Population returns the per-kind section for one of the three populations.
func (r Report) Population(k agents.Kind) PopulationReport {
	switch k {
	case agents.KindCivilian:
		return r.Civilians
	case agents.KindMilitary:
		return r.Military
	case agents.KindInsurgent:
		return r.Insurgents
	}
	return PopulationReport{}
}

// GenerateReport derives the report from initial and final counts, the
// number of ticks elapsed, and the casualty tracker. It has no side effects.
func GenerateReport(initial, final agents.Counts, ticks uint64, tracker *CasualtyTracker) Report {
	pop := func(k agents.Kind) PopulationReport {
		p := PopulationReport{
			Initial: initial.Of(k),
			Final:   final.Of(k),
		}
		p.Casualties = p.Initial - p.Final
		if ticks > 0 {
			p.AttritionRate = Rate{Value: float64(p.Casualties) / float64(ticks), Valid: true}
		}
		return p
	}

	r := Report{
		Ticks:      ticks,
		Civilians:  pop(agents.KindCivilian),
		Military:   pop(agents.KindMilitary),
		Insurgents: pop(agents.KindInsurgent),
		Ratios: Ratios{
			CiviliansToMilitary:   ratio(final.Civilians, final.Military),
			CiviliansToInsurgents: ratio(final.Civilians, final.Insurgents),
			MilitaryToInsurgents:  ratio(final.Military, final.Insurgents),
		},
	}
	r.TerroristsNeutralized = r.Insurgents.Casualties
	r.MilitaryLosses = r.Military.Casualties
	r.CivilianCasualties = r.Civilians.Casualties
	if tracker != nil {
		r.HazardZones = tracker.Hazards()
		for _, k := range agents.Populations {
			r.Encirclements += tracker.Count(CauseEncirclement, k)
			r.CrowdCrushed += tracker.Count(CauseCrowdCrush, k)
		}
	}
	return r
}
