package engine

import (
	"fmt"

	"github.com/talgya/warzone/internal/agents"
	"github.com/talgya/warzone/internal/world"
)

// Rules holds the removal and targeting thresholds.
type Rules struct {
	EncircleThreshold int `json:"encircle_threshold" yaml:"encircle_threshold"` // soldiers in the 8-cell ring that neutralize an insurgent
	CrushThreshold    int `json:"crush_threshold" yaml:"crush_threshold"`       // crowd-crush fires when the 24-cell ring holds more than this
	GuardLimit        int `json:"guard_limit" yaml:"guard_limit"`               // soldiers that make a cell an invalid target
}

// DefaultRules returns the standard thresholds (4, 14, 4).
func DefaultRules() Rules {
	return Rules{
		EncircleThreshold: 4,
		CrushThreshold:    14,
		GuardLimit:        agents.DefaultGuardLimit,
	}
}

// Placement puts one agent at an exact cell at initialization.
type Placement struct {
	Kind agents.Kind    `json:"kind"`
	Pos  world.Position `json:"pos"`
}

// Params are the initialization inputs of a run.
type Params struct {
	Width      int   `json:"width"`
	Height     int   `json:"height"`
	Civilians  int   `json:"civilians"`
	Military   int   `json:"military"`
	Insurgents int   `json:"insurgents"`
	Seed       int64 `json:"seed"`

	// CrowdedAreas are the civilian goals. Nil means the classic layout
	// scaled to the grid.
	CrowdedAreas []world.Position `json:"crowded_areas"`

	// Rules zero value means DefaultRules.
	Rules Rules `json:"rules"`

	// Layout, when non-empty, replaces random placement: exactly these agents
	// are created, in order, and the population counts are taken from it.
	Layout []Placement `json:"layout,omitempty"`
}

// Validate checks the parameters and returns a *ConfigError for the first problem.
func (p Params) Validate() error {
	if p.Width < 1 {
		return &ConfigError{Field: "width", Reason: fmt.Sprintf("must be positive, got %d", p.Width)}
	}
	if p.Height < 1 {
		return &ConfigError{Field: "height", Reason: fmt.Sprintf("must be positive, got %d", p.Height)}
	}
	for _, c := range []struct {
		field string
		n     int
	}{
		{"civilians", p.Civilians},
		{"military", p.Military},
		{"insurgents", p.Insurgents},
	} {
		if c.n < 0 {
			return &ConfigError{Field: c.field, Reason: fmt.Sprintf("must not be negative, got %d", c.n)}
		}
	}
	for i, a := range p.CrowdedAreas {
		if a.X < 0 || a.X >= p.Width || a.Y < 0 || a.Y >= p.Height {
			return &ConfigError{Field: fmt.Sprintf("crowded_areas[%d]", i), Reason: "outside the grid " + a.String()}
		}
	}
	if p.CrowdedAreas != nil && len(p.CrowdedAreas) == 0 {
		return &ConfigError{Field: "crowded_areas", Reason: "must not be empty"}
	}
	if p.Rules != (Rules{}) {
		if p.Rules.EncircleThreshold < 1 {
			return &ConfigError{Field: "rules.encircle_threshold", Reason: "must be at least 1"}
		}
		if p.Rules.CrushThreshold < 0 {
			return &ConfigError{Field: "rules.crush_threshold", Reason: "must not be negative"}
		}
		if p.Rules.GuardLimit < 1 {
			return &ConfigError{Field: "rules.guard_limit", Reason: "must be at least 1"}
		}
	}
	for i, pl := range p.Layout {
		field := fmt.Sprintf("layout[%d]", i)
		switch pl.Kind {
		case agents.KindCivilian, agents.KindMilitary, agents.KindInsurgent:
		default:
			return &ConfigError{Field: field, Reason: "kind must be civilian, military or insurgent"}
		}
		if pl.Pos.X < 0 || pl.Pos.X >= p.Width || pl.Pos.Y < 0 || pl.Pos.Y >= p.Height {
			return &ConfigError{Field: field, Reason: "outside the grid " + pl.Pos.String()}
		}
	}
	return nil
}

func (p Params) withDefaults() Params {
	if p.CrowdedAreas == nil {
		p.CrowdedAreas = world.DefaultCrowdedAreas(p.Width, p.Height)
	}
	if p.Rules == (Rules{}) {
		p.Rules = DefaultRules()
	}
	if len(p.Layout) > 0 {
		p.Civilians, p.Military, p.Insurgents = 0, 0, 0
		for _, pl := range p.Layout {
			switch pl.Kind {
			case agents.KindCivilian:
				p.Civilians++
			case agents.KindMilitary:
				p.Military++
			case agents.KindInsurgent:
				p.Insurgents++
			}
		}
	}
	return p
}
