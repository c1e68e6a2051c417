package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/warzone/internal/agents"
	"github.com/talgya/warzone/internal/world"
)

// maxEvents bounds the event log; older entries are dropped.
const maxEvents = 1000

// Event is a notable occurrence in the run.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "encirclement", "crowd_crush", "terminated"
}

// Sample is the live population at the end of a tick.
type Sample struct {
	Tick       uint64 `json:"tick"`
	Civilians  int    `json:"civilians"`
	Military   int    `json:"military"`
	Insurgents int    `json:"insurgents"`
	Hazards    int    `json:"hazards"`
}

// CellView is the read-only content of one non-empty cell.
type CellView struct {
	Pos        world.Position `json:"pos"`
	Civilians  int            `json:"civilians"`
	Military   int            `json:"military"`
	Insurgents int            `json:"insurgents"`
	Hazard     bool           `json:"hazard"`
}

// behavior is one kind's activation in the behavior table.
type behavior func(s *Simulation, a *agents.Agent)

var behaviors = map[agents.Kind]behavior{
	agents.KindCivilian: func(s *Simulation, a *agents.Agent) {
		if to, ok := agents.CivilianStep(a, s.reg, s.areas, s.rng); ok {
			s.reg.Move(a, to)
		}
	},
	agents.KindMilitary: func(s *Simulation, a *agents.Agent) {
		if to, ok := agents.MilitaryStep(a, s.reg); ok {
			s.reg.Move(a, to)
		}
	},
	agents.KindInsurgent: (*Simulation).activateInsurgent,
	// Hazard markers are static.
}

// Simulation is one run of the war-zone model. It is not safe for concurrent
// use; callers observing it from other goroutines must serialize access.
type Simulation struct {
	grid  *world.Grid
	reg   *agents.Registry
	rng   *rand.Rand
	sched *Scheduler
	areas []world.Position
	rules Rules
	seed  int64

	tick       uint64
	running    bool
	initial    agents.Counts
	casualties CasualtyTracker
	report     *Report

	history []Sample
	events  []Event
}

// NewSimulation validates p, places the initial populations, and returns a
// running simulation at tick 0. A *ConfigError is returned for invalid input.
// If a population starts empty the run terminates immediately and its
// report is available at tick 0.
func NewSimulation(p Params) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.withDefaults()

	rng := rand.New(rand.NewSource(p.Seed))
	grid := world.NewGrid(p.Width, p.Height)
	s := &Simulation{
		grid:    grid,
		reg:     agents.NewRegistry(grid),
		rng:     rng,
		sched:   NewScheduler(rng),
		areas:   append([]world.Position(nil), p.CrowdedAreas...),
		rules:   p.Rules,
		seed:    p.Seed,
		running: true,
	}

	spawner := agents.NewSpawner(rng, s.areas)
	if len(p.Layout) > 0 {
		for _, pl := range p.Layout {
			spawner.SpawnAt(s.reg, pl.Kind, pl.Pos)
		}
	} else {
		spawner.SpawnPopulation(s.reg, agents.KindCivilian, p.Civilians)
		spawner.SpawnPopulation(s.reg, agents.KindMilitary, p.Military)
		spawner.SpawnPopulation(s.reg, agents.KindInsurgent, p.Insurgents)
	}

	s.initial = s.reg.Counts()
	s.recordSample()
	slog.Debug("simulation initialized",
		"grid", grid.String(),
		"seed", p.Seed,
		"civilians", s.initial.Civilians,
		"military", s.initial.Military,
		"insurgents", s.initial.Insurgents,
		"crowded_areas", len(s.areas),
	)
	s.checkTermination()
	return s, nil
}

// Advance runs one tick: every live agent is activated once in a freshly
// shuffled order. After a terminal tick, Advance does nothing.
// Returns the live counts after the tick.
func (s *Simulation) Advance() agents.Counts {
	if !s.running {
		return s.LiveCounts()
	}
	s.step(s.sched.Order(s.reg.IDs()))
	return s.LiveCounts()
}

// step runs one tick with a fixed activation order.
func (s *Simulation) step(order []agents.AgentID) {
	s.tick++
	s.sched.Run(order, s.reg.Alive, s.activate)
	s.recordSample()
	if len(s.events) > maxEvents {
		s.events = append([]Event(nil), s.events[len(s.events)-maxEvents:]...)
	}
	s.checkTermination()
}

func (s *Simulation) activate(id agents.AgentID) {
	a, ok := s.reg.Get(id)
	if !ok {
		return
	}
	if fn := behaviors[a.Kind]; fn != nil {
		fn(s, a)
	}
}

// activateInsurgent moves the insurgent toward its claimed target, then runs
// the encirclement and crowd-crush checks at its (possibly unchanged) cell.
func (s *Simulation) activateInsurgent(a *agents.Agent) {
	if to, ok := agents.InsurgentStep(a, s.reg, s.rules.GuardLimit); ok {
		s.reg.Move(a, to)
	}
	if s.checkEncirclement(a) {
		return
	}
	s.checkCrowdCrush(a)
}

func (s *Simulation) checkTermination() {
	if !s.running {
		return
	}
	final := s.reg.Counts()
	if !final.AnyExtinct() {
		return
	}
	r := GenerateReport(s.initial, final, s.tick, &s.casualties)
	s.report = &r
	s.running = false
	s.logEvent("terminated", fmt.Sprintf("run ended at tick %d", s.tick))
	slog.Info("run terminated",
		"tick", s.tick,
		"civilians", final.Civilians,
		"military", final.Military,
		"insurgents", final.Insurgents,
		"hazard_zones", r.HazardZones,
	)
}

func (s *Simulation) recordSample() {
	c := s.reg.Counts()
	s.history = append(s.history, Sample{
		Tick:       s.tick,
		Civilians:  c.Civilians,
		Military:   c.Military,
		Insurgents: c.Insurgents,
		Hazards:    c.Hazards,
	})
}

func (s *Simulation) logEvent(category, description string) {
	s.events = append(s.events, Event{Tick: s.tick, Description: description, Category: category})
}

// LiveCounts returns live agents per kind.
func (s *Simulation) LiveCounts() agents.Counts {
	return s.reg.Counts()
}

// Hazards returns the number of hazard markers on the grid.
func (s *Simulation) Hazards() int {
	return s.reg.Counts().Hazards
}

// InitialCounts returns the populations created at initialization.
func (s *Simulation) InitialCounts() agents.Counts {
	return s.initial
}

// Tick returns the number of ticks elapsed.
func (s *Simulation) Tick() uint64 {
	return s.tick
}

// Running reports whether further ticks will do anything.
func (s *Simulation) Running() bool {
	return s.running
}

// Report returns the end-of-run report once the run has terminated.
// Repeated calls return the identical value.
func (s *Simulation) Report() (Report, bool) {
	if s.report == nil {
		return Report{}, false
	}
	return *s.report, true
}

// Seed returns the random seed the run was created with.
func (s *Simulation) Seed() int64 {
	return s.seed
}

// Width returns the grid width.
func (s *Simulation) Width() int { return s.grid.Width }

// Height returns the grid height.
func (s *Simulation) Height() int { return s.grid.Height }

// CrowdedAreas returns a copy of the civilian goal cells.
func (s *Simulation) CrowdedAreas() []world.Position {
	return append([]world.Position(nil), s.areas...)
}

// Casualties returns removals of kind attributed to cause so far.
func (s *Simulation) Casualties(cause Cause, kind agents.Kind) int {
	return s.casualties.Count(cause, kind)
}

// History returns one population sample per tick, starting with tick 0.
func (s *Simulation) History() []Sample {
	return append([]Sample(nil), s.history...)
}

// Events returns the most recent events, oldest first.
func (s *Simulation) Events() []Event {
	return append([]Event(nil), s.events...)
}

// Agent returns a copy of a live agent.
func (s *Simulation) Agent(id agents.AgentID) (agents.Agent, bool) {
	a, ok := s.reg.Get(id)
	if !ok {
		return agents.Agent{}, false
	}
	return *a, true
}

// Agents returns copies of every live agent of kind, in creation order.
func (s *Simulation) Agents(kind agents.Kind) []agents.Agent {
	var out []agents.Agent
	s.reg.Each(kind, func(a *agents.Agent) {
		out = append(out, *a)
	})
	return out
}

// Snapshot lists every non-empty cell with per-kind counts, in grid
// enumeration order.
func (s *Simulation) Snapshot() []CellView {
	var cells []CellView
	s.grid.Cells(func(p world.Position, occupants []world.AgentID) {
		if len(occupants) == 0 {
			return
		}
		v := CellView{Pos: p}
		for _, a := range s.reg.At(p) {
			switch a.Kind {
			case agents.KindCivilian:
				v.Civilians++
			case agents.KindMilitary:
				v.Military++
			case agents.KindInsurgent:
				v.Insurgents++
			case agents.KindHazard:
				v.Hazard = true
			}
		}
		cells = append(cells, v)
	})
	return cells
}

// CheckIntegrity verifies the grid/registry bijection, coordinate bounds and
// the one-claimant-per-target rule. It returns an *IntegrityViolation on failure.
func (s *Simulation) CheckIntegrity() error {
	if err := s.reg.Verify(); err != nil {
		return err
	}
	if dups := agents.DuplicateClaims(s.reg); len(dups) > 0 {
		return &IntegrityViolation{Reason: fmt.Sprintf("target %s claimed by several insurgents", dups[0])}
	}
	return nil
}
