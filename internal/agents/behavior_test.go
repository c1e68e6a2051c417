package agents

import (
	"math/rand"
	"testing"

	"github.com/talgya/warzone/internal/world"
)

func pos(x, y int) world.Position { return world.Position{X: x, Y: y} }

func TestCivilianStepsTowardGoal(t *testing.T) {
	reg := newTestRegistry(10, 10)
	c := reg.Add(KindCivilian, pos(2, 2))
	c.Civilian.Goal = pos(5, 0)

	to, ok := CivilianStep(c, reg, []world.Position{pos(5, 0)}, rand.New(rand.NewSource(1)))
	if !ok || to != pos(3, 1) {
		t.Fatalf("step = %v (moved=%v), want (3,1)", to, ok)
	}
}

func TestCivilianAtGoalPicksDifferentGoalAndStays(t *testing.T) {
	reg := newTestRegistry(10, 10)
	areas := []world.Position{pos(1, 1), pos(8, 8), pos(3, 7)}
	c := reg.Add(KindCivilian, pos(1, 1))
	c.Civilian.Goal = pos(1, 1)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 20; i++ {
		c.Civilian.Goal = pos(1, 1)
		to, ok := CivilianStep(c, reg, areas, rng)
		if ok || to != c.Pos {
			t.Fatalf("civilian should not move on the tick it reaches its goal")
		}
		if c.Civilian.Goal == pos(1, 1) {
			t.Fatalf("new goal must exclude the goal just reached")
		}
	}
}

func TestCivilianSingleAreaKeepsGoal(t *testing.T) {
	reg := newTestRegistry(10, 10)
	c := reg.Add(KindCivilian, pos(4, 4))
	c.Civilian.Goal = pos(4, 4)
	CivilianStep(c, reg, []world.Position{pos(4, 4)}, rand.New(rand.NewSource(1)))
	if c.Civilian.Goal != pos(4, 4) {
		t.Fatalf("goal = %v, want (4,4)", c.Civilian.Goal)
	}
}

func TestCivilianSidestepsHazard(t *testing.T) {
	reg := newTestRegistry(10, 10)
	c := reg.Add(KindCivilian, pos(5, 5))
	c.Civilian.Goal = pos(9, 5)
	reg.AddHazard(pos(6, 5))

	to, ok := CivilianStep(c, reg, nil, rand.New(rand.NewSource(1)))
	if !ok {
		t.Fatal("civilian should sidestep")
	}
	// First non-hazard neighbor in enumeration order (dx outer, dy inner).
	if to != pos(4, 4) {
		t.Fatalf("sidestep = %v, want (4,4)", to)
	}
	if reg.IsHazard(to) {
		t.Fatal("sidestepped into a hazard")
	}
}

func TestCivilianBoxedInByHazardsStays(t *testing.T) {
	reg := newTestRegistry(10, 10)
	c := reg.Add(KindCivilian, pos(5, 5))
	c.Civilian.Goal = pos(9, 9)
	for _, cell := range reg.Grid().Neighborhood(pos(5, 5), 1, false) {
		reg.AddHazard(cell)
	}
	to, ok := CivilianStep(c, reg, nil, rand.New(rand.NewSource(1)))
	if ok || to != pos(5, 5) {
		t.Fatalf("boxed-in civilian moved to %v", to)
	}
}

func TestMilitaryMovesToDensestNeighbor(t *testing.T) {
	reg := newTestRegistry(10, 10)
	m := reg.Add(KindMilitary, pos(5, 5))
	reg.Add(KindCivilian, pos(4, 6))
	reg.Add(KindCivilian, pos(6, 4))
	reg.Add(KindCivilian, pos(6, 4))

	to, ok := MilitaryStep(m, reg)
	if !ok || to != pos(6, 4) {
		t.Fatalf("military moved to %v (ok=%v), want (6,4)", to, ok)
	}
}

func TestMilitaryNeighborTieGoesToFirstEnumerated(t *testing.T) {
	reg := newTestRegistry(10, 10)
	m := reg.Add(KindMilitary, pos(5, 5))
	reg.Add(KindCivilian, pos(6, 6))
	reg.Add(KindCivilian, pos(4, 5))

	to, _ := MilitaryStep(m, reg)
	if to != pos(4, 5) {
		t.Fatalf("tie broken toward %v, want (4,5)", to)
	}
}

func TestMilitaryFallsBackToGlobalDensest(t *testing.T) {
	reg := newTestRegistry(20, 20)
	m := reg.Add(KindMilitary, pos(2, 2))
	reg.Add(KindCivilian, pos(15, 2))
	reg.Add(KindCivilian, pos(10, 10))
	reg.Add(KindCivilian, pos(10, 10))

	to, ok := MilitaryStep(m, reg)
	if !ok || to != pos(3, 3) {
		t.Fatalf("military stepped to %v, want (3,3) toward (10,10)", to)
	}
}

func TestMilitaryGlobalTieBrokenByDistance(t *testing.T) {
	reg := newTestRegistry(20, 20)
	m := reg.Add(KindMilitary, pos(2, 2))
	reg.Add(KindCivilian, pos(15, 15))
	reg.Add(KindCivilian, pos(2, 8))

	to, _ := MilitaryStep(m, reg)
	if to != pos(2, 3) {
		t.Fatalf("military stepped to %v, want (2,3) toward nearer (2,8)", to)
	}
}

func TestMilitaryWithoutCiviliansStays(t *testing.T) {
	reg := newTestRegistry(10, 10)
	m := reg.Add(KindMilitary, pos(5, 5))
	if _, ok := MilitaryStep(m, reg); ok {
		t.Fatal("military should stay when no civilians exist")
	}
}

func TestMilitaryGroupIncludesSelfWhenSmall(t *testing.T) {
	reg := newTestRegistry(10, 10)
	m := reg.Add(KindMilitary, pos(5, 5))
	ally := reg.Add(KindMilitary, pos(7, 7))
	reg.Add(KindMilitary, pos(8, 8)) // radius 3, outside

	MilitaryStep(m, reg)
	group := m.Military.Group
	if len(group) != 2 || group[0] != ally.ID || group[1] != m.ID {
		t.Fatalf("group = %v, want [%d %d]", group, ally.ID, m.ID)
	}
}

func TestMilitaryGroupLargeExcludesSelf(t *testing.T) {
	reg := newTestRegistry(10, 10)
	m := reg.Add(KindMilitary, pos(5, 5))
	for i := 0; i < 4; i++ {
		reg.Add(KindMilitary, pos(4+i%2, 6))
	}
	MilitaryStep(m, reg)
	for _, id := range m.Military.Group {
		if id == m.ID {
			t.Fatal("self should not be in a group of 4 or more allies")
		}
	}
	if len(m.Military.Group) != 4 {
		t.Fatalf("group size = %d, want 4", len(m.Military.Group))
	}
}

func TestInsurgentStepIgnoresHazards(t *testing.T) {
	reg := newTestRegistry(10, 10)
	ins := reg.Add(KindInsurgent, pos(5, 5))
	reg.Add(KindCivilian, pos(8, 5))
	reg.AddHazard(pos(6, 5))

	to, ok := InsurgentStep(ins, reg, DefaultGuardLimit)
	if !ok || to != pos(6, 5) {
		t.Fatalf("insurgent stepped to %v, want (6,5) through the hazard", to)
	}
}

func TestInsurgentWithoutTargetIdles(t *testing.T) {
	reg := newTestRegistry(10, 10)
	ins := reg.Add(KindInsurgent, pos(5, 5))
	if _, ok := InsurgentStep(ins, reg, DefaultGuardLimit); ok {
		t.Fatal("insurgent without candidates should idle")
	}
	if ins.Insurgent.Target != nil {
		t.Fatal("target should be nil")
	}
}
