package agents

import (
	"testing"

	"github.com/talgya/warzone/internal/world"
)

func TestAllocateTargetPicksNearestCivilianCell(t *testing.T) {
	reg := newTestRegistry(20, 20)
	ins := reg.Add(KindInsurgent, pos(5, 5))
	reg.Add(KindCivilian, pos(12, 12))
	reg.Add(KindCivilian, pos(7, 6))

	target := AllocateTarget(ins, reg, DefaultGuardLimit)
	if target == nil || *target != pos(7, 6) {
		t.Fatalf("target = %v, want (7,6)", target)
	}
	if ins.Insurgent.Target == nil || *ins.Insurgent.Target != pos(7, 6) {
		t.Fatal("target not recorded on the agent")
	}
}

func TestAllocateTargetTieGoesToFirstEnumerated(t *testing.T) {
	reg := newTestRegistry(20, 20)
	ins := reg.Add(KindInsurgent, pos(5, 5))
	reg.Add(KindCivilian, pos(7, 5)) // distance 2, x=7
	reg.Add(KindCivilian, pos(5, 7)) // distance 2, x=5 → enumerated first
	reg.Add(KindCivilian, pos(4, 6)) // distance 2, x=4 → enumerated before both

	target := AllocateTarget(ins, reg, DefaultGuardLimit)
	if target == nil || *target != pos(4, 6) {
		t.Fatalf("target = %v, want (4,6)", target)
	}
}

func TestAllocateTargetSkipsGuardedCells(t *testing.T) {
	reg := newTestRegistry(20, 20)
	ins := reg.Add(KindInsurgent, pos(5, 5))
	reg.Add(KindCivilian, pos(6, 6))
	for i := 0; i < 4; i++ {
		reg.Add(KindMilitary, pos(6, 6))
	}
	reg.Add(KindCivilian, pos(10, 10))
	reg.Add(KindMilitary, pos(10, 10))
	reg.Add(KindMilitary, pos(10, 10))
	reg.Add(KindMilitary, pos(10, 10))

	target := AllocateTarget(ins, reg, DefaultGuardLimit)
	if target == nil || *target != pos(10, 10) {
		t.Fatalf("target = %v, want (10,10): 3 guards are fewer than 4", target)
	}
}

func TestAllocateTargetExcludesOtherClaims(t *testing.T) {
	reg := newTestRegistry(20, 20)
	a := reg.Add(KindInsurgent, pos(5, 5))
	b := reg.Add(KindInsurgent, pos(5, 6))
	reg.Add(KindCivilian, pos(6, 6))
	reg.Add(KindCivilian, pos(15, 15))

	ta := AllocateTarget(a, reg, DefaultGuardLimit)
	tb := AllocateTarget(b, reg, DefaultGuardLimit)
	if ta == nil || tb == nil {
		t.Fatal("both insurgents should find a target")
	}
	if *ta == *tb {
		t.Fatalf("both insurgents claimed %v", *ta)
	}
	if *tb != pos(15, 15) {
		t.Fatalf("second claimant target = %v, want (15,15)", *tb)
	}
	if dups := DuplicateClaims(reg); len(dups) != 0 {
		t.Fatalf("duplicate claims: %v", dups)
	}
}

func TestAllocateTargetNoCandidateClearsTarget(t *testing.T) {
	reg := newTestRegistry(10, 10)
	a := reg.Add(KindInsurgent, pos(1, 1))
	b := reg.Add(KindInsurgent, pos(2, 2))
	reg.Add(KindCivilian, pos(3, 3))

	AllocateTarget(a, reg, DefaultGuardLimit)
	if got := AllocateTarget(b, reg, DefaultGuardLimit); got != nil {
		t.Fatalf("second insurgent got %v, want nil: only cell is claimed", got)
	}
	if b.Insurgent.Target != nil {
		t.Fatal("target should be cleared")
	}
}

func TestAllocateTargetReclaimsOwnCell(t *testing.T) {
	reg := newTestRegistry(10, 10)
	a := reg.Add(KindInsurgent, pos(1, 1))
	reg.Add(KindCivilian, pos(3, 3))
	first := AllocateTarget(a, reg, DefaultGuardLimit)
	second := AllocateTarget(a, reg, DefaultGuardLimit)
	if first == nil || second == nil || *first != *second {
		t.Fatalf("insurgent should keep its own claim across re-evaluation: %v then %v", first, second)
	}
}

func TestDuplicateClaimsDetectsConflict(t *testing.T) {
	reg := newTestRegistry(10, 10)
	a := reg.Add(KindInsurgent, pos(1, 1))
	b := reg.Add(KindInsurgent, pos(2, 2))
	cell := world.Position{X: 3, Y: 3}
	a.Insurgent.Target = &cell
	other := cell
	b.Insurgent.Target = &other

	if dups := DuplicateClaims(reg); len(dups) != 1 || dups[0] != cell {
		t.Fatalf("dups = %v, want [%v]", dups, cell)
	}
}
