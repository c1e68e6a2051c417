package world

import "testing"

func TestDefaultCrowdedAreasReferenceGridIsUnscaled(t *testing.T) {
	areas := DefaultCrowdedAreas(ReferenceSize, ReferenceSize)
	if len(areas) != len(classicAreas) {
		t.Fatalf("got %d areas, want %d", len(areas), len(classicAreas))
	}
	for i, a := range areas {
		if a != classicAreas[i] {
			t.Fatalf("area %d = %v, want %v", i, a, classicAreas[i])
		}
	}
}

func TestDefaultCrowdedAreasScaledInBounds(t *testing.T) {
	for _, size := range [][2]int{{20, 20}, {10, 10}, {1, 1}, {64, 12}} {
		g := NewGrid(size[0], size[1])
		areas := DefaultCrowdedAreas(size[0], size[1])
		if len(areas) == 0 {
			t.Fatalf("%dx%d: no areas", size[0], size[1])
		}
		seen := map[Position]bool{}
		for _, a := range areas {
			if !g.InBounds(a) {
				t.Fatalf("%dx%d: area %v out of bounds", size[0], size[1], a)
			}
			if seen[a] {
				t.Fatalf("%dx%d: duplicate area %v", size[0], size[1], a)
			}
			seen[a] = true
		}
	}
}

func TestNoiseCrowdedAreasDeterministic(t *testing.T) {
	cfg := DefaultNoiseConfig(42)
	a := NoiseCrowdedAreas(30, 30, cfg)
	b := NoiseCrowdedAreas(30, 30, cfg)
	if len(a) != cfg.Count {
		t.Fatalf("got %d areas, want %d", len(a), cfg.Count)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("area %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestNoiseCrowdedAreasSpacing(t *testing.T) {
	cfg := DefaultNoiseConfig(7)
	g := NewGrid(25, 40)
	areas := NoiseCrowdedAreas(25, 40, cfg)
	for i, a := range areas {
		if !g.InBounds(a) {
			t.Fatalf("area %v out of bounds", a)
		}
		for _, b := range areas[i+1:] {
			if Manhattan(a, b) < cfg.MinDist {
				t.Fatalf("areas %v and %v closer than %d", a, b, cfg.MinDist)
			}
		}
	}
}

func TestNoiseCrowdedAreasSmallGridReturnsFewer(t *testing.T) {
	cfg := DefaultNoiseConfig(1)
	cfg.MinDist = 100
	areas := NoiseCrowdedAreas(5, 5, cfg)
	if len(areas) != 1 {
		t.Fatalf("got %d areas, want 1 when spacing exceeds the grid", len(areas))
	}
}
