// Crowded areas: the fixed set of cells civilians travel between.
// Either the classic layout scaled to the grid, or peaks of a simplex
// population-density field.
package world

import (
	"math"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// ReferenceSize is the side of the square grid the classic layout was drawn for.
const ReferenceSize = 30

// classicAreas is the crowded-area layout on a 30×30 grid.
var classicAreas = []Position{
	{X: 2, Y: 2}, {X: 7, Y: 15}, {X: 15, Y: 7}, {X: 10, Y: 15},
	{X: 10, Y: 29}, {X: 27, Y: 25}, {X: 28, Y: 3}, {X: 2, Y: 28},
}

// DefaultCrowdedAreas returns the classic layout scaled onto a width×height grid.
// Cells that collapse onto each other after scaling are listed once.
func DefaultCrowdedAreas(width, height int) []Position {
	out := make([]Position, 0, len(classicAreas))
	seen := make(map[Position]bool, len(classicAreas))
	for _, a := range classicAreas {
		p := Position{X: a.X * width / ReferenceSize, Y: a.Y * height / ReferenceSize}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// NoiseConfig controls procedural crowded-area placement.
type NoiseConfig struct {
	Seed      int64
	Count     int     // Number of areas to place
	MinDist   int     // Minimum Manhattan distance between areas
	Frequency float64 // Base sampling frequency (cells → noise space)
	Octaves   int
}

// DefaultNoiseConfig returns settings that give a layout similar in spread
// to the classic one on a 30×30 grid.
func DefaultNoiseConfig(seed int64) NoiseConfig {
	return NoiseConfig{
		Seed:      seed,
		Count:     len(classicAreas),
		MinDist:   5,
		Frequency: 0.12,
		Octaves:   3,
	}
}

// NoiseCrowdedAreas samples a simplex density field over the grid and returns
// the densest cells, greedily spaced at least MinDist apart. The result is
// deterministic for a given seed and grid size. Fewer than Count cells are
// returned when the grid cannot fit them at the requested spacing.
func NoiseCrowdedAreas(width, height int, cfg NoiseConfig) []Position {
	if cfg.Count <= 0 {
		return nil
	}
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	noise := opensimplex.NewNormalized(cfg.Seed)

	type scored struct {
		pos     Position
		density float64
	}
	candidates := make([]scored, 0, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			d := densityAt(noise, x, y, width, height, cfg)
			candidates = append(candidates, scored{Position{X: x, Y: y}, d})
		}
	}

	// Stable so equal densities keep enumeration order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].density > candidates[j].density
	})

	var areas []Position
	for _, c := range candidates {
		if len(areas) >= cfg.Count {
			break
		}
		if tooClose(c.pos, areas, cfg.MinDist) {
			continue
		}
		areas = append(areas, c.pos)
	}
	return areas
}

// densityAt samples the field on a torus so that the left and right (and top
// and bottom) edges blend seamlessly, matching the grid's wraparound.
func densityAt(noise opensimplex.Noise, x, y, width, height int, cfg NoiseConfig) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	freq := cfg.Frequency

	tx := 2 * math.Pi * float64(x) / float64(width)
	ty := 2 * math.Pi * float64(y) / float64(height)
	rx := float64(width) / (2 * math.Pi)
	ry := float64(height) / (2 * math.Pi)

	for i := 0; i < cfg.Octaves; i++ {
		total += noise.Eval4(
			math.Cos(tx)*rx*freq, math.Sin(tx)*rx*freq,
			math.Cos(ty)*ry*freq, math.Sin(ty)*ry*freq,
		) * amplitude
		maxVal += amplitude
		amplitude *= 0.5
		freq *= 2
	}
	return total / maxVal
}

func tooClose(p Position, existing []Position, minDist int) bool {
	for _, e := range existing {
		if Manhattan(p, e) < minDist {
			return true
		}
	}
	return false
}
