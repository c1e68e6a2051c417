package world

import "fmt"

// Grid is a bounded 2-D lattice with wraparound on both axes.
// Each cell holds an ordered list of occupant ids; multiple occupants per cell
// are allowed. The grid stores membership only and never touches agent state:
// keeping an agent's recorded position in sync with its cell is the caller's job.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	cells [][]AgentID // row-major: cells[y*Width+x]
}

// NewGrid creates an empty grid. Width and height must be positive.
func NewGrid(width, height int) *Grid {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("world: invalid grid size %dx%d", width, height))
	}
	return &Grid{
		Width:  width,
		Height: height,
		cells:  make([][]AgentID, width*height),
	}
}

// Wrap maps any coordinate onto the torus.
func (g *Grid) Wrap(p Position) Position {
	x := p.X % g.Width
	if x < 0 {
		x += g.Width
	}
	y := p.Y % g.Height
	if y < 0 {
		y += g.Height
	}
	return Position{X: x, Y: y}
}

// InBounds reports whether p is already a canonical (wrapped) coordinate.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

func (g *Grid) index(p Position) int {
	p = g.Wrap(p)
	return p.Y*g.Width + p.X
}

// Neighborhood returns the Moore neighborhood of p at the given radius,
// wrapped at the edges. Cells are enumerated with dx as the outer loop and
// dy as the inner loop, both from -radius to +radius. On grids smaller than
// the neighborhood a wrapped cell can be reached twice; it is listed once,
// and the center is never re-admitted through wrapping when excluded.
func (g *Grid) Neighborhood(p Position, radius int, includeCenter bool) []Position {
	center := g.Wrap(p)
	side := 2*radius + 1
	out := make([]Position, 0, side*side)
	seen := make(map[Position]struct{}, side*side)
	if !includeCenter {
		seen[center] = struct{}{}
	}
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx == 0 && dy == 0 && !includeCenter {
				continue
			}
			c := g.Wrap(Position{X: center.X + dx, Y: center.Y + dy})
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Occupants returns a copy of the ids in cell p, in placement order.
func (g *Grid) Occupants(p Position) []AgentID {
	cell := g.cells[g.index(p)]
	if len(cell) == 0 {
		return nil
	}
	out := make([]AgentID, len(cell))
	copy(out, cell)
	return out
}

// Count returns how many ids occupy cell p.
func (g *Grid) Count(p Position) int {
	return len(g.cells[g.index(p)])
}

// Contains reports whether id is a member of cell p.
func (g *Grid) Contains(id AgentID, p Position) bool {
	for _, o := range g.cells[g.index(p)] {
		if o == id {
			return true
		}
	}
	return false
}

// Place adds id to cell p.
func (g *Grid) Place(id AgentID, p Position) {
	i := g.index(p)
	g.cells[i] = append(g.cells[i], id)
}

// Move removes id from `from` and adds it to `to`. No-op when they are the same cell.
// Returns false if id was not found in `from`.
func (g *Grid) Move(id AgentID, from, to Position) bool {
	if g.index(from) == g.index(to) {
		return g.Contains(id, from)
	}
	if !g.Remove(id, from) {
		return false
	}
	g.Place(id, to)
	return true
}

// Remove deletes id from cell p, preserving the order of the other occupants.
// Returns false if id was not in the cell.
func (g *Grid) Remove(id AgentID, p Position) bool {
	i := g.index(p)
	cell := g.cells[i]
	for k, o := range cell {
		if o == id {
			g.cells[i] = append(cell[:k], cell[k+1:]...)
			return true
		}
	}
	return false
}

// Cells calls fn for every cell in enumeration order (x outer, y inner).
func (g *Grid) Cells(fn func(p Position, occupants []AgentID)) {
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			p := Position{X: x, Y: y}
			fn(p, g.cells[p.Y*g.Width+p.X])
		}
	}
}

// CellIndex returns the enumeration rank of p (x outer, y inner).
// Lower ranks are "encountered first" in tie-breaks.
func (g *Grid) CellIndex(p Position) int {
	p = g.Wrap(p)
	return p.X*g.Height + p.Y
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d)", g.Width, g.Height)
}
