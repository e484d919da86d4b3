package grid

const (
	DefaultHeight = 32
	DefaultWidth  = 32
)

// Cell addresses one arena location. X ranges over [0,Height), Y over [0,Width).
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) Add(d Cell) Cell { return Cell{X: c.X + d.X, Y: c.Y + d.Y} }

type Result int

const (
	Success Result = iota
	Conflict
	AlreadyEmpty
)

func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case Conflict:
		return "CONFLICT"
	case AlreadyEmpty:
		return "ALREADY_EMPTY"
	default:
		return "UNKNOWN"
	}
}

const (
	empty uint16 = 0
	taken uint16 = 1
)

// Grid is the occupancy table for a fixed-size arena.
// It is not safe for concurrent use; the owner serializes all access.
type Grid struct {
	height int
	width  int
	flags  []uint16
	count  int
}

func New(height, width int) *Grid {
	if height <= 0 {
		height = DefaultHeight
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return &Grid{
		height: height,
		width:  width,
		flags:  make([]uint16, height*width),
	}
}

func (g *Grid) Dims() (height, width int) { return g.height, g.width }

func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.height && c.Y >= 0 && c.Y < g.width
}

func (g *Grid) index(c Cell) int { return c.X*g.width + c.Y }

func (g *Grid) cellAt(idx int) Cell { return Cell{X: idx / g.width, Y: idx % g.width} }

// Occupy marks c Taken. A Taken cell yields Conflict and is left as is.
// Bounds are the caller's responsibility.
func (g *Grid) Occupy(c Cell) Result {
	i := g.index(c)
	if g.flags[i] == taken {
		return Conflict
	}
	g.flags[i] = taken
	g.count++
	return Success
}

// Vacate marks c Empty. An Empty cell yields AlreadyEmpty and is left as is.
func (g *Grid) Vacate(c Cell) Result {
	i := g.index(c)
	if g.flags[i] == empty {
		return AlreadyEmpty
	}
	g.flags[i] = empty
	g.count--
	return Success
}

func (g *Grid) IsTaken(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.flags[g.index(c)] == taken
}

func (g *Grid) TakenCount() int { return g.count }

// Cells returns every Taken cell in index order.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, 0, g.count)
	for i, f := range g.flags {
		if f == taken {
			out = append(out, g.cellAt(i))
		}
	}
	return out
}

// Flags returns a copy of the occupancy table in index order (0 empty, 1 taken).
func (g *Grid) Flags() []uint16 {
	out := make([]uint16, len(g.flags))
	copy(out, g.flags)
	return out
}

// LoadFlags replaces the occupancy table. It returns false, leaving the grid
// untouched, if the length does not match or a value is not 0/1.
func (g *Grid) LoadFlags(flags []uint16) bool {
	if len(flags) != len(g.flags) {
		return false
	}
	n := 0
	for _, f := range flags {
		switch f {
		case empty:
		case taken:
			n++
		default:
			return false
		}
	}
	copy(g.flags, flags)
	g.count = n
	return true
}

// Rebuild clears the grid and occupies each cell in order. It returns the
// cells that were out of bounds or already claimed by an earlier entry.
func (g *Grid) Rebuild(cells []Cell) (rejected []Cell) {
	for i := range g.flags {
		g.flags[i] = empty
	}
	g.count = 0
	for _, c := range cells {
		if !g.InBounds(c) || g.Occupy(c) != Success {
			rejected = append(rejected, c)
		}
	}
	return rejected
}
