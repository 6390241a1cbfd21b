package chunk

// LayerKind tags which storage variant a Layer holds.
type LayerKind uint8

const (
	// Uniform stores one ID for all cells of the slice.
	Uniform LayerKind = iota
	// Explicit stores one ID per (x,z) cell.
	Explicit
)

func (k LayerKind) String() string {
	switch k {
	case Uniform:
		return "uniform"
	case Explicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// LayerArea is the number of cells in one Y slice.
const LayerArea = Size * Size

// Layer is one horizontal Y slice of a chunk.
//
// The zero value is a Uniform layer of air. cells is only non-nil for Explicit layers.
type Layer struct {
	kind  LayerKind
	id    uint8
	cells *[LayerArea]uint8
}

// Kind returns the storage variant.
func (l *Layer) Kind() LayerKind {
	return l.kind
}

// UniformID returns the layer's single ID. ok is false for Explicit layers.
func (l *Layer) UniformID() (id uint8, ok bool) {
	if l.kind != Uniform {
		return 0, false
	}
	return l.id, true
}

func cellIndex(x, z int) int {
	return z*Size + x
}

func (l *Layer) get(x, z int) uint8 {
	if l.kind == Uniform {
		return l.id
	}
	return l.cells[cellIndex(x, z)]
}

func (l *Layer) set(x, z int, id uint8) {
	if l.kind == Uniform {
		if id == l.id {
			return
		}
		l.expand()
	}
	l.cells[cellIndex(x, z)] = id
}

// expand converts a Uniform layer to Explicit, filling every cell with the old ID.
func (l *Layer) expand() {
	cells := new([LayerArea]uint8)
	if l.id != 0 {
		for i := range cells {
			cells[i] = l.id
		}
	}
	l.cells = cells
	l.kind = Explicit
}

// compact collapses an Explicit layer whose cells all match back to Uniform.
func (l *Layer) compact() bool {
	if l.kind != Explicit {
		return false
	}
	first := l.cells[0]
	for _, v := range l.cells[1:] {
		if v != first {
			return false
		}
	}
	l.kind = Uniform
	l.id = first
	l.cells = nil
	return true
}

func (l *Layer) clone() Layer {
	out := Layer{kind: l.kind, id: l.id}
	if l.cells != nil {
		cells := *l.cells
		out.cells = &cells
	}
	return out
}
