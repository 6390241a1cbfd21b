package chunk

import "fmt"

// Pos is a chunk coordinate in chunk units.
type Pos struct {
	X, Y, Z int32
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Origin returns the world-space block coordinate of local (0,0,0).
func (p Pos) Origin() (x, y, z int) {
	return int(p.X) * Size, int(p.Y) * Size, int(p.Z) * Size
}

// Add offsets the position by whole chunks.
func (p Pos) Add(dx, dy, dz int32) Pos {
	return Pos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Neighbor returns the adjacent chunk position in direction d.
func (p Pos) Neighbor(d Direction) Pos {
	o := d.Offset()
	return p.Add(int32(o[0]), int32(o[1]), int32(o[2]))
}

// DistanceSquared returns the squared distance between chunk positions, in chunks.
func (p Pos) DistanceSquared(o Pos) int64 {
	dx := int64(p.X - o.X)
	dy := int64(p.Y - o.Y)
	dz := int64(p.Z - o.Z)
	return dx*dx + dy*dy + dz*dz
}

// FromWorld returns the chunk containing a world block coordinate and the local
// coordinate inside it.
func FromWorld(x, y, z int) (Pos, [3]int) {
	cx, lx := floorDivMod(x)
	cy, ly := floorDivMod(y)
	cz, lz := floorDivMod(z)
	return Pos{X: int32(cx), Y: int32(cy), Z: int32(cz)}, [3]int{lx, ly, lz}
}

func floorDivMod(v int) (int, int) {
	q := v / Size
	r := v % Size
	if r < 0 {
		q--
		r += Size
	}
	return q, r
}

// Direction names one of the six axis-aligned neighbors.
type Direction uint8

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// Directions lists all six directions in index order.
var Directions = [6]Direction{PosX, NegX, PosY, NegY, PosZ, NegZ}

var directionOffsets = [6][3]int{
	PosX: {1, 0, 0},
	NegX: {-1, 0, 0},
	PosY: {0, 1, 0},
	NegY: {0, -1, 0},
	PosZ: {0, 0, 1},
	NegZ: {0, 0, -1},
}

// Offset returns the unit step for the direction.
func (d Direction) Offset() [3]int {
	return directionOffsets[d]
}

// Axis returns 0, 1 or 2 for X, Y or Z.
func (d Direction) Axis() int {
	return int(d) / 2
}

// Positive reports whether the direction points along the positive axis.
func (d Direction) Positive() bool {
	return d%2 == 0
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return d ^ 1
}

// Along returns the direction for an axis and sign.
func Along(axis int, positive bool) Direction {
	d := Direction(axis * 2)
	if !positive {
		d++
	}
	return d
}

func (d Direction) String() string {
	switch d {
	case PosX:
		return "+x"
	case NegX:
		return "-x"
	case PosY:
		return "+y"
	case NegY:
		return "-y"
	case PosZ:
		return "+z"
	case NegZ:
		return "-z"
	default:
		return "?"
	}
}
