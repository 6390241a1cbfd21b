// Package mesh turns chunks into packed quad vertex buffers with binary greedy
// meshing.
//
// Each axis keeps one 64-bit occupancy word per column: bits 1..32 are the chunk's
// cells along the axis, bit 0 and bit 33 are the facing cells of the neighbor chunks.
// Visible faces fall out of two shifts, are bucketed into per-block 32x32 bit planes
// and merged into rectangles a row at a time.
package mesh

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
)

const (
	size = chunk.Size
	area = size * size
)

var (
	// ErrInvalidLOD is returned for strides other than 1, 2, 4, 8, 16 or 32.
	ErrInvalidLOD = errors.New("mesh: level of detail must be a power of two in [1,32]")
	// ErrBlockID is returned when a chunk holds an ID the vertex format cannot address.
	ErrBlockID = errors.New("mesh: block id does not fit the vertex format")
)

// Neighbors holds the six adjacent chunks indexed by chunk.Direction. A nil entry is
// treated as empty, so faces toward it stay visible.
type Neighbors [6]*chunk.Chunk

// Mesh is the output of one Build.
type Mesh struct {
	Pos    chunk.Pos
	LOD    int
	Opaque []uint64
	Water  []uint64
	Quads  int
}

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool {
	return len(m.Opaque) == 0 && len(m.Water) == 0
}

// ValidLOD reports whether lod is a supported stride.
func ValidLOD(lod int) bool {
	return lod > 0 && lod <= size && lod&(lod-1) == 0
}

// Mesher holds the scratch buffers of a mesh build. It is not safe for concurrent
// use; the scheduler owns one per mesh goroutine.
type Mesher struct {
	ids   [chunk.Volume]block.ID
	solid [3][area]uint64
	water [area]uint64 // Y frame
	occ   [area]uint64 // Y frame, water or solid

	planes  [block.MaxMeshable][size][size]uint32
	present [block.MaxMeshable]uint32 // Bit d set when planes[id][d] is non-empty
}

// New allocates a mesher.
func New() *Mesher {
	return &Mesher{}
}

// Build meshes c against its neighbors. At lod > 1 the cell at each lod-aligned
// coordinate stands for the whole lod-sized block.
func (m *Mesher) Build(c *chunk.Chunk, nb Neighbors, lod int) (*Mesh, error) {
	if !ValidLOD(lod) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLOD, lod)
	}
	out := &Mesh{Pos: c.Pos(), LOD: lod}
	if c.IsEmpty() {
		return out, nil
	}

	if err := m.sample(c, lod); err != nil {
		return nil, err
	}
	m.inject(&nb, lod)

	for axis := 0; axis < 3; axis++ {
		for _, positive := range [2]bool{true, false} {
			face := chunk.Along(axis, positive)
			m.bucket(face)
			out.Opaque = m.merge(out.Opaque, face, &out.Quads)
		}
	}
	for _, face := range [2]chunk.Direction{chunk.PosY, chunk.NegY} {
		m.bucketWater(face)
		out.Water = m.merge(out.Water, face, &out.Quads)
	}
	return out, nil
}

func align(v, lod int) int {
	return v &^ (lod - 1)
}

func index(x, y, z int) int {
	return (y*size+z)*size + x
}

// toFrame maps a cell to (depth, row, column) for an axis. X: depth x, row y, column
// z. Y: depth y, row x, column z. Z: depth z, row x, column y.
func toFrame(axis, x, y, z int) (d, r, c int) {
	switch axis {
	case 0:
		return x, y, z
	case 1:
		return y, x, z
	default:
		return z, x, y
	}
}

func fromFrame(axis, d, r, c int) (x, y, z int) {
	switch axis {
	case 0:
		return d, r, c
	case 1:
		return r, d, c
	default:
		return r, c, d
	}
}

// sample fills the id grid and occupancy columns from the lod-aligned cells.
func (m *Mesher) sample(c *chunk.Chunk, lod int) error {
	m.solid = [3][area]uint64{}
	m.water = [area]uint64{}

	for y := 0; y < size; y++ {
		for z := 0; z < size; z++ {
			for x := 0; x < size; x++ {
				id := c.At(align(x, lod), align(y, lod), align(z, lod))
				if id >= block.MaxMeshable {
					return fmt.Errorf("%w: %d at (%d,%d,%d) in %s", ErrBlockID, id, x, y, z, c.Pos())
				}
				m.ids[index(x, y, z)] = id
				switch {
				case block.IsSolid(id):
					m.solid[0][y*size+z] |= 1 << (x + 1)
					m.solid[1][x*size+z] |= 1 << (y + 1)
					m.solid[2][x*size+y] |= 1 << (z + 1)
				case block.IsWater(id):
					m.water[x*size+z] |= 1 << (y + 1)
				}
			}
		}
	}
	for i := range m.occ {
		m.occ[i] = m.water[i] | m.solid[1][i]
	}
	return nil
}

// inject sets the boundary bits from each neighbor's facing layer.
func (m *Mesher) inject(nb *Neighbors, lod int) {
	far := align(size-1, lod)
	for axis := 0; axis < 3; axis++ {
		neg := nb[chunk.Along(axis, false)]
		pos := nb[chunk.Along(axis, true)]
		if neg == nil && pos == nil {
			continue
		}
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				i := r*size + c
				ar, ac := align(r, lod), align(c, lod)
				if neg != nil {
					id := neg.At(fromFrame(axis, far, ar, ac))
					m.boundary(axis, i, id, 0)
				}
				if pos != nil {
					id := pos.At(fromFrame(axis, 0, ar, ac))
					m.boundary(axis, i, id, size+1)
				}
			}
		}
	}
}

func (m *Mesher) boundary(axis, i int, id block.ID, bit int) {
	if block.IsSolid(id) {
		m.solid[axis][i] |= 1 << bit
	}
	if axis == 1 && (block.IsSolid(id) || block.IsWater(id)) {
		m.occ[i] |= 1 << bit
	}
}

// visible returns the depth bits of faces toward the positive or negative end.
// Shifting back by one drops bit 0 and truncation drops bit 33, so the injected
// boundary bits never show up as faces.
func visible(col, blocking uint64, positive bool) uint32 {
	var v uint64
	if positive {
		v = col &^ (blocking >> 1)
	} else {
		v = col &^ (blocking << 1)
	}
	return uint32(v >> 1)
}

// bucket distributes the visible opaque faces of one direction into block planes.
func (m *Mesher) bucket(face chunk.Direction) {
	axis := face.Axis()
	cols := &m.solid[axis]
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			vis := visible(cols[r*size+c], cols[r*size+c], face.Positive())
			for vis != 0 {
				d := bits.TrailingZeros32(vis)
				vis &= vis - 1
				id := m.ids[index(fromFrame(axis, d, r, c))]
				m.planes[id][d][r] |= 1 << c
				m.present[id] |= 1 << d
			}
		}
	}
}

// bucketWater fills the water plane for a Y face. Water faces show where the next
// cell is neither water nor solid.
func (m *Mesher) bucketWater(face chunk.Direction) {
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			i := r*size + c
			vis := visible(m.water[i], m.occ[i], face.Positive())
			if vis == 0 {
				continue
			}
			for d := vis; d != 0; d &= d - 1 {
				m.planes[block.Water][bits.TrailingZeros32(d)][r] |= 1 << c
			}
			m.present[block.Water] |= vis
		}
	}
}

// merge drains the bucketed planes into quads. Planes are left empty.
func (m *Mesher) merge(out []uint64, face chunk.Direction, quads *int) []uint64 {
	for id := range m.present {
		depths := m.present[id]
		m.present[id] = 0
		for depths != 0 {
			d := bits.TrailingZeros32(depths)
			depths &= depths - 1

			plane := &m.planes[id][d]
			for r := 0; r < size; r++ {
				for plane[r] != 0 {
					c := bits.TrailingZeros32(plane[r])
					h := bits.TrailingZeros32(^(plane[r] >> c))
					run := uint32((uint64(1)<<h - 1) << c)
					plane[r] &^= run

					w := 1
					for r+w < size && plane[r+w]&run == run {
						plane[r+w] &^= run
						w++
					}
					out = appendQuad(out, face, block.ID(id), d, r, c, w, h)
					*quads++
				}
			}
		}
	}
	return out
}

// counterClockwise marks faces whose (row, column) basis already points along the
// outward normal.
var counterClockwise = [6]bool{
	chunk.PosX: true,
	chunk.NegY: true,
	chunk.PosZ: true,
}

var (
	cornerOrder  = [VerticesPerQuad]int{0, 1, 2, 0, 2, 3}
	reverseOrder = [VerticesPerQuad]int{0, 3, 2, 0, 2, 1}
)

// appendQuad emits the two triangles of a w x h rectangle at (d, r, c).
func appendQuad(out []uint64, face chunk.Direction, id block.ID, d, r, c, w, h int) []uint64 {
	axis := face.Axis()
	if face.Positive() {
		d++
	}

	corners := [4][2]int{{0, 0}, {w, 0}, {w, h}, {0, h}}
	var packed [4]uint64
	for i, k := range corners {
		x, y, z := fromFrame(axis, d, r+k[0], c+k[1])
		packed[i] = Pack(Vertex{
			X: x, Y: y, Z: z,
			Face:   face,
			Block:  id,
			U:      k[0] != 0,
			V:      k[1] != 0,
			Width:  w,
			Height: h,
		})
	}

	order := &reverseOrder
	if counterClockwise[face] {
		order = &cornerOrder
	}
	for _, i := range order {
		out = append(out, packed[i])
	}
	return out
}
