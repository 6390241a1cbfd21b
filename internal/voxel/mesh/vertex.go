package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
)

// Packed vertex layout, low bit first:
//
//	x:6 y:6 z:6 face:3 block:5 u:1 v:1 width:6 height:6
//
// The renderer uploads each word as a uvec2; width straddles the two halves.
const (
	shiftX      = 0
	shiftY      = 6
	shiftZ      = 12
	shiftFace   = 18
	shiftBlock  = 21
	shiftU      = 26
	shiftV      = 27
	shiftWidth  = 28
	shiftHeight = 34

	mask6 = 0x3F
	mask5 = 0x1F
	mask3 = 0x7
)

// VerticesPerQuad is the number of packed vertices emitted per merged rectangle.
const VerticesPerQuad = 6

// ErrMalformed is returned when decoding a buffer that was not produced by Build.
var ErrMalformed = errors.New("mesh: malformed vertex buffer")

// Vertex is the unpacked form of a vertex word. X, Y, Z are corner positions in
// [0,32]. Width and Height are the quad extent along the face's two in-plane axes.
type Vertex struct {
	X, Y, Z int
	Face    chunk.Direction
	Block   block.ID
	U, V    bool
	Width   int
	Height  int
}

// Pack encodes v into a vertex word.
func Pack(v Vertex) uint64 {
	w := uint64(v.X&mask6)<<shiftX |
		uint64(v.Y&mask6)<<shiftY |
		uint64(v.Z&mask6)<<shiftZ |
		uint64(uint8(v.Face)&mask3)<<shiftFace |
		uint64(v.Block&mask5)<<shiftBlock |
		uint64(v.Width&mask6)<<shiftWidth |
		uint64(v.Height&mask6)<<shiftHeight
	if v.U {
		w |= 1 << shiftU
	}
	if v.V {
		w |= 1 << shiftV
	}
	return w
}

// Unpack decodes a vertex word.
func Unpack(w uint64) Vertex {
	return Vertex{
		X:      int(w >> shiftX & mask6),
		Y:      int(w >> shiftY & mask6),
		Z:      int(w >> shiftZ & mask6),
		Face:   chunk.Direction(w >> shiftFace & mask3),
		Block:  block.ID(w >> shiftBlock & mask5),
		U:      w>>shiftU&1 == 1,
		V:      w>>shiftV&1 == 1,
		Width:  int(w >> shiftWidth & mask6),
		Height: int(w >> shiftHeight & mask6),
	}
}

// FaceCell is one visible voxel face.
type FaceCell struct {
	Face    chunk.Direction
	X, Y, Z int
}

// Quad is a decoded merged rectangle. X, Y, Z is the cell at its minimum corner;
// Width spans the row axis and Height the column axis of the face's plane.
type Quad struct {
	Face    chunk.Direction
	Block   block.ID
	X, Y, Z int
	Width   int
	Height  int
}

// Cells lists the voxel faces the quad covers.
func (q Quad) Cells() []FaceCell {
	axis := q.Face.Axis()
	d, r, c := toFrame(axis, q.X, q.Y, q.Z)
	out := make([]FaceCell, 0, q.Width*q.Height)
	for dr := 0; dr < q.Width; dr++ {
		for dc := 0; dc < q.Height; dc++ {
			x, y, z := fromFrame(axis, d, r+dr, c+dc)
			out = append(out, FaceCell{Face: q.Face, X: x, Y: y, Z: z})
		}
	}
	return out
}

// DecodeQuads reconstructs the rectangles of a vertex buffer.
func DecodeQuads(verts []uint64) ([]Quad, error) {
	if len(verts)%VerticesPerQuad != 0 {
		return nil, fmt.Errorf("%w: %d vertices is not a whole number of quads", ErrMalformed, len(verts))
	}
	out := make([]Quad, 0, len(verts)/VerticesPerQuad)
	for i := 0; i < len(verts); i += VerticesPerQuad {
		v := Unpack(verts[i])
		if v.U || v.V || int(v.Face) >= len(chunk.Directions) || v.Width == 0 || v.Height == 0 {
			return nil, fmt.Errorf("%w: quad %d", ErrMalformed, i/VerticesPerQuad)
		}
		x, y, z := v.X, v.Y, v.Z
		if v.Face.Positive() {
			// Positive faces sit on the far side of their cell.
			switch v.Face.Axis() {
			case 0:
				x--
			case 1:
				y--
			default:
				z--
			}
		}
		out = append(out, Quad{
			Face:   v.Face,
			Block:  v.Block,
			X:      x,
			Y:      y,
			Z:      z,
			Width:  v.Width,
			Height: v.Height,
		})
	}
	return out, nil
}

// Footprint counts how many quads cover each voxel face. A correct mesh covers every
// visible face exactly once.
func Footprint(quads []Quad) map[FaceCell]int {
	out := make(map[FaceCell]int)
	for _, q := range quads {
		for _, fc := range q.Cells() {
			out[fc]++
		}
	}
	return out
}
