// Package chunk implements compressed 32x32x32 voxel storage.
//
// A chunk is a column of 32 Y layers. Each layer is either Uniform (one block ID for
// the whole slice) or Explicit (a 32x32 byte array). Writes that break a uniform
// layer expand it in place; layers are only recompressed by Compact.
package chunk

import (
	"errors"
	"fmt"
)

// Size is the edge length of a chunk in blocks.
const Size = 32

// Volume is the number of blocks in a chunk.
const Volume = Size * Size * Size

// ErrOutOfBounds is returned for local coordinates outside [0,Size).
var ErrOutOfBounds = errors.New("chunk: local coordinate out of bounds")

// Chunk is a fixed-size voxel volume. It is not safe for concurrent mutation;
// the world map serializes writers and hands readers clones.
type Chunk struct {
	pos    Pos
	layers [Size]Layer
}

// New creates an all-air chunk at pos.
func New(pos Pos) *Chunk {
	return &Chunk{pos: pos}
}

// NewFilled creates a chunk whose every layer is Uniform with id.
func NewFilled(pos Pos, id uint8) *Chunk {
	c := &Chunk{pos: pos}
	for y := range c.layers {
		c.layers[y].id = id
	}
	return c
}

// Pos returns the chunk coordinate.
func (c *Chunk) Pos() Pos {
	return c.pos
}

// InBounds reports whether a local coordinate addresses a cell.
func InBounds(x, y, z int) bool {
	return uint(x) < Size && uint(y) < Size && uint(z) < Size
}

func boundsError(x, y, z int) error {
	return fmt.Errorf("%w: (%d,%d,%d)", ErrOutOfBounds, x, y, z)
}

// Get returns the block at a local coordinate.
func (c *Chunk) Get(x, y, z int) (uint8, error) {
	if !InBounds(x, y, z) {
		return 0, boundsError(x, y, z)
	}
	return c.layers[y].get(x, z), nil
}

// At returns the block at a local coordinate, or air when out of range.
// Hot loops that already range over [0,Size) use it to skip the error path.
func (c *Chunk) At(x, y, z int) uint8 {
	if !InBounds(x, y, z) {
		return 0
	}
	return c.layers[y].get(x, z)
}

// Set writes a block at a local coordinate, expanding a Uniform layer when the new
// ID differs from the layer's.
func (c *Chunk) Set(x, y, z int, id uint8) error {
	if !InBounds(x, y, z) {
		return boundsError(x, y, z)
	}
	c.layers[y].set(x, z, id)
	return nil
}

// Layer returns the layer at y. The returned pointer must not be retained past the
// next write.
func (c *Chunk) Layer(y int) (*Layer, error) {
	if uint(y) >= Size {
		return nil, fmt.Errorf("%w: layer %d", ErrOutOfBounds, y)
	}
	return &c.layers[y], nil
}

// FillLayer replaces layer y with a Uniform layer of id.
func (c *Chunk) FillLayer(y int, id uint8) error {
	if uint(y) >= Size {
		return fmt.Errorf("%w: layer %d", ErrOutOfBounds, y)
	}
	c.layers[y] = Layer{kind: Uniform, id: id}
	return nil
}

// IsUniform reports whether every layer is Uniform with the same ID.
func (c *Chunk) IsUniform() (uint8, bool) {
	first, ok := c.layers[0].UniformID()
	if !ok {
		return 0, false
	}
	for y := 1; y < Size; y++ {
		id, ok := c.layers[y].UniformID()
		if !ok || id != first {
			return 0, false
		}
	}
	return first, true
}

// IsEmpty reports whether the chunk holds only air.
func (c *Chunk) IsEmpty() bool {
	id, ok := c.IsUniform()
	return ok && id == 0
}

// Compact recompresses Explicit layers whose cells are all equal and returns how
// many layers were collapsed.
func (c *Chunk) Compact() int {
	n := 0
	for y := range c.layers {
		if c.layers[y].compact() {
			n++
		}
	}
	return n
}

// ExplicitLayers counts layers holding a full cell array.
func (c *Chunk) ExplicitLayers() int {
	n := 0
	for y := range c.layers {
		if c.layers[y].kind == Explicit {
			n++
		}
	}
	return n
}

// MemoryBytes approximates the block storage footprint.
func (c *Chunk) MemoryBytes() int {
	return Size + c.ExplicitLayers()*LayerArea
}

// Clone returns a deep copy.
func (c *Chunk) Clone() *Chunk {
	out := &Chunk{pos: c.pos}
	for y := range c.layers {
		out.layers[y] = c.layers[y].clone()
	}
	return out
}
