package mesh

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
)

// cellAt reads a cell, following out-of-range coordinates into the face neighbor.
func cellAt(c *chunk.Chunk, nb Neighbors, x, y, z int) block.ID {
	if chunk.InBounds(x, y, z) {
		return c.At(x, y, z)
	}
	var d chunk.Direction
	switch {
	case x < 0:
		d = chunk.NegX
	case x >= size:
		d = chunk.PosX
	case y < 0:
		d = chunk.NegY
	case y >= size:
		d = chunk.PosY
	case z < 0:
		d = chunk.NegZ
	default:
		d = chunk.PosZ
	}
	n := nb[d]
	if n == nil {
		return block.Air
	}
	wrap := func(v int) int { return (v + size) % size }
	return n.At(wrap(x), wrap(y), wrap(z))
}

// naiveOpaque checks every face of every solid cell.
func naiveOpaque(c *chunk.Chunk, nb Neighbors) map[FaceCell]block.ID {
	out := make(map[FaceCell]block.ID)
	for y := 0; y < size; y++ {
		for z := 0; z < size; z++ {
			for x := 0; x < size; x++ {
				id := c.At(x, y, z)
				if !block.IsSolid(id) {
					continue
				}
				for _, d := range chunk.Directions {
					o := d.Offset()
					if !block.IsSolid(cellAt(c, nb, x+o[0], y+o[1], z+o[2])) {
						out[FaceCell{Face: d, X: x, Y: y, Z: z}] = id
					}
				}
			}
		}
	}
	return out
}

func naiveWater(c *chunk.Chunk, nb Neighbors) map[FaceCell]block.ID {
	out := make(map[FaceCell]block.ID)
	for y := 0; y < size; y++ {
		for z := 0; z < size; z++ {
			for x := 0; x < size; x++ {
				if !block.IsWater(c.At(x, y, z)) {
					continue
				}
				for _, d := range []chunk.Direction{chunk.PosY, chunk.NegY} {
					o := d.Offset()
					next := cellAt(c, nb, x, y+o[1], z)
					if !block.IsSolid(next) && !block.IsWater(next) {
						out[FaceCell{Face: d, X: x, Y: y, Z: z}] = block.Water
					}
				}
			}
		}
	}
	return out
}

// requireCoverage asserts the quads cover exactly the expected faces, once each,
// with the right block.
func requireCoverage(t *testing.T, verts []uint64, want map[FaceCell]block.ID) {
	t.Helper()
	quads, err := DecodeQuads(verts)
	require.NoError(t, err)

	fp := Footprint(quads)
	for fc, n := range fp {
		require.Equal(t, 1, n, "face %+v covered %d times", fc, n)
		_, ok := want[fc]
		require.True(t, ok, "face %+v is not visible", fc)
	}
	require.Len(t, fp, len(want), "visible faces missing from the mesh")

	for _, q := range quads {
		for _, fc := range q.Cells() {
			require.Equal(t, want[fc], q.Block, "block of face %+v", fc)
		}
	}
}

func filled(fn func(x, y, z int) block.ID) *chunk.Chunk {
	c := chunk.New(chunk.Pos{})
	for y := 0; y < size; y++ {
		for z := 0; z < size; z++ {
			for x := 0; x < size; x++ {
				if id := fn(x, y, z); id != block.Air {
					_ = c.Set(x, y, z, id)
				}
			}
		}
	}
	return c
}

func randomChunk(seed uint64) *chunk.Chunk {
	rng := rand.New(rand.NewPCG(seed, seed^0x5DEECE66D))
	ids := []block.ID{block.Air, block.Air, block.Stone, block.Dirt, block.Grass, block.Water, block.Leaves}
	return filled(func(x, y, z int) block.ID {
		if y < 4 {
			return block.Stone
		}
		return ids[rng.IntN(len(ids))]
	})
}

func TestBuildCoverage(t *testing.T) {
	solidNeighbor := chunk.NewFilled(chunk.Pos{}, block.Stone)
	tests := []struct {
		name  string
		chunk *chunk.Chunk
		nb    Neighbors
		quads int // Expected opaque quads, -1 to skip
	}{
		{
			name:  "all solid",
			chunk: chunk.NewFilled(chunk.Pos{}, block.Stone),
			quads: 6,
		},
		{
			name:  "all solid enclosed",
			chunk: chunk.NewFilled(chunk.Pos{}, block.Stone),
			nb:    Neighbors{solidNeighbor, solidNeighbor, solidNeighbor, solidNeighbor, solidNeighbor, solidNeighbor},
			quads: 0,
		},
		{
			name: "checkerboard",
			chunk: filled(func(x, y, z int) block.ID {
				if (x+y+z)%2 == 0 {
					return block.Stone
				}
				return block.Air
			}),
			quads: -1,
		},
		{
			name: "single column spike",
			chunk: filled(func(x, y, z int) block.ID {
				if x == 5 && z == 7 {
					return block.Log
				}
				return block.Air
			}),
			quads: 6,
		},
		{
			name:  "random",
			chunk: randomChunk(1),
			quads: -1,
		},
		{
			name:  "random with neighbors",
			chunk: randomChunk(2),
			nb:    Neighbors{randomChunk(3), nil, solidNeighbor, randomChunk(4), nil, randomChunk(5)},
			quads: -1,
		},
	}

	m := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := m.Build(tt.chunk, tt.nb, 1)
			require.NoError(t, err)
			requireCoverage(t, mesh.Opaque, naiveOpaque(tt.chunk, tt.nb))
			requireCoverage(t, mesh.Water, naiveWater(tt.chunk, tt.nb))
			if tt.quads >= 0 {
				assert.Equal(t, tt.quads, len(mesh.Opaque)/VerticesPerQuad)
			}
			assert.Equal(t, (len(mesh.Opaque)+len(mesh.Water))/VerticesPerQuad, mesh.Quads)
		})
	}
}

func TestCheckerboardDoesNotMerge(t *testing.T) {
	c := filled(func(x, y, z int) block.ID {
		if (x+y+z)%2 == 0 {
			return block.Stone
		}
		return block.Air
	})
	mesh, err := New().Build(c, Neighbors{}, 1)
	require.NoError(t, err)
	// Every solid cell shows all six faces as 1x1 quads.
	assert.Equal(t, chunk.Volume/2*6, mesh.Quads)
}

func TestBoundaryFaces(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	require.NoError(t, c.Set(31, 10, 10, block.Stone))
	edge := FaceCell{Face: chunk.PosX, X: 31, Y: 10, Z: 10}

	faces := func(nb Neighbors) map[FaceCell]int {
		mesh, err := New().Build(c, nb, 1)
		require.NoError(t, err)
		quads, err := DecodeQuads(mesh.Opaque)
		require.NoError(t, err)
		return Footprint(quads)
	}

	absent := faces(Neighbors{})
	assert.Len(t, absent, 6)
	assert.Contains(t, absent, edge, "absent neighbor leaves the boundary face visible")

	var empty Neighbors
	empty[chunk.PosX] = chunk.New(chunk.Pos{X: 1})
	assert.Contains(t, faces(empty), edge, "air neighbor leaves the boundary face visible")

	var solid Neighbors
	solid[chunk.PosX] = chunk.NewFilled(chunk.Pos{X: 1}, block.Stone)
	culled := faces(solid)
	assert.Len(t, culled, 5)
	assert.NotContains(t, culled, edge, "solid neighbor culls the boundary face")
}

func TestBoundaryUsesFacingLayer(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	require.NoError(t, c.Set(0, 5, 5, block.Stone))

	west := chunk.New(chunk.Pos{X: -1})
	require.NoError(t, west.Set(31, 5, 5, block.Stone))
	require.NoError(t, west.Set(0, 5, 6, block.Stone)) // Far side, must not matter.

	mesh, err := New().Build(c, Neighbors{chunk.NegX: west}, 1)
	require.NoError(t, err)
	quads, err := DecodeQuads(mesh.Opaque)
	require.NoError(t, err)
	fp := Footprint(quads)
	assert.NotContains(t, fp, FaceCell{Face: chunk.NegX, X: 0, Y: 5, Z: 5})
	assert.Len(t, fp, 5)
}

func TestWaterFaces(t *testing.T) {
	// Stone floor, a pond above it, air on top.
	c := filled(func(x, y, z int) block.ID {
		switch {
		case y < 5:
			return block.Stone
		case y < 10:
			return block.Water
		}
		return block.Air
	})
	mesh, err := New().Build(c, Neighbors{}, 1)
	require.NoError(t, err)

	quads, err := DecodeQuads(mesh.Water)
	require.NoError(t, err)
	require.Len(t, quads, 1, "only the pond surface is visible")
	assert.Equal(t, chunk.PosY, quads[0].Face)
	assert.Equal(t, block.Water, quads[0].Block)
	assert.Equal(t, 9, quads[0].Y)
	assert.Equal(t, size, quads[0].Width)
	assert.Equal(t, size, quads[0].Height)

	// The stone top under water is an opaque face: water never culls.
	opaque, err := DecodeQuads(mesh.Opaque)
	require.NoError(t, err)
	assert.Contains(t, Footprint(opaque), FaceCell{Face: chunk.PosY, X: 3, Y: 4, Z: 3})
}

func TestLODMatchesDownsampledReference(t *testing.T) {
	src := randomChunk(9)

	for _, lod := range []int{2, 4} {
		ref := filled(func(x, y, z int) block.ID {
			return src.At(align(x, lod), align(y, lod), align(z, lod))
		})

		got, err := New().Build(src, Neighbors{}, lod)
		require.NoError(t, err)
		want, err := New().Build(ref, Neighbors{}, 1)
		require.NoError(t, err)

		assert.Equal(t, want.Opaque, got.Opaque, "lod %d", lod)
		assert.Equal(t, want.Water, got.Water, "lod %d", lod)
		assert.Equal(t, lod, got.LOD)
		requireCoverage(t, got.Opaque, naiveOpaque(ref, Neighbors{}))
		assert.Less(t, got.Quads, 6*chunk.Volume/(lod*lod*lod)+1)
	}
}

func TestInvalidLOD(t *testing.T) {
	m := New()
	c := chunk.NewFilled(chunk.Pos{}, block.Stone)
	for _, lod := range []int{0, -1, 3, 6, 64} {
		_, err := m.Build(c, Neighbors{}, lod)
		assert.True(t, errors.Is(err, ErrInvalidLOD), "lod %d", lod)
	}
	for _, lod := range []int{1, 2, 4, 8, 16, 32} {
		_, err := m.Build(c, Neighbors{}, lod)
		assert.NoError(t, err, "lod %d", lod)
	}
}

func TestUnmeshableBlock(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	require.NoError(t, c.Set(1, 1, 1, block.MaxMeshable))
	_, err := New().Build(c, Neighbors{}, 1)
	assert.True(t, errors.Is(err, ErrBlockID))
}

func TestEmptyChunk(t *testing.T) {
	mesh, err := New().Build(chunk.New(chunk.Pos{X: 2}), Neighbors{}, 1)
	require.NoError(t, err)
	assert.True(t, mesh.Empty())
	assert.Equal(t, chunk.Pos{X: 2}, mesh.Pos)
}

func TestMesherReuse(t *testing.T) {
	m := New()
	a, err := m.Build(randomChunk(11), Neighbors{}, 1)
	require.NoError(t, err)
	_, err = m.Build(randomChunk(12), Neighbors{}, 2)
	require.NoError(t, err)
	b, err := m.Build(randomChunk(11), Neighbors{}, 1)
	require.NoError(t, err)
	assert.Equal(t, a.Opaque, b.Opaque)
	assert.Equal(t, a.Water, b.Water)
}

func TestWinding(t *testing.T) {
	mesh, err := New().Build(randomChunk(21), Neighbors{}, 1)
	require.NoError(t, err)
	verts := append(append([]uint64{}, mesh.Opaque...), mesh.Water...)
	require.NotEmpty(t, verts)

	for i := 0; i < len(verts); i += VerticesPerQuad {
		for tri := 0; tri < 2; tri++ {
			a := Unpack(verts[i+tri*3])
			b := Unpack(verts[i+tri*3+1])
			c := Unpack(verts[i+tri*3+2])
			e1 := [3]int{b.X - a.X, b.Y - a.Y, b.Z - a.Z}
			e2 := [3]int{c.X - a.X, c.Y - a.Y, c.Z - a.Z}
			n := [3]int{
				e1[1]*e2[2] - e1[2]*e2[1],
				e1[2]*e2[0] - e1[0]*e2[2],
				e1[0]*e2[1] - e1[1]*e2[0],
			}
			o := a.Face.Offset()
			dot := n[0]*o[0] + n[1]*o[1] + n[2]*o[2]
			require.Positive(t, dot, "triangle %d of quad %d faces %s inward", tri, i/VerticesPerQuad, a.Face)
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	c := randomChunk(1)
	m := New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Build(c, Neighbors{}, 1); err != nil {
			b.Fatal(err)
		}
	}
}
