package mesh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
)

func TestPackLayout(t *testing.T) {
	v := Vertex{X: 32, Y: 1, Z: 17, Face: chunk.NegZ, Block: block.Bedrock, U: true, V: false, Width: 32, Height: 5}
	w := Pack(v)
	assert.Equal(t, v, Unpack(w))

	assert.Equal(t, uint64(32), w&0x3F)
	assert.Equal(t, uint64(chunk.NegZ), w>>18&0x7)
	assert.Equal(t, uint64(block.Bedrock), w>>21&0x1F)
	assert.Equal(t, uint64(1), w>>26&1)
	assert.Equal(t, uint64(0), w>>27&1)
	assert.Equal(t, uint64(32), w>>28&0x3F)
	assert.Equal(t, uint64(5), w>>34&0x3F)
	assert.Zero(t, w>>40, "upper bits stay clear")
}

func TestDecodeQuads(t *testing.T) {
	verts := appendQuad(nil, chunk.PosY, block.Grass, 7, 2, 3, 4, 5)
	require.Len(t, verts, VerticesPerQuad)

	quads, err := DecodeQuads(verts)
	require.NoError(t, err)
	require.Len(t, quads, 1)
	q := quads[0]
	assert.Equal(t, Quad{Face: chunk.PosY, Block: block.Grass, X: 2, Y: 7, Z: 3, Width: 4, Height: 5}, q)
	assert.Len(t, q.Cells(), 20)
	assert.Contains(t, q.Cells(), FaceCell{Face: chunk.PosY, X: 5, Y: 7, Z: 7})
}

func TestDecodeQuadsMalformed(t *testing.T) {
	_, err := DecodeQuads(make([]uint64, 5))
	assert.True(t, errors.Is(err, ErrMalformed))

	// A zero-sized quad cannot come out of the mesher.
	_, err = DecodeQuads(make([]uint64, VerticesPerQuad))
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestFootprintCountsOverlap(t *testing.T) {
	q := Quad{Face: chunk.NegX, Block: block.Stone, X: 0, Y: 0, Z: 0, Width: 2, Height: 2}
	fp := Footprint([]Quad{q, q})
	assert.Len(t, fp, 4)
	for _, n := range fp {
		assert.Equal(t, 2, n)
	}
}
