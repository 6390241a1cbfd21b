package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
)

func TestInsertGet(t *testing.T) {
	w := New()
	pos := chunk.Pos{X: 1, Y: 2, Z: 3}
	c := chunk.NewFilled(pos, block.Stone)

	assert.True(t, w.Insert(c))
	assert.False(t, w.Insert(chunk.New(pos)), "second insert is rejected")
	assert.Equal(t, 1, w.Len())
	assert.True(t, w.Has(pos))

	got, ok := w.Get(pos)
	require.True(t, ok)
	assert.Equal(t, block.Stone, got.At(0, 0, 0))

	// Get hands out a copy.
	require.NoError(t, got.Set(0, 0, 0, block.Air))
	again, _ := w.Get(pos)
	assert.Equal(t, block.Stone, again.At(0, 0, 0))

	_, ok = w.Get(chunk.Pos{})
	assert.False(t, ok)
}

func TestSnapshotNeighbors(t *testing.T) {
	w := New()
	center := chunk.Pos{}
	w.Insert(chunk.New(center))
	w.Insert(chunk.NewFilled(center.Neighbor(chunk.PosX), block.Stone))
	w.Insert(chunk.NewFilled(center.Neighbor(chunk.NegY), block.Dirt))

	c, nb, ok := w.Snapshot(center)
	require.True(t, ok)
	assert.Equal(t, center, c.Pos())
	require.NotNil(t, nb[chunk.PosX])
	require.NotNil(t, nb[chunk.NegY])
	assert.Nil(t, nb[chunk.NegX])
	assert.Nil(t, nb[chunk.PosZ])
	assert.Equal(t, block.Dirt, nb[chunk.NegY].At(3, 3, 3))

	assert.ElementsMatch(t, []chunk.Pos{center.Neighbor(chunk.PosX), center.Neighbor(chunk.NegY)}, w.Neighbors(center))

	_, _, ok = w.Snapshot(chunk.Pos{X: 9})
	assert.False(t, ok)
}

func TestSetBlock(t *testing.T) {
	w := New()
	w.Insert(chunk.NewFilled(chunk.Pos{X: -1, Y: 0, Z: 0}, block.Stone))

	pos, err := w.SetBlock(-1, 5, 0, block.Air)
	require.NoError(t, err)
	assert.Equal(t, chunk.Pos{X: -1}, pos)
	assert.Equal(t, block.Air, w.Block(-1, 5, 0))
	assert.Equal(t, block.Stone, w.Block(-2, 5, 0))
	assert.Equal(t, block.Air, w.Block(100, 5, 0), "unloaded chunks read as air")

	_, err = w.SetBlock(100, 0, 0, block.Stone)
	assert.Error(t, err)
}

func TestApplyEvict(t *testing.T) {
	w := New()
	pos := chunk.Pos{Z: 4}
	w.Insert(chunk.New(pos))

	ok := w.Apply(pos, func(c *chunk.Chunk) { _ = c.Set(1, 1, 1, block.Log) })
	require.True(t, ok)
	assert.Equal(t, block.Log, w.Block(1, 1, 4*chunk.Size+1))
	assert.False(t, w.Apply(chunk.Pos{}, func(*chunk.Chunk) { t.Error("called for missing chunk") }))

	assert.True(t, w.Evict(pos))
	assert.False(t, w.Evict(pos))
	assert.Zero(t, w.Len())
}

func TestEvictFarther(t *testing.T) {
	w := New()
	for x := int32(-3); x <= 3; x++ {
		w.Insert(chunk.New(chunk.Pos{X: x}))
	}
	evicted := w.EvictFarther(chunk.Pos{}, 4)
	assert.ElementsMatch(t, []chunk.Pos{{X: -3}, {X: 3}}, evicted)
	assert.Equal(t, 5, w.Len())
}

func TestConcurrentAccess(t *testing.T) {
	w := New()
	for x := int32(0); x < 4; x++ {
		w.Insert(chunk.New(chunk.Pos{X: x}))
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				_, _ = w.SetBlock(i*chunk.Size+n%chunk.Size, n%chunk.Size, 0, block.Stone)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				w.Snapshot(chunk.Pos{X: int32(i)})
			}
		}(i)
	}
	wg.Wait()
	assert.Positive(t, w.MemoryBytes())
}
