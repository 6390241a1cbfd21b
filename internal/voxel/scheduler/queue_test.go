package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
	"github.com/Faultbox/voxelworld/internal/voxel/mesh"
)

func TestPosQueueDedup(t *testing.T) {
	q := newPosQueue()
	a := chunk.Pos{X: 1}
	b := chunk.Pos{X: 2}

	assert.True(t, q.Push(a))
	assert.False(t, q.Push(a))
	assert.True(t, q.Push(b))
	assert.Equal(t, 2, q.Len())

	batch, ok := q.TryPop(1)
	require.True(t, ok)
	assert.Equal(t, []chunk.Pos{a}, batch)

	// Popped positions may be queued again.
	assert.True(t, q.Push(a))

	batch, ok = q.TryPop(10)
	require.True(t, ok)
	assert.Equal(t, []chunk.Pos{b, a}, batch)
	assert.Zero(t, q.Len())
}

func TestHoldingQueueBusy(t *testing.T) {
	q := newHoldingQueue()
	a := chunk.Pos{X: 1}
	b := chunk.Pos{X: 2}
	require.True(t, q.Push(a))
	require.True(t, q.Push(b))

	batch, ok := q.TryPop(1)
	require.True(t, ok)
	assert.Equal(t, []chunk.Pos{a}, batch)
	assert.Equal(t, 1, q.Busy())
	assert.False(t, q.Push(a), "busy positions are rejected")
	assert.Equal(t, 1, q.Len())

	q.Done(a)
	assert.Zero(t, q.Busy())
	assert.True(t, q.Push(a))
	q.Done(b)
	assert.Equal(t, 2, q.Len(), "Done on a queued position leaves it queued")
}

func TestPosQueueTryPopContended(t *testing.T) {
	q := newPosQueue()
	q.Push(chunk.Pos{})

	q.mu.Lock()
	batch, ok := q.TryPop(1)
	q.mu.Unlock()

	assert.False(t, ok)
	assert.Nil(t, batch)
	assert.Equal(t, 1, q.Len())
}

func TestResultQueue(t *testing.T) {
	q := newResultQueue(2)
	a := &mesh.Mesh{Pos: chunk.Pos{X: 1}, LOD: 1}
	a2 := &mesh.Mesh{Pos: chunk.Pos{X: 1}, LOD: 2}
	b := &mesh.Mesh{Pos: chunk.Pos{X: 2}, LOD: 1}
	c := &mesh.Mesh{Pos: chunk.Pos{X: 3}, LOD: 1}

	require.True(t, q.Put(a))
	require.True(t, q.Put(b))
	assert.False(t, q.Put(c), "full queue rejects new positions")
	assert.True(t, q.Put(a2), "full queue still replaces a waiting position")
	assert.Equal(t, 2, q.Len())

	out := q.Drain(1)
	require.Len(t, out, 1)
	assert.Same(t, a2, out[0])

	out = q.Drain(0)
	require.Len(t, out, 1)
	assert.Same(t, b, out[0])
	assert.Empty(t, q.Drain(0))
}
