// Package world owns the loaded chunks.
package world

import (
	"fmt"
	"sync"

	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
	"github.com/Faultbox/voxelworld/internal/voxel/mesh"
)

// World is the chunk map. All mutation happens under the write lock; readers that
// need a chunk outside the lock get a clone from Snapshot.
type World struct {
	mu     sync.RWMutex
	chunks map[chunk.Pos]*chunk.Chunk
}

// New creates an empty world.
func New() *World {
	return &World{chunks: make(map[chunk.Pos]*chunk.Chunk)}
}

// Insert adds c. It returns false and leaves the map unchanged if the position is
// already loaded.
func (w *World) Insert(c *chunk.Chunk) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.chunks[c.Pos()]; ok {
		return false
	}
	w.chunks[c.Pos()] = c
	return true
}

// Has reports whether pos is loaded.
func (w *World) Has(pos chunk.Pos) bool {
	w.mu.RLock()
	_, ok := w.chunks[pos]
	w.mu.RUnlock()
	return ok
}

// Get returns a clone of the chunk at pos.
func (w *World) Get(pos chunk.Pos) (*chunk.Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Len returns the number of loaded chunks.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// Snapshot clones the chunk at pos and its loaded face neighbors in one read-locked
// section, so the mesher sees a consistent neighborhood.
func (w *World) Snapshot(pos chunk.Pos) (*chunk.Chunk, mesh.Neighbors, bool) {
	var nb mesh.Neighbors
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	if !ok {
		return nil, nb, false
	}
	for _, d := range chunk.Directions {
		if n, ok := w.chunks[pos.Neighbor(d)]; ok {
			nb[d] = n.Clone()
		}
	}
	return c.Clone(), nb, true
}

// Neighbors returns the loaded positions adjacent to pos.
func (w *World) Neighbors(pos chunk.Pos) []chunk.Pos {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]chunk.Pos, 0, len(chunk.Directions))
	for _, d := range chunk.Directions {
		if n := pos.Neighbor(d); w.chunks[n] != nil {
			out = append(out, n)
		}
	}
	return out
}

// Block returns the block at a world coordinate, or air if its chunk is not loaded.
func (w *World) Block(x, y, z int) block.ID {
	pos, local := chunk.FromWorld(x, y, z)
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	if !ok {
		return block.Air
	}
	return c.At(local[0], local[1], local[2])
}

// SetBlock writes a block at a world coordinate and returns the chunk it landed in.
func (w *World) SetBlock(x, y, z int, id block.ID) (chunk.Pos, error) {
	pos, local := chunk.FromWorld(x, y, z)
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.chunks[pos]
	if !ok {
		return pos, fmt.Errorf("world: chunk %s not loaded", pos)
	}
	return pos, c.Set(local[0], local[1], local[2], id)
}

// Apply runs fn on the chunk at pos under the write lock. It reports whether the
// chunk was loaded.
func (w *World) Apply(pos chunk.Pos, fn func(*chunk.Chunk)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.chunks[pos]
	if !ok {
		return false
	}
	fn(c)
	return true
}

// Evict unloads the chunk at pos.
func (w *World) Evict(pos chunk.Pos) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.chunks[pos]; !ok {
		return false
	}
	delete(w.chunks, pos)
	return true
}

// EvictFarther unloads every chunk whose squared chunk distance from center exceeds
// maxDist2 and returns the evicted positions.
func (w *World) EvictFarther(center chunk.Pos, maxDist2 int64) []chunk.Pos {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []chunk.Pos
	for pos := range w.chunks {
		if pos.DistanceSquared(center) > maxDist2 {
			delete(w.chunks, pos)
			out = append(out, pos)
		}
	}
	return out
}

// MemoryBytes sums the block storage of all loaded chunks.
func (w *World) MemoryBytes() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	total := 0
	for _, c := range w.chunks {
		total += c.MemoryBytes()
	}
	return total
}
