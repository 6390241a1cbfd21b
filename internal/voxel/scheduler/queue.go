package scheduler

import (
	"sync"

	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
	"github.com/Faultbox/voxelworld/internal/voxel/mesh"
)

// posQueue is a FIFO of chunk positions without duplicates. A holding queue keeps
// popped positions busy until Done, so they cannot be queued twice while a worker
// still owns them.
type posQueue struct {
	mu     sync.Mutex
	items  []chunk.Pos
	queued map[chunk.Pos]struct{}
	busy   map[chunk.Pos]struct{}
}

func newPosQueue() *posQueue {
	return &posQueue{queued: make(map[chunk.Pos]struct{})}
}

func newHoldingQueue() *posQueue {
	q := newPosQueue()
	q.busy = make(map[chunk.Pos]struct{})
	return q
}

// Push appends pos unless it is already waiting or busy. It reports whether pos was
// added.
func (q *posQueue) Push(pos chunk.Pos) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.queued[pos]; ok {
		return false
	}
	if _, ok := q.busy[pos]; ok {
		return false
	}
	q.queued[pos] = struct{}{}
	q.items = append(q.items, pos)
	return true
}

// TryPop removes up to n positions without waiting for the lock. ok is false when
// the lock was contended.
func (q *posQueue) TryPop(n int) (batch []chunk.Pos, ok bool) {
	if !q.mu.TryLock() {
		return nil, false
	}
	defer q.mu.Unlock()
	if n > len(q.items) {
		n = len(q.items)
	}
	if n == 0 {
		return nil, true
	}
	batch = make([]chunk.Pos, n)
	copy(batch, q.items)
	q.items = q.items[n:]
	for _, p := range batch {
		delete(q.queued, p)
		if q.busy != nil {
			q.busy[p] = struct{}{}
		}
	}
	return batch, true
}

// Done releases a popped position of a holding queue.
func (q *posQueue) Done(pos chunk.Pos) {
	q.mu.Lock()
	delete(q.busy, pos)
	q.mu.Unlock()
}

// Busy returns how many popped positions have not been released.
func (q *posQueue) Busy() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.busy)
}

func (q *posQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// resultQueue holds finished meshes for the render thread. A newer mesh for a
// position replaces one that was not drained yet.
type resultQueue struct {
	mu    sync.Mutex
	order []chunk.Pos
	byPos map[chunk.Pos]*mesh.Mesh
	limit int
}

func newResultQueue(limit int) *resultQueue {
	return &resultQueue{byPos: make(map[chunk.Pos]*mesh.Mesh), limit: limit}
}

// Put stores m. It returns false when the queue is full and m is for a new position.
func (q *resultQueue) Put(m *mesh.Mesh) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.byPos[m.Pos]; ok {
		q.byPos[m.Pos] = m
		return true
	}
	if q.limit > 0 && len(q.order) >= q.limit {
		return false
	}
	q.byPos[m.Pos] = m
	q.order = append(q.order, m.Pos)
	return true
}

// Drain removes up to n meshes in completion order. n <= 0 drains everything.
func (q *resultQueue) Drain(n int) []*mesh.Mesh {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n <= 0 || n > len(q.order) {
		n = len(q.order)
	}
	out := make([]*mesh.Mesh, 0, n)
	for _, p := range q.order[:n] {
		out = append(out, q.byPos[p])
		delete(q.byPos, p)
	}
	q.order = q.order[n:]
	return out
}

func (q *resultQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
