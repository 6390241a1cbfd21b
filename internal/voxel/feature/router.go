package feature

import (
	"sort"
	"sync"

	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
)

// Router holds feature fragments waiting for their target chunk to be generated.
// One mutex guards the whole queue; every critical section is a map operation.
//
// Drained fragments stay on record as delivered so that Requeue can hand them to a
// regenerated copy of the target. A fragment is identified by its source chunk,
// origin and kind; pushing one already pending or delivered for the same target is
// a no-op.
type Router struct {
	mu        sync.Mutex
	pending   map[chunk.Pos][]Feature
	delivered map[chunk.Pos][]Feature
	count     int
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		pending:   make(map[chunk.Pos][]Feature),
		delivered: make(map[chunk.Pos][]Feature),
	}
}

// Push queues f for the chunk at target. It reports false when the same fragment was
// already pending or delivered there.
func (r *Router) Push(target chunk.Pos, f Feature) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if contains(r.pending[target], f) || contains(r.delivered[target], f) {
		return false
	}
	r.pending[target] = append(r.pending[target], f)
	r.count++
	return true
}

// Drain removes and returns every fragment queued for target, in push order, and
// records them as delivered.
func (r *Router) Drain(target chunk.Pos) []Feature {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, ok := r.pending[target]
	if !ok {
		return nil
	}
	delete(r.pending, target)
	r.count -= len(out)
	r.delivered[target] = append(r.delivered[target], out...)
	return out
}

// Requeue moves the fragments delivered to target back to pending, for when the
// chunk they were written into is gone. It returns how many were moved.
func (r *Router) Requeue(target chunk.Pos) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	back, ok := r.delivered[target]
	if !ok {
		return 0
	}
	delete(r.delivered, target)
	r.pending[target] = append(r.pending[target], back...)
	r.count += len(back)
	return len(back)
}

// Len returns the number of queued fragments.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Targets returns the chunk positions with queued fragments, sorted for stable
// iteration.
func (r *Router) Targets() []chunk.Pos {
	r.mu.Lock()
	out := make([]chunk.Pos, 0, len(r.pending))
	for p := range r.pending {
		out = append(out, p)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return out
}

func contains(list []Feature, f Feature) bool {
	for _, g := range list {
		if g.Source == f.Source && g.Origin == f.Origin && g.Kind == f.Kind {
			return true
		}
	}
	return false
}
