// Package scheduler runs chunk generation and meshing off the render thread.
//
// Generation runs on a worker pool fed by a dispatcher goroutine; meshing runs on a
// single goroutine that owns the mesher. Both poll their queues with a non-blocking
// lock and sleep for a fixed interval when there is nothing to take. Finished meshes
// wait in an output queue until the render thread drains them.
package scheduler

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/shirou/gopsutil/v3/cpu"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelworld/internal/config"
	"github.com/Faultbox/voxelworld/internal/metrics"
	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
	"github.com/Faultbox/voxelworld/internal/voxel/feature"
	"github.com/Faultbox/voxelworld/internal/voxel/mesh"
	"github.com/Faultbox/voxelworld/internal/voxel/world"
	"github.com/Faultbox/voxelworld/internal/voxel/worldgen"
)

// Generator produces chunks and places feature fragments.
type Generator interface {
	Generate(pos chunk.Pos) (*worldgen.Result, error)
	Place(c *chunk.Chunk, frags []feature.Feature) (worldgen.Stats, []worldgen.Routed)
	Forward(routed []worldgen.Routed)
}

// Stats is a point-in-time view of the scheduler.
type Stats struct {
	Loaded          int
	GenQueue        int
	MeshQueue       int
	Results         int
	PendingFeatures int
	Workers         int
	Inflight        int
}

// Scheduler owns the generation pool and the mesh goroutine.
type Scheduler struct {
	cfg     config.SchedulerConfig
	world   *world.World
	gen     Generator
	router  *feature.Router
	mesher  *mesh.Mesher
	metrics *metrics.Metrics
	log     *zap.Logger

	genQ    *posQueue
	meshQ   *posQueue
	results *resultQueue

	camMu  sync.Mutex
	camera mgl32.Vec3

	workers  int
	pool     pond.Pool
	inflight atomic.Int32
	quitting atomic.Bool

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// New creates a scheduler. A nil mesher gets a fresh one.
func New(cfg config.SchedulerConfig, w *world.World, gen Generator, router *feature.Router,
	mesher *mesh.Mesher, m *metrics.Metrics, log *zap.Logger) *Scheduler {
	if mesher == nil {
		mesher = mesh.New()
	}
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cfg:     cfg,
		world:   w,
		gen:     gen,
		router:  router,
		mesher:  mesher,
		metrics: m,
		log:     log,
		genQ:    newHoldingQueue(),
		meshQ:   newPosQueue(),
		results: newResultQueue(cfg.MaxResults),
		workers: workerCount(cfg.WorkerFraction),
	}
}

// workerCount sizes the pool as a fraction of logical cores, at least one.
func workerCount(fraction float64) int {
	cores, err := cpu.Counts(true)
	if err != nil || cores <= 0 {
		cores = runtime.NumCPU()
	}
	return max(1, int(math.Floor(float64(cores)*fraction)))
}

// Workers returns the generation pool size.
func (s *Scheduler) Workers() int {
	return s.workers
}

// Start launches the dispatcher and mesh goroutines.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.pool = pond.NewPool(s.workers)
	s.metrics.Workers.Set(float64(s.workers))
	s.log.Info("scheduler started",
		zap.Int("workers", s.workers),
		zap.Int("gen_batch", s.cfg.GenBatch),
		zap.Int("mesh_batch", s.cfg.MeshBatch),
		zap.Duration("poll", s.cfg.PollInterval))

	s.wg.Add(2)
	go s.dispatchLoop(ctx)
	go s.meshLoop(ctx)
}

// Stop sets the quitting flag, joins both loops and waits for in-flight batches.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.quitting.Store(true)
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		if s.pool != nil {
			s.pool.StopAndWait()
		}
		s.log.Info("scheduler stopped", zap.Int("loaded", s.world.Len()))
	})
}

func (s *Scheduler) running(ctx context.Context) bool {
	return !s.quitting.Load() && ctx.Err() == nil
}

// pause sleeps one poll interval or until ctx ends.
func (s *Scheduler) pause(ctx context.Context) {
	t := time.NewTimer(s.cfg.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Scheduler) dispatchLoop(ctx context.Context) {
	defer s.wg.Done()
	for s.running(ctx) {
		if int(s.inflight.Load()) >= s.workers {
			s.pause(ctx)
			continue
		}
		batch, ok := s.genQ.TryPop(s.cfg.GenBatch)
		if !ok || len(batch) == 0 {
			s.pause(ctx)
			continue
		}
		s.inflight.Add(1)
		s.pool.Submit(func() {
			defer s.inflight.Add(-1)
			for _, pos := range batch {
				s.generate(pos)
			}
		})
	}
}

// generate builds one chunk. Failures and panics are logged and the request dropped.
// pos stays busy in the generation queue until generate returns.
func (s *Scheduler) generate(pos chunk.Pos) {
	defer s.genQ.Done(pos)
	defer func() {
		if r := recover(); r != nil {
			s.metrics.GenerationFailures.Inc()
			s.log.Error("chunk generation panicked", zap.Stringer("chunk", pos), zap.Any("panic", r))
		}
	}()

	if s.world.Has(pos) {
		return
	}
	start := time.Now()
	res, err := s.gen.Generate(pos)
	if err != nil {
		s.metrics.GenerationFailures.Inc()
		s.log.Warn("chunk generation failed", zap.Stringer("chunk", pos), zap.Error(err))
		return
	}
	if !s.world.Insert(res.Chunk) {
		// Another copy got in first. The fragments this one drained go back to the
		// router and land in the loaded copy below.
		if n := s.router.Requeue(pos); n > 0 {
			s.log.Debug("duplicate chunk discarded", zap.Stringer("chunk", pos), zap.Int("requeued", n))
			s.applyLate()
		}
		return
	}
	s.metrics.GenSeconds.Observe(time.Since(start).Seconds())
	s.metrics.ChunksGenerated.Inc()
	s.metrics.FeaturesForwarded.Add(float64(res.Forwarded))
	s.metrics.FeatureBlocksLost.Add(float64(res.Dropped))
	s.log.Debug("chunk generated",
		zap.Stringer("chunk", pos),
		zap.Int("features", len(res.Features)),
		zap.Int("drained", res.Drained),
		zap.Int("forwarded", res.Forwarded))

	s.applyLate()

	s.meshQ.Push(pos)
	if s.cfg.RemeshNeighbors {
		for _, n := range s.world.Neighbors(pos) {
			s.meshQ.Push(n)
		}
	}
}

// applyLate writes fragments that target chunks generated before the fragment was
// routed. Router, world and router again are locked in turn, never together.
func (s *Scheduler) applyLate() {
	for _, target := range s.router.Targets() {
		if !s.world.Has(target) {
			continue
		}
		frags := s.router.Drain(target)
		if len(frags) == 0 {
			continue
		}
		var (
			st     worldgen.Stats
			routed []worldgen.Routed
		)
		loaded := s.world.Apply(target, func(c *chunk.Chunk) {
			st, routed = s.gen.Place(c, frags)
		})
		if !loaded {
			// Evicted in between; keep the fragments for a later load.
			s.router.Requeue(target)
			continue
		}
		s.gen.Forward(routed)
		s.metrics.LateFragments.Add(float64(len(frags)))
		s.metrics.FeaturesForwarded.Add(float64(st.Forwarded))
		s.metrics.FeatureBlocksLost.Add(float64(st.Dropped))
		if st.Applied > 0 {
			s.meshQ.Push(target)
		}
	}
}

func (s *Scheduler) meshLoop(ctx context.Context) {
	defer s.wg.Done()
	for s.running(ctx) {
		s.observe()
		batch, ok := s.meshQ.TryPop(s.cfg.MeshBatch)
		if !ok || len(batch) == 0 {
			s.pause(ctx)
			continue
		}
		cam := s.Camera()
		for i, pos := range batch {
			if !s.buildMesh(pos, cam) {
				// Output full: requeue the rest and let the render thread catch up.
				for _, p := range batch[i:] {
					s.meshQ.Push(p)
				}
				s.pause(ctx)
				break
			}
		}
	}
}

// buildMesh meshes one chunk. It returns false only when the output queue is full.
func (s *Scheduler) buildMesh(pos chunk.Pos, cam mgl32.Vec3) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.MeshFailures.Inc()
			s.log.Error("meshing panicked", zap.Stringer("chunk", pos), zap.Any("panic", r))
			ok = true
		}
	}()

	c, nb, loaded := s.world.Snapshot(pos)
	if !loaded {
		return true
	}
	lod := s.cfg.LODFor(float64(cam.Sub(Center(pos)).Len()))

	start := time.Now()
	m, err := s.mesher.Build(c, nb, lod)
	if err != nil {
		s.metrics.MeshFailures.Inc()
		s.log.Warn("meshing failed", zap.Stringer("chunk", pos), zap.Int("lod", lod), zap.Error(err))
		return true
	}
	if !s.results.Put(m) {
		return false
	}
	s.metrics.MeshSeconds.Observe(time.Since(start).Seconds())
	s.metrics.MeshesBuilt.Inc()
	s.metrics.QuadsEmitted.Add(float64(m.Quads))
	return true
}

// observe refreshes the queue gauges.
func (s *Scheduler) observe() {
	st := s.Stats()
	s.metrics.GenQueue.Set(float64(st.GenQueue))
	s.metrics.MeshQueue.Set(float64(st.MeshQueue))
	s.metrics.PendingResults.Set(float64(st.Results))
	s.metrics.PendingFeatures.Set(float64(st.PendingFeatures))
	s.metrics.LoadedChunks.Set(float64(st.Loaded))
}

// Center returns the world-space center of a chunk.
func Center(pos chunk.Pos) mgl32.Vec3 {
	x, y, z := pos.Origin()
	h := float32(chunk.Size) / 2
	return mgl32.Vec3{float32(x) + h, float32(y) + h, float32(z) + h}
}

// ChunkAt returns the chunk containing a world-space point.
func ChunkAt(p mgl32.Vec3) chunk.Pos {
	pos, _ := chunk.FromWorld(
		int(math.Floor(float64(p.X()))),
		int(math.Floor(float64(p.Y()))),
		int(math.Floor(float64(p.Z()))))
	return pos
}

// SetCamera records the camera position used for LOD selection.
func (s *Scheduler) SetCamera(p mgl32.Vec3) {
	s.camMu.Lock()
	s.camera = p
	s.camMu.Unlock()
}

// Camera returns the last camera position.
func (s *Scheduler) Camera() mgl32.Vec3 {
	s.camMu.Lock()
	defer s.camMu.Unlock()
	return s.camera
}

// Request queues pos for generation unless it is loaded or already waiting.
func (s *Scheduler) Request(pos chunk.Pos) bool {
	if s.world.Has(pos) {
		return false
	}
	return s.genQ.Push(pos)
}

// RequestAround queues every missing chunk within radius (horizontal, in chunks) of
// center whose Y lies in [minY, maxY], nearest first. It returns how many were added.
func (s *Scheduler) RequestAround(center chunk.Pos, radius, minY, maxY int) int {
	var want []chunk.Pos
	r2 := int64(radius * radius)
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			if int64(dx*dx+dz*dz) > r2 {
				continue
			}
			for y := minY; y <= maxY; y++ {
				want = append(want, chunk.Pos{X: center.X + int32(dx), Y: int32(y), Z: center.Z + int32(dz)})
			}
		}
	}
	sort.SliceStable(want, func(i, j int) bool {
		return want[i].DistanceSquared(center) < want[j].DistanceSquared(center)
	})

	added := 0
	for _, p := range want {
		if s.Request(p) {
			added++
		}
	}
	return added
}

// UpdateView moves the camera, requests the configured view volume around it and
// evicts chunks left well outside. It returns the evicted positions so the renderer
// can free their buffers.
func (s *Scheduler) UpdateView(cam mgl32.Vec3) []chunk.Pos {
	s.SetCamera(cam)
	center := ChunkAt(cam)
	if added := s.RequestAround(center, s.cfg.RenderRadius, s.cfg.MinChunkY, s.cfg.MaxChunkY); added > 0 {
		s.log.Debug("view requested", zap.Stringer("center", center), zap.Int("added", added))
	}

	keep := int64(s.cfg.RenderRadius + 2)
	evicted := s.world.EvictFarther(chunk.Pos{X: center.X, Y: clampY(center.Y, s.cfg), Z: center.Z}, keep*keep+int64(s.cfg.MaxChunkY*s.cfg.MaxChunkY))
	for _, p := range evicted {
		// A regenerated chunk gets its foreign feature parts again.
		s.router.Requeue(p)
	}
	return evicted
}

func clampY(y int32, cfg config.SchedulerConfig) int32 {
	return max(int32(cfg.MinChunkY), min(y, int32(cfg.MaxChunkY)))
}

// RequestMesh queues pos for (re)meshing.
func (s *Scheduler) RequestMesh(pos chunk.Pos) {
	if s.world.Has(pos) {
		s.meshQ.Push(pos)
	}
}

// DestroyBlock replaces the block at a world coordinate with air and queues the
// affected meshes. Neighbors are remeshed when the block sat on a chunk face.
func (s *Scheduler) DestroyBlock(x, y, z int) error {
	pos, err := s.world.SetBlock(x, y, z, block.Air)
	if err != nil {
		return fmt.Errorf("destroy block (%d,%d,%d): %w", x, y, z, err)
	}
	s.meshQ.Push(pos)

	_, local := chunk.FromWorld(x, y, z)
	for axis, v := range local {
		switch v {
		case 0:
			s.RequestMesh(pos.Neighbor(chunk.Along(axis, false)))
		case chunk.Size - 1:
			s.RequestMesh(pos.Neighbor(chunk.Along(axis, true)))
		}
	}
	return nil
}

// DrainMeshes hands up to n finished meshes to the render thread. n <= 0 takes all.
func (s *Scheduler) DrainMeshes(n int) []*mesh.Mesh {
	return s.results.Drain(n)
}

// Stats returns current queue depths.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Loaded:          s.world.Len(),
		GenQueue:        s.genQ.Len(),
		MeshQueue:       s.meshQ.Len(),
		Results:         s.results.Len(),
		PendingFeatures: s.router.Len(),
		Workers:         s.workers,
		Inflight:        int(s.inflight.Load()),
	}
}
