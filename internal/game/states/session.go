package states

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelworld/internal/config"
	"github.com/Faultbox/voxelworld/internal/engine/camera"
	"github.com/Faultbox/voxelworld/internal/engine/input"
	"github.com/Faultbox/voxelworld/internal/engine/renderer"
	"github.com/Faultbox/voxelworld/internal/engine/window"
	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
	"github.com/Faultbox/voxelworld/internal/voxel/scheduler"
	"github.com/Faultbox/voxelworld/internal/voxel/world"
)

// maxUploadsPerFrame caps GPU uploads so a burst of meshes does not stall a frame.
const maxUploadsPerFrame = 32

const viewRefresh = 500 * time.Millisecond

// Session is what every state shares: the window, GPU side and the voxel world.
type Session struct {
	Config    *config.Config
	Seed      uint64
	Window    *window.Window
	Renderer  *renderer.ChunkRenderer
	Input     *input.Input
	Camera    *camera.FlyCamera
	World     *world.World
	Scheduler *scheduler.Scheduler
	Log       *zap.Logger

	// Quit is set by a state to end the main loop.
	Quit bool

	viewChunk  chunk.Pos
	viewValid  bool
	lastUpdate time.Time
}

// UpdateView re-requests the view volume when the camera changed chunk, when the
// refresh interval elapsed, or when force is set. Evicted chunks lose their GPU mesh.
func (s *Session) UpdateView(force bool) {
	pos := scheduler.ChunkAt(s.Camera.Position)
	if !force && s.viewValid && pos == s.viewChunk && time.Since(s.lastUpdate) < viewRefresh {
		s.Scheduler.SetCamera(s.Camera.Position)
		return
	}
	s.viewChunk, s.viewValid, s.lastUpdate = pos, true, time.Now()

	evicted := s.Scheduler.UpdateView(s.Camera.Position)
	if len(evicted) > 0 {
		s.Log.Debug("chunks evicted", zap.Int("count", len(evicted)), zap.Stringer("center", pos))
	}
	if s.Renderer == nil {
		return
	}
	for _, p := range evicted {
		s.Renderer.Remove(p)
	}
}

// UploadMeshes moves finished meshes to the GPU. Meshes for chunks evicted since
// they were queued are discarded.
func (s *Session) UploadMeshes() (int, error) {
	n := 0
	for _, m := range s.Scheduler.DrainMeshes(maxUploadsPerFrame) {
		if !s.World.Has(m.Pos) {
			continue
		}
		if s.Renderer != nil {
			if err := s.Renderer.Upload(m); err != nil {
				return n, err
			}
		}
		n++
	}
	return n, nil
}

// Draw renders the uploaded chunks from the camera.
func (s *Session) Draw() {
	if s.Renderer == nil {
		return
	}
	s.Renderer.Draw(s.Camera.ViewProjection(s.Renderer.Aspect()), s.Camera.Position)
}

// SpawnHeight returns the Y just above the highest non-air, non-water block in the
// column at (x, z), scanning the loaded vertical range. ok is false if no block was
// found.
func SpawnHeight(w *world.World, x, z, minChunkY, maxChunkY int) (y int, ok bool) {
	top := (maxChunkY+1)*chunk.Size - 1
	bottom := minChunkY * chunk.Size
	for y := top; y >= bottom; y-- {
		if id := w.Block(x, y, z); id != block.Air && !block.IsWater(id) {
			return y + 1, true
		}
	}
	return bottom, false
}

// CameraStart returns a camera position above the spawn column.
func CameraStart(x, y, z int) mgl32.Vec3 {
	return mgl32.Vec3{float32(x) + 0.5, float32(y) + 2.6, float32(z) + 0.5}
}
