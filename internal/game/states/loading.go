package states

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
)

const loadTimeout = 15 * time.Second

// LoadingState streams in the spawn column before handing control to the player.
type LoadingState struct {
	session *Session
	manager *Manager

	spawnX, spawnZ int
	started        time.Time
	uploaded       int
}

// NewLoadingState creates a loading state for a spawn column at (x, z).
func NewLoadingState(s *Session, m *Manager, x, z int) *LoadingState {
	return &LoadingState{session: s, manager: m, spawnX: x, spawnZ: z}
}

func (l *LoadingState) Name() string { return "loading" }

// Enter parks the camera high above spawn and requests the view around it.
func (l *LoadingState) Enter() error {
	l.started = time.Now()
	sc := l.session.Config.Scheduler
	l.session.Camera.Position = CameraStart(l.spawnX, (sc.MaxChunkY+1)*chunk.Size, l.spawnZ)
	l.session.UpdateView(true)
	l.session.Log.Info("loading spawn area",
		zap.Int("x", l.spawnX), zap.Int("z", l.spawnZ), zap.Uint64("seed", l.session.Seed))
	return nil
}

func (l *LoadingState) Exit() error {
	l.session.Log.Info("spawn area loaded",
		zap.Duration("elapsed", time.Since(l.started)),
		zap.Int("meshes", l.uploaded),
		zap.Int("chunks", l.session.World.Len()))
	return nil
}

// Update uploads meshes and switches to playing once the spawn column is in.
func (l *LoadingState) Update(dt float64) error {
	n, err := l.session.UploadMeshes()
	l.uploaded += n
	if err != nil {
		return err
	}

	if !l.ready() {
		if time.Since(l.started) < loadTimeout {
			return nil
		}
		l.session.Log.Warn("spawn area still loading, starting anyway",
			zap.Int("gen_queue", l.session.Scheduler.Stats().GenQueue))
	}

	sc := l.session.Config.Scheduler
	y, ok := SpawnHeight(l.session.World, l.spawnX, l.spawnZ, sc.MinChunkY, sc.MaxChunkY)
	if !ok {
		y = l.session.Config.Generation.SeaLevel + 1
	}
	l.session.Camera.Position = CameraStart(l.spawnX, y, l.spawnZ)
	l.manager.Change(NewPlayingState(l.session))
	return nil
}

func (l *LoadingState) ready() bool {
	sc := l.session.Config.Scheduler
	for y := sc.MinChunkY; y <= sc.MaxChunkY; y++ {
		pos, _ := chunk.FromWorld(l.spawnX, y*chunk.Size, l.spawnZ)
		if !l.session.World.Has(pos) {
			return false
		}
	}
	return l.session.Scheduler.Stats().MeshQueue == 0
}

func (l *LoadingState) Render() error {
	l.session.Draw()
	return nil
}
