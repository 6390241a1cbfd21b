// Package game implements the main loop.
package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelworld/internal/config"
	"github.com/Faultbox/voxelworld/internal/engine/camera"
	"github.com/Faultbox/voxelworld/internal/engine/debug"
	"github.com/Faultbox/voxelworld/internal/engine/input"
	"github.com/Faultbox/voxelworld/internal/engine/renderer"
	"github.com/Faultbox/voxelworld/internal/engine/window"
	"github.com/Faultbox/voxelworld/internal/game/states"
	"github.com/Faultbox/voxelworld/internal/logger"
	"github.com/Faultbox/voxelworld/internal/metrics"
	"github.com/Faultbox/voxelworld/internal/voxel/feature"
	"github.com/Faultbox/voxelworld/internal/voxel/mesh"
	"github.com/Faultbox/voxelworld/internal/voxel/scheduler"
	"github.com/Faultbox/voxelworld/internal/voxel/world"
	"github.com/Faultbox/voxelworld/internal/voxel/worldgen"
)

const windowTitle = "voxelworld"

// controlHint is appended to the title unless the tooltip is disabled.
const controlHint = "WASD move, Space/Shift up/down, Ctrl sprint, LMB break, Tab mouse, F1 hint, F2 screenshot, F3 debug, Esc quit"

// Game is the main game instance.
type Game struct {
	session *states.Session
	states  *states.Manager
	log     *zap.Logger

	showHint   bool
	screenshot bool
	shots      *debug.Screenshots
	cancel     context.CancelFunc
}

// New creates the window, GPU side and voxel pipeline. m may be nil.
func New(cfg *config.Config, seed uint64, m *metrics.Metrics) (*Game, error) {
	log := logger.Named("game")
	log.Info("initializing game",
		zap.Uint64("seed", seed),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	router := feature.NewRouter()
	gen, err := worldgen.New(cfg, seed, router, logger.Named("worldgen"))
	if err != nil {
		return nil, fmt.Errorf("world generator: %w", err)
	}
	w := world.New()

	// Window first: the renderer needs a current GL context.
	win, err := window.New(windowTitle, cfg.Graphics)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	width, height := win.Size()
	fog := float32(cfg.Scheduler.RenderRadius * config.ChunkSize)
	rend, err := renderer.New(width, height, fog)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	sched := scheduler.New(cfg.Scheduler, w, gen, router, mesh.New(), m, logger.Named("scheduler"))

	g := &Game{
		session: &states.Session{
			Config:    cfg,
			Seed:      seed,
			Window:    win,
			Renderer:  rend,
			Input:     input.New(),
			Camera:    camera.NewFlyCamera(mgl32.Vec3{}, float32(cfg.Graphics.FOV)),
			World:     w,
			Scheduler: sched,
			Log:       log,
		},
		states:   states.NewManager(log),
		log:      log,
		showHint: cfg.UI.ShowTooltip,
		shots:    debug.NewScreenshots("screenshots", windowTitle),
	}
	g.states.Change(states.NewLoadingState(g.session, g.states, 0, 0))

	log.Info("game initialized successfully")
	return g, nil
}

// Run starts the scheduler and the main loop. It returns when the window closes,
// Esc is pressed or ctx ends.
func (g *Game) Run(ctx context.Context) error {
	ctx, g.cancel = context.WithCancel(ctx)
	g.session.Scheduler.Start(ctx)

	lastTime := time.Now()
	frames := 0
	fpsTimer := time.Now()

	g.log.Info("starting game loop", zap.Int("workers", g.session.Scheduler.Workers()))

	for !g.session.Quit && ctx.Err() == nil {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if g.session.Input.Update() {
			break
		}
		g.handleGlobalKeys()

		if err := g.states.Update(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		g.session.Renderer.Begin()
		if err := g.states.Render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if g.screenshot {
			g.screenshot = false
			g.saveScreenshot()
		}
		g.session.Window.SwapBuffers()

		frames++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			fps := float64(frames) / elapsed.Seconds()
			drawn, _ := g.session.Renderer.Stats()
			g.session.Window.SetTitle(Title(g.session.Seed, fps, g.states.Current(), g.session.Scheduler.Stats(), drawn, g.showHint))
			g.log.Debug("frame stats",
				zap.Float64("fps", fps),
				zap.Int("drawn", drawn),
				zap.Any("scheduler", g.session.Scheduler.Stats()))
			frames = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (g *Game) handleGlobalKeys() {
	for _, e := range g.session.Input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			g.session.Renderer.Resize(g.session.Window.Size())
		case input.EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_ESCAPE:
				g.session.Quit = true
			case sdl.SCANCODE_F1:
				g.showHint = !g.showHint
			case sdl.SCANCODE_F2:
				g.screenshot = true
			case sdl.SCANCODE_F3:
				level := "debug"
				if logger.DebugEnabled() {
					level = "info"
				}
				logger.SetLevel(level)
				g.log.Info("log level changed", zap.String("level", level))
			}
		}
	}
}

func (g *Game) saveScreenshot() {
	pixels, w, h := g.session.Renderer.ReadPixels()
	path, err := g.shots.Save(pixels, w, h)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// Close stops the scheduler and frees the window and GPU resources.
func (g *Game) Close() {
	g.log.Info("closing game")

	if g.cancel != nil {
		g.cancel()
	}
	g.session.Scheduler.Stop()
	if g.session.Renderer != nil {
		g.session.Renderer.Close()
	}
	if g.session.Window != nil {
		g.session.Window.Close()
	}
}

// Title formats the window title line.
func Title(seed uint64, fps float64, state states.State, st scheduler.Stats, drawn int, hint bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | seed %d | %.0f fps", windowTitle, seed, fps)
	if state != nil && state.Name() != "playing" {
		fmt.Fprintf(&b, " | %s", state.Name())
	}
	fmt.Fprintf(&b, " | chunks %d/%d | queue %d gen %d mesh", drawn, st.Loaded, st.GenQueue, st.MeshQueue)
	if hint {
		b.WriteString(" | ")
		b.WriteString(controlHint)
	}
	return b.String()
}
