package states

import (
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelworld/internal/engine/input"
	"github.com/Faultbox/voxelworld/internal/engine/picking"
	"github.com/Faultbox/voxelworld/internal/voxel/block"
)

// reach is how far away a block can be broken, in blocks.
const reach = 8

// PlayingState flies the camera, breaks blocks and keeps the view streamed.
type PlayingState struct {
	session  *Session
	captured bool
}

// NewPlayingState creates the free-flight state.
func NewPlayingState(s *Session) *PlayingState {
	return &PlayingState{session: s, captured: true}
}

func (p *PlayingState) Name() string { return "playing" }

func (p *PlayingState) Enter() error {
	p.session.Window.SetMouseCaptured(p.captured)
	return nil
}

func (p *PlayingState) Exit() error { return nil }

func (p *PlayingState) Update(dt float64) error {
	s := p.session
	in := s.Input

	for _, e := range in.Events() {
		switch {
		case e.Type == input.EventKeyDown && e.Key == sdl.SCANCODE_TAB:
			p.captured = !p.captured
			s.Window.SetMouseCaptured(p.captured)
		case e.Type == input.EventMouseDown && e.Button == sdl.BUTTON_LEFT:
			p.breakBlock(p.pickRay(e))
		}
	}

	if p.captured {
		dx, dy := in.MouseDelta()
		s.Camera.HandleMouse(float32(dx), float32(dy))
	}
	s.Camera.HandleMovement(
		in.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S),
		in.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A),
		in.Axis(sdl.SCANCODE_SPACE, sdl.SCANCODE_LSHIFT),
		in.IsKeyHeld(sdl.SCANCODE_LCTRL),
		float32(dt),
	)

	s.UpdateView(false)
	_, err := s.UploadMeshes()
	return err
}

// pickRay aims through the crosshair while the mouse is captured, through the
// cursor otherwise.
func (p *PlayingState) pickRay(e input.Event) picking.Ray {
	cam := p.session.Camera
	if p.captured || p.session.Renderer == nil {
		return picking.NewRay(cam.Position, cam.Forward())
	}
	w, h := p.session.Window.Size()
	inv := cam.ViewProjection(p.session.Renderer.Aspect()).Inv()
	return picking.ScreenToRay(float32(e.MouseX), float32(e.MouseY), float32(w), float32(h), inv)
}

func (p *PlayingState) breakBlock(ray picking.Ray) {
	s := p.session
	solid := func(x, y, z int) bool {
		id := s.World.Block(x, y, z)
		return block.IsSolid(id) && id != block.Bedrock
	}
	hit, ok := ray.Cast(reach, solid)
	if !ok {
		return
	}
	if err := s.Scheduler.DestroyBlock(hit.X, hit.Y, hit.Z); err != nil {
		s.Log.Warn("destroy block failed", zap.Error(err))
		return
	}
	s.Log.Debug("block destroyed",
		zap.Int("x", hit.X), zap.Int("y", hit.Y), zap.Int("z", hit.Z),
		zap.Float32("distance", hit.Distance))
}

func (p *PlayingState) Render() error {
	p.session.Draw()
	return nil
}
