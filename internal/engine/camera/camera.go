// Package camera provides the free-flying camera used to explore the world.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FlyCamera moves freely with yaw/pitch mouse look.
type FlyCamera struct {
	Position mgl32.Vec3

	Yaw   float32 // Radians, 0 looks down -Z
	Pitch float32 // Radians, positive looks up

	FOV       float32 // Vertical, degrees
	Near, Far float32

	Speed            float32 // Blocks per second
	SprintMultiplier float32
	MouseSensitivity float32
	MaxPitch         float32
}

// NewFlyCamera creates a camera at pos with default settings.
func NewFlyCamera(pos mgl32.Vec3, fov float32) *FlyCamera {
	return &FlyCamera{
		Position:         pos,
		FOV:              fov,
		Near:             0.1,
		Far:              2000,
		Speed:            20,
		SprintMultiplier: 4,
		MouseSensitivity: 0.0025,
		MaxPitch:         mgl32.DegToRad(89),
	}
}

// Forward returns the unit look direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	return mgl32.Vec3{
		float32(math.Sin(float64(c.Yaw))) * cp,
		float32(math.Sin(float64(c.Pitch))),
		-float32(math.Cos(float64(c.Yaw))) * cp,
	}
}

// Right returns the unit right vector on the XZ plane.
func (c *FlyCamera) Right() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Yaw))),
		0,
		float32(math.Sin(float64(c.Yaw))),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *FlyCamera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *FlyCamera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.ViewMatrix())
}

// HandleMouse applies a relative mouse motion.
func (c *FlyCamera) HandleMouse(dx, dy float32) {
	c.Yaw += dx * c.MouseSensitivity
	c.Pitch -= dy * c.MouseSensitivity

	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
	if c.Pitch < -c.MaxPitch {
		c.Pitch = -c.MaxPitch
	}
	c.Yaw = float32(math.Mod(float64(c.Yaw), 2*math.Pi))
}

// HandleMovement moves along the look direction (forward), the horizontal right
// vector (right) and world up (up). Inputs are in [-1, 1].
func (c *FlyCamera) HandleMovement(forward, right, up float32, sprint bool, dt float32) {
	dir := c.Forward().Mul(forward).Add(c.Right().Mul(right)).Add(mgl32.Vec3{0, up, 0})
	if dir.Len() == 0 {
		return
	}
	speed := c.Speed
	if sprint {
		speed *= c.SprintMultiplier
	}
	c.Position = c.Position.Add(dir.Normalize().Mul(speed * dt))
}
