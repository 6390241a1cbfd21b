package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b mgl32.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-5)
}

func TestForward(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float32
		want       mgl32.Vec3
	}{
		{"default", 0, 0, mgl32.Vec3{0, 0, -1}},
		{"quarter turn", math.Pi / 2, 0, mgl32.Vec3{1, 0, 0}},
		{"straight up", 0, math.Pi / 2, mgl32.Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFlyCamera(mgl32.Vec3{}, 70)
			c.Yaw, c.Pitch = tt.yaw, tt.pitch
			if got := c.Forward(); !approx(got, tt.want) {
				t.Errorf("Forward() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRightIsPerpendicular(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{}, 70)
	for _, yaw := range []float32{0, 0.3, 1.7, -2.5} {
		c.Yaw = yaw
		if d := c.Forward().Dot(c.Right()); math.Abs(float64(d)) > 1e-5 {
			t.Errorf("yaw %f: forward·right = %f, want 0", yaw, d)
		}
	}
}

func TestHandleMouseClampsPitch(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{}, 70)
	c.HandleMouse(0, -1e6)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %f, want %f", c.Pitch, c.MaxPitch)
	}
	c.HandleMouse(0, 1e6)
	if c.Pitch != -c.MaxPitch {
		t.Errorf("Pitch = %f, want %f", c.Pitch, -c.MaxPitch)
	}
}

func TestHandleMovement(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{10, 20, 30}, 70)
	c.Speed = 2

	c.HandleMovement(1, 0, 0, false, 0.5)
	if want := (mgl32.Vec3{10, 20, 29}); !approx(c.Position, want) {
		t.Errorf("forward: Position = %v, want %v", c.Position, want)
	}

	c.HandleMovement(0, 0, 1, true, 0.5)
	if want := (mgl32.Vec3{10, 24, 29}); !approx(c.Position, want) {
		t.Errorf("sprint up: Position = %v, want %v", c.Position, want)
	}

	before := c.Position
	c.HandleMovement(0, 0, 0, false, 1)
	if c.Position != before {
		t.Errorf("idle: Position moved to %v", c.Position)
	}
}

func TestViewMatrixCentersTarget(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{5, 6, 7}, 70)
	c.Yaw = 0.4
	c.Pitch = -0.2

	target := c.Position.Add(c.Forward().Mul(10))
	p := c.ViewMatrix().Mul4x1(target.Vec4(1))
	if math.Abs(float64(p.X())) > 1e-4 || math.Abs(float64(p.Y())) > 1e-4 {
		t.Errorf("target in view space = %v, want on -Z axis", p)
	}
	if p.Z() > -9.99 || p.Z() < -10.01 {
		t.Errorf("target depth = %f, want -10", p.Z())
	}
}
