package picking

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func wall(x0 int) Solid {
	return func(x, y, z int) bool { return x >= x0 }
}

func TestCastAlongAxis(t *testing.T) {
	r := NewRay(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0})
	hit, ok := r.Cast(10, wall(4))
	if !ok {
		t.Fatal("expected hit")
	}
	if hit.X != 4 || hit.Y != 0 || hit.Z != 0 {
		t.Errorf("hit cell = (%d,%d,%d), want (4,0,0)", hit.X, hit.Y, hit.Z)
	}
	if hit.Normal != [3]int{-1, 0, 0} {
		t.Errorf("normal = %v, want -x", hit.Normal)
	}
	if math.Abs(float64(hit.Distance-3.5)) > 1e-5 {
		t.Errorf("distance = %f, want 3.5", hit.Distance)
	}
}

func TestCastOutOfRange(t *testing.T) {
	r := NewRay(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0})
	if _, ok := r.Cast(2, wall(4)); ok {
		t.Error("hit beyond max distance")
	}
}

func TestCastNegativeDiagonal(t *testing.T) {
	floor := func(x, y, z int) bool { return y < 0 }
	r := NewRay(mgl32.Vec3{0.5, 3.5, 0.5}, mgl32.Vec3{-1, -1, -1})
	hit, ok := r.Cast(20, floor)
	if !ok {
		t.Fatal("expected floor hit")
	}
	if hit.Y != -1 || hit.Normal != [3]int{0, 1, 0} {
		t.Errorf("hit = %+v, want y=-1 entered from +y", hit)
	}
}

func TestCastStartsInside(t *testing.T) {
	r := NewRay(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{0, 1, 0})
	hit, ok := r.Cast(5, func(x, y, z int) bool { return true })
	if !ok || hit.Distance != 0 || hit.Normal != [3]int{} {
		t.Errorf("hit = %+v ok=%v, want zero-distance hit", hit, ok)
	}
}

func TestScreenToRayCenter(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(70), 1, 0.1, 100)
	r := ScreenToRay(50, 50, 100, 100, proj.Mul4(view).Inv())

	if !r.Direction.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4) {
		t.Errorf("direction = %v, want -z", r.Direction)
	}
}
