// Package picking casts rays against the voxel grid.
package picking

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// Solid reports whether the block at a world coordinate stops a ray.
type Solid func(x, y, z int) bool

// Hit is the first cell a ray entered that Solid accepted.
type Hit struct {
	X, Y, Z  int
	Distance float32
	// Normal is the face the ray entered through, zero if it started inside.
	Normal [3]int
}

// ScreenToRay converts screen coordinates to a world-space ray.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // Flip Y

	near := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, -1}, invViewProj)
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, 1}, invViewProj)

	return NewRay(near, far.Sub(near))
}

// NewRay normalizes dir.
func NewRay(origin, dir mgl32.Vec3) Ray {
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: origin, Direction: dir}
}

// Cast walks the cells the ray crosses, nearest first, up to maxDist. It returns
// the first cell for which solid is true.
func (r Ray) Cast(maxDist float32, solid Solid) (Hit, bool) {
	var (
		cell  [3]int
		step  [3]int
		tMax  [3]float64
		tStep [3]float64
	)
	for a := 0; a < 3; a++ {
		o := float64(r.Origin[a])
		d := float64(r.Direction[a])
		cell[a] = int(math.Floor(o))
		switch {
		case d > 0:
			step[a] = 1
			tStep[a] = 1 / d
			tMax[a] = (float64(cell[a]+1) - o) / d
		case d < 0:
			step[a] = -1
			tStep[a] = -1 / d
			tMax[a] = (float64(cell[a]) - o) / d
		default:
			tMax[a] = math.Inf(1)
			tStep[a] = math.Inf(1)
		}
	}

	var (
		t      float64
		normal [3]int
	)
	for t <= float64(maxDist) {
		if solid(cell[0], cell[1], cell[2]) {
			return Hit{X: cell[0], Y: cell[1], Z: cell[2], Distance: float32(t), Normal: normal}, true
		}
		a := 0
		if tMax[1] < tMax[a] {
			a = 1
		}
		if tMax[2] < tMax[a] {
			a = 2
		}
		if math.IsInf(tMax[a], 1) {
			break
		}
		t = tMax[a]
		tMax[a] += tStep[a]
		cell[a] += step[a]
		normal = [3]int{}
		normal[a] = -step[a]
	}
	return Hit{}, false
}
