package physac

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector2 is a 2D vector value. It is the mathgl Vec2 so callers get its full method set.
type Vector2 = mgl64.Vec2

const epsilon = 0.000001

func NewVector2(x, y float64) Vector2 {
	return Vector2{x, y}
}

// cross returns the z component of a x b.
func cross(a, b Vector2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// crossSV returns s x v for a scalar angular quantity s.
func crossSV(s float64, v Vector2) Vector2 {
	return Vector2{-s * v[1], s * v[0]}
}

func lenSq(v Vector2) float64 {
	return v.Dot(v)
}

// normalize is Vec2.Normalize without the division by zero.
func normalize(v Vector2) Vector2 {
	mag := v.Len()
	if mag == 0 {
		return Vector2{}
	}
	invMag := 1.0 / mag
	return Vector2{v[0] * invMag, v[1] * invMag}
}

func rotation(radians float64) mgl64.Mat2 {
	return mgl64.Rotate2D(radians)
}

func nextIndex(i, count int) int {
	if i+1 < count {
		return i + 1
	}
	return 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v Vector2) bool {
	return finite(v[0]) && finite(v[1])
}

func safeInverse(v float64) float64 {
	if v == 0 || !finite(v) {
		return 0
	}
	return 1.0 / v
}

// ==================== AABB ====================

type AABB struct {
	Min, Max Vector2
}

func (aabb AABB) Overlaps(other AABB) bool {
	return aabb.Min[0] <= other.Max[0] && aabb.Max[0] >= other.Min[0] &&
		aabb.Min[1] <= other.Max[1] && aabb.Max[1] >= other.Min[1]
}

func (aabb AABB) Contains(point Vector2) bool {
	return point[0] >= aabb.Min[0] && point[0] <= aabb.Max[0] &&
		point[1] >= aabb.Min[1] && point[1] <= aabb.Max[1]
}

func (aabb AABB) Center() Vector2 {
	return Vector2{
		(aabb.Min[0] + aabb.Max[0]) * 0.5,
		(aabb.Min[1] + aabb.Max[1]) * 0.5,
	}
}

func (aabb AABB) Expand(margin float64) AABB {
	return AABB{
		Min: Vector2{aabb.Min[0] - margin, aabb.Min[1] - margin},
		Max: Vector2{aabb.Max[0] + margin, aabb.Max[1] + margin},
	}
}
