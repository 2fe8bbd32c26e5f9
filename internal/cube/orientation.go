package cube

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SnapOrientation returns the axis-aligned rotation (one of 24) nearest to q,
// in the same quaternion hemisphere as q. If the rotated basis is too far from
// axis-aligned to resolve, q is returned normalized.
func SnapOrientation(q mgl64.Quat) mgl64.Quat {
	q = q.Normalize()

	var cols [3]mgl64.Vec3
	var used [3]bool
	for i := 0; i < 3; i++ {
		var e mgl64.Vec3
		e[i] = 1
		v := q.Rotate(e)

		axis := dominantAxis(v)
		if used[axis] {
			return q
		}
		used[axis] = true

		var snapped mgl64.Vec3
		snapped[axis] = math.Copysign(1, v[axis])
		cols[i] = snapped
	}

	// reject reflections
	if cols[0].Cross(cols[1]).Dot(cols[2]) < 0 {
		return q
	}

	m := mgl64.Mat4{
		cols[0][0], cols[0][1], cols[0][2], 0,
		cols[1][0], cols[1][1], cols[1][2], 0,
		cols[2][0], cols[2][1], cols[2][2], 0,
		0, 0, 0, 1,
	}
	out := mgl64.Mat4ToQuat(m).Normalize()
	if out.Dot(q) < 0 {
		out = out.Scale(-1)
	}
	return out
}

// OrientationResidual returns the largest component difference between q and
// its snapped axis-aligned orientation.
func OrientationResidual(q mgl64.Quat) float64 {
	q = q.Normalize()
	s := SnapOrientation(q)
	worst := math.Abs(q.W - s.W)
	for i := 0; i < 3; i++ {
		if d := math.Abs(q.V[i] - s.V[i]); d > worst {
			worst = d
		}
	}
	return worst
}

func dominantAxis(v mgl64.Vec3) int {
	best := 0
	for i := 1; i < 3; i++ {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	return best
}
