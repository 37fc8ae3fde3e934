package linalg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultEps is the tolerance used for near-zero comparisons when the
// caller does not supply one.
const DefaultEps = 1e-15

// AddTo sets out = a + b.
func AddTo(out *mgl64.Vec3, a, b mgl64.Vec3) *mgl64.Vec3 {
	out[0], out[1], out[2] = a[0]+b[0], a[1]+b[1], a[2]+b[2]
	return out
}

// SubTo sets out = a - b.
func SubTo(out *mgl64.Vec3, a, b mgl64.Vec3) *mgl64.Vec3 {
	out[0], out[1], out[2] = a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return out
}

// ScaleAddTo sets out = a + s*b.
func ScaleAddTo(out *mgl64.Vec3, a mgl64.Vec3, s float64, b mgl64.Vec3) *mgl64.Vec3 {
	out[0], out[1], out[2] = a[0]+s*b[0], a[1]+s*b[1], a[2]+s*b[2]
	return out
}

// CrossTo sets out = a × b. out may alias a or b.
func CrossTo(out *mgl64.Vec3, a, b mgl64.Vec3) *mgl64.Vec3 {
	*out = a.Cross(b)
	return out
}

// NormalizeTo writes the unit vector of v into out. A zero vector is
// written unchanged instead of producing NaNs.
func NormalizeTo(out *mgl64.Vec3, v mgl64.Vec3) *mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		*out = v
		return out
	}
	out[0], out[1], out[2] = v[0]/l, v[1]/l, v[2]/l
	return out
}

// AddTo2 sets out = a + b.
func AddTo2(out *mgl64.Vec2, a, b mgl64.Vec2) *mgl64.Vec2 {
	out[0], out[1] = a[0]+b[0], a[1]+b[1]
	return out
}

// SubTo2 sets out = a - b.
func SubTo2(out *mgl64.Vec2, a, b mgl64.Vec2) *mgl64.Vec2 {
	out[0], out[1] = a[0]-b[0], a[1]-b[1]
	return out
}

// ScaleAddTo2 sets out = a + s*b.
func ScaleAddTo2(out *mgl64.Vec2, a mgl64.Vec2, s float64, b mgl64.Vec2) *mgl64.Vec2 {
	out[0], out[1] = a[0]+s*b[0], a[1]+s*b[1]
	return out
}

// NormalizeTo2 writes the unit vector of v into out; zero stays zero.
func NormalizeTo2(out *mgl64.Vec2, v mgl64.Vec2) *mgl64.Vec2 {
	l := v.Len()
	if l == 0 {
		*out = v
		return out
	}
	out[0], out[1] = v[0]/l, v[1]/l
	return out
}

// Distance returns |a - b|.
func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// Distance2 returns |a - b| for plane points.
func Distance2(a, b mgl64.Vec2) float64 {
	return a.Sub(b).Len()
}

// Perp returns v rotated counter-clockwise by a quarter turn.
func Perp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v[1], v[0]}
}

// Cross2 returns the z component of the 3-D cross product of a and b.
func Cross2(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// IsZero reports whether every component of v is within eps of zero.
func IsZero(v mgl64.Vec3, eps float64) bool {
	return math.Abs(v[0]) <= eps && math.Abs(v[1]) <= eps && math.Abs(v[2]) <= eps
}

// IsZero2 reports whether every component of v is within eps of zero.
func IsZero2(v mgl64.Vec2, eps float64) bool {
	return math.Abs(v[0]) <= eps && math.Abs(v[1]) <= eps
}

// IsFinite reports whether v has no NaN or infinite components.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Rotate rotates v by angle radians around the unit axis (Rodrigues).
func Rotate(v, axis mgl64.Vec3, angle float64) mgl64.Vec3 {
	s, c := math.Sincos(angle)
	kxv := axis.Cross(v)
	kdv := axis.Dot(v)
	return v.Mul(c).Add(kxv.Mul(s)).Add(axis.Mul(kdv * (1 - c)))
}

// Vec32 converts v to the float32 layout used by vertex buffers.
func Vec32(v mgl64.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}
