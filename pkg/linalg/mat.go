package linalg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Outer3 returns the outer product a bᵗ.
func Outer3(a, b mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromCols(a.Mul(b[0]), a.Mul(b[1]), a.Mul(b[2]))
}

// Outer2 returns the outer product a bᵗ.
func Outer2(a, b mgl64.Vec2) mgl64.Mat2 {
	return mgl64.Mat2FromCols(a.Mul(b[0]), a.Mul(b[1]))
}

// Sym2 builds the symmetric matrix [[a, b], [b, c]].
func Sym2(a, b, c float64) mgl64.Mat2 {
	// mgl64 matrices are column-major.
	return mgl64.Mat2{a, b, b, c}
}

// Inverse2 inverts m in closed form. A determinant within eps of zero,
// relative to the magnitude of the entries, yields ErrSingular.
func Inverse2(m mgl64.Mat2, eps float64) (mgl64.Mat2, error) {
	det := m[0]*m[3] - m[2]*m[1]
	scale := math.Abs(m[0]) + math.Abs(m[1]) + math.Abs(m[2]) + math.Abs(m[3])
	if math.Abs(det) <= eps*scale*scale || det == 0 {
		return mgl64.Mat2{}, ErrSingular
	}
	inv := 1 / det
	return mgl64.Mat2{m[3] * inv, -m[1] * inv, -m[2] * inv, m[0] * inv}, nil
}

// Mul2x1 returns m v.
func Mul2x1(m mgl64.Mat2, v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{m[0]*v[0] + m[2]*v[1], m[1]*v[0] + m[3]*v[1]}
}

// QuadForm2 returns vᵗ m w.
func QuadForm2(m mgl64.Mat2, v, w mgl64.Vec2) float64 {
	return v.Dot(Mul2x1(m, w))
}

// QuadForm3 returns vᵗ m w.
func QuadForm3(m mgl64.Mat3, v, w mgl64.Vec3) float64 {
	return v.Dot(m.Mul3x1(w))
}

// FrameMatrix returns the matrix whose columns are the given axes, mapping
// local coordinates to world directions.
func FrameMatrix(x, y, z mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromCols(x, y, z)
}
