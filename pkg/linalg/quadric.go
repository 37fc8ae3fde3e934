package linalg

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quadric3 is the second-degree surface xᵗAx + B·x + C = 0 with A symmetric.
type Quadric3 struct {
	A mgl64.Mat3
	B mgl64.Vec3
	C float64
}

// Eval returns the left-hand side of the quadric equation at x.
func (q Quadric3) Eval(x mgl64.Vec3) float64 {
	return QuadForm3(q.A, x, x) + q.B.Dot(x) + q.C
}

// Rotate re-expresses the quadric after a change of basis: the result at
// frame·x equals q at x. frame must be orthonormal.
func (q Quadric3) Rotate(frame mgl64.Mat3) Quadric3 {
	return Quadric3{
		A: frame.Mul3(q.A).Mul3(frame.Transpose()),
		B: frame.Mul3x1(q.B),
		C: q.C,
	}
}

// Translate moves the origin: the result at origin + x equals q at x.
func (q Quadric3) Translate(origin mgl64.Vec3) Quadric3 {
	aO := q.A.Mul3x1(origin)
	return Quadric3{
		A: q.A,
		B: q.B.Sub(aO.Mul(2)),
		C: origin.Dot(aO) - q.B.Dot(origin) + q.C,
	}
}

// ToWorld re-expresses a quadric given in the local coordinates of a frame
// into world coordinates, where world = origin + frame·local and frame is
// orthonormal.
func (q Quadric3) ToWorld(origin mgl64.Vec3, frame mgl64.Mat3) Quadric3 {
	return q.Rotate(frame).Translate(origin)
}

// Restrict substitutes the plane parametrization x = center + s·xHat + t·yHat
// and returns the conic in (s, t).
func (q Quadric3) Restrict(center, xHat, yHat mgl64.Vec3) Conic2 {
	aX := q.A.Mul3x1(xHat)
	aY := q.A.Mul3x1(yHat)
	aC := q.A.Mul3x1(center)
	return Conic2{
		A: Sym2(xHat.Dot(aX), xHat.Dot(aY), yHat.Dot(aY)),
		B: mgl64.Vec2{
			2*aC.Dot(xHat) + q.B.Dot(xHat),
			2*aC.Dot(yHat) + q.B.Dot(yHat),
		},
		C: q.Eval(center),
	}
}

// Conic2 is the plane curve yᵗAy + B·y + C = 0 with A symmetric.
type Conic2 struct {
	A mgl64.Mat2
	B mgl64.Vec2
	C float64
}

// Eval returns the left-hand side of the conic equation at y.
func (c Conic2) Eval(y mgl64.Vec2) float64 {
	return QuadForm2(c.A, y, y) + c.B.Dot(y) + c.C
}

// Scale returns the conic with every coefficient multiplied by s.
func (c Conic2) Scale(s float64) Conic2 {
	return Conic2{A: c.A.Mul(s), B: c.B.Mul(s), C: c.C * s}
}

// CenterForm rewrites a central conic as (y-K)ᵗM(y-K) = 1.
//
// ErrSingular is returned when A is singular (parabolas and parallel line
// pairs have no center) or when the conic passes through its own center
// (a point or a pair of crossing lines).
func (c Conic2) CenterForm(eps float64) (k mgl64.Vec2, m mgl64.Mat2, err error) {
	inv, err := Inverse2(c.A, eps)
	if err != nil {
		return mgl64.Vec2{}, mgl64.Mat2{}, fmt.Errorf("conic has no center: %w", err)
	}
	k = Mul2x1(inv, c.B).Mul(-0.5)
	d := -c.Eval(k)
	scale := math.Abs(c.C) + math.Abs(QuadForm2(c.A, k, k))
	if math.Abs(d) <= eps*scale || d == 0 {
		return k, mgl64.Mat2{}, fmt.Errorf("conic degenerates at its center: %w", ErrSingular)
	}
	return k, c.A.Mul(1 / d), nil
}
