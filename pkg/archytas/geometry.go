// Package archytas models Archytas' solution of the Delian problem: a horn
// torus, a cylinder and a cone meeting in a point P whose distance from O
// is the first of two mean proportionals between OA and b.
//
// O is the origin, A = (d, 0, 0) and the base plane is z = 0. One control
// angle, angleOAP, drives every solid.
package archytas

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Points are the named points of the construction at one control angle.
type Points struct {
	O, A   mgl64.Vec3
	APrime mgl64.Vec3 // end of the rotated diameter, A' = d(cos τ, sin τ, 0)
	M      mgl64.Vec3 // foot of P on the base circle
	P      mgl64.Vec3 // torus ∩ cylinder point above M
}

// PointsAt returns the construction points for diameter d and control
// angle τ = angleOAP. With c = cos τ, M = d·c·(cos τ, sin τ, 0) and
// P = (d c², d c sin τ, d √(c(1-c))).
func PointsAt(d, tau float64) Points {
	s, c := math.Sincos(tau)
	return Points{
		A:      mgl64.Vec3{d, 0, 0},
		APrime: mgl64.Vec3{d * c, d * s, 0},
		M:      mgl64.Vec3{d * c * c, d * c * s, 0},
		P:      mgl64.Vec3{d * c * c, d * c * s, d * math.Sqrt(math.Max(c*(1-c), 0))},
	}
}

// Solution is where the cone meets the torus-cylinder curve.
type Solution struct {
	// AngleOAP is the control angle τ* with cos τ* = ratio^(2/3).
	AngleOAP float64
	// OP is d·ratio^(1/3), the first mean proportional between d and
	// ratio·d. Ratio 1/2 gives the edge of the doubled cube.
	OP float64
	// OM is d·ratio^(2/3), the second mean proportional.
	OM float64
}

// Solve returns the solution for diameter d and ratio b/d.
func Solve(d, ratio float64) Solution {
	c := math.Cbrt(ratio * ratio)
	return Solution{
		AngleOAP: math.Acos(c),
		OP:       d * math.Cbrt(ratio),
		OM:       d * c,
	}
}

// complement converts between angleOAP and angleOAPCompliment.
func complement(a float64) float64 {
	return math.Pi/2 - a
}
