package linalg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Eigen2 is the eigen-decomposition of a symmetric 2×2 matrix. Values are
// ascending and Vectors[i] is the unit eigenvector of Values[i]; the two
// vectors form a right-handed orthonormal pair.
type Eigen2 struct {
	Values  [2]float64
	Vectors [2]mgl64.Vec2
}

// EigenSym2 decomposes the symmetric matrix [[a, b], [b, c]] in closed form.
//
// The eigenvalue of larger magnitude comes from the quadratic formula and the
// other from the determinant, which avoids cancellation when the two differ
// by orders of magnitude. Each eigenvalue has two algebraic eigenvector
// candidates, (b, λ-a) and (λ-c, b); the longest of all four is kept and its
// partner is the perpendicular direction. When every candidate vanishes the
// matrix is a multiple of the identity and the coordinate axes are returned.
func EigenSym2(a, b, c float64) Eigen2 {
	mean := (a + c) / 2
	r := math.Hypot((a-c)/2, b)
	det := a*c - b*b

	var lo, hi float64
	switch {
	case mean >= 0:
		hi = mean + r
		if hi != 0 {
			lo = det / hi
		} else {
			lo = mean - r
		}
	default:
		lo = mean - r
		hi = det / lo
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	best := mgl64.Vec2{}
	bestLen := 0.0
	bestIsLo := true
	for i, lambda := range [2]float64{lo, hi} {
		for _, cand := range [2]mgl64.Vec2{{b, lambda - a}, {lambda - c, b}} {
			if l := cand.Len(); l > bestLen {
				best, bestLen, bestIsLo = cand, l, i == 0
			}
		}
	}

	e := Eigen2{Values: [2]float64{lo, hi}}
	scale := math.Abs(a) + math.Abs(b) + math.Abs(c)
	if bestLen <= DefaultEps*scale || bestLen == 0 {
		e.Vectors = [2]mgl64.Vec2{{1, 0}, {0, 1}}
		return e
	}
	best = best.Mul(1 / bestLen)
	if bestIsLo {
		e.Vectors = [2]mgl64.Vec2{best, Perp(best)}
	} else {
		e.Vectors = [2]mgl64.Vec2{Perp(best).Mul(-1), best}
	}
	return e
}
