package ellipse

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
)

// Axes are the principal semi-axes of an ellipse. Rotation is the angle of
// the major axis from the x axis, in radians.
type Axes struct {
	Major, Minor       float64
	MajorDir, MinorDir mgl64.Vec2
	Rotation           float64
}

// PrincipalAxes returns the true semi-axes of arc's ellipse. Arcs produced
// by affine projection can carry a skewed basis; their points are
// Origin + L·(cos t, sin t) with L = [a·XHat  b·YHat], so the semi-axes are
// the singular values of L, i.e. the square roots of the eigenvalues of L·Lᵗ.
func PrincipalAxes(arc *Arc2) Axes {
	x := arc.Plane.XHat.Mul(arc.SemiXAxis)
	y := arc.Plane.YHat.Mul(arc.SemiYAxis)
	g := linalg.Outer2(x, x).Add(linalg.Outer2(y, y))
	eig := linalg.EigenSym2(g[0], g[2], g[3])
	major := eig.Vectors[1]
	return Axes{
		Major:    math.Sqrt(math.Max(eig.Values[1], 0)),
		Minor:    math.Sqrt(math.Max(eig.Values[0], 0)),
		MajorDir: major,
		MinorDir: linalg.Perp(major),
		Rotation: math.Atan2(major[1], major[0]),
	}
}
