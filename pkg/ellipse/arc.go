// Package ellipse describes elliptical arcs and computes their exact images
// under affine and perspective cameras.
//
// Arcs use the circular-angle parametrization: the point at angle t is
// Origin + SemiXAxis·cos t·XHat + SemiYAxis·sin t·YHat, i.e. the angle on the
// auxiliary circle rather than the polar angle of the ellipse.
package ellipse

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// FullTurn is the circular-angle range used when an arc has none.
var FullTurn = valuerange.MustConstStepRange(0, 2*math.Pi, 64)

// Arc3 is an elliptical arc embedded in 3-D space.
type Arc3 struct {
	Origin        mgl64.Vec3
	Plane         linalg.Plane3
	CircularAngle valuerange.ValueRange
	SemiXAxis     float64
	SemiYAxis     float64
}

// Range returns the circular-angle range, defaulting to FullTurn.
func (a *Arc3) Range() valuerange.ValueRange {
	if a.CircularAngle == nil {
		return FullTurn
	}
	return a.CircularAngle
}

// PointAt returns the arc point at circular angle t.
func (a *Arc3) PointAt(t float64) mgl64.Vec3 {
	s, c := math.Sincos(t)
	return a.Plane.PointAt(a.Origin, a.SemiXAxis*c, a.SemiYAxis*s)
}

func (a *Arc3) Start() mgl64.Vec3 { return a.PointAt(a.Range().Start()) }
func (a *Arc3) End() mgl64.Vec3   { return a.PointAt(a.Range().End()) }

// MidPoint is the point halfway through the circular-angle range.
func (a *Arc3) MidPoint() mgl64.Vec3 {
	r := a.Range()
	return a.PointAt((r.Start() + r.End()) / 2)
}

// Arc2 is an elliptical arc in the plane. Its basis may be skewed when it
// comes from an affine projection; see PrincipalAxes.
type Arc2 struct {
	Origin        mgl64.Vec2
	Plane         linalg.Plane2
	CircularAngle valuerange.ValueRange
	SemiXAxis     float64
	SemiYAxis     float64
}

// Range returns the circular-angle range, defaulting to FullTurn.
func (a *Arc2) Range() valuerange.ValueRange {
	if a.CircularAngle == nil {
		return FullTurn
	}
	return a.CircularAngle
}

// PointAt returns the arc point at circular angle t.
func (a *Arc2) PointAt(t float64) mgl64.Vec2 {
	s, c := math.Sincos(t)
	return a.Plane.PointAt(a.Origin, a.SemiXAxis*c, a.SemiYAxis*s)
}

func (a *Arc2) Start() mgl64.Vec2 { return a.PointAt(a.Range().Start()) }
func (a *Arc2) End() mgl64.Vec2   { return a.PointAt(a.Range().End()) }

// MidPoint is the point halfway through the circular-angle range.
func (a *Arc2) MidPoint() mgl64.Vec2 {
	r := a.Range()
	return a.PointAt((r.Start() + r.End()) / 2)
}

// IsFull reports whether the arc covers a whole turn.
func (a *Arc2) IsFull() bool {
	r := a.Range()
	return isFullTurn(r.End() - r.Start())
}

// AngleOf returns the circular angle of a point on the arc's ellipse,
// in (-π, π]. Points off the ellipse map to the angle of their radial
// projection in the arc's coordinates.
func (a *Arc2) AngleOf(q mgl64.Vec2) float64 {
	x, y, err := a.Plane.Coordinates(a.Origin, q)
	if err != nil || a.SemiXAxis == 0 || a.SemiYAxis == 0 {
		return 0
	}
	return math.Atan2(y/a.SemiYAxis, x/a.SemiXAxis)
}

const fullTurnTol = 1e-9

func isFullTurn(span float64) bool {
	return math.Abs(span) >= 2*math.Pi-fullTurnTol
}

// ccw returns the counter-clockwise sweep from angle a to angle b in [0, 2π).
func ccw(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d
}
