package archytas

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/ellipse"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// circleArc is a line-only generatrix tracing a circle point by point:
// center + r·(cos t·x̂ + sin t·ŷ).
type circleArc struct {
	center mgl64.Vec3
	plane  linalg.Plane3
	radius float64
}

func (g *circleArc) VertexCount() int         { return 1 }
func (g *circleArc) SharedVertexCount() int   { return 0 }
func (g *circleArc) Shared(_, _ []mgl64.Vec3) {}
func (g *circleArc) Apex() bool               { return false }
func (g *circleArc) ClosesToShared() bool     { return false }

func (g *circleArc) Slice(t, _ float64, vtx, nrm []mgl64.Vec3) {
	s, c := math.Sincos(t)
	vtx[0] = g.plane.PointAt(g.center, g.radius*c, g.radius*s)
	nrm[0] = g.plane.PointAt(mgl64.Vec3{}, c, s)
}

func (g *circleArc) arc(r valuerange.ValueRange, end float64) ellipse.Arc3 {
	steps := max(r.LastIncludedStepIdx(end), 1)
	return ellipse.Arc3{
		Origin:        g.center,
		Plane:         g.plane,
		CircularAngle: valuerange.MustConstStepRange(r.Start(), end, steps),
		SemiXAxis:     g.radius,
		SemiYAxis:     g.radius,
	}
}

// BaseCircle is the arc of the base circle from A to M. Its central angle
// is 2τ = π - 2φ.
type BaseCircle struct {
	*solid
	gen *circleArc
	d   float64
}

func newBaseCircle(cfg Config, logger *slog.Logger) (*BaseCircle, error) {
	r := valuerange.MustConstStepRange(0, math.Pi, cfg.CircleSteps)
	gen := &circleArc{center: mgl64.Vec3{cfg.Diameter / 2, 0, 0}, plane: linalg.XYPlane3, radius: cfg.Diameter / 2}
	s, err := newSolid("base-circle", gen, r, logger, MaterialCircle, "A", "M")
	if err != nil {
		return nil, err
	}
	b := &BaseCircle{solid: s, gen: gen, d: cfg.Diameter}
	b.updateAnchors()
	return b, nil
}

// SetAngleOAPCompliment draws the arc up to M for φ = angleOAPCompliment.
func (b *BaseCircle) SetAngleOAPCompliment(phi float64) bool {
	if !b.surface.SetValue(math.Pi - 2*phi) {
		return false
	}
	b.updateAnchors()
	return true
}

// CentralAngle is the angle AO'M at the circle's center.
func (b *BaseCircle) CentralAngle() float64 { return b.surface.Value() }

// Arc returns the drawn arc for export.
func (b *BaseCircle) Arc() ellipse.Arc3 {
	return b.gen.arc(b.surface.Range(), b.surface.Value())
}

func (b *BaseCircle) updateAnchors() {
	b.anchors[0].Position = mgl64.Vec3{b.d, 0, 0}
	b.anchors[1].Position = PointsAt(b.d, b.surface.Value()/2).M
}

// TransverseCircle is the semicircle on OA' standing on the base plane: the
// torus generatrix at the current angle. It is meshed once in the plane of
// OA and turned about z by its mesh transform, so following τ costs
// nothing. Its central angle θ runs from the O side to P, with
// cos θ = 1 - 2·sin(π - φ).
type TransverseCircle struct {
	*solid
	gen *circleArc
	d   float64
	tau float64
}

func newTransverseCircle(cfg Config, logger *slog.Logger) (*TransverseCircle, error) {
	r := valuerange.MustConstStepRange(0, math.Pi, cfg.CircleSteps)
	gen := &circleArc{
		center: mgl64.Vec3{cfg.Diameter / 2, 0, 0},
		plane:  linalg.Plane3{XHat: mgl64.Vec3{-1, 0, 0}, YHat: mgl64.Vec3{0, 0, 1}},
		radius: cfg.Diameter / 2,
	}
	s, err := newSolid("transverse-circle", gen, r, logger, MaterialCircle, "P")
	if err != nil {
		return nil, err
	}
	t := &TransverseCircle{solid: s, gen: gen, d: cfg.Diameter}
	t.updateAnchors()
	return t, nil
}

// TransverseAngle returns θ for φ = angleOAPCompliment.
func TransverseAngle(phi float64) float64 {
	return math.Acos(1 - 2*math.Sin(math.Pi-phi))
}

// SetAngleOAPCompliment turns the circle's plane to τ = π/2 - φ and draws
// the arc from O up to P.
func (t *TransverseCircle) SetAngleOAPCompliment(phi float64) bool {
	if !(phi >= 0 && phi <= math.Pi/2) {
		t.reject("angleOAPCompliment", phi)
		return false
	}
	changed := t.surface.SetValue(TransverseAngle(phi))
	if tau := complement(phi); tau != t.tau {
		t.tau = tau
		t.surface.SetTransform(mgl64.HomogRotate3DZ(tau))
		changed = true
	}
	if changed {
		t.updateAnchors()
	}
	return changed
}

// CentralAngle is the angle from O to P at the circle's center.
func (t *TransverseCircle) CentralAngle() float64 { return t.surface.Value() }

// Arc returns the drawn arc, in world coordinates, for export.
func (t *TransverseCircle) Arc() ellipse.Arc3 {
	a := t.gen.arc(t.surface.Range(), t.surface.Value())
	rot := mgl64.Rotate3DZ(t.tau)
	a.Origin = rot.Mul3x1(a.Origin)
	a.Plane.XHat = rot.Mul3x1(a.Plane.XHat)
	a.Plane.YHat = rot.Mul3x1(a.Plane.YHat)
	return a
}

func (t *TransverseCircle) updateAnchors() {
	s, c := math.Sincos(t.tau)
	rot := mgl64.Vec3{c, s, 0}
	theta := t.surface.Value()
	horiz := t.d / 2 * (1 - math.Cos(theta))
	t.anchors[0].Position = rot.Mul(horiz).Add(mgl64.Vec3{0, 0, t.d / 2 * math.Sin(theta)})
}
