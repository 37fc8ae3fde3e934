package ellipse

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/camera"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// Projector computes exact images of elliptical arcs. It keeps scratch
// state between calls and must not be used from several goroutines at once.
type Projector struct {
	eps    float64
	logger *slog.Logger

	conic linalg.Conic2
	pts   [3]mgl64.Vec2
}

// Option configures a Projector.
type Option func(*Projector)

// WithEps sets the tolerance used by the degeneracy tests.
func WithEps(eps float64) Option {
	return func(p *Projector) { p.eps = eps }
}

// WithLogger sets the logger that receives non-ellipse diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Projector) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProjector returns a projector with eps 1e-15 and the default logger.
func NewProjector(opts ...Option) *Projector {
	p := &Projector{eps: linalg.DefaultEps, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Eps is the degeneracy tolerance.
func (p *Projector) Eps() float64 { return p.eps }

// Project writes the image of in under cam into out and returns out.
//
// Cameras with an eye point get the exact perspective image; any other
// camera is treated as affine and the arc's origin and axes are projected
// directly. Degenerate inputs produce a segment or a point instead of an
// error.
func (p *Projector) Project(out *Arc2, in *Arc3, cam camera.Camera3) *Arc2 {
	eyeCam, ok := cam.(EyeCamera)
	if !ok {
		return p.projectAffine(out, in, cam)
	}
	eye := localEye(in, eyeCam.WorldPosition())
	if in.SemiXAxis < p.eps || in.SemiYAxis < p.eps ||
		math.Abs(eye[2]) <= p.eps*math.Max(1, eye.Len()) {
		return p.projectDegenerate(out, in, cam, eye)
	}

	p.conic = PlaneConic(in, eyeCam)
	k, m, err := p.conic.CenterForm(p.eps)
	if err != nil {
		p.logger.Error("projected conic has no center, treating it as degenerate",
			slog.Any("origin", in.Origin), slog.String("error", err.Error()))
		return p.projectDegenerate(out, in, cam, eye)
	}
	eig := linalg.EigenSym2(m[0], m[2], m[3])
	l0, l1 := eig.Values[0], eig.Values[1]
	if kind := conicKind(l0, l1, p.eps); kind != "" {
		p.logger.Error("projected conic is not an ellipse", slog.String("kind", kind),
			slog.Any("origin", in.Origin), slog.Float64("lambda0", l0), slog.Float64("lambda1", l1))
	}

	out.Origin = k
	out.Plane.XHat = eig.Vectors[0]
	out.Plane.YHat = eig.Vectors[1]
	out.SemiXAxis = 1 / math.Sqrt(math.Abs(l0))
	out.SemiYAxis = 1 / math.Sqrt(math.Abs(l1))
	p.orient(out, in, cam)
	return out
}

// conicKind names the conic x·Mx = 1 for the ascending eigenvalues l0, l1
// of M, or returns "" for an ellipse. Both eigenvalues negative means no
// real points and only comes from numerical breakdown.
func conicKind(l0, l1, eps float64) string {
	switch {
	case l1 < 0:
		return "imaginary"
	case l0 < 0 && math.Abs(l0) > eps*math.Abs(l1):
		return "hyperbola"
	case math.Abs(l0) <= eps*math.Abs(l1):
		return "parabola"
	}
	return ""
}

// orient picks the direction of YHat and the output angle range so that the
// arc sweeps counter-clockwise from the image of the start point through the
// image of the midpoint to the image of the end point. Projective maps keep
// the cyclic order of points on a conic, so one probe point decides the
// direction for any span below a full turn. Full turns use the quarter and
// half points instead.
func (p *Projector) orient(out *Arc2, in *Arc3, cam camera.Camera3) {
	r := in.Range()
	s, e := r.Start(), r.End()
	full := isFullTurn(e - s)

	p.pts[0] = cam.Project(in.PointAt(s))
	if full {
		p.pts[1] = cam.Project(in.PointAt(s + (e-s)/4))
		p.pts[2] = cam.Project(in.PointAt(s + (e-s)/2))
	} else {
		p.pts[1] = cam.Project(in.PointAt((s + e) / 2))
		p.pts[2] = cam.Project(in.PointAt(e))
	}
	t0, t1, t2 := out.AngleOf(p.pts[0]), out.AngleOf(p.pts[1]), out.AngleOf(p.pts[2])
	if ccw(t0, t1) > ccw(t0, t2) {
		out.Plane.YHat = out.Plane.YHat.Mul(-1)
		t0, t2 = out.AngleOf(p.pts[0]), out.AngleOf(p.pts[2])
	}

	end := t0 + ccw(t0, t2)
	switch {
	case full:
		end = t0 + 2*math.Pi
	case s == e:
		end = t0
	}
	setRange(out, t0, end, r.StepCount())
}

// projectAffine maps the origin and the two axis end points. The image of
// the arc under an affine map is the arc with the mapped origin and axes, so
// the angle range is kept.
func (p *Projector) projectAffine(out *Arc2, in *Arc3, cam camera.Camera3) *Arc2 {
	o := cam.Project(in.Origin)
	x := cam.Project(in.Origin.Add(in.Plane.XHat)).Sub(o)
	y := cam.Project(in.Origin.Add(in.Plane.YHat)).Sub(o)

	out.Origin = o
	out.SemiXAxis, out.Plane.XHat = scaledAxis(in.SemiXAxis, x, mgl64.Vec2{1, 0}, p.eps)
	out.SemiYAxis, out.Plane.YHat = scaledAxis(in.SemiYAxis, y, mgl64.Vec2{0, 1}, p.eps)
	copyRange(out, in.Range())
	return out
}

// Project2 maps a planar arc through an affine planar camera.
func (p *Projector) Project2(out *Arc2, in *Arc2, cam *camera.PlaneCamera2) *Arc2 {
	out.Origin = cam.Project(in.Origin)
	out.SemiXAxis, out.Plane.XHat = scaledAxis(in.SemiXAxis, cam.ProjectLinear(in.Plane.XHat), mgl64.Vec2{1, 0}, p.eps)
	out.SemiYAxis, out.Plane.YHat = scaledAxis(in.SemiYAxis, cam.ProjectLinear(in.Plane.YHat), mgl64.Vec2{0, 1}, p.eps)
	copyRange(out, in.Range())
	return out
}

// projectDegenerate handles zero semi-axes and eye points in the arc's
// plane. The image is a segment, represented as an arc with a zero minor
// axis, or a point. A point keeps the input angle range; a segment gets the
// output angles of the images of the input end points.
func (p *Projector) projectDegenerate(out *Arc2, in *Arc3, cam camera.Camera3, eye mgl64.Vec3) *Arc2 {
	a, b := in.SemiXAxis, in.SemiYAxis
	// u0 and u1 are the input angles whose images are the segment ends.
	var u0, u1 float64
	switch {
	case a < p.eps && b < p.eps:
		out.Origin = cam.Project(in.Origin)
		out.Plane = linalg.StandardPlane2
		out.SemiXAxis, out.SemiYAxis = 0, 0
		copyRange(out, in.Range())
		return out
	case b < p.eps:
		u0, u1 = 0, math.Pi
	case a < p.eps:
		u0, u1 = math.Pi/2, -math.Pi/2
	default:
		// The eye lies in the arc's plane. Seen from outside the ellipse
		// the image spans the two tangent points.
		ux, uy := eye[0]/a, eye[1]/b
		r := math.Hypot(ux, uy)
		if r > 1 {
			delta, half := math.Atan2(uy, ux), math.Acos(1/r)
			u0, u1 = delta-half, delta+half
		} else {
			u0, u1 = 0, math.Pi
		}
	}

	q0, q1 := cam.Project(in.PointAt(u0)), cam.Project(in.PointAt(u1))
	var d mgl64.Vec2
	linalg.SubTo2(&d, q0, q1)
	out.Origin = q0.Add(q1).Mul(0.5)
	out.SemiXAxis = d.Len() / 2
	out.SemiYAxis = 0
	if out.SemiXAxis <= 0 {
		out.Plane = linalg.StandardPlane2
		copyRange(out, in.Range())
		return out
	}
	out.Plane.XHat = d.Normalize()
	out.Plane.YHat = linalg.Perp(out.Plane.XHat)

	r := in.Range()
	start := p.segmentAngle(out, in, cam, r.Start(), u0, u1)
	end := p.segmentAngle(out, in, cam, r.End(), u0, u1)
	shift := 2 * math.Pi * math.Floor(start/(2*math.Pi))
	setRange(out, start-shift, end-shift, r.StepCount())
	return out
}

// segmentAngle returns the output angle of the image of in.PointAt(u) on a
// segment whose ends, at output angles 0 and π, are the images of u0 and
// u1. The output angle grows with u: it runs from 0 to π while u runs from
// u0 to u1 and on to 2π at u0+2π, so it stays continuous where the image
// folds back at the segment ends.
func (p *Projector) segmentAngle(out *Arc2, in *Arc3, cam camera.Camera3, u, u0, u1 float64) float64 {
	turns := math.Floor((u - u0) / (2 * math.Pi))
	w := u - u0 - 2*math.Pi*turns
	q := cam.Project(in.PointAt(u))
	c := q.Sub(out.Origin).Dot(out.Plane.XHat) / out.SemiXAxis
	t := math.Acos(mgl64.Clamp(c, -1, 1))
	if w > ccw(u0, u1) {
		t = 2*math.Pi - t
	}
	return t + 2*math.Pi*turns
}

// scaledAxis returns the semi-axis length and unit direction for an axis
// whose unit vector maps to v.
func scaledAxis(semi float64, v, fallback mgl64.Vec2, eps float64) (float64, mgl64.Vec2) {
	l := v.Len()
	if l <= eps {
		return 0, fallback
	}
	return semi * l, v.Mul(1 / l)
}

func setRange(out *Arc2, start, end float64, steps int) {
	if m, ok := out.CircularAngle.(*valuerange.MutableConstStepRange); ok {
		m.SetStartEnd(start, end)
		m.SetStepCount(steps)
		return
	}
	r, err := valuerange.NewMutableConstStepRange(start, end, max(steps, 1))
	if err != nil {
		r, _ = valuerange.NewMutableConstStepRange(0, 2*math.Pi, 1)
	}
	out.CircularAngle = r
}

// copyRange gives out the same angle range as r without sharing a mutable
// range between input and output.
func copyRange(out *Arc2, r valuerange.ValueRange) {
	switch r := r.(type) {
	case valuerange.ConstStepRange:
		setRange(out, r.Start(), r.End(), r.StepCount())
	case *valuerange.MutableConstStepRange:
		setRange(out, r.Start(), r.End(), r.StepCount())
	default:
		out.CircularAngle = r
	}
}
