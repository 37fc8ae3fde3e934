package camera

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
)

// ProjectionPlaneCamera is a perspective camera: a world point projects to
// where the ray from the eye through it crosses the projection plane.
type ProjectionPlaneCamera struct {
	eye    mgl64.Vec3
	center mgl64.Vec3
	plane  linalg.Plane3
	normal mgl64.Vec3 // unit, pointing from the eye toward the plane
	focal  float64    // distance from the eye to the plane

	minDistance float64
	logger      *slog.Logger
}

var _ Camera3 = (*ProjectionPlaneCamera)(nil)

// NewProjectionPlaneCamera returns a perspective camera with the given eye
// point and projection plane. The plane basis is made orthonormal.
func NewProjectionPlaneCamera(eye, center mgl64.Vec3, plane linalg.Plane3, opts ...Option) (*ProjectionPlaneCamera, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := plane.Validate(o.eps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCamera, err)
	}
	if !linalg.IsFinite(eye) || !linalg.IsFinite(center) {
		return nil, fmt.Errorf("%w: non-finite eye or center", ErrInvalidCamera)
	}
	plane.Orthonormalize()
	normal := plane.ZHat()
	focal := center.Sub(eye).Dot(normal)
	if math.Abs(focal) <= o.eps*math.Max(1, center.Sub(eye).Len()) {
		return nil, fmt.Errorf("%w: eye lies on the projection plane", ErrInvalidCamera)
	}
	if focal < 0 {
		normal, focal = normal.Mul(-1), -focal
	}
	return &ProjectionPlaneCamera{
		eye:         eye,
		center:      center,
		plane:       plane,
		normal:      normal,
		focal:       focal,
		minDistance: o.minDistance,
		logger:      o.logger,
	}, nil
}

// LookAt places the eye at eye looking toward target, with the projection
// plane focal units in front of the eye. up picks the plane's y direction.
func LookAt(eye, target, up mgl64.Vec3, focal float64, opts ...Option) (*ProjectionPlaneCamera, error) {
	dir := target.Sub(eye)
	if linalg.IsZero(dir, 0) || focal <= 0 {
		return nil, fmt.Errorf("%w: look-at needs distinct eye and target and positive focal distance", ErrInvalidCamera)
	}
	dir = dir.Normalize()
	x := dir.Cross(up)
	if x.Len() <= 1e-12 {
		return nil, fmt.Errorf("%w: up is parallel to the view direction", ErrInvalidCamera)
	}
	x = x.Normalize()
	y := x.Cross(dir)
	return NewProjectionPlaneCamera(eye, eye.Add(dir.Mul(focal)), linalg.Plane3{XHat: x, YHat: y}, opts...)
}

// Project intersects the eye ray through p with the projection plane.
// Points nearer than the minimum distance, or behind the eye, are reported
// with a warning; the computed intersection is returned regardless.
func (c *ProjectionPlaneCamera) Project(p mgl64.Vec3) mgl64.Vec2 {
	var rel mgl64.Vec3
	linalg.SubTo(&rel, p, c.eye)
	depth := rel.Dot(c.normal)
	if depth < c.minDistance {
		c.logger.Warn("projecting point in front of the near plane",
			slog.Any("point", p), slog.Float64("depth", depth), slog.Float64("min_distance", c.minDistance))
	}
	var hit mgl64.Vec3
	linalg.ScaleAddTo(&hit, c.eye, c.focal/depth, rel)
	linalg.SubTo(&hit, hit, c.center)
	return mgl64.Vec2{hit.Dot(c.plane.XHat), hit.Dot(c.plane.YHat)}
}

// ProjectionToWorld returns the world point of the projection plane at
// plane coordinates q.
func (c *ProjectionPlaneCamera) ProjectionToWorld(q mgl64.Vec2) mgl64.Vec3 {
	return c.plane.PointAt(c.center, q[0], q[1])
}

// WorldPosition is the eye point.
func (c *ProjectionPlaneCamera) WorldPosition() mgl64.Vec3 { return c.eye }

// ViewDirection is the unit normal of the projection plane, pointing away
// from the eye.
func (c *ProjectionPlaneCamera) ViewDirection() mgl64.Vec3 { return c.normal }

// Focal is the distance from the eye to the projection plane.
func (c *ProjectionPlaneCamera) Focal() float64 { return c.focal }

// MinDistance is the near-plane distance.
func (c *ProjectionPlaneCamera) MinDistance() float64 { return c.minDistance }

func (c *ProjectionPlaneCamera) PlaneCenter() mgl64.Vec3 { return c.center }
func (c *ProjectionPlaneCamera) PlaneXHat() mgl64.Vec3   { return c.plane.XHat }
func (c *ProjectionPlaneCamera) PlaneYHat() mgl64.Vec3   { return c.plane.YHat }
