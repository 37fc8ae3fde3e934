package camera

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
)

// PlaneCamera is an affine 3-D camera: Project(p) = (r0·p, r1·p) + offset.
// Parallel (orthographic) projections and axonometric views are both
// PlaneCameras.
type PlaneCamera struct {
	center     mgl64.Vec3
	plane      linalg.Plane3
	r0, r1     mgl64.Vec3
	offset     mgl64.Vec2
	toPlaneInv mgl64.Mat2
}

var _ Camera3 = (*PlaneCamera)(nil)

// NewPlaneCamera projects orthogonally onto the plane through center spanned
// by plane, scaling the two output axes by sx and sy. A scale of (1, -1)
// maps a y-up world onto y-down output coordinates.
func NewPlaneCamera(center mgl64.Vec3, plane linalg.Plane3, sx, sy float64, opts ...Option) (*PlaneCamera, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := plane.Validate(o.eps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCamera, err)
	}
	if sx == 0 || sy == 0 {
		return nil, fmt.Errorf("%w: zero scale (%v, %v)", ErrInvalidCamera, sx, sy)
	}
	return NewAffineCamera(center, plane, plane.XHat.Mul(sx), plane.YHat.Mul(sy), mgl64.Vec2{}, opts...)
}

// NewAffineCamera builds a camera from explicit rows: the output is
// (r0·(p-center), r1·(p-center)) + offset. plane spans the projection plane
// used by ProjectionToWorld.
func NewAffineCamera(center mgl64.Vec3, plane linalg.Plane3, r0, r1 mgl64.Vec3, offset mgl64.Vec2, opts ...Option) (*PlaneCamera, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := plane.Validate(o.eps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCamera, err)
	}
	toPlane := mgl64.Mat2{r0.Dot(plane.XHat), r1.Dot(plane.XHat), r0.Dot(plane.YHat), r1.Dot(plane.YHat)}
	inv, err := linalg.Inverse2(toPlane, o.eps)
	if err != nil {
		return nil, fmt.Errorf("%w: rows do not span the projection plane: %v", ErrInvalidCamera, err)
	}
	return &PlaneCamera{
		center:     center,
		plane:      plane,
		r0:         r0,
		r1:         r1,
		offset:     offset.Sub(mgl64.Vec2{r0.Dot(center), r1.Dot(center)}),
		toPlaneInv: inv,
	}, nil
}

// Project applies the affine map.
func (c *PlaneCamera) Project(p mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{c.r0.Dot(p) + c.offset[0], c.r1.Dot(p) + c.offset[1]}
}

// ProjectLinear applies only the linear part, mapping world directions to
// output directions.
func (c *PlaneCamera) ProjectLinear(d mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{c.r0.Dot(d), c.r1.Dot(d)}
}

// ProjectionToWorld returns the point on the projection plane whose image
// is q.
func (c *PlaneCamera) ProjectionToWorld(q mgl64.Vec2) mgl64.Vec3 {
	rel := q.Sub(c.Project(c.center))
	st := linalg.Mul2x1(c.toPlaneInv, rel)
	return c.plane.PointAt(c.center, st[0], st[1])
}

func (c *PlaneCamera) PlaneCenter() mgl64.Vec3 { return c.center }
func (c *PlaneCamera) PlaneXHat() mgl64.Vec3   { return c.plane.XHat }
func (c *PlaneCamera) PlaneYHat() mgl64.Vec3   { return c.plane.YHat }
