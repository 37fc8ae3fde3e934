package linalg

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane3 is a pair of directions spanning a plane embedded in 3-D space.
// The directions are orthonormal by convention; projected planes may carry
// a skewed basis, which every consumer in this module tolerates.
type Plane3 struct {
	XHat mgl64.Vec3
	YHat mgl64.Vec3
}

// XYPlane3 is the z = 0 plane with the world x and y axes.
var XYPlane3 = Plane3{XHat: mgl64.Vec3{1, 0, 0}, YHat: mgl64.Vec3{0, 1, 0}}

// NewPlane3 returns the plane spanned by x and y, rejecting zero or
// parallel directions.
func NewPlane3(x, y mgl64.Vec3) (Plane3, error) {
	p := Plane3{XHat: x, YHat: y}
	if err := p.Validate(DefaultEps); err != nil {
		return Plane3{}, err
	}
	return p, nil
}

// Validate rejects bases whose normal vanishes.
func (p Plane3) Validate(eps float64) error {
	if IsZero(p.XHat, eps) || IsZero(p.YHat, eps) {
		return fmt.Errorf("%w: zero direction", ErrDegenerateBasis)
	}
	n := p.XHat.Cross(p.YHat)
	if n.Len() <= eps*p.XHat.Len()*p.YHat.Len() {
		return fmt.Errorf("%w: parallel directions", ErrDegenerateBasis)
	}
	return nil
}

// ZHat returns XHat × YHat.
func (p Plane3) ZHat() mgl64.Vec3 {
	return p.XHat.Cross(p.YHat)
}

// Clone returns a copy that shares nothing with p.
func (p Plane3) Clone() Plane3 {
	return p
}

// Rotate turns both directions by angle radians around the unit axis,
// in place.
func (p *Plane3) Rotate(axis mgl64.Vec3, angle float64) *Plane3 {
	p.XHat = Rotate(p.XHat, axis, angle)
	p.YHat = Rotate(p.YHat, axis, angle)
	return p
}

// Orthonormalize makes the basis orthonormal in place, keeping the
// direction of XHat and the half-plane of YHat.
func (p *Plane3) Orthonormalize() *Plane3 {
	NormalizeTo(&p.XHat, p.XHat)
	ScaleAddTo(&p.YHat, p.YHat, -p.YHat.Dot(p.XHat), p.XHat)
	NormalizeTo(&p.YHat, p.YHat)
	return p
}

// PointAt returns origin + x·XHat + y·YHat.
func (p Plane3) PointAt(origin mgl64.Vec3, x, y float64) mgl64.Vec3 {
	var out mgl64.Vec3
	ScaleAddTo(&out, origin, x, p.XHat)
	return *ScaleAddTo(&out, out, y, p.YHat)
}

// Coordinates returns the in-plane coordinates of q relative to origin,
// assuming an orthonormal basis.
func (p Plane3) Coordinates(origin, q mgl64.Vec3) (x, y float64) {
	d := q.Sub(origin)
	return d.Dot(p.XHat), d.Dot(p.YHat)
}

// Frame returns the matrix with columns XHat, YHat, ZHat.
func (p Plane3) Frame() mgl64.Mat3 {
	return FrameMatrix(p.XHat, p.YHat, p.ZHat())
}

// Plane2 is a basis of the 2-D plane itself. It exists so that 2-D and 3-D
// arcs share one description.
type Plane2 struct {
	XHat mgl64.Vec2
	YHat mgl64.Vec2
}

// StandardPlane2 is the identity basis.
var StandardPlane2 = Plane2{XHat: mgl64.Vec2{1, 0}, YHat: mgl64.Vec2{0, 1}}

// PointAt returns origin + x·XHat + y·YHat.
func (p Plane2) PointAt(origin mgl64.Vec2, x, y float64) mgl64.Vec2 {
	var out mgl64.Vec2
	ScaleAddTo2(&out, origin, x, p.XHat)
	return *ScaleAddTo2(&out, out, y, p.YHat)
}

// Coordinates solves origin + x·XHat + y·YHat = q. Skewed bases are
// handled; a singular basis returns ErrSingular.
func (p Plane2) Coordinates(origin, q mgl64.Vec2) (x, y float64, err error) {
	m := mgl64.Mat2{p.XHat[0], p.XHat[1], p.YHat[0], p.YHat[1]}
	inv, err := Inverse2(m, DefaultEps)
	if err != nil {
		return 0, 0, err
	}
	c := Mul2x1(inv, q.Sub(origin))
	return c[0], c[1], nil
}

// Rotate turns both directions by angle radians, in place.
func (p *Plane2) Rotate(angle float64) *Plane2 {
	s, c := math.Sincos(angle)
	rot := func(v mgl64.Vec2) mgl64.Vec2 {
		return mgl64.Vec2{c*v[0] - s*v[1], s*v[0] + c*v[1]}
	}
	p.XHat, p.YHat = rot(p.XHat), rot(p.YHat)
	return p
}

// Orientation is the sign of XHat × YHat: +1 counter-clockwise, -1
// clockwise, 0 degenerate.
func (p Plane2) Orientation() float64 {
	c := Cross2(p.XHat, p.YHat)
	switch {
	case c > 0:
		return 1
	case c < 0:
		return -1
	}
	return 0
}
