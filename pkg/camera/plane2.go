package camera

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PlaneCamera2 is an affine map of the plane onto output coordinates,
// stored as a homogeneous 3×3 matrix.
type PlaneCamera2 struct {
	m   mgl64.Mat3
	inv mgl64.Mat3
}

// NewPlaneCamera2 wraps a homogeneous affine matrix. Singular matrices are
// rejected.
func NewPlaneCamera2(m mgl64.Mat3) (*PlaneCamera2, error) {
	if m[2] != 0 || m[5] != 0 || m[8] != 1 {
		return nil, fmt.Errorf("%w: matrix is not affine", ErrInvalidCamera)
	}
	if math.Abs(m.Det()) <= 1e-300 {
		return nil, fmt.Errorf("%w: singular transform", ErrInvalidCamera)
	}
	return &PlaneCamera2{m: m, inv: m.Inv()}, nil
}

// IdentityCamera2 leaves coordinates unchanged.
func IdentityCamera2() *PlaneCamera2 {
	return &PlaneCamera2{m: mgl64.Ident3(), inv: mgl64.Ident3()}
}

// ScaleTranslateCamera2 scales by (sx, sy) and then translates by (tx, ty).
func ScaleTranslateCamera2(sx, sy, tx, ty float64) (*PlaneCamera2, error) {
	return NewPlaneCamera2(mgl64.Translate2D(tx, ty).Mul3(mgl64.Scale2D(sx, sy)))
}

// Project maps a plane point.
func (c *PlaneCamera2) Project(p mgl64.Vec2) mgl64.Vec2 {
	return c.m.Mul3x1(p.Vec3(1)).Vec2()
}

// ProjectLinear maps a direction, ignoring translation.
func (c *PlaneCamera2) ProjectLinear(d mgl64.Vec2) mgl64.Vec2 {
	return c.m.Mul3x1(d.Vec3(0)).Vec2()
}

// ProjectionToWorld inverts Project.
func (c *PlaneCamera2) ProjectionToWorld(q mgl64.Vec2) mgl64.Vec2 {
	return c.inv.Mul3x1(q.Vec3(1)).Vec2()
}

// Compose returns the camera applying c after other.
func (c *PlaneCamera2) Compose(other *PlaneCamera2) *PlaneCamera2 {
	return &PlaneCamera2{m: c.m.Mul3(other.m), inv: other.inv.Mul3(c.inv)}
}

// Matrix returns the homogeneous transform.
func (c *PlaneCamera2) Matrix() mgl64.Mat3 { return c.m }
