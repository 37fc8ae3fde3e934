package ellipse

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/camera"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
)

// EyeCamera is a camera that projects through an eye point.
type EyeCamera interface {
	camera.Camera3
	WorldPosition() mgl64.Vec3
}

var _ EyeCamera = (*camera.ProjectionPlaneCamera)(nil)

// localCone returns the cone with apex at the local eye point e through the
// ellipse (x/a)² + (y/b)² = 1, z = 0. Each ruling meets z = 0 at
// ((ez·x - ex·z), (ez·y - ey·z)) / (ez - z), which gives
// (p·x)²/a² + (q·x)²/b² - (ez - z)² = 0 with p = (ez, 0, -ex), q = (0, ez, -ey).
func localCone(e mgl64.Vec3, a, b float64) linalg.Quadric3 {
	p := mgl64.Vec3{e[2], 0, -e[0]}
	q := mgl64.Vec3{0, e[2], -e[1]}
	am := linalg.Outer3(p, p).Mul(1 / (a * a)).Add(linalg.Outer3(q, q).Mul(1 / (b * b)))
	am[8] -= 1
	return linalg.Quadric3{
		A: am,
		B: mgl64.Vec3{0, 0, 2 * e[2]},
		C: -e[2] * e[2],
	}
}

// arcFrame returns the frame matrix of the arc's plane and its inverse
// transpose. The inverse transpose maps local quadrics to world quadrics for
// skewed as well as orthonormal bases.
func arcFrame(in *Arc3) (frame, invT mgl64.Mat3) {
	frame = in.Plane.Frame()
	return frame, frame.Inv().Transpose()
}

// localEye returns the eye point in the arc's local coordinates.
func localEye(in *Arc3, eye mgl64.Vec3) mgl64.Vec3 {
	frame, _ := arcFrame(in)
	return frame.Inv().Mul3x1(eye.Sub(in.Origin))
}

// WorldConic returns the world-frame quadric of the cone through the arc's
// ellipse with apex at eye. Every point of the ellipse, and every point on a
// line from the eye through it, evaluates to zero.
func WorldConic(in *Arc3, eye mgl64.Vec3) linalg.Quadric3 {
	_, invT := arcFrame(in)
	cone := localCone(localEye(in, eye), in.SemiXAxis, in.SemiYAxis)
	return cone.ToWorld(in.Origin, invT)
}

// PlaneConic returns the image of the arc's ellipse in the projection-plane
// coordinates of cam.
func PlaneConic(in *Arc3, cam EyeCamera) linalg.Conic2 {
	return WorldConic(in, cam.WorldPosition()).Restrict(cam.PlaneCenter(), cam.PlaneXHat(), cam.PlaneYHat())
}
