// Package camera maps world points onto a 2-D projection plane.
//
// Two 3-D cameras are provided: PlaneCamera, an affine (orthographic)
// projection, and ProjectionPlaneCamera, a perspective projection through an
// eye point. PlaneCamera2 is the affine camera for planar figures.
package camera

import (
	"errors"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidCamera is returned by constructors for degenerate camera
// configurations.
var ErrInvalidCamera = errors.New("camera: invalid configuration")

// Camera3 projects 3-D world points to 2-D projection-plane coordinates.
type Camera3 interface {
	// Project maps a world point to projection-plane coordinates.
	Project(p mgl64.Vec3) mgl64.Vec2
	// ProjectionToWorld maps plane coordinates back to the world point on
	// the projection plane.
	ProjectionToWorld(q mgl64.Vec2) mgl64.Vec3
	PlaneCenter() mgl64.Vec3
	PlaneXHat() mgl64.Vec3
	PlaneYHat() mgl64.Vec3
}

// Option configures a camera.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	minDistance float64
	eps         float64
}

func defaultOptions() options {
	return options{
		logger:      slog.Default(),
		minDistance: 1e-9,
		eps:         1e-12,
	}
}

// WithLogger sets the logger used for projection diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMinDistance sets the near-plane distance of a perspective camera.
func WithMinDistance(d float64) Option {
	return func(o *options) { o.minDistance = d }
}

// WithEps sets the tolerance for degenerate configuration checks.
func WithEps(eps float64) Option {
	return func(o *options) { o.eps = eps }
}
