// Package tessellate meshes surfaces swept by a generatrix and reveals them
// progressively as a sweep value moves through a range.
//
// A Surface keeps one vertex buffer for every slice boundary, allocated
// once, and draws a prefix of whole wedges. The partial wedge between the
// last whole boundary and the current value is drawn by a separate
// connecting slice of fixed size, so moving the value costs the same
// however far the sweep has progressed.
package tessellate

import "github.com/go-gl/mathgl/mgl64"

// Generatrix computes the profile of a swept surface at one sweep angle.
//
// Slice vertices must be ordered so that the sweep direction crossed with
// the direction from vertex k to vertex k+1 points along the outward
// normal; the index buffers rely on it for counter-clockwise winding.
type Generatrix interface {
	// VertexCount is the number of vertices per slice.
	VertexCount() int
	// SharedVertexCount is the number of vertices common to every slice,
	// stored once ahead of the slices.
	SharedVertexCount() int
	// Shared writes the shared vertices and normals.
	Shared(vtx, nrm []mgl64.Vec3)
	// Slice writes the vertices and normals of the slice at angle. prev is
	// the angle of the preceding boundary, or angle itself for the first.
	Slice(angle, prev float64, vtx, nrm []mgl64.Vec3)
	// Apex reports whether slice vertex 0 is the same point in every slice.
	// It is stored per slice so that its normal can follow the wedge.
	Apex() bool
	// ClosesToShared reports whether the last slice vertex connects to
	// shared vertex 0.
	ClosesToShared() bool
}
