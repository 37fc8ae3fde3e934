// Package kernel defines the mesh types handed to renderers and the
// reference solid-modeling interface used to cross-check the tessellated
// construction solids. The kernel abstraction allows swapping backends
// without changing the rest of the system.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Distance returns the signed distance from p to the surface,
	// negative inside.
	Distance(p [3]float64) float64
}

// Kernel is the reference solid interface. The construction solids are
// tessellated analytically elsewhere; a Kernel builds the same shapes as
// exact solids for bounding boxes, surface checks and static meshes.
type Kernel interface {
	// Primitives. Every primitive is a solid of revolution about the z axis.
	HornTorus(radius float64) Solid        // tube radius equals the distance of the tube center from the axis
	Cylinder(height, radius float64) Solid // base on z = 0
	Cone(halfAngle, length float64) Solid  // apex at the origin, opening toward +z

	// Boolean operations
	Union(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output. cells <= 0 selects the implementation default.
	ToMesh(s Solid, cells int) (*Mesh, error)
}
