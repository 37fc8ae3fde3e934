package kernel

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// Mode selects how Indices are read.
type Mode int

const (
	// Triangles reads three indices per triangle.
	Triangles Mode = iota
	// Lines reads two indices per segment.
	Lines
)

func (m Mode) String() string {
	if m == Lines {
		return "lines"
	}
	return "triangles"
}

// DrawRange selects the part of Indices a renderer draws.
type DrawRange struct {
	Start int `json:"start"`
	Count int `json:"count"`
}

// Mesh is an indexed triangle or line mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex.
type Mesh struct {
	Name      string     `json:"name"`
	Mode      Mode       `json:"mode"`
	Vertices  []float32  `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32  `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices   []uint32   `json:"indices"`
	DrawRange DrawRange  `json:"drawRange"`
	Visible   bool       `json:"visible"`
	Transform mgl64.Mat4 `json:"transform"` // column-major model matrix
	Material  string     `json:"material"`
}

// NewMesh allocates a visible mesh with room for the given number of
// vertices and indices, drawing every index.
func NewMesh(name string, mode Mode, vertices, indices int) *Mesh {
	return &Mesh{
		Name:      name,
		Mode:      mode,
		Vertices:  make([]float32, 3*vertices),
		Normals:   make([]float32, 3*vertices),
		Indices:   make([]uint32, indices),
		DrawRange: DrawRange{Count: indices},
		Visible:   true,
		Transform: mgl64.Ident4(),
	}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m.Mode != Triangles {
		return 0
	}
	return len(m.Indices) / 3
}

// SegmentCount returns the number of line segments.
func (m *Mesh) SegmentCount() int {
	if m.Mode != Lines {
		return 0
	}
	return len(m.Indices) / 2
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) mgl64.Vec3 {
	v := m.Vertices[3*i : 3*i+3]
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) mgl64.Vec3 {
	n := m.Normals[3*i : 3*i+3]
	return mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])}
}

// SetVertex overwrites vertex i.
func (m *Mesh) SetVertex(i int, v mgl64.Vec3) {
	m.Vertices[3*i] = float32(v[0])
	m.Vertices[3*i+1] = float32(v[1])
	m.Vertices[3*i+2] = float32(v[2])
}

// SetNormal overwrites the normal of vertex i, renormalizing after the
// conversion to float32. Zero normals are stored as zero.
func (m *Mesh) SetNormal(i int, n mgl64.Vec3) {
	x, y, z := float32(n[0]), float32(n[1]), float32(n[2])
	if l := math32.Sqrt(x*x + y*y + z*z); l > 0 {
		x, y, z = x/l, y/l, z/l
	}
	m.Normals[3*i] = x
	m.Normals[3*i+1] = y
	m.Normals[3*i+2] = z
}

// DrawnIndices returns the indices selected by DrawRange, clamped to the
// index buffer. A hidden mesh draws nothing.
func (m *Mesh) DrawnIndices() []uint32 {
	if !m.Visible {
		return nil
	}
	start := min(max(m.DrawRange.Start, 0), len(m.Indices))
	end := min(max(start+m.DrawRange.Count, start), len(m.Indices))
	return m.Indices[start:end]
}
