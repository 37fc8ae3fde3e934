package tessellate

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/kernel"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// ErrInvalidGeneratrix is returned for generatrices that cannot be meshed.
var ErrInvalidGeneratrix = errors.New("tessellate: invalid generatrix")

// boundaryTolerance is the fraction of a step within which a value counts
// as sitting on a slice boundary.
const boundaryTolerance = 1e-9

// Mesh name suffixes within a surface's group.
const (
	SurfaceMesh             = "surface"
	WireframeMesh           = "wireframe"
	ConnectingSurfaceMesh   = "connecting-surface"
	ConnectingWireframeMesh = "connecting-wireframe"
)

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the logger for rejected sweep values.
func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithName names the surface's group.
func WithName(name string) Option {
	return func(s *Surface) { s.name = name }
}

// WithMaterial sets the material of the surface meshes and, optionally, of
// the wireframe meshes.
func WithMaterial(surface string, wireframe ...string) Option {
	return func(s *Surface) {
		s.surfaceMaterial = surface
		if len(wireframe) > 0 {
			s.wireMaterial = wireframe[0]
		}
	}
}

// Surface is a swept surface revealed up to a sweep value.
//
// A Surface is not safe for concurrent use.
type Surface struct {
	gen    Generatrix
	rng    valuerange.ValueRange
	layout layout
	logger *slog.Logger
	name   string

	surfaceMaterial, wireMaterial string

	value    float64
	revealed int
	connects bool

	group                      *kernel.Group
	surface, wireframe         *kernel.Mesh // nil surface for line-only generatrices
	connSurface, connWireframe *kernel.Mesh
	vtx, nrm                   []mgl64.Vec3
}

// New meshes every slice of gen over r and reveals the surface up to
// r.Start().
func New(gen Generatrix, r valuerange.ValueRange, opts ...Option) (*Surface, error) {
	l := layout{
		shared:   gen.SharedVertexCount(),
		perSlice: gen.VertexCount(),
		apex:     gen.Apex(),
		closes:   gen.ClosesToShared(),
	}
	switch {
	case l.perSlice < 1:
		return nil, fmt.Errorf("%w: %d vertices per slice", ErrInvalidGeneratrix, l.perSlice)
	case l.shared < 0:
		return nil, fmt.Errorf("%w: %d shared vertices", ErrInvalidGeneratrix, l.shared)
	case l.closes && l.shared < 1:
		return nil, fmt.Errorf("%w: closes to a shared vertex but has none", ErrInvalidGeneratrix)
	case l.apex && l.perSlice < 2:
		return nil, fmt.Errorf("%w: an apex needs a second vertex", ErrInvalidGeneratrix)
	}
	if r == nil || r.StepCount() < 1 {
		return nil, fmt.Errorf("%w: sweep range needs at least one step", ErrInvalidGeneratrix)
	}

	s := &Surface{
		gen:    gen,
		rng:    r,
		layout: l,
		logger: slog.Default(),
		name:   "surface",
		vtx:    make([]mgl64.Vec3, max(l.shared, l.perSlice)),
		nrm:    make([]mgl64.Vec3, max(l.shared, l.perSlice)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.build()
	s.reveal(r.Start())
	return s, nil
}

func (s *Surface) build() {
	l, n := s.layout, s.rng.StepCount()
	vertices := l.shared + (n+1)*l.perSlice
	connVertices := l.shared + 2*l.perSlice

	s.group = kernel.NewGroup(s.name)
	if l.trianglesPerWedge() > 0 {
		s.surface = s.newMesh(SurfaceMesh, kernel.Triangles, s.surfaceMaterial, vertices, l.triangles(n))
		s.connSurface = s.newMesh(ConnectingSurfaceMesh, kernel.Triangles, s.surfaceMaterial, connVertices, l.triangles(1))
		s.group.Add(s.surface)
	}
	s.wireframe = s.newMesh(WireframeMesh, kernel.Lines, s.wireMaterial, vertices, l.lines(n))
	s.connWireframe = s.newMesh(ConnectingWireframeMesh, kernel.Lines, s.wireMaterial, connVertices, l.lines(1))
	s.group.Add(s.wireframe)
	if s.connSurface != nil {
		s.group.Add(s.connSurface)
	}
	s.group.Add(s.connWireframe)

	s.gen.Shared(s.vtx[:l.shared], s.nrm[:l.shared])
	for i := 0; i < l.shared; i++ {
		s.wireframe.SetVertex(i, s.vtx[i])
		s.wireframe.SetNormal(i, s.nrm[i])
		s.connWireframe.SetVertex(i, s.vtx[i])
		s.connWireframe.SetNormal(i, s.nrm[i])
	}
	for j := 0; j <= n; j++ {
		prev := s.rng.AtStep(max(j-1, 0))
		s.writeSlice(s.wireframe, int(l.base(j)), s.rng.AtStep(j), prev)
	}
}

// newMesh allocates a mesh. Surface and wireframe meshes of the same
// buffer share their vertex and normal arrays.
func (s *Surface) newMesh(name string, mode kernel.Mode, material string, vertices int, indices []uint32) *kernel.Mesh {
	m := kernel.NewMesh(s.name+"/"+name, mode, 0, 0)
	m.Material = material
	m.Indices = indices
	m.DrawRange = kernel.DrawRange{Count: len(indices)}
	switch {
	case name == WireframeMesh && s.surface != nil:
		m.Vertices, m.Normals = s.surface.Vertices, s.surface.Normals
	case name == ConnectingWireframeMesh && s.connSurface != nil:
		m.Vertices, m.Normals = s.connSurface.Vertices, s.connSurface.Normals
	default:
		m.Vertices = make([]float32, 3*vertices)
		m.Normals = make([]float32, 3*vertices)
	}
	return m
}

func (s *Surface) writeSlice(m *kernel.Mesh, base int, angle, prev float64) {
	v := s.layout.perSlice
	s.gen.Slice(angle, prev, s.vtx[:v], s.nrm[:v])
	for k := 0; k < v; k++ {
		m.SetVertex(base+k, s.vtx[k])
		m.SetNormal(base+k, s.nrm[k])
	}
}

// SetValue reveals the surface up to v and reports whether anything
// changed. Setting the current value does nothing. Values outside the range
// are logged and ignored.
func (s *Surface) SetValue(v float64) bool {
	if v == s.value {
		return false
	}
	if math.IsNaN(v) || !s.rng.Includes(v) {
		s.logger.Error("sweep value out of range",
			slog.String("surface", s.name), slog.Float64("value", v),
			slog.Float64("start", s.rng.Start()), slog.Float64("end", s.rng.End()))
		return false
	}
	s.reveal(v)
	return true
}

func (s *Surface) reveal(v float64) {
	l, n := s.layout, s.rng.StepCount()
	k := s.rng.LastIncludedStepIdx(v)
	s.value, s.revealed = v, k

	if s.surface != nil {
		s.surface.DrawRange.Count = k * l.trianglesPerWedge()
	}
	s.wireframe.DrawRange.Count = l.headerLines() + k*l.linesPerWedge()

	at := s.rng.AtStep(k)
	s.connects = k < n && math.Abs(v-at) > boundaryTolerance*math.Abs(s.rng.StepSize(k))
	if s.connects {
		s.writeSlice(s.connWireframe, int(l.base(0)), at, s.rng.AtStep(max(k-1, 0)))
		s.writeSlice(s.connWireframe, int(l.base(1)), v, at)
	}
	s.connWireframe.Visible = s.connects
	if s.connSurface != nil {
		s.connSurface.Visible = s.connects
	}
}

// SetTransform sets the model transform of every mesh of the surface.
func (s *Surface) SetTransform(m mgl64.Mat4) {
	for _, mesh := range s.group.Meshes {
		mesh.Transform = m
	}
}

// Value is the current sweep value.
func (s *Surface) Value() float64 { return s.value }

// RevealedSlices is the number of whole wedges drawn.
func (s *Surface) RevealedSlices() int { return s.revealed }

// ConnectingVisible reports whether the partial wedge is drawn.
func (s *Surface) ConnectingVisible() bool { return s.connects }

// Range is the sweep range.
func (s *Surface) Range() valuerange.ValueRange { return s.rng }

// Group holds the surface, wireframe and connecting meshes.
func (s *Surface) Group() *kernel.Group { return s.group }

// Surface returns the triangle mesh, or nil for line-only generatrices.
func (s *Surface) Surface() *kernel.Mesh { return s.surface }

// Wireframe returns the line mesh.
func (s *Surface) Wireframe() *kernel.Mesh { return s.wireframe }

// Connecting returns the connecting-slice meshes. surface is nil for
// line-only generatrices.
func (s *Surface) Connecting() (surface, wireframe *kernel.Mesh) {
	return s.connSurface, s.connWireframe
}
