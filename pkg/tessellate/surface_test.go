package tessellate

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/kernel"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// cylinder is the unit cylinder around z between z = 0 and z = 1.
type cylinder struct{}

func (cylinder) VertexCount() int         { return 2 }
func (cylinder) SharedVertexCount() int   { return 0 }
func (cylinder) Shared(_, _ []mgl64.Vec3) {}
func (cylinder) Apex() bool               { return false }
func (cylinder) ClosesToShared() bool     { return false }
func (cylinder) Slice(a, _ float64, vtx, nrm []mgl64.Vec3) {
	s, c := math.Sincos(a)
	vtx[0], vtx[1] = mgl64.Vec3{c, s, 0}, mgl64.Vec3{c, s, 1}
	nrm[0], nrm[1] = mgl64.Vec3{c, s, 0}, mgl64.Vec3{c, s, 0}
}

// cone has its apex at the origin and opens toward +z at 45°.
type cone struct{}

func (cone) VertexCount() int         { return 2 }
func (cone) SharedVertexCount() int   { return 0 }
func (cone) Shared(_, _ []mgl64.Vec3) {}
func (cone) Apex() bool               { return true }
func (cone) ClosesToShared() bool     { return false }
func (cone) Slice(a, prev float64, vtx, nrm []mgl64.Vec3) {
	s, c := math.Sincos(a)
	ms, mc := math.Sincos((a + prev) / 2)
	vtx[0], vtx[1] = mgl64.Vec3{}, mgl64.Vec3{c, s, 1}
	nrm[0], nrm[1] = mgl64.Vec3{mc, ms, -1}, mgl64.Vec3{c, s, -1}
}

// disk is the unit disk in the xy plane, fanned around a shared center.
type disk struct{}

func (disk) VertexCount() int       { return 1 }
func (disk) SharedVertexCount() int { return 1 }
func (disk) Apex() bool             { return false }
func (disk) ClosesToShared() bool   { return true }
func (disk) Shared(vtx, nrm []mgl64.Vec3) {
	vtx[0], nrm[0] = mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}
}
func (disk) Slice(a, _ float64, vtx, nrm []mgl64.Vec3) {
	s, c := math.Sincos(a)
	vtx[0], nrm[0] = mgl64.Vec3{c, s, 0}, mgl64.Vec3{0, 0, 1}
}

// circle is a line-only unit circle.
type circle struct{}

func (circle) VertexCount() int         { return 1 }
func (circle) SharedVertexCount() int   { return 0 }
func (circle) Shared(_, _ []mgl64.Vec3) {}
func (circle) Apex() bool               { return false }
func (circle) ClosesToShared() bool     { return false }
func (circle) Slice(a, _ float64, vtx, nrm []mgl64.Vec3) {
	s, c := math.Sincos(a)
	vtx[0], nrm[0] = mgl64.Vec3{c, s, 0}, mgl64.Vec3{c, s, 0}
}

func quarterTurn(n int) valuerange.ConstStepRange {
	return valuerange.MustConstStepRange(0, math.Pi/2, n)
}

func mustSurface(t *testing.T, g Generatrix, r valuerange.ValueRange, opts ...Option) *Surface {
	t.Helper()
	s, err := New(g, r, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

// checkWinding verifies that every triangle faces the way its vertex
// normals point.
func checkWinding(t *testing.T, m *kernel.Mesh) {
	t.Helper()
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2])
		face := m.Vertex(b).Sub(m.Vertex(a)).Cross(m.Vertex(c).Sub(m.Vertex(a)))
		if face.Len() < 1e-9 {
			t.Errorf("triangle %d is degenerate", i/3)
			continue
		}
		n := m.Normal(a).Add(m.Normal(b)).Add(m.Normal(c))
		if face.Dot(n) <= 0 {
			t.Errorf("triangle %d (%d %d %d) winds clockwise against its normals", i/3, a, b, c)
		}
	}
}

func TestBufferSizes(t *testing.T) {
	tests := []struct {
		name         string
		gen          Generatrix
		steps        int
		wantVertices int
		wantConn     int
		wantTriIdx   int
		wantLineIdx  int
	}{
		{"cylinder", cylinder{}, 6, 14, 4, 36, 2 + 6*6},
		{"cone", cone{}, 4, 10, 4, 12, 2 + 4*4},
		{"disk", disk{}, 8, 10, 3, 24, 2 + 8*4},
		{"circle", circle{}, 5, 6, 2, 0, 5 * 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSurface(t, tt.gen, quarterTurn(tt.steps))
			if got := s.Wireframe().VertexCount(); got != tt.wantVertices {
				t.Errorf("VertexCount() = %d, want %d", got, tt.wantVertices)
			}
			_, connWire := s.Connecting()
			if got := connWire.VertexCount(); got != tt.wantConn {
				t.Errorf("connecting VertexCount() = %d, want %d", got, tt.wantConn)
			}
			triIdx := 0
			if s.Surface() != nil {
				triIdx = len(s.Surface().Indices)
			}
			if triIdx != tt.wantTriIdx {
				t.Errorf("triangle indices = %d, want %d", triIdx, tt.wantTriIdx)
			}
			if got := len(s.Wireframe().Indices); got != tt.wantLineIdx {
				t.Errorf("line indices = %d, want %d", got, tt.wantLineIdx)
			}
		})
	}
}

func TestWindingIsCounterClockwise(t *testing.T) {
	for name, g := range map[string]Generatrix{"cylinder": cylinder{}, "cone": cone{}, "disk": disk{}} {
		t.Run(name, func(t *testing.T) {
			s := mustSurface(t, g, quarterTurn(8))
			checkWinding(t, s.Surface())
			s.SetValue(0.3)
			conn, _ := s.Connecting()
			checkWinding(t, conn)
		})
	}
}

func TestRevealIsMonotonic(t *testing.T) {
	s := mustSurface(t, cone{}, quarterTurn(10))
	_, conn := s.Connecting()
	connVertices := conn.VertexCount()
	connIndices := len(conn.Indices)

	prevSlices, prevCount := -1, -1
	for i := 0; i <= 200; i++ {
		v := math.Pi / 2 * float64(i) / 200
		s.SetValue(v)
		if s.RevealedSlices() < prevSlices {
			t.Fatalf("value %g: revealed %d slices after %d", v, s.RevealedSlices(), prevSlices)
		}
		if s.Surface().DrawRange.Count < prevCount {
			t.Fatalf("value %g: draw count decreased", v)
		}
		prevSlices, prevCount = s.RevealedSlices(), s.Surface().DrawRange.Count
		if conn.VertexCount() != connVertices || len(conn.Indices) != connIndices {
			t.Fatalf("value %g: connecting slice resized", v)
		}
	}
	if s.RevealedSlices() != 10 {
		t.Errorf("RevealedSlices() at end = %d, want 10", s.RevealedSlices())
	}
	if s.ConnectingVisible() {
		t.Error("connecting slice visible at the end of the range")
	}
}

func TestConnectingSlice(t *testing.T) {
	r := quarterTurn(4)
	s := mustSurface(t, cylinder{}, r)
	connSurface, connWire := s.Connecting()

	tests := []struct {
		name        string
		v           float64
		wantSlices  int
		wantVisible bool
	}{
		{"between first boundaries", r.AtStep(1) / 2, 0, true},
		{"on a boundary", r.AtStep(2), 2, false},
		{"just past a boundary", r.AtStep(2) + 0.01, 2, true},
		{"end", r.End(), 4, false},
		{"start", r.Start(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetValue(tt.v)
			if s.RevealedSlices() != tt.wantSlices {
				t.Errorf("RevealedSlices() = %d, want %d", s.RevealedSlices(), tt.wantSlices)
			}
			if s.ConnectingVisible() != tt.wantVisible || connSurface.Visible != tt.wantVisible || connWire.Visible != tt.wantVisible {
				t.Errorf("connecting visible = %v/%v, want %v", s.ConnectingVisible(), connSurface.Visible, tt.wantVisible)
			}
			if got := s.Surface().DrawRange.Count; got != tt.wantSlices*6 {
				t.Errorf("surface draw count = %d, want %d", got, tt.wantSlices*6)
			}
			if got := s.Wireframe().DrawRange.Count; got != 2+tt.wantSlices*6 {
				t.Errorf("wireframe draw count = %d, want %d", got, 2+tt.wantSlices*6)
			}
			if !tt.wantVisible {
				return
			}
			// The far boundary of the connecting slice sits at the value.
			want := mgl64.Vec3{math.Cos(tt.v), math.Sin(tt.v), 1}
			if got := connWire.Vertex(3); !got.ApproxEqualThreshold(want, 1e-6) {
				t.Errorf("connecting vertex = %v, want %v", got, want)
			}
			near := s.Wireframe().Vertex(2 * tt.wantSlices)
			if got := connWire.Vertex(0); !got.ApproxEqualThreshold(near, 1e-6) {
				t.Errorf("connecting near boundary = %v, want %v", got, near)
			}
		})
	}
}

func TestApexNormalFollowsWedge(t *testing.T) {
	r := quarterTurn(2)
	s := mustSurface(t, cone{}, r)
	mid := r.AtStep(1) / 2
	n := s.Wireframe().Normal(2) // apex of boundary 1
	want := mgl64.Vec3{math.Cos(mid), math.Sin(mid), -1}.Normalize()
	if !n.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("apex normal = %v, want %v", n, want)
	}
}

func TestSetValueNoOp(t *testing.T) {
	s := mustSurface(t, cylinder{}, quarterTurn(4))
	if !s.SetValue(0.5) {
		t.Fatal("SetValue(0.5) reported no change")
	}
	if s.SetValue(0.5) {
		t.Error("SetValue with the current value reported a change")
	}
}

func TestSetValueOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := mustSurface(t, cylinder{}, quarterTurn(4), WithLogger(logger), WithName("cyl"))
	s.SetValue(0.5)

	for _, v := range []float64{-0.1, 2, math.NaN()} {
		buf.Reset()
		if s.SetValue(v) {
			t.Errorf("SetValue(%g) reported a change", v)
		}
		if !strings.Contains(buf.String(), "out of range") || !strings.Contains(buf.String(), "cyl") {
			t.Errorf("SetValue(%g) log = %q", v, buf.String())
		}
	}
	if s.Value() != 0.5 {
		t.Errorf("Value() = %g after rejected updates, want 0.5", s.Value())
	}
}

func TestGroupAndOptions(t *testing.T) {
	s := mustSurface(t, cylinder{}, quarterTurn(3), WithName("torus"), WithMaterial("solid", "wire"))
	g := s.Group()
	if g.Name != "torus" || len(g.Meshes) != 4 {
		t.Fatalf("group = %q with %d meshes", g.Name, len(g.Meshes))
	}
	if m := g.Mesh("torus/" + SurfaceMesh); m == nil || m.Material != "solid" {
		t.Errorf("surface mesh = %+v", m)
	}
	if m := g.Mesh("torus/" + WireframeMesh); m == nil || m.Material != "wire" || m.Mode != kernel.Lines {
		t.Errorf("wireframe mesh = %+v", m)
	}

	rot := mgl64.HomogRotate3DZ(0.5)
	s.SetTransform(rot)
	for _, m := range g.Meshes {
		if m.Transform != rot {
			t.Errorf("%s transform not set", m.Name)
		}
	}

	lineOnly := mustSurface(t, circle{}, quarterTurn(3))
	if lineOnly.Surface() != nil || len(lineOnly.Group().Meshes) != 2 {
		t.Errorf("line-only surface has %d meshes", len(lineOnly.Group().Meshes))
	}
}

func TestNonUniformRange(t *testing.T) {
	r, err := valuerange.NewArrayRange(0, 0.1, 0.5, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	s := mustSurface(t, cylinder{}, r)
	s.SetValue(0.7)
	if s.RevealedSlices() != 2 || !s.ConnectingVisible() {
		t.Errorf("slices = %d, connecting = %v", s.RevealedSlices(), s.ConnectingVisible())
	}
}

type broken struct{ cylinder }

func (broken) VertexCount() int { return 0 }

func TestInvalidGeneratrix(t *testing.T) {
	if _, err := New(broken{}, quarterTurn(2)); !errors.Is(err, ErrInvalidGeneratrix) {
		t.Errorf("New(broken) error = %v, want ErrInvalidGeneratrix", err)
	}
}
