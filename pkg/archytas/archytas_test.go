package archytas

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/kernel"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/kernel/sdfx"
)

func newTestModel(t *testing.T, opts ...Option) *Model {
	t.Helper()
	m, err := NewModel(DefaultConfig(), opts...)
	require.NoError(t, err)
	return m
}

func onTorus(d float64, p mgl64.Vec3) float64 {
	rho := math.Hypot(p[0], p[1])
	return (rho-d/2)*(rho-d/2) + p[2]*p[2] - d*d/4
}

func onCylinder(d float64, p mgl64.Vec3) float64 {
	return (p[0]-d/2)*(p[0]-d/2) + p[1]*p[1] - d*d/4
}

func TestPointsLieOnTorusAndCylinder(t *testing.T) {
	const d = 3
	for _, tau := range []float64{0, 0.2, 0.7, 1.1, math.Pi / 2} {
		p := PointsAt(d, tau)
		assert.InDelta(t, 0, onTorus(d, p.P), 1e-12, "tau %g", tau)
		assert.InDelta(t, 0, onCylinder(d, p.P), 1e-12, "tau %g", tau)
		assert.InDelta(t, 0, onCylinder(d, p.M), 1e-12, "tau %g", tau)
		assert.Equal(t, p.M[0], p.P[0])
		assert.Equal(t, p.M[1], p.P[1])
	}
}

func TestSolveGivesMeanProportionals(t *testing.T) {
	const d = 2
	sol := Solve(d, 0.5)
	// d : OP = OP : OM = OM : b
	b := 0.5 * d
	assert.InDelta(t, d/sol.OP, sol.OP/sol.OM, 1e-12)
	assert.InDelta(t, sol.OP/sol.OM, sol.OM/b, 1e-12)
	// Doubling the cube of edge b: OP³ = 2·b³ when d = 2b.
	assert.InDelta(t, 2*b*b*b, sol.OP*sol.OP*sol.OP, 1e-12)

	p := PointsAt(d, sol.AngleOAP)
	assert.InDelta(t, sol.OP, p.P.Len(), 1e-12)
	assert.InDelta(t, sol.OM, p.M.Len(), 1e-12)
	// P is on the cone: OP makes the half-angle with OA.
	assert.InDelta(t, 0.5, p.P[0]/p.P.Len(), 1e-12)
}

func TestSetAngleOAPFansOut(t *testing.T) {
	m := newTestModel(t)
	for _, tau := range []float64{0.3, 0.9, math.Pi / 2, 0.1} {
		require.True(t, m.SetAngleOAP(tau))
		phi := math.Pi/2 - tau
		assert.Equal(t, tau, m.AngleOAP())
		assert.Equal(t, tau, m.Torus.ToroidalAngle())
		assert.Equal(t, tau, m.Cylinder.SecantAngle())
		assert.InDelta(t, GeneratrixAngle(phi), m.Cone.Surface().Value(), 1e-15)
		assert.InDelta(t, 2*tau, m.BaseCircle.CentralAngle(), 1e-12)
		assert.InDelta(t, 1-2*math.Cos(tau), math.Cos(m.TransverseCircle.CentralAngle()), 1e-12)

		pts := m.Points()
		anchors := map[string]mgl64.Vec3{}
		for _, a := range m.Anchors() {
			anchors[a.Name] = a.Position
		}
		assert.True(t, anchors["P"].ApproxEqualThreshold(pts.P, 1e-12), "P anchor %v vs %v", anchors["P"], pts.P)
		assert.True(t, anchors["M"].ApproxEqualThreshold(pts.M, 1e-12))
		assert.True(t, anchors["A'"].ApproxEqualThreshold(pts.APrime, 1e-12))
	}
}

func TestConeGeneratrixFollowsP(t *testing.T) {
	for _, tau := range []float64{0.2, 0.6, 1.2} {
		p := PointsAt(1, tau).P
		assert.InDelta(t, math.Atan2(p[2], p[1]), GeneratrixAngle(math.Pi/2-tau), 1e-12, "tau %g", tau)
	}
}

func TestSetAngleOAPRejectsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	m := newTestModel(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.True(t, m.SetAngleOAP(0.4))

	for _, tau := range []float64{-0.1, 2, math.NaN()} {
		buf.Reset()
		assert.False(t, m.SetAngleOAP(tau))
		assert.Contains(t, buf.String(), "angleOAP out of range")
	}
	assert.Equal(t, 0.4, m.AngleOAP())
	assert.Equal(t, 0.4, m.Torus.ToroidalAngle())
	assert.False(t, m.SetAngleOAP(0.4), "same angle is a no-op")
}

func TestSolidsRejectTheirOwnRange(t *testing.T) {
	var buf bytes.Buffer
	m := newTestModel(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	assert.False(t, m.Cone.SetOAPAngleCompliment(-1))
	assert.Contains(t, buf.String(), "cone")
	buf.Reset()
	assert.False(t, m.BaseCircle.SetAngleOAPCompliment(2))
	assert.Contains(t, buf.String(), "base-circle")
	buf.Reset()
	assert.False(t, m.Torus.SetToroidalAngle(3))
	assert.Contains(t, buf.String(), "torus")
}

func TestConeLabelOffsetIsMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	m, err := NewModel(cfg)
	require.NoError(t, err)

	offset := func() float64 {
		end := m.Cone.gen.direction(m.Cone.Surface().Value()).Mul(cfg.ConeLength)
		return m.Cone.Anchors()[0].Position[0] - end[0]
	}
	require.True(t, m.Cone.SetOAPAngleCompliment(0))
	assert.InDelta(t, cfg.ConeLabelOffset[0], offset(), 1e-12)
	prev := offset()
	for i := 1; i <= 32; i++ {
		m.Cone.SetOAPAngleCompliment(math.Pi / 2 * float64(i) / 32)
		got := offset()
		assert.LessOrEqual(t, got, prev+1e-15, "step %d", i)
		prev = got
	}
	assert.InDelta(t, cfg.ConeLabelOffset[1], prev, 1e-12)
}

func TestLabelBlend(t *testing.T) {
	tests := []struct{ t, want float64 }{
		{0, 0}, {0.25, 0.125}, {0.5, 0.5}, {0.75, 0.875}, {1, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, LabelBlend(tt.t), 1e-15, "t = %g", tt.t)
	}
}

func TestTransverseCircleFollowsTorus(t *testing.T) {
	m := newTestModel(t)
	const tau = 0.8
	require.True(t, m.SetAngleOAP(tau))
	wire := m.TransverseCircle.Surface().Wireframe()
	assert.Equal(t, kernel.Lines, wire.Mode)
	for i := 0; i < wire.VertexCount(); i++ {
		v := wire.Transform.Mul4x1(wire.Vertex(i).Vec4(1)).Vec3()
		assert.InDelta(t, 0, onTorus(1, v), 1e-6)
		// The circle's plane contains the z axis at azimuth τ.
		assert.InDelta(t, 0, v[0]*math.Sin(tau)-v[1]*math.Cos(tau), 1e-6)
	}
}

func TestArcsEndAtMAndP(t *testing.T) {
	m := newTestModel(t)
	require.True(t, m.SetAngleOAP(0.6))
	arcs := m.Arcs()
	require.Len(t, arcs, 2)
	pts := m.Points()
	assert.True(t, arcs[0].End().ApproxEqualThreshold(pts.M, 1e-12), "base arc end %v", arcs[0].End())
	assert.True(t, arcs[0].Start().ApproxEqualThreshold(pts.A, 1e-12))
	assert.True(t, arcs[1].End().ApproxEqualThreshold(pts.P, 1e-12), "transverse arc end %v", arcs[1].End())
	assert.True(t, arcs[1].Start().ApproxEqualThreshold(pts.O, 1e-12))
}

func checkWinding(t *testing.T, m *kernel.Mesh) {
	t.Helper()
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2])
		face := m.Vertex(b).Sub(m.Vertex(a)).Cross(m.Vertex(c).Sub(m.Vertex(a)))
		n := m.Normal(a).Add(m.Normal(b)).Add(m.Normal(c))
		assert.Greater(t, face.Dot(n), 0.0, "%s triangle %d", m.Name, i/3)
	}
}

func TestSurfacesWindOutward(t *testing.T) {
	m := newTestModel(t)
	require.True(t, m.SetAngleOAP(math.Pi/2))
	checkWinding(t, m.Torus.Surface().Surface())
	checkWinding(t, m.Cylinder.Surface().Surface())
	checkWinding(t, m.Cone.Surface().Surface())
	assert.Nil(t, m.BaseCircle.Surface().Surface())
}

func TestReferenceSolids(t *testing.T) {
	m := newTestModel(t)
	k := sdfx.New()

	sol := m.Solution()
	require.True(t, m.SetAngleOAP(sol.AngleOAP))
	assert.Less(t, m.IntersectionResidual(k), 1e-6)

	require.True(t, m.SetAngleOAP(0.3))
	assert.Greater(t, m.IntersectionResidual(k), 1e-3)

	min, max := m.BoundingBox(k)
	// The cone lies along x, so its base circle sets the z bounds below.
	want := [2][3]float64{{-1, -1, -math.Sqrt(0.75)}, {1, 1, 1}}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[0][i], min[i], 0.05, "min[%d]", i)
		assert.InDelta(t, want[1][i], max[i], 0.05, "max[%d]", i)
	}

	common := m.Common(k)
	p := PointsAt(m.Config().Diameter, sol.AngleOAP).P
	assert.InDelta(t, 0, common.Distance([3]float64{p[0], p[1], p[2]}), 1e-6)
	assert.Greater(t, common.Distance([3]float64{0, 0, 5}), 1.0)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero diameter", func(c *Config) { c.Diameter = 0 }},
		{"ratio one", func(c *Config) { c.Ratio = 1 }},
		{"negative height", func(c *Config) { c.CylinderHeight = -1 }},
		{"zero cone length", func(c *Config) { c.ConeLength = 0 }},
		{"no cone steps", func(c *Config) { c.ConeSteps = 0 }},
		{"flat torus profile", func(c *Config) { c.TorusProfileSteps = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewModel(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}
