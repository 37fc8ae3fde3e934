package archytas

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// cylinderLine is the vertical generatrix over the base-circle point seen
// from O at secant angle σ, d·cos σ·(cos σ, sin σ).
type cylinderLine struct {
	d, height float64
}

func (g *cylinderLine) VertexCount() int         { return 2 }
func (g *cylinderLine) SharedVertexCount() int   { return 0 }
func (g *cylinderLine) Shared(_, _ []mgl64.Vec3) {}
func (g *cylinderLine) Apex() bool               { return false }
func (g *cylinderLine) ClosesToShared() bool     { return false }

func (g *cylinderLine) Slice(sigma, _ float64, vtx, nrm []mgl64.Vec3) {
	s, c := math.Sincos(sigma)
	foot := mgl64.Vec3{g.d * c * c, g.d * c * s, 0}
	vtx[0] = foot
	vtx[1] = mgl64.Vec3{foot[0], foot[1], g.height}
	// The inscribed angle σ subtends the central angle 2σ.
	s2, c2 := math.Sincos(2 * sigma)
	nrm[0] = mgl64.Vec3{c2, s2, 0}
	nrm[1] = nrm[0]
}

// Cylinder is the right cylinder over the base circle.
type Cylinder struct {
	*solid
	d, height float64
}

func newCylinder(cfg Config, logger *slog.Logger) (*Cylinder, error) {
	r := valuerange.MustConstStepRange(0, math.Pi/2, cfg.CylinderSteps)
	gen := &cylinderLine{d: cfg.Diameter, height: cfg.CylinderHeight}
	s, err := newSolid("cylinder", gen, r, logger, MaterialCylinder, "M", "M top")
	if err != nil {
		return nil, err
	}
	c := &Cylinder{solid: s, d: cfg.Diameter, height: cfg.CylinderHeight}
	c.updateAnchors()
	return c, nil
}

// SetSecantAngle sweeps the cylinder up to the generatrix over M, where σ
// is the angle of OM from OA.
func (c *Cylinder) SetSecantAngle(sigma float64) bool {
	if !c.surface.SetValue(sigma) {
		return false
	}
	c.updateAnchors()
	return true
}

// SecantAngle is the current sweep angle.
func (c *Cylinder) SecantAngle() float64 { return c.surface.Value() }

func (c *Cylinder) updateAnchors() {
	m := PointsAt(c.d, c.surface.Value()).M
	c.anchors[0].Position = m
	c.anchors[1].Position = mgl64.Vec3{m[0], m[1], c.height}
}
