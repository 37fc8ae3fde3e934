package archytas

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// torusProfile is the vertical semicircle over the diameter OA', swept
// about the z axis. Slice vertex k sits at angle kπ/T on the semicircle,
// measured at its center from A' toward O; O itself is the shared vertex.
type torusProfile struct {
	radius  float64
	steps   int
	sweepLo float64
	sweepHi float64
}

func (g *torusProfile) VertexCount() int       { return g.steps }
func (g *torusProfile) SharedVertexCount() int { return 1 }
func (g *torusProfile) Apex() bool             { return false }
func (g *torusProfile) ClosesToShared() bool   { return true }

// Shared writes O. Its normal points away from the mean sweep direction.
func (g *torusProfile) Shared(vtx, nrm []mgl64.Vec3) {
	mean := (g.sweepLo + g.sweepHi) / 2
	s, c := math.Sincos(mean)
	vtx[0] = mgl64.Vec3{}
	nrm[0] = mgl64.Vec3{-c, -s, 0}
}

func (g *torusProfile) Slice(angle, _ float64, vtx, nrm []mgl64.Vec3) {
	su, cu := math.Sincos(angle)
	u := mgl64.Vec3{cu, su, 0}
	center := u.Mul(g.radius)
	for k := 0; k < g.steps; k++ {
		sb, cb := math.Sincos(float64(k) * math.Pi / float64(g.steps))
		n := mgl64.Vec3{cb * cu, cb * su, sb}
		nrm[k] = n
		vtx[k] = center.Add(n.Mul(g.radius))
	}
}

// Torus is the horn torus traced by the semicircle on OA' as A' turns
// about O.
type Torus struct {
	*solid
	d float64
}

func newTorus(cfg Config, logger *slog.Logger) (*Torus, error) {
	r := valuerange.MustConstStepRange(0, math.Pi/2, cfg.TorusSteps)
	gen := &torusProfile{radius: cfg.Diameter / 2, steps: cfg.TorusProfileSteps, sweepLo: r.Start(), sweepHi: r.End()}
	s, err := newSolid("torus", gen, r, logger, MaterialTorus, "A'")
	if err != nil {
		return nil, err
	}
	t := &Torus{solid: s, d: cfg.Diameter}
	t.updateAnchors()
	return t, nil
}

// SetToroidalAngle sweeps the torus up to the angle τ of A' from OA.
func (t *Torus) SetToroidalAngle(tau float64) bool {
	if !t.surface.SetValue(tau) {
		return false
	}
	t.updateAnchors()
	return true
}

// ToroidalAngle is the current sweep angle.
func (t *Torus) ToroidalAngle() float64 { return t.surface.Value() }

func (t *Torus) updateAnchors() {
	t.anchors[0].Position = PointsAt(t.d, t.surface.Value()).APrime
}
