package archytas

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// coneLine is a generatrix of the cone with apex O and axis OA, turned
// about OA by γ from the base plane.
type coneLine struct {
	sinA, cosA float64
	length     float64
}

func (g *coneLine) VertexCount() int         { return 2 }
func (g *coneLine) SharedVertexCount() int   { return 0 }
func (g *coneLine) Shared(_, _ []mgl64.Vec3) {}
func (g *coneLine) Apex() bool               { return true }
func (g *coneLine) ClosesToShared() bool     { return false }

func (g *coneLine) direction(gamma float64) mgl64.Vec3 {
	s, c := math.Sincos(gamma)
	return mgl64.Vec3{g.cosA, g.sinA * c, g.sinA * s}
}

func (g *coneLine) normal(gamma float64) mgl64.Vec3 {
	s, c := math.Sincos(gamma)
	return mgl64.Vec3{-g.sinA, g.cosA * c, g.cosA * s}
}

// Slice writes the apex and the far end. The apex is shared by the
// triangles of the wedge ending here, so its normal uses the wedge's mean
// angle.
func (g *coneLine) Slice(gamma, prev float64, vtx, nrm []mgl64.Vec3) {
	vtx[0] = mgl64.Vec3{}
	nrm[0] = g.normal((gamma + prev) / 2)
	vtx[1] = g.direction(gamma).Mul(g.length)
	nrm[1] = g.normal(gamma)
}

// Cone is the right circular cone with apex O, axis OA and cos α = b/OA.
type Cone struct {
	*solid
	gen         *coneLine
	labelOffset [2]float64
	phi         float64
}

func newCone(cfg Config, logger *slog.Logger) (*Cone, error) {
	r := valuerange.MustConstStepRange(0, math.Pi/2, cfg.ConeSteps)
	gen := &coneLine{cosA: cfg.Ratio, sinA: math.Sqrt(1 - cfg.Ratio*cfg.Ratio), length: cfg.ConeLength}
	s, err := newSolid("cone", gen, r, logger, MaterialCone, "T")
	if err != nil {
		return nil, err
	}
	c := &Cone{solid: s, gen: gen, labelOffset: cfg.ConeLabelOffset, phi: math.Pi / 2}
	c.surface.SetValue(GeneratrixAngle(c.phi))
	c.updateAnchors()
	return c, nil
}

// GeneratrixAngle returns the rotation γ about OA of the cone generatrix
// through P, for φ = angleOAPCompliment: γ = atan2(1, √(sin φ (1 + sin φ))).
func GeneratrixAngle(phi float64) float64 {
	s := math.Sin(phi)
	return math.Atan2(1, math.Sqrt(s*(1+s)))
}

// SetOAPAngleCompliment sweeps the cone up to the generatrix that has the
// same rotation about OA as P.
func (c *Cone) SetOAPAngleCompliment(phi float64) bool {
	if !(phi >= 0 && phi <= math.Pi/2) {
		c.reject("angleOAPCompliment", phi)
		return false
	}
	if !c.surface.SetValue(GeneratrixAngle(phi)) {
		return false
	}
	c.phi = phi
	c.updateAnchors()
	return true
}

// OAPAngleCompliment is the φ last applied.
func (c *Cone) OAPAngleCompliment() float64 { return c.phi }

// LabelBlend is the ease-in-out weight of t ∈ [0, 1]: 2t² below ½ and
// 1 - 2(1-t)² above.
func LabelBlend(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := 1 - t
	return 1 - 2*u*u
}

func (c *Cone) updateAnchors() {
	end := c.gen.direction(c.surface.Value()).Mul(c.gen.length)
	w := LabelBlend(c.phi / (math.Pi / 2))
	offset := c.labelOffset[0] + (c.labelOffset[1]-c.labelOffset[0])*w
	c.anchors[0].Position = end.Add(mgl64.Vec3{offset, 0, 0})
}
