package archytas

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/kernel"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/tessellate"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// Material names shared with the color theme.
const (
	MaterialTorus     = "torus"
	MaterialCylinder  = "cylinder"
	MaterialCone      = "cone"
	MaterialCircle    = "circle"
	MaterialWireframe = "wireframe"
)

// Anchor is a labeled point that follows the geometry.
type Anchor struct {
	Name     string     `json:"name"`
	Position mgl64.Vec3 `json:"position"`
}

// solid is the part common to every construction solid: a swept surface
// and its label anchors.
type solid struct {
	surface *tessellate.Surface
	anchors []Anchor
	logger  *slog.Logger
}

func newSolid(name string, gen tessellate.Generatrix, r valuerange.ValueRange, logger *slog.Logger, material string, anchors ...string) (*solid, error) {
	surface, err := tessellate.New(gen, r,
		tessellate.WithName(name),
		tessellate.WithLogger(logger),
		tessellate.WithMaterial(material, MaterialWireframe))
	if err != nil {
		return nil, err
	}
	s := &solid{surface: surface, anchors: make([]Anchor, len(anchors)), logger: logger}
	for i, a := range anchors {
		s.anchors[i].Name = a
	}
	return s, nil
}

// Group holds the solid's meshes.
func (s *solid) Group() *kernel.Group { return s.surface.Group() }

// Surface is the underlying swept surface.
func (s *solid) Surface() *tessellate.Surface { return s.surface }

// Anchors returns the label anchors. The slice is updated in place.
func (s *solid) Anchors() []Anchor { return s.anchors }

// reject logs a control value that cannot be mapped onto the sweep.
func (s *solid) reject(param string, v float64) {
	s.logger.Error("control angle out of range",
		slog.String("solid", s.surface.Group().Name), slog.String("param", param), slog.Float64("value", v))
}
