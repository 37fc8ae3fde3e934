package archytas

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by NewModel for unusable configurations.
var ErrInvalidConfig = errors.New("archytas: invalid config")

// Config holds the dimensions and tessellation density of the construction.
type Config struct {
	// Diameter is the length OA, the diameter of the base circle.
	Diameter float64 `toml:"diameter"`
	// Ratio is b/OA for the shorter given length b. It fixes the cone:
	// cos α = Ratio.
	Ratio float64 `toml:"ratio"`
	// CylinderHeight is the height of the cylinder over the base circle.
	CylinderHeight float64 `toml:"cylinder_height"`
	// ConeLength is the slant length of the drawn cone generatrices.
	ConeLength float64 `toml:"cone_length"`
	// ConeLabelOffset holds the horizontal offsets of label T at
	// angleOAPCompliment 0 and π/2.
	ConeLabelOffset [2]float64 `toml:"cone_label_offset"`

	TorusSteps        int `toml:"torus_steps"`
	TorusProfileSteps int `toml:"torus_profile_steps"`
	CylinderSteps     int `toml:"cylinder_steps"`
	ConeSteps         int `toml:"cone_steps"`
	CircleSteps       int `toml:"circle_steps"`
}

// DefaultConfig returns the construction over a unit diameter with
// b = OA/2, the cube-doubling case.
func DefaultConfig() Config {
	return Config{
		Diameter:          1,
		Ratio:             0.5,
		CylinderHeight:    1,
		ConeLength:        1,
		ConeLabelOffset:   [2]float64{0.05, -0.1},
		TorusSteps:        24,
		TorusProfileSteps: 24,
		CylinderSteps:     24,
		ConeSteps:         24,
		CircleSteps:       48,
	}
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	switch {
	case !(c.Diameter > 0):
		return fmt.Errorf("%w: diameter %v must be positive", ErrInvalidConfig, c.Diameter)
	case !(c.Ratio > 0 && c.Ratio < 1):
		return fmt.Errorf("%w: ratio %v must be in (0, 1)", ErrInvalidConfig, c.Ratio)
	case !(c.CylinderHeight > 0):
		return fmt.Errorf("%w: cylinder height %v must be positive", ErrInvalidConfig, c.CylinderHeight)
	case !(c.ConeLength > 0):
		return fmt.Errorf("%w: cone length %v must be positive", ErrInvalidConfig, c.ConeLength)
	}
	steps := map[string]int{
		"torus":         c.TorusSteps,
		"torus profile": c.TorusProfileSteps,
		"cylinder":      c.CylinderSteps,
		"cone":          c.ConeSteps,
		"circle":        c.CircleSteps,
	}
	for name, n := range steps {
		if n < 1 {
			return fmt.Errorf("%w: %s step count %d must be at least 1", ErrInvalidConfig, name, n)
		}
	}
	if c.TorusProfileSteps < 2 {
		return fmt.Errorf("%w: torus profile needs at least 2 steps", ErrInvalidConfig)
	}
	return nil
}
