package color

import (
	"maps"
	"sync"
)

// Roles looked up in a Palette. Material roles match the names the
// construction solids use.
const (
	RoleBackground = "background"
	RoleStroke     = "stroke"
	RoleLabel      = "label"
	RolePoint      = "point"
	RoleTorus      = "torus"
	RoleCylinder   = "cylinder"
	RoleCone       = "cone"
	RoleCircle     = "circle"
	RoleWireframe  = "wireframe"
)

// Palette maps a role to its color.
type Palette map[string]Color

// Dark returns a palette for a dark background: every color has its
// lightness mirrored.
func (p Palette) Dark() Palette {
	out := make(Palette, len(p))
	for k, c := range p {
		out[k] = c.Inverted()
	}
	return out
}

// LightPalette is the default palette for a light background.
func LightPalette() Palette {
	return Palette{
		RoleBackground: MustCSSColor("#ffffff"),
		RoleStroke:     MustCSSColor("#222222"),
		RoleLabel:      MustCSSColor("#111111"),
		RolePoint:      MustCSSColor("#c0392b"),
		RoleTorus:      MustCSSColor("#e0a96dcc"),
		RoleCylinder:   MustCSSColor("#6d9ee0cc"),
		RoleCone:       MustCSSColor("#7fc97fcc"),
		RoleCircle:     MustCSSColor("#8e44ad"),
		RoleWireframe:  MustCSSColor("#00000066"),
	}
}

// Theme holds a light and a dark palette and tells its subscribers when
// the active one changes. Components subscribe when they are created and
// call the returned function when they go away; there is no process-wide
// listener.
type Theme struct {
	mu     sync.Mutex
	light  Palette
	dark   Palette
	isDark bool
	subs   map[int]func(Palette)
	nextID int
}

// NewTheme returns a light theme over the given palettes. A nil dark
// palette is derived from light.
func NewTheme(light, dark Palette) *Theme {
	if light == nil {
		light = LightPalette()
	}
	if dark == nil {
		dark = light.Dark()
	}
	return &Theme{light: light, dark: dark, subs: map[int]func(Palette){}}
}

// IsDark reports whether the dark palette is active.
func (t *Theme) IsDark() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isDark
}

// Palette returns a copy of the active palette.
func (t *Theme) Palette() Palette {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.active())
}

// Color looks up a role in the active palette. Unknown roles get the
// stroke color.
func (t *Theme) Color(role string) Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.active()
	if c, ok := p[role]; ok {
		return c
	}
	return p[RoleStroke]
}

func (t *Theme) active() Palette {
	if t.isDark {
		return t.dark
	}
	return t.light
}

// SetDark switches palettes and notifies subscribers if anything changed.
// Callbacks run on the caller's goroutine, after the lock is released.
func (t *Theme) SetDark(dark bool) {
	t.mu.Lock()
	if t.isDark == dark {
		t.mu.Unlock()
		return
	}
	t.isDark = dark
	p := maps.Clone(t.active())
	subs := make([]func(Palette), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

// Subscribe registers fn for palette changes and returns the function
// that removes it. Calling the returned function more than once is
// harmless.
func (t *Theme) Subscribe(fn func(Palette)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

// Subscribers is the number of live subscriptions.
func (t *Theme) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
