package kernel

// Group is a named set of meshes that make up one renderable object, such
// as a solid's surface, wireframe and connecting slice.
type Group struct {
	Name   string  `json:"name"`
	Meshes []*Mesh `json:"meshes"`
}

// NewGroup returns a group holding meshes.
func NewGroup(name string, meshes ...*Mesh) *Group {
	return &Group{Name: name, Meshes: meshes}
}

// Add appends meshes to the group.
func (g *Group) Add(meshes ...*Mesh) {
	g.Meshes = append(g.Meshes, meshes...)
}

// Mesh returns the mesh with the given name, or nil.
func (g *Group) Mesh(name string) *Mesh {
	for _, m := range g.Meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// SetVisible shows or hides every mesh in the group.
func (g *Group) SetVisible(visible bool) {
	for _, m := range g.Meshes {
		m.Visible = visible
	}
}
