package tessellate

// layout computes index buffers for a generatrix with s shared vertices and
// v vertices per slice.
type layout struct {
	shared, perSlice int
	apex, closes     bool
}

// wedgeTriangles appends the triangles between the slices starting at b0
// and b1.
func (l layout) wedgeTriangles(dst []uint32, b0, b1 uint32) []uint32 {
	first := 0
	if l.apex && l.perSlice > 1 {
		dst = append(dst, b1, b1+1, b0+1)
		first = 1
	}
	for k := uint32(first); int(k) < l.perSlice-1; k++ {
		dst = append(dst,
			b0+k, b1+k, b1+k+1,
			b0+k, b1+k+1, b0+k+1)
	}
	if l.closes {
		last := uint32(l.perSlice - 1)
		dst = append(dst, b0+last, b1+last, 0)
	}
	return dst
}

// boundaryLines appends the segments along the slice starting at b.
func (l layout) boundaryLines(dst []uint32, b uint32) []uint32 {
	for k := uint32(0); int(k) < l.perSlice-1; k++ {
		dst = append(dst, b+k, b+k+1)
	}
	if l.closes {
		dst = append(dst, b+uint32(l.perSlice-1), 0)
	}
	return dst
}

// wedgeLines appends the far boundary of a wedge and the rims joining it
// to the near boundary.
func (l layout) wedgeLines(dst []uint32, b0, b1 uint32) []uint32 {
	dst = l.boundaryLines(dst, b1)
	first := 0
	if l.apex {
		first = 1
	}
	for k := uint32(first); int(k) < l.perSlice; k++ {
		dst = append(dst, b0+k, b1+k)
	}
	return dst
}

func (l layout) trianglesPerWedge() int {
	return len(l.wedgeTriangles(nil, 0, 0))
}

func (l layout) headerLines() int {
	return len(l.boundaryLines(nil, 0))
}

func (l layout) linesPerWedge() int {
	return len(l.wedgeLines(nil, 0, 0))
}

// base returns the index of the first vertex of boundary j.
func (l layout) base(j int) uint32 {
	return uint32(l.shared + j*l.perSlice)
}

// triangles returns the index buffer for n wedges, grouped by wedge.
func (l layout) triangles(n int) []uint32 {
	dst := make([]uint32, 0, n*l.trianglesPerWedge())
	for j := 0; j < n; j++ {
		dst = l.wedgeTriangles(dst, l.base(j), l.base(j+1))
	}
	return dst
}

// lines returns the wireframe index buffer for n wedges: the first
// boundary, then each wedge.
func (l layout) lines(n int) []uint32 {
	dst := make([]uint32, 0, l.headerLines()+n*l.linesPerWedge())
	dst = l.boundaryLines(dst, l.base(0))
	for j := 0; j < n; j++ {
		dst = l.wedgeLines(dst, l.base(j), l.base(j+1))
	}
	return dst
}
