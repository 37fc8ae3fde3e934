package sdfx

import (
	"math"
	"testing"
)

const tol = 0.01

func checkBox(t *testing.T, min, max, expectMin, expectMax [3]float64, tol float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestHornTorus(t *testing.T) {
	k := New()
	torus := k.HornTorus(5)
	min, max := torus.BoundingBox()
	checkBox(t, min, max, [3]float64{-10, -10, -5}, [3]float64{10, 10, 5}, tol)

	tests := []struct {
		name string
		p    [3]float64
		want float64
	}{
		{"touches axis at origin", [3]float64{0, 0, 0}, 0},
		{"outer equator", [3]float64{10, 0, 0}, 0},
		{"top of tube", [3]float64{0, 5, 5}, 0},
		{"tube center", [3]float64{-5, 0, 0}, -5},
		{"above axis", [3]float64{0, 0, 3}, math.Sqrt(25+9) - 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := torus.Distance(tt.p); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance(%v) = %f, want %f", tt.p, got, tt.want)
			}
		})
	}
}

func TestCylinder(t *testing.T) {
	k := New()
	cyl := k.Cylinder(50, 10)
	min, max := cyl.BoundingBox()
	checkBox(t, min, max, [3]float64{-10, -10, 0}, [3]float64{10, 10, 50}, tol)

	if d := cyl.Distance([3]float64{10, 0, 25}); math.Abs(d) > 1e-9 {
		t.Errorf("Distance(side) = %f, want 0", d)
	}
	mesh, err := k.ToMesh(cyl, 40)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
	t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
}

func TestCone(t *testing.T) {
	k := New()
	cone := k.Cone(math.Pi/4, 10)
	min, max := cone.BoundingBox()
	checkBox(t, min, max, [3]float64{-10, -10, 0}, [3]float64{10, 10, 10}, tol)

	// A point on the lateral surface, halfway up.
	if d := cone.Distance([3]float64{5, 0, 5}); math.Abs(d) > 1e-6 {
		t.Errorf("Distance(lateral) = %f, want 0", d)
	}
	if d := cone.Distance([3]float64{0, 0, 5}); d >= 0 {
		t.Errorf("Distance(axis) = %f, want inside", d)
	}
}

func TestRotateMovesConeAxis(t *testing.T) {
	k := New()
	cone := k.Rotate(k.Cone(math.Pi/4, 10), 0, 90, 0)
	min, max := cone.BoundingBox()
	checkBox(t, min, max, [3]float64{0, -10, -10}, [3]float64{10, 10, 10}, 0.5)
	if d := cone.Distance([3]float64{5, 5, 0}); math.Abs(d) > 1e-6 {
		t.Errorf("Distance(lateral) = %f, want 0", d)
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	cyl := k.Cylinder(10, 5)
	translated := k.Translate(cyl, 100, 200, 300)

	min, max := translated.BoundingBox()
	checkBox(t, min, max, [3]float64{95, 195, 300}, [3]float64{105, 205, 310}, 0.5)
}

func TestUnion(t *testing.T) {
	k := New()
	a := k.Cylinder(10, 5)
	b := k.Translate(k.Cylinder(10, 5), 30, 0, 0)
	u := k.Union(a, b)
	min, max := u.BoundingBox()
	checkBox(t, min, max, [3]float64{-5, -5, 0}, [3]float64{35, 5, 10}, 0.5)
	mesh, err := k.ToMesh(u, 60)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	t.Logf("union triangle count: %d", mesh.TriangleCount())
}

func TestIntersection(t *testing.T) {
	k := New()
	// The horn torus and the cylinder over its inner circle meet along a
	// curve; every point of it is on both surfaces.
	torus := k.HornTorus(1)
	cyl := k.Translate(k.Cylinder(2, 1), 1, 0, 0)
	inter := k.Intersection(torus, cyl)

	// (c², c·s, √(c(1-c))) with c = 0.6, s = 0.8 scaled by the diameter 2.
	c, s := 0.6, 0.8
	p := [3]float64{2 * c * c, 2 * c * s, 2 * math.Sqrt(c*(1-c))}
	if d := inter.Distance(p); math.Abs(d) > 1e-9 {
		t.Errorf("Distance(curve point) = %g, want 0", d)
	}
	mesh, err := k.ToMesh(inter, 40)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
}
