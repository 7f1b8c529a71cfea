package geom

import "testing"

func TestIntersects_SelfIsTrue(t *testing.T) {
	shapes := []Polygon{
		square(t, 0, 0, 1, 1),
		mustPolygon(t, []Point{{X: 1, Y: 4}, {X: 3, Y: 6}, {X: 5, Y: 4}, {X: 3, Y: 2}}),
	}
	for i, p := range shapes {
		if !Intersects(p, p) {
			t.Errorf("shape %d: expected Intersects(P, P) to be true", i)
		}
	}
}

func TestIntersects_Symmetric(t *testing.T) {
	a := square(t, 0, 0, 4, 4)
	pairs := []Polygon{
		square(t, 2, 2, 6, 6),   // overlapping
		square(t, 10, 10, 11, 11), // disjoint
		square(t, 4, 0, 8, 4),   // edge touching
	}
	for i, b := range pairs {
		if Intersects(a, b) != Intersects(b, a) {
			t.Errorf("pair %d: Intersects is not symmetric", i)
		}
	}
}

func TestIntersects_DisjointFalse(t *testing.T) {
	a := square(t, 0, 0, 1, 1)
	b := square(t, 5, 5, 6, 6)
	if Intersects(a, b) {
		t.Fatal("disjoint squares should not intersect")
	}
}

func TestIntersects_BoundaryTouchingCounts(t *testing.T) {
	a := square(t, 0, 0, 2, 2)
	edge := square(t, 2, 0, 4, 2) // shares the x=2 edge
	if !Intersects(a, edge) {
		t.Error("edge-touching squares should intersect")
	}

	vertex := square(t, 2, 2, 4, 4) // shares only the (2,2) corner
	if !Intersects(a, vertex) {
		t.Error("vertex-touching squares should intersect")
	}
}

func TestContains_ImpliesIntersects(t *testing.T) {
	outer := square(t, -10, -10, 10, 10)
	inners := []Polygon{
		square(t, -1, -1, 1, 1),
		square(t, -10, -10, 0, 0), // shares outer's corner and edges
		mustPolygon(t, []Point{{X: 1, Y: 4}, {X: 3, Y: 6}, {X: 5, Y: 4}, {X: 3, Y: 2}}),
	}
	for i, inner := range inners {
		if !Contains(outer, inner) {
			t.Errorf("inner %d: expected containment", i)
			continue
		}
		if !Intersects(outer, inner) {
			t.Errorf("inner %d: contains held but intersects did not", i)
		}
	}
}

func TestContains_BoundaryInclusive(t *testing.T) {
	outer := square(t, 0, 0, 10, 10)
	inner := square(t, 0, 0, 5, 5) // flush against two outer edges
	if !Contains(outer, inner) {
		t.Fatal("polygon touching the boundary from inside should be contained")
	}
}

func TestContains_PartialOverlapFalse(t *testing.T) {
	outer := square(t, 0, 0, 10, 10)
	straddling := square(t, 8, 8, 12, 12)
	if Contains(outer, straddling) {
		t.Fatal("straddling polygon must not be contained")
	}
	if !Intersects(outer, straddling) {
		t.Fatal("straddling polygon must still intersect")
	}
}

// A concave outer shape where every vertex of the inner bar is inside one
// of the two arms, but the bar's top edge crosses the notch between them.
// Vertex-only containment would wrongly accept this.
func TestContains_EdgeCrossesConcaveNotch(t *testing.T) {
	outer := mustPolygon(t, []Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 7, Y: 10},
		{X: 7, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 10}, {X: 0, Y: 10},
	})
	bar := mustPolygon(t, []Point{
		{X: 1, Y: 8}, {X: 9, Y: 8}, {X: 9, Y: 9}, {X: 1, Y: 9},
	})

	// Sanity: all four bar vertices individually lie inside the outer shape.
	for _, pt := range bar.Exterior() {
		if !ContainsPoint(outer, pt) {
			t.Fatalf("fixture broken: vertex %v should be inside the outer shape", pt)
		}
	}

	if Contains(outer, bar) {
		t.Fatal("bar spans the notch; containment must be false despite all vertices being inside")
	}
	if !Intersects(outer, bar) {
		t.Fatal("bar overlaps both arms; intersection must be true")
	}
}

func TestContainsPoint(t *testing.T) {
	p := square(t, 0, 0, 4, 4)
	cases := []struct {
		pt   Point
		want bool
	}{
		{Point{X: 2, Y: 2}, true},
		{Point{X: 0, Y: 2}, true}, // on edge
		{Point{X: 0, Y: 0}, true}, // on vertex
		{Point{X: 5, Y: 2}, false},
	}
	for _, c := range cases {
		if got := ContainsPoint(p, c.pt); got != c.want {
			t.Errorf("ContainsPoint(%v) = %t, want %t", c.pt, got, c.want)
		}
	}
}

func TestPredicates_ZeroPolygonMatchesNothing(t *testing.T) {
	var zero Polygon
	p := square(t, 0, 0, 1, 1)
	if Intersects(zero, p) || Intersects(p, zero) {
		t.Error("zero polygon should intersect nothing")
	}
	if Contains(zero, p) || Contains(p, zero) {
		t.Error("zero polygon should contain nothing and be contained in nothing")
	}
}
