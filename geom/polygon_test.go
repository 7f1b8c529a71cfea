package geom

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func mustPolygon(t *testing.T, pts []Point) Polygon {
	t.Helper()
	p, err := NewPolygon(pts)
	if err != nil {
		t.Fatalf("NewPolygon: %v", err)
	}
	return p
}

func square(t *testing.T, minX, minY, maxX, maxY float64) Polygon {
	t.Helper()
	return mustPolygon(t, []Point{
		{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY},
	})
}

func TestNewPolygon_RejectsTooFewVertices(t *testing.T) {
	cases := [][]Point{
		nil,
		{},
		{{X: 0, Y: 0}},
		{{X: 0, Y: 0}, {X: 1, Y: 1}},
		// Three entries but only two distinct vertices.
		{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 1}},
	}
	for i, pts := range cases {
		if _, err := NewPolygon(pts); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("case %d: expected ErrInvalidGeometry, got %v", i, err)
		}
	}
}

func TestNewPolygon_RejectsNonFiniteCoordinates(t *testing.T) {
	cases := [][]Point{
		{{X: math.NaN(), Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}},
		{{X: 0, Y: 0}, {X: math.Inf(1), Y: 0}, {X: 1, Y: 1}},
		{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: math.Inf(-1)}},
	}
	for i, pts := range cases {
		if _, err := NewPolygon(pts); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("case %d: expected ErrInvalidGeometry, got %v", i, err)
		}
	}
}

func TestNewPolygon_RejectsZeroArea(t *testing.T) {
	// Three distinct but collinear vertices enclose nothing.
	_, err := NewPolygon([]Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry for collinear ring, got %v", err)
	}
}

func TestNewPolygon_DropsClosingDuplicate(t *testing.T) {
	p := mustPolygon(t, []Point{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}, {X: 0, Y: 0},
	})
	if got := len(p.Exterior()); got != 4 {
		t.Fatalf("exterior vertex count = %d, want 4", got)
	}
}

func TestPolygon_ExteriorReturnsCopy(t *testing.T) {
	p := square(t, 0, 0, 2, 2)
	ext := p.Exterior()
	ext[0] = Point{X: 99, Y: 99}
	if p.Exterior()[0] != (Point{X: 0, Y: 0}) {
		t.Fatal("mutating the returned ring leaked into the polygon")
	}
}

func TestNewPolygonWithHoles(t *testing.T) {
	shell := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	hole := []Point{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}}

	p, err := NewPolygonWithHoles(shell, [][]Point{hole})
	if err != nil {
		t.Fatalf("NewPolygonWithHoles: %v", err)
	}
	if !p.HasHoles() {
		t.Fatal("expected HasHoles")
	}
	if !scalar.EqualWithinAbs(p.Area(), 96, 1e-9) {
		t.Fatalf("area = %v, want 96", p.Area())
	}

	if _, err := NewPolygonWithHoles(shell, [][]Point{{{X: 0, Y: 0}, {X: 1, Y: 1}}}); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry for two-vertex hole, got %v", err)
	}
}

func TestPolygon_AreaWindingAgnostic(t *testing.T) {
	ccw := mustPolygon(t, []Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 0, Y: 3}})
	cw := mustPolygon(t, []Point{{X: 0, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 0}, {X: 0, Y: 0}})
	if !scalar.EqualWithinAbs(ccw.Area(), cw.Area(), 1e-12) {
		t.Fatalf("area differs by winding: %v vs %v", ccw.Area(), cw.Area())
	}
}

func TestPolygon_Bound(t *testing.T) {
	p := mustPolygon(t, []Point{{X: 1, Y: 4}, {X: 3, Y: 6}, {X: 5, Y: 4}, {X: 3, Y: 2}})
	min, max := p.Bound()
	if min != (Point{X: 1, Y: 2}) || max != (Point{X: 5, Y: 6}) {
		t.Fatalf("bound = %v..%v, want (1,2)..(5,6)", min, max)
	}
}

func TestPolygon_ZeroValueIsEmpty(t *testing.T) {
	var p Polygon
	if !p.Empty() {
		t.Fatal("zero Polygon should be empty")
	}
	if p.Area() != 0 {
		t.Fatalf("zero Polygon area = %v, want 0", p.Area())
	}
}
