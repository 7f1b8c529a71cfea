package geom

import (
	"fmt"
	"math"

	"github.com/tidwall/geojson/geometry"
)

// Point is a position in the planar ENU working frame, in metres.
type Point struct {
	X float64
	Y float64
}

// Polygon is an immutable planar polygon: one exterior ring plus zero or
// more interior holes. Valid values only come from NewPolygon or
// NewPolygonWithHoles; the zero Polygon is empty and matches nothing.
//
// Winding order of the input rings does not matter: rings are kept as
// given for accessors, and every operation normalises internally.
type Polygon struct {
	exterior []Point
	holes    [][]Point

	// prebuilt predicate form; fleets are small, so no spatial index
	// is attached per polygon.
	poly *geometry.Poly
}

// NewPolygon builds a polygon from an exterior ring. A closing duplicate
// of the first vertex is tolerated and dropped.
func NewPolygon(exterior []Point) (Polygon, error) {
	return NewPolygonWithHoles(exterior, nil)
}

// NewPolygonWithHoles builds a polygon with interior holes, following the
// GeoJSON convention of one shell ring plus zero or more hole rings.
func NewPolygonWithHoles(exterior []Point, holes [][]Point) (Polygon, error) {
	shell, err := cleanRing(exterior)
	if err != nil {
		return Polygon{}, fmt.Errorf("exterior: %w", err)
	}
	if ringArea(shell) == 0 {
		return Polygon{}, fmt.Errorf("%w: exterior ring has zero area", ErrInvalidGeometry)
	}

	cleanHoles := make([][]Point, 0, len(holes))
	for i, h := range holes {
		hole, err := cleanRing(h)
		if err != nil {
			return Polygon{}, fmt.Errorf("hole %d: %w", i, err)
		}
		if ringArea(hole) == 0 {
			return Polygon{}, fmt.Errorf("%w: hole %d has zero area", ErrInvalidGeometry, i)
		}
		cleanHoles = append(cleanHoles, hole)
	}
	if len(cleanHoles) == 0 {
		cleanHoles = nil
	}

	return Polygon{
		exterior: shell,
		holes:    cleanHoles,
		poly:     buildPoly(shell, cleanHoles),
	}, nil
}

// Exterior returns a copy of the exterior ring, without a closing duplicate.
func (p Polygon) Exterior() []Point {
	out := make([]Point, len(p.exterior))
	copy(out, p.exterior)
	return out
}

// Holes returns copies of the interior hole rings, if any.
func (p Polygon) Holes() [][]Point {
	if len(p.holes) == 0 {
		return nil
	}
	out := make([][]Point, len(p.holes))
	for i, h := range p.holes {
		ring := make([]Point, len(h))
		copy(ring, h)
		out[i] = ring
	}
	return out
}

// HasHoles reports whether the polygon has interior holes.
func (p Polygon) HasHoles() bool { return len(p.holes) > 0 }

// Empty reports whether p is the zero Polygon.
func (p Polygon) Empty() bool { return len(p.exterior) == 0 }

// Area returns the enclosed area: exterior area minus hole areas.
func (p Polygon) Area() float64 {
	if p.Empty() {
		return 0
	}
	a := math.Abs(ringArea(p.exterior))
	for _, h := range p.holes {
		a -= math.Abs(ringArea(h))
	}
	return a
}

// Bound returns the axis-aligned bounding box of the exterior ring.
func (p Polygon) Bound() (min, max Point) {
	if p.Empty() {
		return Point{}, Point{}
	}
	min = p.exterior[0]
	max = p.exterior[0]
	for _, pt := range p.exterior[1:] {
		min.X = math.Min(min.X, pt.X)
		min.Y = math.Min(min.Y, pt.Y)
		max.X = math.Max(max.X, pt.X)
		max.Y = math.Max(max.Y, pt.Y)
	}
	return min, max
}

func buildPoly(exterior []Point, holes [][]Point) *geometry.Poly {
	ext := toGeometryPoints(exterior)
	var ghs [][]geometry.Point
	for _, h := range holes {
		ghs = append(ghs, toGeometryPoints(h))
	}
	// Footprints and zones are a handful of vertices each; skip the
	// per-ring segment index.
	return geometry.NewPoly(ext, ghs, &geometry.IndexOptions{Kind: geometry.None})
}

func toGeometryPoints(ring []Point) []geometry.Point {
	out := make([]geometry.Point, len(ring))
	for i, pt := range ring {
		out[i] = geometry.Point{X: pt.X, Y: pt.Y}
	}
	return out
}

// cleanRing validates coordinates and strips a closing duplicate plus any
// consecutive repeated vertices, returning an owned copy.
func cleanRing(ring []Point) ([]Point, error) {
	if len(ring) == 0 {
		return nil, fmt.Errorf("%w: empty ring", ErrInvalidGeometry)
	}
	for _, pt := range ring {
		if !isFinite(pt.X) || !isFinite(pt.Y) {
			return nil, fmt.Errorf("%w: non-finite coordinate (%v, %v)", ErrInvalidGeometry, pt.X, pt.Y)
		}
	}

	out := make([]Point, 0, len(ring))
	for _, pt := range ring {
		if len(out) > 0 && out[len(out)-1] == pt {
			continue
		}
		out = append(out, pt)
	}
	// GeoJSON rings repeat the first vertex at the end.
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}

	if len(out) < 3 {
		return nil, fmt.Errorf("%w: ring needs at least 3 distinct vertices, got %d", ErrInvalidGeometry, len(out))
	}
	return out, nil
}

// ringArea is the signed shoelace area; positive for counter-clockwise rings.
func ringArea(ring []Point) float64 {
	var sum float64
	for i := range ring {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
