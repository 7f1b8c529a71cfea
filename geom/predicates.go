package geom

import "github.com/tidwall/geojson/geometry"

// Intersects reports whether a and b share at least one point. Interior
// overlap, edge touching and vertex touching all count (boundary-inclusive),
// and the relation is symmetric. An empty polygon intersects nothing.
func Intersects(a, b Polygon) bool {
	if a.poly == nil || b.poly == nil {
		return false
	}
	return a.poly.IntersectsPoly(b.poly)
}

// Contains reports whether every point of inner, boundary and interior alike,
// lies within or on the boundary of outer. This is true polygon containment:
// an inner edge that exits and re-enters outer between two inside vertices
// fails the check even though every vertex is inside.
func Contains(outer, inner Polygon) bool {
	if outer.poly == nil || inner.poly == nil {
		return false
	}
	return outer.poly.ContainsPoly(inner.poly)
}

// ContainsPoint reports whether pt lies within or on the boundary of p.
func ContainsPoint(p Polygon, pt Point) bool {
	if p.poly == nil {
		return false
	}
	return p.poly.ContainsPoint(geometry.Point{X: pt.X, Y: pt.Y})
}
