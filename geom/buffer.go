package geom

import (
	"fmt"
	"math"

	polyclip "github.com/akavel/polyclip-go"
)

// BufferOutward returns a polygon whose boundary is offset outward from p by
// distance, measured along the local edge normals (a Minkowski-style
// expansion). Corners are mitered: the offset edges are extended to their
// intersection. No mitre limit is applied, so extremely acute corners grow
// long spikes.
//
// A distance of zero returns a polygon equivalent to p. Negative or NaN
// distances are rejected with ErrInvalidArgument. Polygons with interior
// holes cannot be buffered and are rejected with ErrInvalidGeometry; only
// hole-free vehicle footprints are ever expanded.
func BufferOutward(p Polygon, distance float64) (Polygon, error) {
	if p.Empty() {
		return Polygon{}, fmt.Errorf("%w: cannot buffer an empty polygon", ErrInvalidGeometry)
	}
	if math.IsNaN(distance) || distance < 0 {
		return Polygon{}, fmt.Errorf("%w: buffer distance must be non-negative, got %v", ErrInvalidArgument, distance)
	}
	if p.HasHoles() {
		return Polygon{}, fmt.Errorf("%w: buffering a polygon with holes is not supported", ErrInvalidGeometry)
	}
	if distance == 0 {
		return p, nil
	}

	ring := counterClockwise(p.exterior)
	n := len(ring)
	result := polyclip.Polygon{toContour(ring)}

	// One offset quad per edge: the edge swept outward along its normal.
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		dir := unit(vec(a, b))
		// Right-hand normal points outward for a counter-clockwise ring.
		nrm := Point{X: dir.Y, Y: -dir.X}
		qa := offset(a, nrm, distance)
		qb := offset(b, nrm, distance)
		quad := polyclip.Contour{pcPoint(a), pcPoint(b), pcPoint(qb), pcPoint(qa)}
		result = result.Construct(polyclip.UNION, polyclip.Polygon{quad})
	}

	// One mitre wedge per convex vertex, filling the gap between adjacent
	// offset edges. Reflex and collinear vertices need nothing: there the
	// edge quads already overlap.
	for i := 0; i < n; i++ {
		v := ring[i]
		d1 := unit(vec(ring[(i-1+n)%n], v))
		d2 := unit(vec(v, ring[(i+1)%n]))
		turn := d1.X*d2.Y - d1.Y*d2.X
		if turn <= 1e-12 {
			continue
		}
		n1 := Point{X: d1.Y, Y: -d1.X}
		n2 := Point{X: d2.Y, Y: -d2.X}
		p1 := offset(v, n1, distance)
		p2 := offset(v, n2, distance)
		// Intersection of the two offset edge lines.
		t := ((p2.X-p1.X)*d2.Y - (p2.Y-p1.Y)*d2.X) / turn
		m := offset(p1, d1, t)
		wedge := polyclip.Contour{pcPoint(v), pcPoint(p1), pcPoint(m), pcPoint(p2)}
		result = result.Construct(polyclip.UNION, polyclip.Polygon{wedge})
	}

	return polygonFromClip(result)
}

// polygonFromClip extracts the outer boundary of a clipping result. The
// union of a connected ring with its own offset pieces is a single region,
// so the contour with the largest absolute area is its exterior.
func polygonFromClip(clip polyclip.Polygon) (Polygon, error) {
	if len(clip) == 0 {
		return Polygon{}, fmt.Errorf("%w: clipping produced no contours", ErrInvalidGeometry)
	}
	best := 0
	bestArea := 0.0
	for i, c := range clip {
		a := math.Abs(contourArea(c))
		if a > bestArea {
			best = i
			bestArea = a
		}
	}
	ring := make([]Point, len(clip[best]))
	for i, pt := range clip[best] {
		ring[i] = Point{X: pt.X, Y: pt.Y}
	}
	return NewPolygon(ring)
}

// counterClockwise returns ring in counter-clockwise order, copying as needed.
func counterClockwise(ring []Point) []Point {
	out := make([]Point, len(ring))
	copy(out, ring)
	if ringArea(out) < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func toContour(ring []Point) polyclip.Contour {
	c := make(polyclip.Contour, len(ring))
	for i, pt := range ring {
		c[i] = pcPoint(pt)
	}
	return c
}

func contourArea(c polyclip.Contour) float64 {
	var sum float64
	for i := range c {
		a := c[i]
		b := c[(i+1)%len(c)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func pcPoint(p Point) polyclip.Point { return polyclip.Point{X: p.X, Y: p.Y} }

func vec(from, to Point) Point { return Point{X: to.X - from.X, Y: to.Y - from.Y} }

func unit(v Point) Point {
	l := math.Hypot(v.X, v.Y)
	return Point{X: v.X / l, Y: v.Y / l}
}

func offset(p, dir Point, by float64) Point {
	return Point{X: p.X + dir.X*by, Y: p.Y + dir.Y*by}
}
