package geo

import "github.com/paulmach/orb"

// Intersects reports whether two polygons share any area, including the
// case where one fully contains the other without their boundaries
// crossing. It is the exact test used to confirm an R-tree bbox
// candidate pair before it is placed in the same overlap group.
func Intersects(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	ba, bb := a.Bound(), b.Bound()
	if !ba.Intersects(bb) {
		return false
	}
	if ringsCross(a[0], b[0]) {
		return true
	}
	if pointInRing(a[0][0], b[0]) || pointInRing(b[0][0], a[0]) {
		return true
	}
	return false
}
