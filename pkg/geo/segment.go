package geo

import "github.com/paulmach/orb"

// segmentIntersection computes the intersection of segments p0->p1 and
// p2->p3. ok is false when the segments are parallel or don't cross
// within their bounds. ta/tb are the intersection's parametric position
// along each segment, in [0,1].
func segmentIntersection(p0, p1, p2, p3 orb.Point) (pt orb.Point, ta, tb float64, ok bool) {
	rx := p1[0] - p0[0]
	ry := p1[1] - p0[1]
	sx := p3[0] - p2[0]
	sy := p3[1] - p2[1]

	denom := rx*sy - ry*sx
	if denom == 0 {
		return orb.Point{}, 0, 0, false
	}

	qpx := p2[0] - p0[0]
	qpy := p2[1] - p0[1]

	t := (qpx*sy - qpy*sx) / denom
	u := (qpx*ry - qpy*rx) / denom

	if t < 0 || t > 1 || u < 0 || u > 1 {
		return orb.Point{}, 0, 0, false
	}

	return orb.Point{p0[0] + t*rx, p0[1] + t*ry}, t, u, true
}

// ringsCross reports whether any edge of a crosses any edge of b.
func ringsCross(a, b orb.Ring) bool {
	oa, ob := openRing(a), openRing(b)
	na, nb := len(oa), len(ob)
	for i := 0; i < na; i++ {
		a0, a1 := oa[i], oa[(i+1)%na]
		for j := 0; j < nb; j++ {
			b0, b1 := ob[j], ob[(j+1)%nb]
			if _, _, _, ok := segmentIntersection(a0, a1, b0, b1); ok {
				return true
			}
		}
	}
	return false
}
