package geo

import "github.com/paulmach/orb"

// signedArea returns twice the signed area of ring, positive for
// counter-clockwise orientation.
func signedArea(ring orb.Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p0 := ring[i]
		p1 := ring[(i+1)%n]
		sum += p0[0]*p1[1] - p1[0]*p0[1]
	}
	return sum
}

// isCCW reports whether ring is wound counter-clockwise.
func isCCW(ring orb.Ring) bool {
	return signedArea(ring) > 0
}

// ccw returns ring in counter-clockwise order, reversing it if necessary.
func ccw(ring orb.Ring) orb.Ring {
	if isCCW(ring) {
		out := make(orb.Ring, len(ring))
		copy(out, ring)
		return out
	}
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// openRing drops a trailing point that duplicates the first point, so
// callers can treat the ring as a plain cyclic vertex list.
func openRing(ring orb.Ring) orb.Ring {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}

// closeRing appends the first point if the ring isn't already closed.
func closeRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 || ring[0] == ring[len(ring)-1] {
		return ring
	}
	out := make(orb.Ring, len(ring)+1)
	copy(out, ring)
	out[len(ring)] = ring[0]
	return out
}

// pointInRing reports whether pt lies inside ring using the standard
// ray-casting test. Points exactly on the boundary may return either
// result; callers needing exact boundary handling test that separately.
func pointInRing(pt orb.Point, ring orb.Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi := ring[i]
		pj := ring[j]
		if (pi[1] > pt[1]) != (pj[1] > pt[1]) {
			x := pj[0] + (pt[1]-pj[1])/(pi[1]-pj[1])*(pi[0]-pj[0])
			if pt[0] < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Area returns the planar area enclosed by the polygon's outer ring
// minus its holes, in the polygon's native coordinate units (square
// degrees for geographic data). Suitable for comparing candidate sizes
// within a single overlap group, not for real-world area reporting.
func Area(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	a := signedArea(p[0])
	if a < 0 {
		a = -a
	}
	total := a / 2
	for _, hole := range p[1:] {
		h := signedArea(hole)
		if h < 0 {
			h = -h
		}
		total -= h / 2
	}
	if total < 0 {
		return 0
	}
	return total
}

// pointInPolygon reports whether pt is inside p's outer ring and
// outside all of its holes.
func pointInPolygon(pt orb.Point, p orb.Polygon) bool {
	if len(p) == 0 || !pointInRing(pt, p[0]) {
		return false
	}
	for _, hole := range p[1:] {
		if pointInRing(pt, hole) {
			return false
		}
	}
	return true
}

// pointInMultiPolygon reports whether pt is inside any polygon of mp.
func pointInMultiPolygon(pt orb.Point, mp orb.MultiPolygon) bool {
	for _, p := range mp {
		if pointInPolygon(pt, p) {
			return true
		}
	}
	return false
}
