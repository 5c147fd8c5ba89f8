package geo

import "github.com/paulmach/orb"

// BoundOfRing returns the axis-aligned bounding box of ring.
func BoundOfRing(ring orb.Ring) orb.Bound {
	b := orb.Bound{Min: ring[0], Max: ring[0]}
	for _, pt := range ring[1:] {
		b = b.Extend(pt)
	}
	return b
}

// BoundOfPolygons returns the smallest bound covering every polygon's
// outer ring. Polygons with no rings are skipped; if none remain, the
// zero Bound is returned.
func BoundOfPolygons(polys []orb.Polygon) orb.Bound {
	var b orb.Bound
	first := true
	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		pb := BoundOfRing(p[0])
		if first {
			b = pb
			first = false
			continue
		}
		b = b.Union(pb)
	}
	return b
}
