package geo

import (
	"sort"

	"github.com/paulmach/orb"
)

// ClipLineString returns the portions of line that lie strictly inside
// mp, as a sequence of maximal sub-linestrings. Boundary crossings are
// resolved exactly (the clipped endpoints sit on mp's boundary, not on
// the nearest original vertex), matching the "strict interior"
// requirement used to label the green portions of a route.
func ClipLineString(line orb.LineString, mp orb.MultiPolygon) orb.MultiLineString {
	if len(line) < 2 || len(mp) == 0 {
		return nil
	}

	type stop struct {
		t  float64
		pt orb.Point
	}

	var result orb.MultiLineString
	var current orb.LineString

	flush := func() {
		if len(current) >= 2 {
			result = append(result, current)
		}
		current = nil
	}

	for i := 0; i < len(line)-1; i++ {
		p0, p1 := line[i], line[i+1]

		stops := []stop{{0, p0}, {1, p1}}
		for _, poly := range mp {
			for _, ring := range poly {
				n := len(ring)
				for j := 0; j < n; j++ {
					r0, r1 := ring[j], ring[(j+1)%n]
					if _, t, _, ok := segmentIntersection(p0, p1, r0, r1); ok {
						pt := orb.Point{p0[0] + t*(p1[0]-p0[0]), p0[1] + t*(p1[1]-p0[1])}
						stops = append(stops, stop{t, pt})
					}
				}
			}
		}

		sort.Slice(stops, func(a, b int) bool { return stops[a].t < stops[b].t })

		for j := 0; j < len(stops)-1; j++ {
			segStart, segEnd := stops[j], stops[j+1]
			if segEnd.t-segStart.t < 1e-12 {
				continue
			}
			mid := orb.Point{
				(segStart.pt[0] + segEnd.pt[0]) / 2,
				(segStart.pt[1] + segEnd.pt[1]) / 2,
			}
			if !pointInMultiPolygon(mid, mp) {
				flush()
				continue
			}
			if len(current) == 0 {
				current = append(current, segStart.pt)
			}
			current = append(current, segEnd.pt)
		}
	}
	flush()

	return result
}
