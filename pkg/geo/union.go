package geo

import "github.com/paulmach/orb"

// Union computes the boolean union of two simple, hole-free-in-practice
// polygons that are known to intersect (callers confirm this with
// Intersects first). It implements a Weiler-Atherton boundary trace:
// both rings are walked forward, switching from one ring to the other
// at every crossing that would otherwise lead into the other polygon's
// interior, so the walk always stays on the outer boundary of the
// merged shape.
//
// This is a best-effort implementation, not a general-purpose boolean-
// ops library: it assumes both rings are simple (non-self-intersecting)
// and panics rather than guess when it encounters a topology it can't
// trace cleanly (tangential touches, multiple disjoint overlap lobes,
// tangled crossings). Callers are expected to run this inside a
// recover()-guarded fold step and drop the offending polygon on panic,
// exactly as the accumulator fold in pkg/unionengine does.
func Union(a, b orb.Polygon) orb.Polygon {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	outer, ok := unionOuterRings(a[0], b[0])
	if !ok {
		panic("geo: union boundary trace could not resolve a topology for these two rings")
	}

	result := orb.Polygon{outer}
	for _, hole := range a[1:] {
		if !pointInRing(representative(hole), b[0]) {
			result = append(result, hole)
		}
	}
	for _, hole := range b[1:] {
		if !pointInRing(representative(hole), a[0]) {
			result = append(result, hole)
		}
	}
	return result
}

func representative(ring orb.Ring) orb.Point {
	if len(ring) == 0 {
		return orb.Point{}
	}
	return ring[0]
}

type augPoint struct {
	pt  orb.Point
	xid int // -1 for an original vertex, otherwise an index into xs
}

type crossing struct {
	edgeA, edgeB int
	tA, tB       float64
	pt           orb.Point
}

// unionOuterRings traces the union boundary of two CCW-normalized rings
// that are already known to overlap.
func unionOuterRings(ringA, ringB orb.Ring) (orb.Ring, bool) {
	a := ccw(openRing(ringA))
	b := ccw(openRing(ringB))
	na, nb := len(a), len(b)
	if na < 3 || nb < 3 {
		return nil, false
	}

	var xs []crossing
	for i := 0; i < na; i++ {
		a0, a1 := a[i], a[(i+1)%na]
		for j := 0; j < nb; j++ {
			b0, b1 := b[j], b[(j+1)%nb]
			if pt, ta, tb, ok := segmentIntersection(a0, a1, b0, b1); ok {
				xs = append(xs, crossing{i, j, ta, tb, pt})
			}
		}
	}

	if len(xs) == 0 {
		switch {
		case pointInRing(a[0], b):
			return closeRing(b), true
		case pointInRing(b[0], a):
			return closeRing(a), true
		default:
			return nil, false
		}
	}

	byEdgeA := make(map[int][]int, len(xs))
	byEdgeB := make(map[int][]int, len(xs))
	for idx, x := range xs {
		byEdgeA[x.edgeA] = append(byEdgeA[x.edgeA], idx)
		byEdgeB[x.edgeB] = append(byEdgeB[x.edgeB], idx)
	}

	augA := buildAugmented(a, byEdgeA, xs, true)
	augB := buildAugmented(b, byEdgeB, xs, false)

	posInA := make(map[int]int, len(xs))
	posInB := make(map[int]int, len(xs))
	for i, ap := range augA {
		if ap.xid >= 0 {
			posInA[ap.xid] = i
		}
	}
	for i, ap := range augB {
		if ap.xid >= 0 {
			posInB[ap.xid] = i
		}
	}
	if len(posInA) != len(xs) || len(posInB) != len(xs) {
		return nil, false
	}

	xid0 := 0
	curIsA := true
	curPos := posInA[xid0]

	visited := make(map[int]bool, len(xs))
	var ring orb.Ring
	first := true

	maxSteps := 4*(len(augA)+len(augB)) + 16
	for steps := 0; ; steps++ {
		if steps > maxSteps {
			return nil, false
		}
		curList := augA
		if !curIsA {
			curList = augB
		}
		ap := curList[curPos]
		if !first && ap.xid == xid0 {
			break
		}
		first = false
		ring = append(ring, ap.pt)

		nextPos := (curPos + 1) % len(curList)
		if ap.xid >= 0 {
			visited[ap.xid] = true
			nextPt := curList[nextPos].pt
			mid := orb.Point{(ap.pt[0] + nextPt[0]) / 2, (ap.pt[1] + nextPt[1]) / 2}
			var otherRing orb.Ring
			if curIsA {
				otherRing = b
			} else {
				otherRing = a
			}
			if pointInRing(mid, otherRing) {
				if curIsA {
					curPos = (posInB[ap.xid] + 1) % len(augB)
					curIsA = false
				} else {
					curPos = (posInA[ap.xid] + 1) % len(augA)
					curIsA = true
				}
				continue
			}
		}
		curPos = nextPos
	}

	if len(visited) != len(xs) || len(ring) < 3 {
		return nil, false
	}
	return closeRing(ring), true
}

func buildAugmented(ring orb.Ring, byEdge map[int][]int, xs []crossing, isA bool) []augPoint {
	var out []augPoint
	for i := range ring {
		out = append(out, augPoint{ring[i], -1})
		idxs := append([]int(nil), byEdge[i]...)
		sortByParam(idxs, xs, isA)
		for _, idx := range idxs {
			out = append(out, augPoint{xs[idx].pt, idx})
		}
	}
	return out
}

func sortByParam(idxs []int, xs []crossing, isA bool) {
	for i := 1; i < len(idxs); i++ {
		for j := i; j > 0; j-- {
			var pj, pjm float64
			if isA {
				pj, pjm = xs[idxs[j]].tA, xs[idxs[j-1]].tA
			} else {
				pj, pjm = xs[idxs[j]].tB, xs[idxs[j-1]].tB
			}
			if pj < pjm {
				idxs[j], idxs[j-1] = idxs[j-1], idxs[j]
			} else {
				break
			}
		}
	}
}

// Fold merges next into acc, unioning it with every piece of acc it
// overlaps and leaving untouched pieces as-is. It generalizes the
// single-polygon accumulator in the union algorithm to a multi-piece
// one, so that group members can be folded in in any order (map
// iteration order is unspecified in Go) without losing a bridging
// merge: if next overlaps two currently-disjoint pieces of acc, both
// are merged into one through next.
//
// Fold panics if the underlying boundary trace can't resolve a
// topology; callers run it inside a recover() and discard next on
// panic, keeping acc as it was before the call.
func Fold(acc orb.MultiPolygon, next orb.Polygon) orb.MultiPolygon {
	merged := next
	var untouched orb.MultiPolygon
	for _, piece := range acc {
		if Intersects(merged, piece) {
			merged = Union(merged, piece)
		} else {
			untouched = append(untouched, piece)
		}
	}
	out := orb.MultiPolygon{merged}
	return append(out, untouched...)
}
