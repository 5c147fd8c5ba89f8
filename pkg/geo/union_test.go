package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{
		orb.Ring{
			{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
		},
	}
}

func ringKey(p orb.Point) [2]float64 { return [2]float64{p[0], p[1]} }

// vertexSet builds a rotation- and direction-independent representation
// of a ring's vertex set, for comparing traced output against an
// expected ring without caring which vertex it started from.
func vertexSet(ring orb.Ring) map[[2]float64]bool {
	out := make(map[[2]float64]bool)
	for _, p := range openRing(ring) {
		out[ringKey(p)] = true
	}
	return out
}

func sameVertexSet(a, b orb.Ring) bool {
	sa, sb := vertexSet(a), vertexSet(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if !sb[k] {
			return false
		}
	}
	return true
}

func TestUnionOverlappingSquares(t *testing.T) {
	a := square(1, 1, 2, 2)
	b := square(1.5, 1.5, 2.5, 2.5)

	require.True(t, Intersects(a, b), "expected squares to be reported as intersecting")

	got := Union(a, b)

	want := orb.Ring{
		{1, 1}, {2, 1}, {2, 1.5}, {2.5, 1.5}, {2.5, 2.5}, {1.5, 2.5}, {1.5, 2}, {1, 2},
	}
	require.True(t, sameVertexSet(got[0], want), "union vertex set mismatch: got %v want %v", got[0], want)
	require.Len(t, openRing(got[0]), 8, "expected an 8-vertex L-shape")
}

func TestUnionOuterContainsInner(t *testing.T) {
	outer := square(0, 0, 10, 10)
	inner := square(2, 2, 4, 4)

	require.True(t, Intersects(outer, inner), "expected containment to be reported as intersecting")

	got := Union(outer, inner)
	require.True(t, sameVertexSet(got[0], outer[0]), "expected union of a fully-contained polygon to equal the outer polygon, got %v", got[0])
}

func TestUnionDisjointSquaresDoNotIntersect(t *testing.T) {
	a := square(0, 0, 1, 1)
	b := square(5, 5, 6, 6)
	require.False(t, Intersects(a, b), "disjoint squares should not be reported as intersecting")
}

func TestFoldBridgesTwoDisjointPieces(t *testing.T) {
	a := square(0, 0, 2, 2)
	b := square(4, 4, 6, 6)
	bridge := square(1, 1, 5, 5) // overlaps both a and b

	acc := orb.MultiPolygon{a}
	acc = Fold(acc, b)
	require.Len(t, acc, 2, "expected a and b to remain disjoint pieces before the bridge")

	acc = Fold(acc, bridge)
	require.Len(t, acc, 1, "expected the bridging polygon to merge both pieces into one")
}
