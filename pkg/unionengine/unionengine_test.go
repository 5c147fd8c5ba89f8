package unionengine

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func TestUnionEmptyInput(t *testing.T) {
	_, err := Union(nil, nil)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestUnionMergesOverlappingGroupKeepsDisjointSeparate(t *testing.T) {
	polys := []orb.Polygon{
		square(0, 0, 2, 2),
		square(1, 1, 3, 3), // overlaps the first
		square(100, 100, 101, 101), // disjoint from both
	}

	got, err := Union(nil, polys)
	require.NoError(t, err)
	require.Len(t, got, 2, "expected one merged group plus one singleton")
}

func TestCandidatePairsFindsOverlap(t *testing.T) {
	polys := []orb.Polygon{
		square(0, 0, 2, 2),
		square(1, 1, 3, 3),
		square(100, 100, 101, 101),
	}
	pairs := CandidatePairs(polys)
	found := false
	for _, p := range pairs {
		if (p[0] == 0 && p[1] == 1) || (p[0] == 1 && p[1] == 0) {
			found = true
		}
	}
	if !found {
		t.Error("expected candidate pair (0,1) to be present")
	}
	for _, p := range pairs {
		if p[0] == 2 || p[1] == 2 {
			t.Errorf("polygon 2 is disjoint from everything, should not appear in any candidate pair: %v", p)
		}
	}
}
