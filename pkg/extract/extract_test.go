package extract

import (
	"log/slog"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

func TestFirstOuterWayReturnsFirstOuterRoleMember(t *testing.T) {
	rel := &osm.Relation{
		Members: osm.Members{
			{Type: osm.TypeNode, Ref: 1, Role: "label"},
			{Type: osm.TypeWay, Ref: 42, Role: "inner"},
			{Type: osm.TypeWay, Ref: 99, Role: "outer"},
			{Type: osm.TypeWay, Ref: 100, Role: "outer"},
		},
	}

	id, ok := firstOuterWay(rel)
	if !ok {
		t.Fatal("expected an outer way to be found")
	}
	if id != osm.WayID(99) {
		t.Errorf("expected the first outer-role way (99), got %d", id)
	}
}

func TestFirstOuterWayAbsent(t *testing.T) {
	rel := &osm.Relation{
		Members: osm.Members{
			{Type: osm.TypeWay, Ref: 42, Role: "inner"},
		},
	}
	if _, ok := firstOuterWay(rel); ok {
		t.Error("expected no outer way to be found")
	}
}

// TestAssembleRingsProducesOneClosedPolygonPerWay covers spec.md §8's
// "Extraction end-to-end" scenario: a single park way referencing three
// nodes plus its closing repeat of the first node produces exactly one
// polygon whose ring has 4 vertices matching the nodes' coordinates in
// order.
func TestAssembleRingsProducesOneClosedPolygonPerWay(t *testing.T) {
	wayID := osm.WayID(1)
	n1, n2, n3 := osm.NodeID(10), osm.NodeID(11), osm.NodeID(12)

	wayRefs := map[osm.WayID][]osm.NodeID{
		wayID: {n1, n2, n3, n1},
	}
	coords := map[osm.NodeID]orb.Point{
		n1: {0, 0},
		n2: {1, 0},
		n3: {1, 1},
	}

	polygons, skipped := assembleRings(slog.Default(), wayRefs, coords)
	if skipped != 0 {
		t.Fatalf("expected no skipped ways, got %d", skipped)
	}
	if len(polygons) != 1 {
		t.Fatalf("expected exactly one polygon, got %d", len(polygons))
	}

	ring := polygons[0][0]
	if len(ring) != 4 {
		t.Fatalf("expected a 4-vertex ring, got %d", len(ring))
	}
	want := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	for i, pt := range want {
		if ring[i] != pt {
			t.Errorf("vertex %d = %v, want %v", i, ring[i], pt)
		}
	}
}

// TestAssembleRingsSkipsWayWithUnresolvedNode covers spec.md's
// missing_node edge case: a way referencing a node absent from the
// resolved coordinate set is skipped and counted, never emitted with a
// missing vertex.
func TestAssembleRingsSkipsWayWithUnresolvedNode(t *testing.T) {
	wayID := osm.WayID(2)
	n1, n2, missingNode := osm.NodeID(20), osm.NodeID(21), osm.NodeID(22)

	wayRefs := map[osm.WayID][]osm.NodeID{
		wayID: {n1, n2, missingNode, n1},
	}
	coords := map[osm.NodeID]orb.Point{
		n1: {0, 0},
		n2: {1, 0},
	}

	polygons, skipped := assembleRings(slog.Default(), wayRefs, coords)
	if skipped != 1 {
		t.Fatalf("expected 1 skipped way, got %d", skipped)
	}
	if len(polygons) != 0 {
		t.Fatalf("expected no polygons emitted for the skipped way, got %d", len(polygons))
	}
}

// TestAssembleRingsMultipleWaysSkipIsIsolated ensures one way's missing
// node doesn't affect assembly of another, independently resolvable way.
func TestAssembleRingsMultipleWaysSkipIsIsolated(t *testing.T) {
	good, bad := osm.WayID(3), osm.WayID(4)
	n1, n2, n3, missingNode := osm.NodeID(30), osm.NodeID(31), osm.NodeID(32), osm.NodeID(99)

	wayRefs := map[osm.WayID][]osm.NodeID{
		good: {n1, n2, n3, n1},
		bad:  {n1, missingNode, n3, n1},
	}
	coords := map[osm.NodeID]orb.Point{
		n1: {0, 0},
		n2: {2, 0},
		n3: {2, 2},
	}

	polygons, skipped := assembleRings(slog.Default(), wayRefs, coords)
	if skipped != 1 {
		t.Fatalf("expected 1 skipped way, got %d", skipped)
	}
	if len(polygons) != 1 {
		t.Fatalf("expected 1 assembled polygon, got %d", len(polygons))
	}
}
