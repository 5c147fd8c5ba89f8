// Package extract implements the Extraction Pipeline: a three-pass
// streaming reconstruction of green-space polygons from an OSM PBF
// file, bounding peak auxiliary memory to the retained way/node sets
// rather than the full node table (spec.md §4.2).
//
// Grounded on azybler-map_router/pkg/osm/parser.go's two-pass
// Scan/Object/Err/Close loop over osmpbf.Scanner and its
// seek-back-and-rescan structure for a second pass over the same
// io.ReadSeeker; extended to the three passes spec.md §4.2 requires
// (way selection, reference collection, coordinate resolution) instead
// of the teacher's two (ways, then nodes).
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/mikemoraned/greenspace/pkg/greentag"
)

// Run executes the three-pass pipeline against rs, which must support
// seeking back to the start between passes (spec.md §4.2). It returns
// one Polygon per retained way whose NodeRefs all resolved.
func Run(ctx context.Context, logger *slog.Logger, rs io.ReadSeeker) ([]orb.Polygon, error) {
	if logger == nil {
		logger = slog.Default()
	}

	retained, directCount, viaRelationCount, err := filterStage(ctx, rs)
	if err != nil {
		return nil, fmt.Errorf("extract: filter stage: %w", err)
	}
	logger.Info("filter stage complete",
		"retained_ways", len(retained),
		"direct", directCount,
		"via_relation", viaRelationCount,
	)

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("extract: seek before pending stage: %w", err)
	}
	wayRefs, needed, err := pendingStage(ctx, rs, retained)
	if err != nil {
		return nil, fmt.Errorf("extract: pending stage: %w", err)
	}
	logger.Info("pending stage complete", "retained_ways", len(wayRefs), "referenced_nodes", len(needed))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("extract: seek before assign stage: %w", err)
	}
	polygons, skipped, err := assignStage(ctx, logger, rs, wayRefs, needed)
	if err != nil {
		return nil, fmt.Errorf("extract: assign stage: %w", err)
	}
	logger.Info("assign stage complete", "polygons", len(polygons), "skipped_missing_node", skipped)

	return polygons, nil
}

// filterStage is Pass 1 (spec.md §4.2): select the WayRefs of every way
// and relation-referenced outer way whose tags satisfy is_green.
func filterStage(ctx context.Context, rs io.ReadSeeker) (map[osm.WayID]bool, int, int, error) {
	retained := make(map[osm.WayID]bool)
	var directCount, viaRelationCount int

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true

	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Way:
			if greentag.IsGreen(obj.Tags) {
				retained[obj.ID] = true
				directCount++
			}
		case *osm.Relation:
			if !greentag.IsGreenRelation(obj.Tags) {
				continue
			}
			if outer, ok := firstOuterWay(obj); ok {
				retained[outer] = true
				viaRelationCount++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, 0, 0, err
	}
	scanner.Close()
	return retained, directCount, viaRelationCount, nil
}

// firstOuterWay returns the WayID of the first member of kind way with
// role "outer" (spec.md §4.2: "only the outer ring of the first
// outer-role way member is taken"). Multipolygon support is partial:
// inner-role members and any further outer ways are ignored, so each
// relation contributes at most one exterior ring and no holes.
func firstOuterWay(rel *osm.Relation) (osm.WayID, bool) {
	for _, m := range rel.Members {
		if m.Type == osm.TypeWay && m.Role == "outer" {
			return osm.WayID(m.Ref), true
		}
	}
	return 0, false
}

// pendingStage is Pass 2 (spec.md §4.2): for each retained way,
// record its ordered NodeRef list and accumulate the set of NodeRefs
// any retained way needs resolved.
func pendingStage(ctx context.Context, rs io.ReadSeeker, retained map[osm.WayID]bool) (map[osm.WayID][]osm.NodeID, map[osm.NodeID]bool, error) {
	wayRefs := make(map[osm.WayID][]osm.NodeID, len(retained))
	needed := make(map[osm.NodeID]bool)

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || !retained[w.ID] {
			continue
		}
		ids := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			ids[i] = wn.ID
			needed[wn.ID] = true
		}
		wayRefs[w.ID] = ids
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, nil, err
	}
	scanner.Close()
	return wayRefs, needed, nil
}

// assignStage is Pass 3 (spec.md §4.2): resolve every needed NodeRef to
// a Coordinate, then materialize each retained way's exterior ring.
// A way with a NodeRef absent from the file is skipped and logged
// (spec.md §4.2 edge cases, §7 missing_node), never emitted with
// missing vertices.
func assignStage(ctx context.Context, logger *slog.Logger, rs io.ReadSeeker, wayRefs map[osm.WayID][]osm.NodeID, needed map[osm.NodeID]bool) ([]orb.Polygon, int, error) {
	coords := make(map[osm.NodeID]orb.Point, len(needed))

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok || !needed[n.ID] {
			continue
		}
		coords[n.ID] = orb.Point{n.Lon, n.Lat}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, 0, err
	}
	scanner.Close()

	polygons, skipped := assembleRings(logger, wayRefs, coords)
	return polygons, skipped, nil
}

// assembleRings turns each retained way's ordered NodeRefs into an
// orb.Polygon exterior ring with one vertex per NodeRef, using the
// resolved coordinates in coords (the ring is closed only when the way
// itself repeats its first node),
// skipping (and logging) any way with an unresolved NodeRef rather than
// emitting a polygon with missing vertices (spec.md §4.2 edge cases,
// §7 missing_node). Split out of assignStage so the ring-assembly logic
// can be exercised directly against hand-built inputs, without a real
// OSM PBF byte stream.
func assembleRings(logger *slog.Logger, wayRefs map[osm.WayID][]osm.NodeID, coords map[osm.NodeID]orb.Point) ([]orb.Polygon, int) {
	var polygons []orb.Polygon
	var skipped int
	for wayID, nodeIDs := range wayRefs {
		ring := make(orb.Ring, 0, len(nodeIDs))
		missing := false
		for _, id := range nodeIDs {
			pt, ok := coords[id]
			if !ok {
				missing = true
				break
			}
			ring = append(ring, pt)
		}
		if missing {
			logger.Warn("skipping way: unresolved node reference", "way_id", wayID)
			skipped++
			continue
		}
		polygons = append(polygons, orb.Polygon{ring})
	}
	return polygons, skipped
}
