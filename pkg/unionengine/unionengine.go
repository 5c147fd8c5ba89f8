// Package unionengine implements the Polygon Union Engine: partition a
// set of possibly-overlapping polygons into maximal connected overlap
// groups, then fold each group into a single boolean union.
//
// Grounded on original_source/app/service/core_geo/src/union.rs
// (intersection_candidates / partition / panic_safe_union), restructured
// per spec.md §9's preferred re-architecture: dense integer PolygonIds,
// an OverlapGroup keyed by integer group id rather than a pointer graph,
// and azybler-map_router's pkg/graph/component.go UnionFind as the
// merge mechanism instead of the Rust version's per-merge HashSet copy.
package unionengine

import (
	"errors"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/mikemoraned/greenspace/pkg/geo"
)

// ErrEmptyInput is returned when the retained polygon set is empty.
var ErrEmptyInput = errors.New("unionengine: empty input")

// CandidatePairs returns every unordered pair of polygon indices whose
// bounding boxes intersect, via an R-tree self-join (spec.md §4.4 step
// 4). Each pair is returned once. Exposed for reuse by pkg/routelabel,
// which calls it between the route's bbox and the store's candidate
// polygons instead of duplicating the R-tree logic (spec.md §4.6 step
// 3).
func CandidatePairs(polygons []orb.Polygon) [][2]int {
	var tree rtree.RTreeG[int]
	for i, p := range polygons {
		if len(p) == 0 {
			continue
		}
		b := p.Bound()
		tree.Insert([2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]}, i)
	}

	seen := make(map[[2]int]bool)
	var pairs [][2]int
	for i, p := range polygons {
		if len(p) == 0 {
			continue
		}
		b := p.Bound()
		tree.Search(
			[2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]},
			func(_, _ [2]float64, j int) bool {
				if i == j {
					return true
				}
				key := [2]int{i, j}
				if i > j {
					key = [2]int{j, i}
				}
				if seen[key] {
					return true
				}
				seen[key] = true
				pairs = append(pairs, key)
				return true
			},
		)
	}
	return pairs
}

// Union partitions polygons into maximal overlap groups and returns the
// boolean union of each group as one output polygon (spec.md §4.4).
func Union(logger *slog.Logger, polygons []orb.Polygon) (orb.MultiPolygon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(polygons) == 0 {
		return nil, ErrEmptyInput
	}

	uf := newUnionFind(len(polygons))
	pairs := CandidatePairs(polygons)

	var exactChecks int
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		if uf.Find(a) == uf.Find(b) {
			continue
		}
		exactChecks++
		if geo.Intersects(polygons[a], polygons[b]) {
			uf.Union(a, b)
		}
	}

	groups := make(map[int][]int)
	for i := range polygons {
		root := uf.Find(i)
		groups[root] = append(groups[root], i)
	}

	results := make(orb.MultiPolygon, 0, len(groups))
	var panicked int
	for _, members := range groups {
		if len(members) == 1 {
			results = append(results, polygons[members[0]])
			continue
		}
		folded, droppedCount := foldGroup(logger, polygons, members)
		results = append(results, folded...)
		panicked += droppedCount
	}

	logger.Info("union engine completed",
		"input_polygons", len(polygons),
		"candidate_pairs", len(pairs),
		"exact_checks", exactChecks,
		"overlap_groups", len(groups),
		"output_polygons", len(results),
		"folds_panicked", panicked,
	)
	return results, nil
}

// foldGroup left-folds members into an accumulator, unioning each
// successive polygon in. Each fold step is wrapped in a recover() guard
// (spec.md §7 union_panic): on panic the accumulator from before the
// step is kept and the offending member is dropped, logged at Warn,
// mirroring the Rust original's panic_safe_union.
func foldGroup(logger *slog.Logger, polygons []orb.Polygon, members []int) (orb.MultiPolygon, int) {
	acc := orb.MultiPolygon{polygons[members[0]]}
	dropped := 0
	for _, idx := range members[1:] {
		next := acc
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Warn("union step panicked, discarding operand",
						"polygon_id", idx, "recovered", r)
					next = acc
					dropped++
				}
			}()
			next = geo.Fold(acc, polygons[idx])
		}()
		acc = next
	}
	return acc, dropped
}
