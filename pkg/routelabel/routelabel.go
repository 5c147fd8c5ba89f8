// Package routelabel implements the Route Labeler: given a route and a
// Feature Store, determine which portions of the route run through
// green space.
//
// Grounded on original_source/app/service/api/src/routing.rs's
// label_route, restructured per spec.md §4.6 step 3 to reuse the
// Polygon Union Engine's candidate-generation routine (pkg/unionengine.
// CandidatePairs) rather than re-implementing a second R-tree overlap
// join.
package routelabel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/mikemoraned/greenspace/pkg/geo"
	"github.com/mikemoraned/greenspace/pkg/store"
	"github.com/mikemoraned/greenspace/pkg/unionengine"
)

// LabeledRoute pairs the original route with the sub-linestrings of it
// that lie inside green space. Green is nil when the route runs
// entirely outside every known green space (spec.md §8: "for all
// routes r and empty stores, label_route(r).green = []" — the same
// empty result holds whenever nothing overlaps, not just for an empty
// store).
type LabeledRoute struct {
	Route orb.LineString
	Green orb.MultiLineString
}

// Label selects the polygons in s whose bounding box overlaps route's
// bounding box, narrows that set further using the Union Engine's
// candidate-pair routine against a single synthetic rectangle for the
// route's own bbox, unions what survives, and clips route against the
// result (spec.md §4.6). A route with nothing nearby is not an error:
// it labels as LabeledRoute{Route: route, Green: nil}.
func Label(ctx context.Context, s store.Store, route orb.LineString) (LabeledRoute, error) {
	if len(route) < 2 {
		return LabeledRoute{}, fmt.Errorf("routelabel: route must have at least 2 points")
	}

	routeBound := geo.BoundOfRing(orb.Ring(route))

	seq, err := s.Select(ctx, routeBound)
	if err != nil {
		return LabeledRoute{}, fmt.Errorf("routelabel: select candidates: %w", err)
	}

	var candidates []orb.Polygon
	for {
		p, ok, err := seq()
		if err != nil {
			return LabeledRoute{}, fmt.Errorf("routelabel: read candidates: %w", err)
		}
		if !ok {
			break
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return LabeledRoute{Route: route}, nil
	}

	// Narrow further via the Union Engine's own candidate-generation
	// subroutine: append a synthetic rectangle for the route's bbox and
	// keep only store polygons that pair with it (spec.md §4.6 step 3).
	routeRect := routeRectangle(routeBound)
	withRoute := append(append([]orb.Polygon{}, candidates...), routeRect)
	routeIdx := len(withRoute) - 1

	overlapping := make(map[int]bool)
	for _, pair := range unionengine.CandidatePairs(withRoute) {
		if pair[0] == routeIdx {
			overlapping[pair[1]] = true
		} else if pair[1] == routeIdx {
			overlapping[pair[0]] = true
		}
	}
	if len(overlapping) == 0 {
		return LabeledRoute{Route: route}, nil
	}

	narrowed := make([]orb.Polygon, 0, len(overlapping))
	for i, p := range candidates {
		if overlapping[i] {
			narrowed = append(narrowed, p)
		}
	}

	merged, err := unionengine.Union(slog.Default(), narrowed)
	if err != nil {
		return LabeledRoute{}, fmt.Errorf("routelabel: union candidates: %w", err)
	}

	green := geo.ClipLineString(route, merged)

	var greenMeters float64
	for _, seg := range green {
		greenMeters += geo.LineStringLength(seg)
	}
	slog.Default().Info("route labeled",
		"route_meters", geo.LineStringLength(route),
		"green_meters", greenMeters,
		"green_segments", len(green),
	)

	return LabeledRoute{Route: route, Green: green}, nil
}

// routeRectangle turns a bound into a degenerate closed ring covering
// exactly that bound, so it can be fed through CandidatePairs alongside
// real polygons — CandidatePairs only ever inspects Bound(), never the
// ring's interior, so a 4-corner rectangle is sufficient.
func routeRectangle(b orb.Bound) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{b.Min[0], b.Min[1]},
		{b.Max[0], b.Min[1]},
		{b.Max[0], b.Max[1]},
		{b.Min[0], b.Max[1]},
		{b.Min[0], b.Min[1]},
	}}
}
