// Package query implements the Query Surface: the two read operations
// the out-of-scope HTTP front-end calls, each assembling its result as
// a GeoJSON-shaped document with sequential integer feature ids.
//
// Grounded on original_source/app/service/api/src/state.rs and
// regions.rs for the orchestration shape (a thin struct holding the
// store and router, one function per query); GeoJSON assembly follows
// MeKo-Christian-WaterColorMap/internal/geojson/converter.go's
// ToGeoJSON wiring of github.com/paulmach/orb/geojson.
package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mikemoraned/greenspace/pkg/routeclient"
	"github.com/mikemoraned/greenspace/pkg/routelabel"
	"github.com/mikemoraned/greenspace/pkg/store"
	"github.com/mikemoraned/greenspace/pkg/unionengine"
)

// Surface binds the two Query Surface operations to one store and one
// route client, mirroring the Rust original's AppState: a process-wide,
// immutable, share-nothing handle (spec.md §5).
type Surface struct {
	Store  store.Store
	Router *routeclient.Client
	Logger *slog.Logger
}

// Regions selects every polygon overlapping viewport, unions overlap
// groups, and returns the result as a GeoJSON FeatureCollection with
// sequential integer ids assigned in document order (spec.md §4.7).
func (s Surface) Regions(ctx context.Context, viewport orb.Bound) (*geojson.FeatureCollection, error) {
	seq, err := s.Store.Select(ctx, viewport)
	if err != nil {
		return nil, fmt.Errorf("query: select regions: %w", err)
	}

	var polygons []orb.Polygon
	for {
		p, ok, err := seq()
		if err != nil {
			return nil, fmt.Errorf("query: read regions: %w", err)
		}
		if !ok {
			break
		}
		polygons = append(polygons, p)
	}

	fc := geojson.NewFeatureCollection()
	if len(polygons) == 0 {
		return fc, nil
	}

	merged, err := unionengine.Union(s.logger(), polygons)
	if err != nil {
		return nil, fmt.Errorf("query: union regions: %w", err)
	}

	for id, poly := range merged {
		feature := geojson.NewFeature(orb.Geometry(poly))
		setID(feature, id)
		fc.Append(feature)
	}
	return fc, nil
}

// LabelRouteDoc is the keyed JSON object spec.md §4.7 requires for
// label_route: the original route plus its green sub-segments, each
// assigned a sequential id.
type LabelRouteDoc struct {
	Route *geojson.Feature   `json:"route"`
	Green []*geojson.Feature `json:"green"`
}

// LabelRoute finds a route inside viewport and labels the portions of
// it that run through green space (spec.md §4.7).
func (s Surface) LabelRoute(ctx context.Context, viewport orb.Bound) (*LabelRouteDoc, error) {
	route, err := s.Router.FindRoute(ctx, viewport)
	if err != nil {
		return nil, fmt.Errorf("query: find route: %w", err)
	}

	labeled, err := routelabel.Label(ctx, s.Store, route)
	if err != nil {
		return nil, fmt.Errorf("query: label route: %w", err)
	}

	routeFeature := geojson.NewFeature(orb.Geometry(labeled.Route))
	setID(routeFeature, 0)

	doc := &LabelRouteDoc{Route: routeFeature}
	for id, seg := range labeled.Green {
		f := geojson.NewFeature(orb.Geometry(seg))
		setID(f, id)
		doc.Green = append(doc.Green, f)
	}
	return doc, nil
}

func (s Surface) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// setID assigns the sequential document-order id spec.md §4.7 requires,
// defensively initializing Properties the way converter.go's ToGeoJSON
// does in case a given orb/geojson version leaves it nil.
func setID(f *geojson.Feature, id int) {
	if f.Properties == nil {
		f.Properties = make(map[string]interface{})
	}
	f.Properties["id"] = id
}
