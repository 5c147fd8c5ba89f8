package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/mikemoraned/greenspace/pkg/routeclient"
)

type memStore struct {
	polygons []orb.Polygon
}

func (m memStore) Select(ctx context.Context, viewport orb.Bound) (func() (orb.Polygon, bool, error), error) {
	var matches []orb.Polygon
	for _, p := range m.polygons {
		if p.Bound().Intersects(viewport) {
			matches = append(matches, p)
		}
	}
	i := 0
	return func() (orb.Polygon, bool, error) {
		if i >= len(matches) {
			return nil, false, nil
		}
		p := matches[i]
		i++
		return p, true, nil
	}, nil
}

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func TestRegionsAssignsSequentialIds(t *testing.T) {
	s := Surface{Store: memStore{polygons: []orb.Polygon{
		square(0, 0, 1, 1),
		square(10, 10, 11, 11),
	}}}

	fc, err := s.Regions(context.Background(), orb.Bound{Min: orb.Point{-5, -5}, Max: orb.Point{20, 20}})
	if err != nil {
		t.Fatalf("Regions: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	seen := map[int]bool{}
	for _, f := range fc.Features {
		id, ok := f.Properties["id"].(int)
		if !ok {
			t.Fatalf("feature missing integer id property: %#v", f.Properties)
		}
		seen[id] = true
	}
	if !seen[0] || !seen[1] {
		t.Errorf("expected ids 0 and 1, got %v", seen)
	}
}

func TestRegionsEmptyViewportReturnsEmptyCollection(t *testing.T) {
	s := Surface{Store: memStore{}}
	fc, err := s.Regions(context.Background(), orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}})
	if err != nil {
		t.Fatalf("Regions: %v", err)
	}
	if len(fc.Features) != 0 {
		t.Errorf("expected no features, got %d", len(fc.Features))
	}
}

func TestLabelRouteEndToEnd(t *testing.T) {
	// Viewport (0,0)-(2,2) produces corner points (0.4,1.02) and
	// (1.6,0.98) per the Route Client's endpoint formula; a single
	// store polygon spanning the whole viewport covers the entire
	// route, so the labeled route's green segment must equal it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		geom := encodePolylineForTest([]orb.Point{{0.4, 1.02}, {1.6, 0.98}}, 6)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":   "Ok",
			"routes": []map[string]string{{"geometry": geom}},
		})
	}))
	defer srv.Close()

	router, err := routeclient.New(routeclient.Config{APIKey: "k", EndpointBase: srv.URL})
	if err != nil {
		t.Fatalf("routeclient.New: %v", err)
	}

	s := Surface{
		Store:  memStore{polygons: []orb.Polygon{square(0, 0, 2, 2)}},
		Router: router,
	}

	doc, err := s.LabelRoute(context.Background(), orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}})
	if err != nil {
		t.Fatalf("LabelRoute: %v", err)
	}
	if doc.Route == nil {
		t.Fatal("expected a route feature")
	}
	if len(doc.Green) != 1 {
		t.Fatalf("expected exactly one green segment, got %d", len(doc.Green))
	}
}

func encodePolylineForTest(points []orb.Point, precision uint) string {
	factor := 1.0
	for i := uint(0); i < precision; i++ {
		factor *= 10
	}

	var sb strings.Builder
	lastLat, lastLng := 0, 0
	for _, p := range points {
		lat := int(p[1]*factor + sign(p[1])*0.5)
		lng := int(p[0]*factor + sign(p[0])*0.5)
		encodeVarintForTest(&sb, lat-lastLat)
		encodeVarintForTest(&sb, lng-lastLng)
		lastLat, lastLng = lat, lng
	}
	return sb.String()
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

func encodeVarintForTest(sb *strings.Builder, v int) {
	shifted := v << 1
	if v < 0 {
		shifted = ^shifted
	}
	for shifted >= 0x20 {
		sb.WriteByte(byte((0x20|(shifted&0x1f))+63))
		shifted >>= 5
	}
	sb.WriteByte(byte(shifted + 63))
}
