// Package routeclient implements the Route Client: a narrow outbound
// HTTP client to an external pedestrian-routing service, computing a
// non-degenerate request inside a viewport and decoding the first
// returned route.
//
// Grounded on original_source/app/service/api/src/routing.rs
// (StadiaMapsRouting::find_route) for the endpoint-geometry formula and
// request/response shape; client construction follows the
// timeout-configured *http.Client convention used by
// other_examples/10b56d7f_NERVsystems-osmmcp__pkg-core-osrm.go.go's
// DefaultOSRMOptions.
package routeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb"
)

// ErrRouting covers any failure finding a route: non-2xx status,
// network error, response parse failure, or an empty routes list
// (spec.md §4.5 step 5 — these are all folded into one kind, never
// distinguished to callers).
var ErrRouting = errors.New("routeclient: could not find a route")

var errTruncatedPolyline = errors.New("routeclient: truncated polyline")

// Config holds the two environment-sourced settings spec.md §6 requires
// (STADIA_MAPS_API_KEY, STADIA_MAPS_ENDPOINT_BASE) plus the HTTP client
// to use.
type Config struct {
	APIKey       string
	EndpointBase string
	Client       *http.Client
}

// Client is a Route Client bound to one routing endpoint and API key,
// parsed and appended once at construction time — never per request,
// the way the Rust original's StadiaMapsRouting::new does.
type Client struct {
	routeURL string // endpoint_base + "/route/v1", api_key already appended
	client   *http.Client
}

// New validates cfg and parses the routing endpoint once.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.EndpointBase)
	if err != nil {
		return nil, fmt.Errorf("routeclient: invalid endpoint base: %w", err)
	}
	routeURL := base.JoinPath("route", "v1")
	q := routeURL.Query()
	q.Set("api_key", cfg.APIKey)
	routeURL.RawQuery = q.Encode()

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{routeURL: routeURL.String(), client: client}, nil
}

type routeRequest struct {
	Waypoints []waypoint `json:"waypoints"`
	Costing   string     `json:"costing"`
}

// waypoint is one entry of the routing upstream's waypoints array
// (spec.md §6: "two waypoints [{lat, lng, kind: break}, …]"). Kind is
// always "break" — the Route Client never requests via or through
// waypoints.
type waypoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Kind string  `json:"kind"`
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// FindRoute computes two non-degenerate endpoints inside viewport and
// requests a pedestrian route between them (spec.md §4.5).
func (c *Client) FindRoute(ctx context.Context, viewport orb.Bound) (orb.LineString, error) {
	swLon, swLat := viewport.Min[0], viewport.Min[1]
	neLon, neLat := viewport.Max[0], viewport.Max[1]
	w := neLon - swLon
	h := neLat - swLat

	corner1 := orb.Point{swLon + w/5, neLat - h/2 + 0.01*h}
	corner2 := orb.Point{neLon - w/5, swLat + h/2 - 0.01*h}

	body, err := json.Marshal(routeRequest{
		Waypoints: []waypoint{
			{Lat: corner1[1], Lng: corner1[0], Kind: "break"},
			{Lat: corner2[1], Lng: corner2[0], Kind: "break"},
		},
		Costing: "pedestrian",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrRouting, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.routeURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrRouting, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouting, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: upstream returned status %d", ErrRouting, resp.StatusCode)
	}

	var parsed routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRouting, err)
	}
	if len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("%w: empty routes list", ErrRouting)
	}

	route, err := decodePolyline(parsed.Routes[0].Geometry, 6)
	if err != nil {
		return nil, fmt.Errorf("%w: decode geometry: %v", ErrRouting, err)
	}
	return route, nil
}
