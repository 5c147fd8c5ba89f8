// Package store implements the Feature Store interface: a single
// capability — select the polygons overlapping a viewport — behind two
// interchangeable implementations, Local (an on-disk indexed file) and
// Remote (the same file fetched over HTTP Range requests).
//
// Grounded on original_source/app/service/api/src/flatgeobuf.rs's
// single-method FgbSource trait (spec.md §9: "a single capability
// {select(viewport) → lazy sequence<Polygon>}; two implementations; no
// common base type required beyond that capability").
package store

import (
	"context"
	"errors"

	"github.com/paulmach/orb"
)

// ErrIO covers failures reading or writing the underlying file/HTTP
// transport. ErrCorrupt covers a file that doesn't parse as this
// format (bad magic, unsupported version, truncated records). The CRC32
// trailer that WriteLocal appends is not checked when reading.
var (
	ErrIO      = errors.New("store: io error")
	ErrCorrupt = errors.New("store: corrupt feature store file")
)

// PolygonSeq is a pull-style iterator over Select's results: each call
// returns the next polygon, or ok=false once exhausted, or a non-nil
// error if retrieval failed partway through. Mirrors the teacher's
// osmpbf.Scanner.Scan()/Object() pull loop in pkg/osm/parser.go.
type PolygonSeq func() (orb.Polygon, bool, error)

// Store is the Feature Store capability.
type Store interface {
	// Select returns every polygon whose bounding box intersects
	// viewport. ctx cancels any in-flight network I/O.
	Select(ctx context.Context, viewport orb.Bound) (PolygonSeq, error)
}

// sliceSeq adapts a pre-fetched polygon slice to PolygonSeq. Remote
// uses it for a Select that matches no index records; both Local and
// Remote stream any matches through itemSeq instead.
func sliceSeq(polys []orb.Polygon) PolygonSeq {
	i := 0
	return func() (orb.Polygon, bool, error) {
		if i >= len(polys) {
			return nil, false, nil
		}
		p := polys[i]
		i++
		return p, true, nil
	}
}
