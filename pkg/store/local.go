package store

import (
	"context"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// Local is a Feature Store backed by one file on disk, opened once and
// kept resident: the index is read fully into memory, and Select reads
// only the matching polygon records via positional ReadAt calls, the way
// azybler-map_router's ReadBinary loads the whole CSR graph up front
// but here only the (small) index, not the (large) polygon data, is
// fully resident.
type Local struct {
	f       *os.File
	records []indexRecord
	index   rtree.RTreeG[int] // data is an index into records
}

// OpenLocal opens path, verifying its header and loading its index.
func OpenLocal(path string) (*Local, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}

	hdrBuf := make([]byte, headerSize())
	if _, err := readFull(f, 0, hdrBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: read header: %v", ErrIO, err)
	}
	hdr, err := decodeHeader(hdrBuf)
	if err != nil {
		f.Close()
		return nil, err
	}

	indexBuf := make([]byte, int(hdr.NumPolygons)*indexRecordSize)
	if len(indexBuf) > 0 {
		if _, err := readFull(f, int64(hdr.IndexOffset), indexBuf); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: read index: %v", ErrIO, err)
		}
	}

	l := &Local{f: f, records: make([]indexRecord, hdr.NumPolygons)}
	for i := range l.records {
		rec := decodeIndexRecord(indexBuf[i*indexRecordSize : (i+1)*indexRecordSize])
		l.records[i] = rec
		l.index.Insert(
			[2]float64{rec.MinX, rec.MinY},
			[2]float64{rec.MaxX, rec.MaxY},
			i,
		)
	}
	return l, nil
}

// Close releases the underlying file handle.
func (l *Local) Close() error {
	return l.f.Close()
}

// selectItem is one value passed from a Select background search to its
// PolygonSeq: either a decoded polygon, or the error that ended the
// search early. Records already sent before an error are still valid
// results (spec.md §4.3 Failure clause).
type selectItem struct {
	poly orb.Polygon
	err  error
}

// sendItem delivers it on ch unless ctx is cancelled first, reporting
// whether the send happened so the caller can stop the search.
func sendItem(ctx context.Context, ch chan<- selectItem, it selectItem) bool {
	select {
	case ch <- it:
		return true
	case <-ctx.Done():
		return false
	}
}

// itemSeq adapts a channel of selectItem to PolygonSeq.
func itemSeq(ch <-chan selectItem) PolygonSeq {
	return func() (orb.Polygon, bool, error) {
		it, ok := <-ch
		if !ok {
			return nil, false, nil
		}
		if it.err != nil {
			return nil, false, it.err
		}
		return it.poly, true, nil
	}
}

// Select implements Store. It streams results as the R-tree search
// visits matches rather than decoding every record up front (spec.md
// §4.3 Streaming clause), and any already-decoded polygon is still
// yielded to the caller before a later record's read error surfaces
// (spec.md §4.3 Failure clause).
func (l *Local) Select(ctx context.Context, viewport orb.Bound) (PolygonSeq, error) {
	ch := make(chan selectItem)
	go func() {
		defer close(ch)
		l.index.Search(
			[2]float64{viewport.Min[0], viewport.Min[1]},
			[2]float64{viewport.Max[0], viewport.Max[1]},
			func(_, _ [2]float64, idx int) bool {
				if err := ctx.Err(); err != nil {
					sendItem(ctx, ch, selectItem{err: err})
					return false
				}
				rec := l.records[idx]
				buf := make([]byte, rec.Length)
				if _, err := readFull(l.f, int64(rec.Offset), buf); err != nil {
					sendItem(ctx, ch, selectItem{err: fmt.Errorf("%w: read polygon record: %v", ErrIO, err)})
					return false
				}
				poly, err := decodePolygonRecord(buf)
				if err != nil {
					sendItem(ctx, ch, selectItem{err: err})
					return false
				}
				return sendItem(ctx, ch, selectItem{poly: poly})
			},
		)
	}()
	return itemSeq(ch), nil
}

func readFull(f *os.File, offset int64, buf []byte) (int, error) {
	return f.ReadAt(buf, offset)
}
