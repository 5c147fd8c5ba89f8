package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// RemoteOptions configures Remote, following the timeout-configured
// *http.Client convention used by other_examples' OSRM client
// (OSRMOptions.Client *http.Client) rather than a caching, retrying
// client — spec.md's Feature Store has no caching requirement and a
// Range GET failure is a plain I/O error, not something to retry
// transparently.
type RemoteOptions struct {
	Client *http.Client
	// GapThreshold is the maximum number of bytes between the end of
	// one matched record and the start of the next (in offset order) for
	// them to be coalesced into a single Range GET instead of two.
	GapThreshold uint64
}

// DefaultRemoteOptions returns reasonable defaults.
func DefaultRemoteOptions() RemoteOptions {
	return RemoteOptions{
		Client:       &http.Client{Timeout: 10 * time.Second},
		GapThreshold: 4096,
	}
}

// Remote is a Feature Store backed by one file fetched over HTTP Range
// requests. Its index is fetched once at construction; each Select
// issues Range GETs for only the matching records.
type Remote struct {
	url     string
	opts    RemoteOptions
	records []indexRecord
	index   rtree.RTreeG[int]
}

// OpenRemote fetches url's header and index and constructs a Remote
// store. url must support HTTP Range requests.
func OpenRemote(ctx context.Context, url string, opts RemoteOptions) (*Remote, error) {
	if opts.Client == nil {
		opts = DefaultRemoteOptions()
	}

	hdrBuf, err := rangeGet(ctx, opts.Client, url, 0, uint64(headerSize()))
	if err != nil {
		return nil, fmt.Errorf("%w: fetch header: %v", ErrIO, err)
	}
	hdr, err := decodeHeader(hdrBuf)
	if err != nil {
		return nil, err
	}

	r := &Remote{url: url, opts: opts, records: make([]indexRecord, hdr.NumPolygons)}
	if hdr.NumPolygons == 0 {
		return r, nil
	}

	indexLen := uint64(hdr.NumPolygons) * indexRecordSize
	indexBuf, err := rangeGet(ctx, opts.Client, url, hdr.IndexOffset, indexLen)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch index: %v", ErrIO, err)
	}
	for i := range r.records {
		rec := decodeIndexRecord(indexBuf[i*indexRecordSize : (i+1)*indexRecordSize])
		r.records[i] = rec
		r.index.Insert(
			[2]float64{rec.MinX, rec.MinY},
			[2]float64{rec.MaxX, rec.MaxY},
			i,
		)
	}
	return r, nil
}

// Select implements Store. Matching index records are grouped into
// nearby-offset batches and fetched with one Range GET per batch, but
// each batch's polygons are decoded and handed to the caller as soon as
// that batch arrives rather than after every batch completes (spec.md
// §4.3 Streaming clause); a batch that fails to fetch or decode still
// lets every polygon from earlier batches reach the caller first
// (spec.md §4.3 Failure clause).
func (r *Remote) Select(ctx context.Context, viewport orb.Bound) (PolygonSeq, error) {
	var matched []indexRecord
	r.index.Search(
		[2]float64{viewport.Min[0], viewport.Min[1]},
		[2]float64{viewport.Max[0], viewport.Max[1]},
		func(_, _ [2]float64, idx int) bool {
			matched = append(matched, r.records[idx])
			return true
		},
	)
	if len(matched) == 0 {
		return sliceSeq(nil), nil
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Offset < matched[j].Offset })

	ch := make(chan selectItem)
	go func() {
		defer close(ch)
		i := 0
		for i < len(matched) {
			if err := ctx.Err(); err != nil {
				sendItem(ctx, ch, selectItem{err: err})
				return
			}
			j := i
			end := matched[i].Offset + uint64(matched[i].Length)
			for j+1 < len(matched) && matched[j+1].Offset-end <= r.opts.GapThreshold {
				j++
				end = matched[j].Offset + uint64(matched[j].Length)
			}
			groupStart := matched[i].Offset
			groupLen := end - groupStart
			buf, err := rangeGet(ctx, r.opts.Client, r.url, groupStart, groupLen)
			if err != nil {
				sendItem(ctx, ch, selectItem{err: fmt.Errorf("%w: fetch polygon records: %v", ErrIO, err)})
				return
			}
			for k := i; k <= j; k++ {
				rec := matched[k]
				start := rec.Offset - groupStart
				poly, err := decodePolygonRecord(buf[start : start+uint64(rec.Length)])
				if err != nil {
					sendItem(ctx, ch, selectItem{err: err})
					return
				}
				if !sendItem(ctx, ch, selectItem{poly: poly}) {
					return
				}
			}
			i = j + 1
		}
	}()
	return itemSeq(ch), nil
}

func rangeGet(ctx context.Context, client *http.Client, url string, offset, length uint64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for range request", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
