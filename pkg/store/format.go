package store

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"unsafe"

	"github.com/paulmach/orb"
)

// File layout, grounded on azybler-map_router's pkg/graph/binary.go
// framing (magic + version header, CRC32 trailer, atomic rename) but
// adapted from a CH-graph payload to a polygon payload:
//
//	[fileHeader][polygon data records][index records][crc32 trailer]
//
// Polygon data is written before the index because each index record
// needs to know its polygon's absolute byte offset, which is only
// known once the polygon ahead of it has been written. The header
// records the index's own offset and count so a reader — local or
// remote — can jump straight to it without scanning the data section.
const (
	magicBytes  = "GREENFGB"
	fileVersion = uint32(1)
)

type fileHeader struct {
	Magic       [8]byte
	Version     uint32
	NumPolygons uint32
	IndexOffset uint64
}

// indexRecord locates one polygon's exterior-ring coordinates within
// the data section and its bounding box for the rtree index.
type indexRecord struct {
	MinX, MinY, MaxX, MaxY float64
	Offset                 uint64
	Length                 uint32
}

const indexRecordSize = 8*4 + 8 + 4

func boundOf(ring orb.Ring) orb.Bound {
	b := orb.Bound{Min: ring[0], Max: ring[0]}
	for _, p := range ring[1:] {
		b = b.Extend(p)
	}
	return b
}

// WriteLocal serializes polygons (exterior rings only — see pkg/extract's
// documented multipolygon-inner-ring gap) to path, atomically.
func WriteLocal(path string, polygons []orb.Polygon) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrIO, err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	crcW := &crc32Writer{w: f, hash: crc32.NewIEEE()}

	// Reserve header space; rewritten at the end once IndexOffset is known.
	if _, err := f.Write(make([]byte, headerSize())); err != nil {
		return fmt.Errorf("%w: reserve header: %v", ErrIO, err)
	}
	crcW.hash.Write(make([]byte, headerSize()))

	records := make([]indexRecord, 0, len(polygons))
	offset := uint64(headerSize())
	for _, p := range polygons {
		if len(p) == 0 {
			continue
		}
		ring := p[0]
		coords := make([]float64, 0, len(ring)*2)
		for _, pt := range ring {
			coords = append(coords, pt[0], pt[1])
		}

		n := uint32(len(coords))
		if err := binary.Write(crcW, binary.LittleEndian, n); err != nil {
			return fmt.Errorf("%w: write record length: %v", ErrIO, err)
		}
		if err := writeFloat64Slice(crcW, coords); err != nil {
			return fmt.Errorf("%w: write record coords: %v", ErrIO, err)
		}

		b := boundOf(ring)
		length := uint32(4) + n*8
		records = append(records, indexRecord{
			MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1],
			Offset: offset, Length: length,
		})
		offset += uint64(length)
	}

	indexOffset := offset
	for _, rec := range records {
		if err := binary.Write(crcW, binary.LittleEndian, rec.MinX); err != nil {
			return fmt.Errorf("%w: write index: %v", ErrIO, err)
		}
		if err := binary.Write(crcW, binary.LittleEndian, rec.MinY); err != nil {
			return fmt.Errorf("%w: write index: %v", ErrIO, err)
		}
		if err := binary.Write(crcW, binary.LittleEndian, rec.MaxX); err != nil {
			return fmt.Errorf("%w: write index: %v", ErrIO, err)
		}
		if err := binary.Write(crcW, binary.LittleEndian, rec.MaxY); err != nil {
			return fmt.Errorf("%w: write index: %v", ErrIO, err)
		}
		if err := binary.Write(crcW, binary.LittleEndian, rec.Offset); err != nil {
			return fmt.Errorf("%w: write index: %v", ErrIO, err)
		}
		if err := binary.Write(crcW, binary.LittleEndian, rec.Length); err != nil {
			return fmt.Errorf("%w: write index: %v", ErrIO, err)
		}
	}

	checksum := crcW.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("%w: write crc32: %v", ErrIO, err)
	}

	hdr := fileHeader{
		Version:     fileVersion,
		NumPolygons: uint32(len(records)),
		IndexOffset: indexOffset,
	}
	copy(hdr.Magic[:], magicBytes)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to header: %v", ErrIO, err)
	}
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("%w: write header: %v", ErrIO, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrIO, err)
	}
	return nil
}

func headerSize() int {
	return 8 + 4 + 4 + 8
}

func decodeHeader(b []byte) (fileHeader, error) {
	var hdr fileHeader
	if len(b) < headerSize() {
		return hdr, fmt.Errorf("%w: header truncated", ErrCorrupt)
	}
	copy(hdr.Magic[:], b[0:8])
	hdr.Version = binary.LittleEndian.Uint32(b[8:12])
	hdr.NumPolygons = binary.LittleEndian.Uint32(b[12:16])
	hdr.IndexOffset = binary.LittleEndian.Uint64(b[16:24])
	if string(hdr.Magic[:]) != magicBytes {
		return hdr, fmt.Errorf("%w: bad magic bytes %q", ErrCorrupt, hdr.Magic)
	}
	if hdr.Version != fileVersion {
		return hdr, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, hdr.Version)
	}
	return hdr, nil
}

func decodeIndexRecord(b []byte) indexRecord {
	return indexRecord{
		MinX:   math8(b[0:8]),
		MinY:   math8(b[8:16]),
		MaxX:   math8(b[16:24]),
		MaxY:   math8(b[24:32]),
		Offset: binary.LittleEndian.Uint64(b[32:40]),
		Length: binary.LittleEndian.Uint32(b[40:44]),
	}
}

func math8(b []byte) float64 {
	bits := binary.LittleEndian.Uint64(b)
	return math.Float64frombits(bits)
}

func decodePolygonRecord(b []byte) (orb.Polygon, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: polygon record truncated", ErrCorrupt)
	}
	n := binary.LittleEndian.Uint32(b[0:4])
	want := 4 + int(n)*8
	if len(b) < want {
		return nil, fmt.Errorf("%w: polygon record has %d bytes, need %d", ErrCorrupt, len(b), want)
	}
	ring := make(orb.Ring, n/2)
	for i := range ring {
		x := math8(b[4+i*16 : 4+i*16+8])
		y := math8(b[4+i*16+8 : 4+i*16+16])
		ring[i] = orb.Point{x, y}
	}
	return orb.Polygon{ring}, nil
}

// writeFloat64Slice writes s as raw little-endian-on-LE-host bytes,
// the same unsafe.Slice zero-copy technique the teacher's binary.go
// uses for its node/edge arrays.
func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}
