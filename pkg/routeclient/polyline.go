package routeclient

import "github.com/paulmach/orb"

// decodePolyline decodes a Google-style encoded polyline at the given
// decimal precision (6 for this spec's routing upstream, i.e. a
// 10^-6-degree step per unit). Hand-rolled rather than imported: the
// exact public API of github.com/paulmach/orb/encoding/polyline's Codec
// type could not be confirmed from the retrieval pack (no vendored
// source available to check method signatures against), and the
// polyline algorithm itself is a small, stable, well-documented format
// with no ambiguity worth risking a guessed import over.
func decodePolyline(encoded string, precision uint) (orb.LineString, error) {
	factor := 1.0
	for i := uint(0); i < precision; i++ {
		factor *= 10
	}

	var coords orb.LineString
	index := 0
	lat, lng := 0, 0

	for index < len(encoded) {
		dlat, n, err := decodeVarint(encoded, index)
		if err != nil {
			return nil, err
		}
		index += n
		lat += dlat

		if index >= len(encoded) {
			return nil, errTruncatedPolyline
		}
		dlng, n, err := decodeVarint(encoded, index)
		if err != nil {
			return nil, err
		}
		index += n
		lng += dlng

		coords = append(coords, orb.Point{float64(lng) / factor, float64(lat) / factor})
	}
	return coords, nil
}

func decodeVarint(s string, start int) (value int, consumed int, err error) {
	result := 0
	shift := uint(0)
	i := start
	for {
		if i >= len(s) {
			return 0, 0, errTruncatedPolyline
		}
		b := int(s[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		if b < 0x20 {
			break
		}
		shift += 5
	}
	if result&1 != 0 {
		result = ^(result >> 1)
	} else {
		result = result >> 1
	}
	return result, i - start, nil
}
