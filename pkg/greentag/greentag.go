// Package greentag implements the green-space tag predicate: a pure,
// allocation-free test of whether an OSM way or relation's tags mark it
// as green space.
package greentag

import "github.com/paulmach/osm"

// whitelist mirrors the teacher's carHighways lookup table shape
// (pkg/osm/parser.go) but keyed on (key, value) pairs instead of a
// single key, since the green whitelist spans four tag namespaces.
var whitelist = map[[2]string]bool{
	{"leisure", "common"}:        true,
	{"leisure", "dog_park"}:      true,
	{"leisure", "golf_course"}:   true,
	{"leisure", "horse_riding"}:  true,
	{"leisure", "nature_reserve"}: true,
	{"leisure", "park"}:          true,
	{"leisure", "pitch"}:         true,
	{"leisure", "wildlife_hide"}: true,

	{"natural", "fell"}:       true,
	{"natural", "grassland"}: true,
	{"natural", "heath"}:     true,
	{"natural", "moor"}:      true,
	{"natural", "scrub"}:     true,
	{"natural", "shrubbery"}: true,
	{"natural", "tree"}:      true,
	{"natural", "tree_row"}:  true,
	{"natural", "tree_stump"}: true,
	{"natural", "tundra"}:    true,
	{"natural", "wood"}:      true,

	{"amenity", "grave_yard"}: true,

	{"landuse", "farmland"}:         true,
	{"landuse", "farmyard"}:         true,
	{"landuse", "forest"}:           true,
	{"landuse", "meadow"}:           true,
	{"landuse", "orchard"}:          true,
	{"landuse", "vineyard"}:         true,
	{"landuse", "cemetery"}:         true,
	{"landuse", "grass"}:            true,
	{"landuse", "recreation_ground"}: true,
	{"landuse", "village_green"}:    true,
}

// IsGreen reports whether tags mark an element as green space, applying
// the leisure=garden conditional rule ahead of the whitelist lookup so
// that a garden never falls through to the generic intersection test.
func IsGreen(tags osm.Tags) bool {
	if tags.Find("leisure") == "garden" {
		return tags.Find("access") == "yes" || tags.Find("garden:type") == "community"
	}
	for _, t := range tags {
		if whitelist[[2]string{t.Key, t.Value}] {
			return true
		}
	}
	return false
}

// IsGreenRelation applies IsGreen plus the multipolygon tag check used
// by the extraction pipeline's way-selection pass (spec: a relation
// must also carry (type, multipolygon) to be eligible).
func IsGreenRelation(tags osm.Tags) bool {
	return tags.Find("type") == "multipolygon" && IsGreen(tags)
}
