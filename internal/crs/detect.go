// Package crs detects coordinate columns and reprojects planar survey
// coordinates into geographic WGS84. It deliberately supports exactly the
// UTM/WGS84 families plus EPSG:4326 passthrough; it is not a general
// reprojection library.
package crs

import (
	"math"

	"github.com/puneet-chandna/water-brakes/internal/dataset"
)

// SystemType identifies the coordinate system a dataset carries.
type SystemType string

const (
	SystemLatLon  SystemType = "latlon"
	SystemUTM     SystemType = "utm"
	SystemCustom  SystemType = "custom"
	SystemUnknown SystemType = "unknown"
)

// Column name patterns, in priority order; first match wins. Kept as ordered
// tables rather than conditionals so the detection rules stay auditable.
var (
	latPatterns      = []string{"latitude", "lat", "y"}
	lonPatterns      = []string{"longitude", "lon", "long", "lng", "x"}
	eastingPatterns  = []string{"easting", "east", "e"}
	northingPatterns = []string{"northing", "north", "n"}
)

// Descriptor names the coordinate columns of a dataset and the system they
// belong to. Column names carry the original header casing.
type Descriptor struct {
	Type        SystemType `json:"type"`
	LatCol      string     `json:"lat_col,omitempty"`
	LonCol      string     `json:"lon_col,omitempty"`
	EastingCol  string     `json:"easting_col,omitempty"`
	NorthingCol string     `json:"northing_col,omitempty"`
}

// Detect inspects column names (case-insensitively) and, for the lat/lon
// case, value ranges. UTM naming takes priority over lat/lon: mislabeled
// lat/lon columns are a known data-quality issue in source surveys, while
// Easting/Northing naming is rarely wrong. Detection never fails; anything
// inconclusive is SystemUnknown and the decision moves to the caller.
func Detect(ds *dataset.Dataset) Descriptor {
	if easting, ok := matchColumn(ds, eastingPatterns); ok {
		if northing, ok := matchColumn(ds, northingPatterns); ok {
			return Descriptor{Type: SystemUTM, EastingCol: easting, NorthingCol: northing}
		}
	}

	latCol, latOK := matchColumn(ds, latPatterns)
	lonCol, lonOK := matchColumn(ds, lonPatterns)
	if !latOK || !lonOK {
		return Descriptor{Type: SystemUnknown}
	}

	// Values present but implausible: report unknown rather than guessing
	// which axis is swapped.
	if !valuesInRange(ds, latCol, -90, 90) || !valuesInRange(ds, lonCol, -180, 180) {
		return Descriptor{Type: SystemUnknown}
	}

	return Descriptor{Type: SystemLatLon, LatCol: latCol, LonCol: lonCol}
}

func matchColumn(ds *dataset.Dataset, patterns []string) (string, bool) {
	for _, p := range patterns {
		if name, ok := ds.Resolve(p); ok {
			return name, true
		}
	}
	return "", false
}

func valuesInRange(ds *dataset.Dataset, name string, lo, hi float64) bool {
	col, ok := ds.Column(name)
	if !ok || !col.Numeric {
		return false
	}
	for _, v := range col.Values {
		if math.IsNaN(v) || v < lo || v > hi {
			return false
		}
	}
	return true
}
