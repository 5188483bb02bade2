package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puneet-chandna/water-brakes/internal/crs"
	"github.com/puneet-chandna/water-brakes/internal/dataset"
)

func TestResultGeoJSON(t *testing.T) {
	ds := mustDataset(t,
		[]string{"Latitude", "Longitude", "Elevation", "slope"},
		[][]string{
			{"12.845", "80.150", "29.11", "0.1"},
			{"12.846", "80.151", "31.0", "0.2"},
		},
	)
	require.NoError(t, ds.SetStrings("terrain_type", []string{"Swale", "Trench"}))

	result := &Result{Dataset: ds}
	fc, err := result.GeoJSON()
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, "0", f.ID)
	// GeoJSON positions are lon, lat.
	assert.Equal(t, []float64{80.150, 12.845}, f.Geometry.FlatCoords())
	assert.Equal(t, 29.11, f.Properties["elevation"])
	assert.Equal(t, 0.1, f.Properties["slope"])
	assert.Equal(t, "Swale", f.Properties["terrain_type"])
	assert.NotContains(t, f.Properties, "aspect")

	// The collection serializes as a standard GeoJSON document.
	out, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type":"FeatureCollection"`)
	assert.Contains(t, string(out), `"type":"Point"`)
}

func TestResultGeoJSONSkipsUnplottableRows(t *testing.T) {
	ds := mustDataset(t,
		[]string{"Latitude", "Longitude", "Elevation"},
		[][]string{
			{"12.845", "80.150", "29.11"},
			{"", "80.151", "31.0"},
		},
	)

	fc, err := (&Result{Dataset: ds}).GeoJSON()
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "0", fc.Features[0].ID)
}

func TestResultGeoJSONRequiresGeographicColumns(t *testing.T) {
	ds := mustDataset(t, []string{"Easting", "Northing"}, [][]string{{"1", "2"}})

	_, err := (&Result{Dataset: ds}).GeoJSON()

	var schemaErr *dataset.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, crs.LatitudeColumn, schemaErr.Column)
}
