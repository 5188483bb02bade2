package pipeline

import (
	"math"
	"strconv"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/puneet-chandna/water-brakes/internal/crs"
	"github.com/puneet-chandna/water-brakes/internal/dataset"
	"github.com/puneet-chandna/water-brakes/internal/terrain"
)

// GeoJSON renders the enriched dataset as a point FeatureCollection, the
// interface the map-rendering layer consumes. Each feature carries the
// derived columns as properties; rows without a finite position are left
// out of the collection (they have nowhere to be drawn).
func (r *Result) GeoJSON() (*geojson.FeatureCollection, error) {
	ds := r.Dataset

	lats, err := ds.Floats(crs.LatitudeColumn)
	if err != nil {
		return nil, err
	}
	lons, err := ds.Floats(crs.LongitudeColumn)
	if err != nil {
		return nil, err
	}

	fc := &geojson.FeatureCollection{}
	for i := 0; i < ds.Len(); i++ {
		lat, lon := lats[i], lons[i]
		if !finite(lat) || !finite(lon) {
			continue
		}

		props := make(map[string]interface{})
		addProp(props, ds, terrain.ElevationColumn, "elevation", i)
		addProp(props, ds, terrain.SlopeColumn, "slope", i)
		addProp(props, ds, terrain.AspectColumn, "aspect", i)
		addProp(props, ds, terrain.ClusterColumn, "cluster", i)
		if col, ok := ds.Column(terrain.TerrainTypeColumn); ok && col.Text[i] != "" {
			props["terrain_type"] = col.Text[i]
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.Itoa(i),
			Geometry:   geom.NewPointFlat(geom.XY, []float64{lon, lat}),
			Properties: props,
		})
	}

	return fc, nil
}

func addProp(props map[string]interface{}, ds *dataset.Dataset, column, key string, row int) {
	col, ok := ds.Column(column)
	if !ok || !col.Numeric {
		return
	}
	if v := col.Values[row]; finite(v) {
		props[key] = v
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
