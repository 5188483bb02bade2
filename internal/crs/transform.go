package crs

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/puneet-chandna/water-brakes/internal/dataset"
)

// Canonical output column names.
const (
	LatitudeColumn  = "Latitude"
	LongitudeColumn = "Longitude"
)

// Transform reprojects every row's (x=easting, y=northing) pair from the
// given source EPSG into geographic WGS84 and stores the results into the
// canonical Latitude/Longitude columns, creating or overwriting them.
//
// Rows are independent, so the work is chunked across GOMAXPROCS goroutines;
// each chunk writes disjoint index ranges of the preallocated output slices,
// which keeps row order and numerical results identical to the serial loop.
// Any bad row aborts the whole operation and leaves the dataset untouched.
func Transform(ctx context.Context, ds *dataset.Dataset, sourceEPSG int, xCol, yCol string) error {
	proj, err := ForEPSG(sourceEPSG)
	if err != nil {
		return err
	}

	xs, err := ds.Floats(xCol)
	if err != nil {
		return err
	}
	ys, err := ds.Floats(yCol)
	if err != nil {
		return err
	}

	n := ds.Len()
	lats := make([]float64, n)
	lons := make([]float64, n)

	g, _ := errgroup.WithContext(ctx)
	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers

	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		start, end := start, end
		g.Go(func() error {
			for i := start; i < end; i++ {
				x, y := xs[i], ys[i]
				if math.IsNaN(x) || math.IsNaN(y) {
					return &TransformError{
						CRS:    fmt.Sprintf("EPSG:%d", sourceEPSG),
						Reason: fmt.Sprintf("row %d has a missing coordinate", i),
					}
				}
				lon, lat := proj.ToWGS84(x, y)
				if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
					return &TransformError{
						CRS:    fmt.Sprintf("EPSG:%d", sourceEPSG),
						Reason: fmt.Sprintf("row %d (%g, %g) does not reproject to a finite position", i, x, y),
					}
				}
				lons[i], lats[i] = lon, lat
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if err := ds.SetFloats(LatitudeColumn, lats); err != nil {
		return err
	}
	return ds.SetFloats(LongitudeColumn, lons)
}
