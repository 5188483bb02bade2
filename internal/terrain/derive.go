package terrain

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/puneet-chandna/water-brakes/internal/dataset"
)

// Column names the deriver reads and writes.
const (
	ElevationColumn = "Elevation"
	DistanceColumn  = "Distance (m)"
	SlopeColumn     = "slope"
	AspectColumn    = "aspect"
)

// distanceEpsilon replaces zero distance entries before differentiation.
// A smoothing policy, not data loss: the sanitized column is written back.
const distanceEpsilon = 1e-6

// Aspect is computed only from these planar column names. Single-letter
// aliases are too ambiguous to pick up here.
var (
	aspectEastingPatterns  = []string{"easting", "east"}
	aspectNorthingPatterns = []string{"northing", "north"}
)

// DeriveFeatures appends the slope column and, when both planar columns are
// present, the aspect column.
//
// Slope is d(Elevation)/d(Distance) when a "Distance (m)" column exists.
// Without one it degrades to the derivative with respect to row index, a
// unit-less index-order rate with reduced physical meaning; the degradation
// is logged so outputs can be told apart.
//
// Aspect is atan2 of the index-wise northing and easting gradients, a
// coarse proxy for true aspect, which would need a 2D elevation gradient
// over a spatial grid.
func DeriveFeatures(ds *dataset.Dataset) error {
	elev, err := ds.Floats(ElevationColumn)
	if err != nil {
		return err
	}

	var distance []float64
	if name, ok := ds.Resolve(DistanceColumn); ok {
		raw, err := ds.Floats(name)
		if err != nil {
			return err
		}
		distance = sanitizeDistance(raw)
		// Persist the sanitized column, as downstream consumers read it.
		if err := ds.SetFloats(name, distance); err != nil {
			return err
		}
	} else {
		zap.L().Debug("terrain: no distance column, slope is per row index")
	}

	slope, err := Gradient(elev, distance)
	if err != nil {
		return eris.Wrap(err, "terrain: derive slope")
	}
	if err := ds.SetFloats(SlopeColumn, slope); err != nil {
		return err
	}

	eastingCol, eastOK := matchColumn(ds, aspectEastingPatterns)
	northingCol, northOK := matchColumn(ds, aspectNorthingPatterns)
	if !eastOK || !northOK {
		return nil
	}

	easting, err := ds.Floats(eastingCol)
	if err != nil {
		return err
	}
	northing, err := ds.Floats(northingCol)
	if err != nil {
		return err
	}

	gradE, err := Gradient(easting, nil)
	if err != nil {
		return eris.Wrap(err, "terrain: derive aspect")
	}
	gradN, err := Gradient(northing, nil)
	if err != nil {
		return eris.Wrap(err, "terrain: derive aspect")
	}

	aspect := make([]float64, ds.Len())
	for i := range aspect {
		aspect[i] = math.Atan2(gradN[i], gradE[i])
	}
	return ds.SetFloats(AspectColumn, aspect)
}

func sanitizeDistance(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		if v == 0 {
			out[i] = distanceEpsilon
			continue
		}
		out[i] = v
	}
	return out
}

func matchColumn(ds *dataset.Dataset, patterns []string) (string, bool) {
	for _, p := range patterns {
		if name, ok := ds.Resolve(p); ok {
			return name, true
		}
	}
	return "", false
}
