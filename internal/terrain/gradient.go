// Package terrain derives per-point slope and aspect from a survey traverse
// and classifies points into terrain roles by clustering on slope and
// elevation.
package terrain

import (
	"fmt"

	"github.com/puneet-chandna/water-brakes/internal/dataset"
)

// Gradient computes the numerical derivative of values with respect to
// coords: centered differences at interior points, one-sided differences at
// the two endpoints. Spacing may be nonuniform; the interior estimate is the
// second-order accurate weighted form. A nil coords means unit spacing
// (derivative with respect to sample index).
//
// A single sample has no defined derivative; its slope is reported as zero.
// Zero spacing between consecutive coords is a malformed independent
// variable and fails rather than producing infinities.
func Gradient(values, coords []float64) ([]float64, error) {
	n := len(values)
	if coords != nil && len(coords) != n {
		return nil, fmt.Errorf("terrain: gradient: %d values but %d coordinates", n, len(coords))
	}

	out := make([]float64, n)
	if n < 2 {
		return out, nil
	}

	spacing := func(i int) (float64, error) { // coords[i+1] - coords[i]
		if coords == nil {
			return 1, nil
		}
		h := coords[i+1] - coords[i]
		if h == 0 {
			return 0, &dataset.SchemaError{
				Column: "Distance (m)",
				Reason: fmt.Sprintf("duplicate value at rows %d and %d", i, i+1),
			}
		}
		return h, nil
	}

	h0, err := spacing(0)
	if err != nil {
		return nil, err
	}
	out[0] = (values[1] - values[0]) / h0

	for i := 1; i < n-1; i++ {
		hPrev, err := spacing(i - 1)
		if err != nil {
			return nil, err
		}
		hNext, err := spacing(i)
		if err != nil {
			return nil, err
		}
		out[i] = (hPrev*hPrev*values[i+1] +
			(hNext*hNext-hPrev*hPrev)*values[i] -
			hNext*hNext*values[i-1]) /
			(hPrev * hNext * (hPrev + hNext))
	}

	hLast, err := spacing(n - 2)
	if err != nil {
		return nil, err
	}
	out[n-1] = (values[n-1] - values[n-2]) / hLast

	return out, nil
}
