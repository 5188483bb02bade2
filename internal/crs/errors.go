package crs

import "fmt"

// TransformError reports a reference-system resolution or reprojection
// failure. Transformation is fail-fast: no rows are silently skipped.
type TransformError struct {
	CRS    string
	Reason string
}

func (e *TransformError) Error() string {
	if e.CRS == "" {
		return fmt.Sprintf("transform: %s", e.Reason)
	}
	return fmt.Sprintf("transform: %s: %s", e.CRS, e.Reason)
}
