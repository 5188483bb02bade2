package dataset

import "fmt"

// SchemaError reports a required column that is missing or malformed. It is
// surfaced to callers unchanged so they can turn it into an actionable
// message ("elevation column required for classification").
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
}
