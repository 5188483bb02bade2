package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surveyDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New(
		[]string{"Easting", "Northing", "Elevation", "Notes"},
		[][]string{
			{"407755.99", "1420175.89", "29.11", "start"},
			{"407760.0", "1420180.0", "", "mid"},
			{"407765.2", "1420185.1", "31.0", ""},
		},
	)
	require.NoError(t, err)
	return ds
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	_, err = New([]string{"a", "  "}, nil)
	assert.Error(t, err)

	_, err = New([]string{"a", "b"}, [][]string{{"1"}})
	assert.Error(t, err)
}

func TestColumnLookupCaseInsensitive(t *testing.T) {
	ds := surveyDataset(t)

	for _, name := range []string{"Easting", "easting", "EASTING"} {
		col, ok := ds.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, "Easting", col.Name)
	}

	resolved, ok := ds.Resolve("elevation")
	require.True(t, ok)
	assert.Equal(t, "Elevation", resolved)

	assert.False(t, ds.Has("aspect"))
}

func TestFloatsParsesBlanksAsNaN(t *testing.T) {
	ds := surveyDataset(t)

	elev, err := ds.Floats("Elevation")
	require.NoError(t, err)
	require.Len(t, elev, 3)
	assert.Equal(t, 29.11, elev[0])
	assert.True(t, math.IsNaN(elev[1]))
	assert.Equal(t, 31.0, elev[2])
}

func TestFloatsErrors(t *testing.T) {
	ds := surveyDataset(t)

	_, err := ds.Floats("missing")
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "missing", schemaErr.Column)

	// Notes mixes text in: not numeric.
	_, err = ds.Floats("Notes")
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "Notes", schemaErr.Column)
}

func TestSetFloatsAppendsAndOverwrites(t *testing.T) {
	ds := surveyDataset(t)

	require.NoError(t, ds.SetFloats("slope", []float64{0.1, 0.2, math.NaN()}))
	assert.Equal(t, []string{"Easting", "Northing", "Elevation", "Notes", "slope"}, ds.Columns())

	col, ok := ds.Column("slope")
	require.True(t, ok)
	assert.Equal(t, "", col.Text[2], "NaN renders as an empty cell")

	// Overwriting keeps the column's position.
	require.NoError(t, ds.SetFloats("Elevation", []float64{1, 2, 3}))
	assert.Equal(t, []string{"Easting", "Northing", "Elevation", "Notes", "slope"}, ds.Columns())
	elev, err := ds.Floats("Elevation")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, elev)
}

func TestSetFloatsLengthMismatch(t *testing.T) {
	ds := surveyDataset(t)
	assert.Error(t, ds.SetFloats("slope", []float64{1}))
	assert.False(t, ds.Has("slope"))
}

func TestSetStrings(t *testing.T) {
	ds := surveyDataset(t)

	require.NoError(t, ds.SetStrings("terrain_type", []string{"Swale", "Swale", "Trench"}))
	col, ok := ds.Column("terrain_type")
	require.True(t, ok)
	assert.False(t, col.Numeric)
	assert.Equal(t, "Trench", col.Text[2])
}

func TestFingerprint(t *testing.T) {
	a := surveyDataset(t)
	b := surveyDataset(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	require.NoError(t, b.SetFloats("slope", []float64{0, 0, 0}))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	// Renaming a column changes the fingerprint even with identical cells.
	c, err := New([]string{"x"}, [][]string{{"1"}})
	require.NoError(t, err)
	d, err := New([]string{"y"}, [][]string{{"1"}})
	require.NoError(t, err)
	assert.NotEqual(t, c.Fingerprint(), d.Fingerprint())
}

func TestSchemaErrorMessage(t *testing.T) {
	err := &SchemaError{Column: "Elevation", Reason: "column not found"}
	assert.Equal(t, `schema: column "Elevation": column not found`, err.Error())
}
