package dataset

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadShapefilePointsWithAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.shp")

	writer, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, writer.SetFields([]shp.Field{
		shp.FloatField("ELEVATION", 13, 2),
		shp.StringField("NOTES", 25),
	}))

	points := []shp.Point{
		{X: 407755.99, Y: 1420175.89},
		{X: 407760.0, Y: 1420180.0},
	}
	for n, p := range points {
		writer.Write(&p)
		require.NoError(t, writer.WriteAttribute(n, 0, 29.11+float64(n)))
		require.NoError(t, writer.WriteAttribute(n, 1, "survey"))
	}
	writer.Close()

	ds, err := ReadShapefile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	easting, err := ds.Floats("Easting")
	require.NoError(t, err)
	assert.Equal(t, []float64{407755.99, 407760.0}, easting)
	northing, err := ds.Floats("Northing")
	require.NoError(t, err)
	assert.Equal(t, []float64{1420175.89, 1420180.0}, northing)

	elev, err := ds.Floats("Elevation")
	require.NoError(t, err)
	assert.InDelta(t, 29.11, elev[0], 1e-9)

	notes, ok := ds.Column("Notes")
	require.True(t, ok)
	assert.Equal(t, "survey", notes.Text[0])
}

func TestReadShapefilePointZUsesShapeElevation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.shp")

	writer, err := shp.Create(path, shp.POINTZ)
	require.NoError(t, err)
	require.NoError(t, writer.SetFields([]shp.Field{
		shp.StringField("NOTES", 25),
	}))

	writer.Write(&shp.PointZ{X: 407755.99, Y: 1420175.89, Z: 29.11})
	require.NoError(t, writer.WriteAttribute(0, 0, "ridge"))
	writer.Close()

	ds, err := ReadShapefile(path)
	require.NoError(t, err)

	require.Equal(t, 1, ds.Len())
	elev, err := ds.Floats("Elevation")
	require.NoError(t, err)
	assert.InDelta(t, 29.11, elev[0], 1e-9)
}

func TestReadShapefileRejectsNonPointShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.shp")

	writer, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	writer.Write(&shp.PolyLine{
		Box:       shp.Box{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1},
		NumParts:  1,
		NumPoints: 2,
		Parts:     []int32{0},
		Points:    []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	})
	writer.Close()

	_, err = ReadShapefile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-point")
}

func TestReadShapefileMissingFile(t *testing.T) {
	_, err := ReadShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	assert.Error(t, err)
}
