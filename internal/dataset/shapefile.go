package dataset

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
)

// ReadShapefile loads a point-survey shapefile. Point X/Y become Easting and
// Northing columns (the detector downstream decides what they actually are),
// PointZ/PointM Z values become an Elevation column, and every DBF attribute
// becomes an additional column.
func ReadShapefile(path string) (*Dataset, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	attrNames := make([]string, len(fields))
	for i, f := range fields {
		attrNames[i] = strings.TrimRight(f.String(), "\x00")
	}

	header := []string{"Easting", "Northing"}
	hasZ := false
	var records [][]string

	for reader.Next() {
		_, shape := reader.Shape()

		var x, y, z float64
		switch s := shape.(type) {
		case *shp.Point:
			x, y = s.X, s.Y
		case *shp.PointZ:
			x, y, z = s.X, s.Y, s.Z
			hasZ = true
		case *shp.PointM:
			x, y = s.X, s.Y
		default:
			return nil, eris.Errorf("dataset: shapefile %s contains non-point shapes", path)
		}

		record := []string{formatFloat(x), formatFloat(y), formatFloat(z)}
		for i := range fields {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			record = append(record, val)
		}
		records = append(records, record)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "dataset: read shapefile %s", path)
	}

	// The Z slot was reserved in every record; keep it only for PointZ data,
	// and let an explicit Elevation attribute win over shape Z.
	header = append(header, "Elevation")
	header = append(header, attrNames...)
	if !hasZ || containsFold(attrNames, "Elevation") {
		header, records = dropColumn(header, records, 2)
	}

	return New(header, records)
}

func dropColumn(header []string, records [][]string, idx int) ([]string, [][]string) {
	header = append(header[:idx], header[idx+1:]...)
	for r, rec := range records {
		records[r] = append(rec[:idx], rec[idx+1:]...)
	}
	return header, records
}

func containsFold(names []string, target string) bool {
	for _, n := range names {
		if strings.EqualFold(n, target) {
			return true
		}
	}
	return false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
