// Package dataset holds the in-memory tabular survey data the pipeline
// operates on. Column order and row order are preserved end to end; pipeline
// stages only append or replace columns.
package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Column is a single named column. Text holds the raw cells as loaded;
// Values holds the parsed float for each cell, NaN where the cell is empty
// or non-numeric. Numeric is true when every non-empty cell parsed.
type Column struct {
	Name    string
	Text    []string
	Values  []float64
	Numeric bool
}

// Dataset is an ordered set of columns sharing one row count.
type Dataset struct {
	columns []*Column
	index   map[string]*Column // lowercased name -> column
	rows    int
}

// New builds a Dataset from a header row and data records. Every record must
// have exactly len(header) fields.
func New(header []string, records [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, eris.New("dataset: empty header")
	}

	ds := &Dataset{
		index: make(map[string]*Column, len(header)),
		rows:  len(records),
	}

	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, eris.Errorf("dataset: blank column name at position %d", i)
		}

		col := &Column{
			Name:    name,
			Text:    make([]string, len(records)),
			Values:  make([]float64, len(records)),
			Numeric: true,
		}
		for r, rec := range records {
			if len(rec) != len(header) {
				return nil, eris.Errorf("dataset: row %d has %d fields, header has %d", r, len(rec), len(header))
			}
			cell := strings.TrimSpace(rec[i])
			col.Text[r] = cell
			if cell == "" {
				col.Values[r] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				col.Values[r] = math.NaN()
				col.Numeric = false
				continue
			}
			col.Values[r] = v
		}

		ds.columns = append(ds.columns, col)
		ds.index[strings.ToLower(name)] = col
	}

	return ds, nil
}

// Len returns the row count.
func (d *Dataset) Len() int { return d.rows }

// Columns returns the column names in original order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by name, case-insensitively.
func (d *Dataset) Column(name string) (*Column, bool) {
	c, ok := d.index[strings.ToLower(name)]
	return c, ok
}

// Has reports whether a column exists, case-insensitively.
func (d *Dataset) Has(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// Resolve returns the original-cased name for a column, case-insensitively.
func (d *Dataset) Resolve(name string) (string, bool) {
	c, ok := d.Column(name)
	if !ok {
		return "", false
	}
	return c.Name, true
}

// Floats returns the parsed values of a numeric column. A missing or
// non-numeric column is a SchemaError.
func (d *Dataset) Floats(name string) ([]float64, error) {
	c, ok := d.Column(name)
	if !ok {
		return nil, &SchemaError{Column: name, Reason: "column not found"}
	}
	if !c.Numeric {
		return nil, &SchemaError{Column: c.Name, Reason: "column is not numeric"}
	}
	return c.Values, nil
}

// SetFloats creates or replaces a numeric column. The values slice length
// must match the row count.
func (d *Dataset) SetFloats(name string, values []float64) error {
	if len(values) != d.rows {
		return eris.Errorf("dataset: column %q has %d values, dataset has %d rows", name, len(values), d.rows)
	}

	text := make([]string, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			text[i] = ""
			continue
		}
		text[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	d.put(&Column{Name: name, Text: text, Values: values, Numeric: true})
	return nil
}

// SetStrings creates or replaces a text column.
func (d *Dataset) SetStrings(name string, values []string) error {
	if len(values) != d.rows {
		return eris.Errorf("dataset: column %q has %d values, dataset has %d rows", name, len(values), d.rows)
	}

	nans := make([]float64, len(values))
	for i := range nans {
		nans[i] = math.NaN()
	}

	d.put(&Column{Name: name, Text: values, Values: nans, Numeric: false})
	return nil
}

// put installs a column, overwriting in place (keeping position) when a
// column with the same lowercased name already exists.
func (d *Dataset) put(col *Column) {
	key := strings.ToLower(col.Name)
	if existing, ok := d.index[key]; ok {
		*existing = *col
		return
	}
	d.columns = append(d.columns, col)
	d.index[key] = col
}

// Fingerprint returns a sha256 hex digest over the header and all cells.
// Two datasets with identical schema and content share a fingerprint, which
// the caller-side cache uses as part of its key.
func (d *Dataset) Fingerprint() string {
	h := sha256.New()
	for _, c := range d.columns {
		h.Write([]byte(c.Name))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, c := range d.columns {
		for _, cell := range c.Text {
			h.Write([]byte(cell))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
