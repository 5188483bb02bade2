package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSV parses a survey CSV into a Dataset. The first record is the
// header; field counts must be consistent.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read csv")
	}
	if len(records) < 1 {
		return nil, eris.New("dataset: csv has no header row")
	}

	return New(records[0], records[1:])
}

// ReadCSVFile opens and parses a CSV file.
func ReadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	return ReadCSV(f)
}

// WriteCSV serializes the dataset, original columns first in their original
// order followed by appended columns, one record per row.
func (d *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(d.Columns()); err != nil {
		return eris.Wrap(err, "dataset: write csv header")
	}

	record := make([]string, len(d.columns))
	for r := 0; r < d.rows; r++ {
		for i, c := range d.columns {
			record[i] = c.Text[r]
		}
		if err := writer.Write(record); err != nil {
			return eris.Wrapf(err, "dataset: write csv row %d", r)
		}
	}

	writer.Flush()
	return eris.Wrap(writer.Error(), "dataset: flush csv")
}

// MarshalCSV returns the serialized dataset as a byte slice.
func (d *Dataset) MarshalCSV() ([]byte, error) {
	var sb strings.Builder
	if err := d.WriteCSV(&sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
