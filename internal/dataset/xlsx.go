package dataset

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions selects which sheet of a workbook to load.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX loads a survey spreadsheet. The first row of the selected sheet
// is the header; short rows are padded to the header width since trailing
// blank cells are routinely dropped by spreadsheet writers.
func ReadXLSX(path string, opts XLSXOptions) (*Dataset, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open xlsx %s", path)
	}

	sheet, err := selectSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.New("dataset: xlsx sheet has no header row")
	}

	header := rowToStrings(sheet.Rows[0], 0)
	records := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		records = append(records, rowToStrings(row, len(header)))
	}

	return New(header, records)
}

func selectSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("dataset: xlsx sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("dataset: xlsx sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

// rowToStrings flattens a row. When width > 0 the result is padded or
// truncated to exactly width cells.
func rowToStrings(row *xlsx.Row, width int) []string {
	n := len(row.Cells)
	if width > 0 {
		n = width
	}
	cells := make([]string, n)
	for j, cell := range row.Cells {
		if j >= n {
			break
		}
		cells[j] = cell.String()
	}
	return cells
}
