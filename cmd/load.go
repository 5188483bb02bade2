package main

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/puneet-chandna/water-brakes/internal/dataset"
)

// loadDataset dispatches on file extension to the matching loader.
func loadDataset(path, sheet string) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return dataset.ReadCSVFile(path)
	case ".xlsx":
		return dataset.ReadXLSX(path, dataset.XLSXOptions{SheetName: sheet})
	case ".shp":
		return dataset.ReadShapefile(path)
	default:
		return nil, eris.Errorf("unsupported input format %q (expected .csv, .xlsx or .shp)", filepath.Ext(path))
	}
}
