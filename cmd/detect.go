package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/puneet-chandna/water-brakes/internal/crs"
)

var (
	detectInput string
	detectSheet string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the coordinate system of a survey file",
	Long: `Inspects column names and value ranges and prints the detected
coordinate system descriptor as JSON. Detection never fails: an
inconclusive dataset reports type "unknown".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(detectInput, detectSheet)
		if err != nil {
			return eris.Wrap(err, "detect: load input")
		}
		return printJSON(crs.Detect(ds))
	},
}

func init() {
	detectCmd.Flags().StringVar(&detectInput, "input", "", "survey file (.csv, .xlsx or .shp)")
	detectCmd.Flags().StringVar(&detectSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	_ = detectCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(detectCmd)
}
