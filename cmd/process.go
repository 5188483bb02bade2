package main

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/puneet-chandna/water-brakes/internal/crs"
	"github.com/puneet-chandna/water-brakes/internal/dataset"
	"github.com/puneet-chandna/water-brakes/internal/pipeline"
	"github.com/puneet-chandna/water-brakes/internal/store"
)

var (
	processInput       string
	processSheet       string
	processOutput      string
	processFormat      string
	processStatsOut    string
	processStatsFormat string
	processCoordSys    string
	processUTMZone     int
	processHemisphere  string
	processEPSG        string
	processClusters    int
	processAssume44N   bool
	processCache       string
	processDryRun      bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the terrain classification pipeline on a survey file",
	Long: `Reads a survey file (CSV, XLSX or point shapefile), normalizes its
coordinates to WGS84, derives slope and aspect, classifies points into
terrain roles, and writes the enriched dataset plus summary statistics.

Examples:
  # Auto-detect the coordinate system, enriched CSV to stdout
  water-brakes process --input survey.csv

  # UTM survey from zone 44N, GeoJSON for the map layer
  water-brakes process --input survey.csv --utm-zone 44 --hemisphere N \
    --output survey.geojson --format geojson

  # Inspect detection only
  water-brakes process --input survey.csv --dry-run`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ds, err := loadDataset(processInput, processSheet)
		if err != nil {
			return eris.Wrap(err, "process: load input")
		}
		zap.L().Info("process: loaded input",
			zap.String("input", processInput),
			zap.Int("rows", ds.Len()),
			zap.Strings("columns", ds.Columns()),
		)

		if processDryRun {
			return printJSON(crs.Detect(ds))
		}

		opts := processOptions()

		cachePath := processCache
		if cachePath == "" {
			cachePath = cfg.Cache.Path
		}
		// The cache memoizes the CSV artifact; other formats re-run.
		if cachePath != "" && processFormat == "csv" {
			return runCached(ctx, cachePath, ds, opts)
		}

		result, err := pipeline.Run(ctx, ds, opts)
		if err != nil {
			return err
		}
		logSummary(result)

		if err := writeResult(result); err != nil {
			return err
		}
		return writeStats(result.Statistics)
	},
}

func init() {
	processCmd.Flags().StringVar(&processInput, "input", "", "survey file (.csv, .xlsx or .shp)")
	processCmd.Flags().StringVar(&processSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	processCmd.Flags().StringVar(&processOutput, "output", "", "enriched output path (default: stdout)")
	processCmd.Flags().StringVar(&processFormat, "format", "csv", "output format: csv, json or geojson")
	processCmd.Flags().StringVar(&processStatsOut, "stats", "", "statistics output path (default: stderr log only)")
	processCmd.Flags().StringVar(&processStatsFormat, "stats-format", "json", "statistics format: json or yaml")
	processCmd.Flags().StringVar(&processCoordSys, "coordinate-system", "", "auto, utm, latlon or custom (default from config)")
	processCmd.Flags().IntVar(&processUTMZone, "utm-zone", 0, "UTM zone 1-60")
	processCmd.Flags().StringVar(&processHemisphere, "hemisphere", "", "UTM hemisphere: N or S")
	processCmd.Flags().StringVar(&processEPSG, "epsg", "", "source EPSG code, e.g. EPSG:32644")
	processCmd.Flags().IntVar(&processClusters, "clusters", 0, "terrain cluster count (default 2: Swale/Trench)")
	processCmd.Flags().BoolVar(&processAssume44N, "assume-zone-44n", false, "fall back to UTM zone 44N when no zone is given")
	processCmd.Flags().StringVar(&processCache, "cache", "", "sqlite result cache path (overrides config)")
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "parse and detect only, print the descriptor")
	_ = processCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(processCmd)
}

// processOptions merges config defaults with per-invocation flags; flags
// win.
func processOptions() pipeline.Options {
	opts := pipeline.Options{
		CoordinateSystem: cfg.Pipeline.CoordinateSystem,
		UTMZone:          cfg.Pipeline.UTMZone,
		UTMHemisphere:    cfg.Pipeline.UTMHemisphere,
		CustomEPSG:       cfg.Pipeline.CustomEPSG,
		NClusters:        cfg.Pipeline.NClusters,
		AllowDefaultZone: cfg.Pipeline.AllowDefaultUTMZone,
	}
	if processCoordSys != "" {
		opts.CoordinateSystem = strings.ToLower(processCoordSys)
	}
	if processUTMZone != 0 {
		opts.UTMZone = processUTMZone
	}
	if processHemisphere != "" {
		opts.UTMHemisphere = processHemisphere
	}
	if processEPSG != "" {
		opts.CustomEPSG = processEPSG
	}
	if processClusters != 0 {
		opts.NClusters = processClusters
	}
	if processAssume44N {
		opts.AllowDefaultZone = true
	}
	return opts
}

// runCached serves the CSV artifact from the result cache when the same
// dataset and options were processed before, running the pipeline and
// filling the cache otherwise.
func runCached(ctx context.Context, cachePath string, ds *dataset.Dataset, opts pipeline.Options) error {
	cache, err := store.Open(cachePath)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	key := store.Key(ds.Fingerprint(), opts.Fingerprint())
	if cached, err := cache.Get(ctx, key); err != nil {
		return err
	} else if cached != nil {
		zap.L().Info("process: cache hit",
			zap.String("run_id", cached.RunID),
			zap.Time("cached_at", cached.CreatedAt),
		)
		if err := writeBytes(processOutput, cached.CSV); err != nil {
			return err
		}
		if processStatsOut != "" {
			return writeBytes(processStatsOut, cached.Stats)
		}
		return nil
	}

	result, err := pipeline.Run(ctx, ds, opts)
	if err != nil {
		return err
	}
	logSummary(result)

	csvData, err := result.Dataset.MarshalCSV()
	if err != nil {
		return err
	}
	statsJSON, err := json.MarshalIndent(result.Statistics, "", "  ")
	if err != nil {
		return eris.Wrap(err, "process: marshal statistics")
	}

	runID, err := cache.Put(ctx, key, csvData, statsJSON)
	if err != nil {
		return err
	}
	zap.L().Info("process: cached result", zap.String("run_id", runID))

	if err := writeBytes(processOutput, csvData); err != nil {
		return err
	}
	return writeStats(result.Statistics)
}

func writeResult(result *pipeline.Result) error {
	switch processFormat {
	case "csv":
		data, err := result.Dataset.MarshalCSV()
		if err != nil {
			return err
		}
		return writeBytes(processOutput, data)
	case "json":
		data, err := json.MarshalIndent(datasetRecords(result.Dataset), "", "  ")
		if err != nil {
			return eris.Wrap(err, "process: marshal records")
		}
		return writeBytes(processOutput, data)
	case "geojson":
		fc, err := result.GeoJSON()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(fc, "", "  ")
		if err != nil {
			return eris.Wrap(err, "process: marshal geojson")
		}
		return writeBytes(processOutput, data)
	default:
		return eris.Errorf("process: unsupported output format %q", processFormat)
	}
}

// datasetRecords renders rows as JSON-safe objects: numeric cells as
// numbers, everything else as its text, missing cells omitted.
func datasetRecords(ds *dataset.Dataset) []map[string]any {
	cols := ds.Columns()
	out := make([]map[string]any, ds.Len())
	for i := range out {
		rec := make(map[string]any, len(cols))
		for _, name := range cols {
			col, _ := ds.Column(name)
			switch {
			case col.Numeric && !math.IsNaN(col.Values[i]) && !math.IsInf(col.Values[i], 0):
				rec[name] = col.Values[i]
			case col.Text[i] != "":
				rec[name] = col.Text[i]
			}
		}
		out[i] = rec
	}
	return out
}

func writeStats(stats *pipeline.Statistics) error {
	if processStatsOut == "" {
		return nil
	}

	var data []byte
	var err error
	switch processStatsFormat {
	case "json":
		data, err = json.MarshalIndent(stats, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(stats)
	default:
		return eris.Errorf("process: unsupported stats format %q", processStatsFormat)
	}
	if err != nil {
		return eris.Wrap(err, "process: marshal statistics")
	}
	return writeBytes(processStatsOut, data)
}

func writeBytes(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return eris.Wrap(err, "process: write stdout")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "process: write %s", path)
}

func logSummary(result *pipeline.Result) {
	fields := []zap.Field{
		zap.Int("total_points", result.Statistics.TotalPoints),
		zap.String("coordinate_system", string(result.Descriptor.Type)),
	}
	if result.Statistics.ElevationMin != nil {
		fields = append(fields,
			zap.Float64("elevation_min", *result.Statistics.ElevationMin),
			zap.Float64("elevation_max", *result.Statistics.ElevationMax),
		)
	}
	for label, count := range result.Statistics.TerrainDistribution {
		fields = append(fields, zap.Int("terrain_"+strings.ToLower(label), count))
	}
	zap.L().Info("process: pipeline complete", fields...)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "process: marshal")
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return eris.Wrap(err, "process: write stdout")
}
