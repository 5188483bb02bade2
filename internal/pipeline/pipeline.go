// Package pipeline sequences coordinate detection, reprojection, terrain
// feature derivation and classification over one in-memory dataset. Run is a
// pure function of its inputs: no state survives between invocations, and
// any caching belongs to the calling layer keyed on the dataset and option
// fingerprints.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/puneet-chandna/water-brakes/internal/crs"
	"github.com/puneet-chandna/water-brakes/internal/dataset"
	"github.com/puneet-chandna/water-brakes/internal/terrain"
)

// Coordinate system modes.
const (
	ModeAuto   = "auto"
	ModeUTM    = "utm"
	ModeLatLon = "latlon"
	ModeCustom = "custom"
)

// defaultZoneEPSG is the legacy zone-44N fallback. Silently assuming a zone
// reprojects unrelated geography, so it is only reachable behind
// Options.AllowDefaultZone.
const defaultZoneEPSG = 32644

// Options configures one pipeline invocation.
type Options struct {
	// CoordinateSystem is auto, utm, latlon or custom. Empty means auto.
	CoordinateSystem string
	// UTMZone (1-60) and UTMHemisphere (N/S) declare the source zone for
	// utm mode. Hemisphere defaults to N.
	UTMZone       int
	UTMHemisphere string
	// CustomEPSG declares the source system directly, e.g. "EPSG:32644".
	// In utm mode it takes priority over UTMZone.
	CustomEPSG string
	// NClusters is the terrain cluster count; 2 (Swale/Trench) by default.
	NClusters int
	// AllowDefaultZone opts into the legacy EPSG:32644 fallback when utm
	// mode has no zone declared. Off by default: assuming a zone is a
	// correctness risk, not a convenience.
	AllowDefaultZone bool
}

func (o Options) withDefaults() Options {
	if o.CoordinateSystem == "" {
		o.CoordinateSystem = ModeAuto
	}
	if o.UTMHemisphere == "" {
		o.UTMHemisphere = "N"
	}
	if o.NClusters == 0 {
		o.NClusters = 2
	}
	return o
}

// Fingerprint returns a canonical key segment for caching results by
// configuration.
func (o Options) Fingerprint() string {
	o = o.withDefaults()
	return fmt.Sprintf("cs=%s;zone=%d;hemi=%s;epsg=%s;k=%d;default-zone=%t",
		strings.ToLower(o.CoordinateSystem), o.UTMZone,
		strings.ToUpper(o.UTMHemisphere), strings.ToLower(o.CustomEPSG),
		o.NClusters, o.AllowDefaultZone)
}

// Result is the enriched dataset with its detection descriptor and summary
// statistics.
type Result struct {
	Dataset    *dataset.Dataset
	Descriptor crs.Descriptor
	Statistics *Statistics
}

// Run executes the pipeline: detect the coordinate system (or honor the
// declared mode), reproject planar coordinates to WGS84, derive slope and
// aspect, classify terrain, and summarize. Row order and cardinality are
// preserved throughout; errors abort the run with no partial output.
func Run(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.Int("rows", ds.Len()))

	detected := crs.Detect(ds)
	mode := opts.CoordinateSystem
	if mode == ModeAuto {
		mode = string(detected.Type)
	}
	log.Info("pipeline: coordinate system resolved",
		zap.String("mode", opts.CoordinateSystem),
		zap.String("resolved", mode),
	)

	switch mode {
	case ModeLatLon:
		aliasGeographic(ds, detected)

	case ModeUTM:
		if detected.EastingCol == "" || detected.NorthingCol == "" {
			return nil, &dataset.SchemaError{
				Column: "Easting/Northing",
				Reason: "utm mode requires easting and northing columns",
			}
		}
		epsg, err := resolveUTMSource(opts, log)
		if err != nil {
			return nil, err
		}
		if err := crs.Transform(ctx, ds, epsg, detected.EastingCol, detected.NorthingCol); err != nil {
			return nil, err
		}

	case ModeCustom:
		if opts.CustomEPSG == "" {
			return nil, &crs.TransformError{Reason: "custom mode requires an EPSG code"}
		}
		epsg, err := crs.ParseEPSG(opts.CustomEPSG)
		if err != nil {
			return nil, err
		}
		xCol, yCol, err := customPlanarColumns(ds, detected)
		if err != nil {
			return nil, err
		}
		if err := crs.Transform(ctx, ds, epsg, xCol, yCol); err != nil {
			return nil, err
		}

	case string(crs.SystemUnknown):
		// Detection was inconclusive: pass through untransformed and let
		// downstream stages use whatever columns exist.
		log.Warn("pipeline: coordinate system unknown, skipping transformation")

	default:
		return nil, eris.Errorf("pipeline: invalid coordinate system %q", mode)
	}

	if ds.Has(terrain.ElevationColumn) {
		if err := terrain.DeriveFeatures(ds); err != nil {
			return nil, err
		}
		k := opts.NClusters
		if ds.Len() < k {
			// Fewer rows than clusters: clamp so tiny surveys still label.
			log.Warn("pipeline: clamping cluster count to row count",
				zap.Int("requested", k))
			k = ds.Len()
		}
		if err := terrain.Classify(ds, k); err != nil {
			return nil, err
		}
	} else {
		// Still valid output, just without derived fields.
		log.Warn("pipeline: no elevation column, skipping terrain classification")
	}

	return &Result{
		Dataset:    ds,
		Descriptor: detected,
		Statistics: ComputeStatistics(ds),
	}, nil
}

func validateOptions(opts Options) error {
	switch opts.CoordinateSystem {
	case ModeAuto, ModeUTM, ModeLatLon, ModeCustom:
	default:
		return eris.Errorf("pipeline: invalid coordinate system %q", opts.CoordinateSystem)
	}
	if opts.NClusters < 1 {
		return eris.Errorf("pipeline: n_clusters must be >= 1, got %d", opts.NClusters)
	}
	return nil
}

// aliasGeographic copies detected geographic columns to the canonical
// Latitude/Longitude names when they differ. Nothing to do when detection
// found no usable pair: the dataset passes through untouched.
func aliasGeographic(ds *dataset.Dataset, detected crs.Descriptor) {
	if detected.LatCol == "" || detected.LonCol == "" {
		return
	}
	if detected.LatCol != crs.LatitudeColumn {
		if col, ok := ds.Column(detected.LatCol); ok {
			_ = ds.SetFloats(crs.LatitudeColumn, col.Values)
		}
	}
	if detected.LonCol != crs.LongitudeColumn {
		if col, ok := ds.Column(detected.LonCol); ok {
			_ = ds.SetFloats(crs.LongitudeColumn, col.Values)
		}
	}
}

// resolveUTMSource picks the source EPSG with priority: explicit EPSG code,
// then zone/hemisphere, then (only when opted in) the legacy 44N default.
func resolveUTMSource(opts Options, log *zap.Logger) (int, error) {
	if opts.CustomEPSG != "" {
		return crs.ParseEPSG(opts.CustomEPSG)
	}
	if opts.UTMZone != 0 {
		return crs.UTMEPSG(opts.UTMZone, opts.UTMHemisphere)
	}
	if opts.AllowDefaultZone {
		log.Warn("pipeline: no UTM zone declared, assuming zone 44N",
			zap.Int("epsg", defaultZoneEPSG))
		return defaultZoneEPSG, nil
	}
	return 0, &crs.TransformError{
		Reason: "utm mode requires a zone (set utm_zone, custom_epsg, or opt into the zone 44N default)",
	}
}

// customPlanarColumns picks the planar pair for custom mode: detected
// easting/northing names when present, else the dataset's first two columns
// in original order. A deliberately loose fallback for malformed headers.
func customPlanarColumns(ds *dataset.Dataset, detected crs.Descriptor) (string, string, error) {
	if detected.EastingCol != "" && detected.NorthingCol != "" {
		return detected.EastingCol, detected.NorthingCol, nil
	}
	cols := ds.Columns()
	if len(cols) < 2 {
		return "", "", &dataset.SchemaError{
			Column: "x/y",
			Reason: "custom mode needs at least two columns",
		}
	}
	return cols[0], cols[1], nil
}
