package pipeline

import (
	"math"

	"github.com/puneet-chandna/water-brakes/internal/dataset"
	"github.com/puneet-chandna/water-brakes/internal/terrain"
)

// Statistics summarizes one pipeline run. Pointer fields are nil when the
// source column is absent or has no finite values, and omitted from the
// serialized form.
type Statistics struct {
	TotalPoints int `json:"total_points" yaml:"total_points"`

	ElevationMin  *float64 `json:"elevation_min,omitempty" yaml:"elevation_min,omitempty"`
	ElevationMax  *float64 `json:"elevation_max,omitempty" yaml:"elevation_max,omitempty"`
	ElevationMean *float64 `json:"elevation_mean,omitempty" yaml:"elevation_mean,omitempty"`
	ElevationStd  *float64 `json:"elevation_std,omitempty" yaml:"elevation_std,omitempty"`

	SlopeMin  *float64 `json:"slope_min,omitempty" yaml:"slope_min,omitempty"`
	SlopeMax  *float64 `json:"slope_max,omitempty" yaml:"slope_max,omitempty"`
	SlopeMean *float64 `json:"slope_mean,omitempty" yaml:"slope_mean,omitempty"`

	TerrainDistribution map[string]int     `json:"terrain_distribution,omitempty" yaml:"terrain_distribution,omitempty"`
	TerrainPercentages  map[string]float64 `json:"terrain_percentages,omitempty" yaml:"terrain_percentages,omitempty"`
}

// ComputeStatistics summarizes the enriched dataset: elevation and slope
// moments over finite values only, and the terrain label distribution with
// percentages of the total row count.
func ComputeStatistics(ds *dataset.Dataset) *Statistics {
	stats := &Statistics{TotalPoints: ds.Len()}

	if col, ok := ds.Column(terrain.ElevationColumn); ok && col.Numeric {
		min, max, mean, std := summarize(col.Values)
		stats.ElevationMin = min
		stats.ElevationMax = max
		stats.ElevationMean = mean
		stats.ElevationStd = std
	}
	if col, ok := ds.Column(terrain.SlopeColumn); ok && col.Numeric {
		min, max, mean, _ := summarize(col.Values)
		stats.SlopeMin = min
		stats.SlopeMax = max
		stats.SlopeMean = mean
	}

	if col, ok := ds.Column(terrain.TerrainTypeColumn); ok {
		dist := make(map[string]int)
		for _, label := range col.Text {
			if label == "" {
				continue
			}
			dist[label]++
		}
		if len(dist) > 0 {
			stats.TerrainDistribution = dist
			stats.TerrainPercentages = make(map[string]float64, len(dist))
			for label, count := range dist {
				stats.TerrainPercentages[label] = float64(count) / float64(ds.Len()) * 100
			}
		}
	}

	return stats
}

// summarize returns min, max, mean and sample standard deviation over the
// finite values in vs. All nil when no finite value exists; std is nil with
// fewer than two.
func summarize(vs []float64) (min, max, mean, std *float64) {
	var finite []float64
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		return nil, nil, nil, nil
	}

	lo, hi, sum := finite[0], finite[0], 0.0
	for _, v := range finite {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum += v
	}
	avg := sum / float64(len(finite))

	min, max, mean = &lo, &hi, &avg
	if len(finite) < 2 {
		return min, max, mean, nil
	}

	var ss float64
	for _, v := range finite {
		d := v - avg
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(finite)-1))
	return min, max, mean, &sd
}
