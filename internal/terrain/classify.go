package terrain

import (
	"fmt"
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/puneet-chandna/water-brakes/internal/dataset"
)

// Output column names and the two-cluster terrain labels. Swales are
// water-collecting depressions (lower ground); trenches are the higher
// drainage-channel role.
const (
	ClusterColumn     = "cluster"
	TerrainTypeColumn = "terrain_type"

	LabelSwale  = "Swale"
	LabelTrench = "Trench"
)

// classifierSeed fixes the clustering randomness so identical input always
// produces identical terrain labels.
const classifierSeed = 42

// Classify clusters rows on (slope, Elevation) and appends cluster ids and
// terrain labels. Clusters are ranked by mean elevation ascending; with two
// clusters the lower one is Swale and the higher Trench, otherwise labels
// are "Zone 1".."Zone n" in elevation order. Missing feature values are
// treated as zero so every row still gets a label.
func Classify(ds *dataset.Dataset, nClusters int) error {
	elevCol, ok := ds.Column(ElevationColumn)
	if !ok {
		return &dataset.SchemaError{Column: ElevationColumn, Reason: "elevation column required for classification"}
	}
	if !elevCol.Numeric {
		return &dataset.SchemaError{Column: elevCol.Name, Reason: "elevation column is not numeric"}
	}

	slope, err := ds.Floats(SlopeColumn)
	if err != nil {
		return err
	}

	features := make([][]float64, ds.Len())
	for i := range features {
		features[i] = []float64{fillZero(slope[i]), fillZero(elevCol.Values[i])}
	}

	km := NewKMeans(nClusters, classifierSeed)
	assign, err := km.Fit(features)
	if err != nil {
		return eris.Wrap(err, "terrain: classify")
	}

	labels := labelByElevation(features, assign, nClusters)

	clusterIDs := make([]float64, len(assign))
	terrain := make([]string, len(assign))
	for i, c := range assign {
		clusterIDs[i] = float64(c)
		terrain[i] = labels[c]
	}

	if err := ds.SetFloats(ClusterColumn, clusterIDs); err != nil {
		return err
	}
	return ds.SetStrings(TerrainTypeColumn, terrain)
}

// labelByElevation maps each cluster id to its terrain label, ranking
// clusters by mean elevation ascending. Empty clusters sort last; ties break
// on cluster id so the mapping stays deterministic.
func labelByElevation(features [][]float64, assign []int, nClusters int) map[int]string {
	sums := make([]float64, nClusters)
	counts := make([]int, nClusters)
	for i, c := range assign {
		sums[c] += features[i][1]
		counts[c]++
	}

	means := make([]float64, nClusters)
	for c := range means {
		if counts[c] == 0 {
			means[c] = math.Inf(1)
			continue
		}
		means[c] = sums[c] / float64(counts[c])
	}

	order := make([]int, nClusters)
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(a, b int) bool {
		if means[order[a]] != means[order[b]] {
			return means[order[a]] < means[order[b]]
		}
		return order[a] < order[b]
	})

	labels := make(map[int]string, nClusters)
	for rank, c := range order {
		if nClusters == 2 {
			if rank == 0 {
				labels[c] = LabelSwale
			} else {
				labels[c] = LabelTrench
			}
			continue
		}
		labels[c] = fmt.Sprintf("Zone %d", rank+1)
	}
	return labels
}

func fillZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
