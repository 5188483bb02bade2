package terrain

import (
	"math"
	"math/rand"

	"github.com/rotisserie/eris"
)

// KMeans partitions points into K clusters by iterative centroid assignment,
// minimizing within-cluster variance. All randomness flows from Seed, and
// Restarts independent initializations are run keeping the lowest-inertia
// result, so identical input always yields identical assignments.
type KMeans struct {
	K        int
	MaxIter  int
	Restarts int
	Seed     int64

	Centroids [][]float64
	Inertia   float64
}

// NewKMeans returns a KMeans with the usual iteration and restart budget.
func NewKMeans(k int, seed int64) *KMeans {
	return &KMeans{K: k, MaxIter: 300, Restarts: 10, Seed: seed}
}

// Fit clusters X and returns the per-point cluster assignment.
func (m *KMeans) Fit(X [][]float64) ([]int, error) {
	if len(X) == 0 {
		return nil, eris.New("kmeans: empty input")
	}
	if m.K < 1 {
		return nil, eris.Errorf("kmeans: k must be >= 1, got %d", m.K)
	}
	if len(X) < m.K {
		return nil, eris.Errorf("kmeans: %d points cannot form %d clusters", len(X), m.K)
	}

	rng := rand.New(rand.NewSource(m.Seed))
	restarts := m.Restarts
	if restarts < 1 {
		restarts = 1
	}

	bestInertia := math.Inf(1)
	var bestAssign []int
	var bestCentroids [][]float64

	for r := 0; r < restarts; r++ {
		centroids := initCentroids(X, m.K, rng)
		assign, inertia := lloyd(X, centroids, m.MaxIter)
		if inertia < bestInertia {
			bestInertia = inertia
			bestAssign = assign
			bestCentroids = centroids
		}
	}

	m.Centroids = bestCentroids
	m.Inertia = bestInertia
	return bestAssign, nil
}

// initCentroids seeds centroids with k-means++: the first uniformly, the
// rest weighted by squared distance to the nearest chosen centroid.
func initCentroids(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	dim := len(X[0])
	centroids := make([][]float64, 0, k)

	first := append([]float64(nil), X[rng.Intn(len(X))]...)
	centroids = append(centroids, first)

	distSq := make([]float64, len(X))
	for len(centroids) < k {
		total := 0.0
		for i, x := range X {
			best := math.Inf(1)
			for _, c := range centroids {
				if d := euclidSquared(x, c, dim); d < best {
					best = d
				}
			}
			distSq[i] = best
			total += best
		}

		next := 0
		if total > 0 {
			r := rng.Float64() * total
			cumulative := 0.0
			for i, d := range distSq {
				cumulative += d
				if cumulative >= r {
					next = i
					break
				}
			}
		}
		centroids = append(centroids, append([]float64(nil), X[next]...))
	}

	return centroids
}

// lloyd runs assignment/update iterations to convergence and returns the
// final assignment and inertia. centroids is updated in place.
func lloyd(X [][]float64, centroids [][]float64, maxIter int) ([]int, float64) {
	n, dim, k := len(X), len(X[0]), len(centroids)
	assign := make([]int, n)
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}

	inertia := 0.0
	for it := 0; it < maxIter; it++ {
		changed := false
		inertia = 0.0

		for i, x := range X {
			best, bestD := 0, math.Inf(1)
			for c := range centroids {
				if d := euclidSquared(x, centroids[c], dim); d < bestD {
					best, bestD = c, d
				}
			}
			if assign[i] != best {
				changed = true
			}
			assign[i] = best
			inertia += bestD
		}

		if !changed && it > 0 {
			break
		}

		for c := range sums {
			counts[c] = 0
			for j := range sums[c] {
				sums[c][j] = 0
			}
		}
		for i, x := range X {
			c := assign[i]
			counts[c]++
			for j, v := range x {
				sums[c][j] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue // empty cluster keeps its centroid
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	return assign, inertia
}

func euclidSquared(a, b []float64, dim int) float64 {
	sum := 0.0
	for j := 0; j < dim; j++ {
		d := a[j] - b[j]
		sum += d * d
	}
	return sum
}
