package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBlobs returns points in two well separated groups: indices 0..4 around
// (0, 10) and 5..9 around (0, 50).
func twoBlobs() [][]float64 {
	return [][]float64{
		{0.1, 9.8}, {-0.2, 10.1}, {0.0, 10.0}, {0.3, 9.9}, {-0.1, 10.2},
		{0.1, 49.7}, {-0.3, 50.2}, {0.0, 50.0}, {0.2, 50.1}, {-0.2, 49.9},
	}
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	assign, err := NewKMeans(2, 42).Fit(twoBlobs())
	require.NoError(t, err)
	require.Len(t, assign, 10)

	low := assign[0]
	for i := 0; i < 5; i++ {
		assert.Equal(t, low, assign[i], "low blob point %d", i)
	}
	high := assign[5]
	for i := 5; i < 10; i++ {
		assert.Equal(t, high, assign[i], "high blob point %d", i)
	}
	assert.NotEqual(t, low, high)
}

func TestKMeansDeterministic(t *testing.T) {
	X := twoBlobs()

	first, err := NewKMeans(2, 42).Fit(X)
	require.NoError(t, err)

	for run := 0; run < 5; run++ {
		again, err := NewKMeans(2, 42).Fit(X)
		require.NoError(t, err)
		assert.Equal(t, first, again, "run %d diverged", run)
	}
}

func TestKMeansSingleCluster(t *testing.T) {
	assign, err := NewKMeans(1, 42).Fit(twoBlobs())
	require.NoError(t, err)
	for _, c := range assign {
		assert.Equal(t, 0, c)
	}
}

func TestKMeansIdenticalPoints(t *testing.T) {
	X := [][]float64{{1, 2}, {1, 2}, {1, 2}}
	assign, err := NewKMeans(2, 42).Fit(X)
	require.NoError(t, err)
	require.Len(t, assign, 3)
	// All identical points land in one cluster; the other stays empty.
	assert.Equal(t, assign[0], assign[1])
	assert.Equal(t, assign[1], assign[2])
}

func TestKMeansErrors(t *testing.T) {
	_, err := NewKMeans(2, 42).Fit(nil)
	assert.Error(t, err)

	_, err = NewKMeans(3, 42).Fit([][]float64{{1, 2}, {3, 4}})
	assert.Error(t, err)

	_, err = NewKMeans(0, 42).Fit([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestKMeansInertiaTracksBestRestart(t *testing.T) {
	km := NewKMeans(2, 42)
	_, err := km.Fit(twoBlobs())
	require.NoError(t, err)

	// Perfect split of the blobs: inertia is the small within-blob scatter,
	// far below the between-blob distance.
	assert.Less(t, km.Inertia, 10.0)
	assert.Len(t, km.Centroids, 2)
}
