package terrain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/puneet-chandna/water-brakes/internal/dataset"
)

func mustDataset(t *testing.T, header []string, records [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(header, records)
	require.NoError(t, err)
	return ds
}
