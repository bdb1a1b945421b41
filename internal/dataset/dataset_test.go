package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/model-ranker/internal/fsutil"
	"github.com/banshee-data/model-ranker/internal/testutil"
)

func TestRead_ReferenceTable(t *testing.T) {
	ds, err := Read(strings.NewReader(testutil.ModelsCSV), testutil.Criteria)
	require.NoError(t, err)

	assert.Equal(t, 5, ds.Len())
	assert.True(t, ds.HasAxis())
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta", "epsilon"}, ds.Models)
	assert.Equal(t, []string{"speed", "cost"}, ds.Axes())
	assert.Equal(t, []float64{300, 32, 16, 4}, ds.Matrix[2])
}

func TestRead_CriteriaOrderFollowsConfig(t *testing.T) {
	ds, err := Read(strings.NewReader(testutil.ModelsCSVNoAxis), []string{"Price", "Throughput"})
	require.NoError(t, err)

	want := [][]float64{{5, 250}, {3, 200}, {4, 300}}
	if diff := cmp.Diff(want, ds.Matrix); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, ds.HasAxis())
	assert.Empty(t, ds.Axes())
}

func TestRead_BOMAndSpaces(t *testing.T) {
	input := "\ufeffModel , Score \n  m1 , 1.5\nm2,  2\n"
	ds, err := Read(strings.NewReader(input), []string{"Score"})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ds.Models)
	assert.Equal(t, [][]float64{{1.5}, {2}}, ds.Matrix)
}

func TestRead_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		criteria []string
		wantIs   error
		wantText string
	}{
		{"empty", "", []string{"a"}, ErrEmptyFile, "no header row"},
		{"header_only", "Model,a\n", []string{"a"}, ErrEmptyFile, "no data rows"},
		{"no_model_column", "Name,a\nx,1\n", []string{"a"}, ErrMissingColumn, `"Model"`},
		{"missing_criterion", "Model,a\nx,1\n", []string{"a", "b"}, ErrMissingColumn, `criterion "b"`},
		{"bad_number", "Model,a\nx,1\ny,lots\n", []string{"a"}, nil, `line 3, column "a": invalid number "lots"`},
		{"ragged_row", "Model,a\nx,1,2\n", []string{"a"}, nil, "failed to read row"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.input), tc.criteria)
			require.Error(t, err)
			if tc.wantIs != nil {
				assert.True(t, errors.Is(err, tc.wantIs), "errors.Is(%v, %v)", err, tc.wantIs)
			}
			assert.Contains(t, err.Error(), tc.wantText)
		})
	}
}

func TestFilterAxis(t *testing.T) {
	ds, err := Read(strings.NewReader(testutil.ModelsCSV), testutil.Criteria)
	require.NoError(t, err)

	cost, err := ds.FilterAxis("cost")
	require.NoError(t, err)
	assert.Equal(t, []string{"delta", "epsilon"}, cost.Models)
	assert.Equal(t, []string{"cost", "cost"}, cost.Axis)
	assert.Equal(t, testutil.Criteria, cost.Criteria)

	// The source dataset is untouched and the filtered rows are copies.
	cost.Matrix[0][0] = -1
	assert.Equal(t, 120.0, ds.Matrix[3][0])
	assert.Equal(t, 5, ds.Len())

	_, err = ds.FilterAxis("latency")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no rows with Axis "latency" (have speed, cost)`)

	noAxis, err := Read(strings.NewReader(testutil.ModelsCSVNoAxis), testutil.Criteria)
	require.NoError(t, err)
	_, err = noAxis.FilterAxis("speed")
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestLoad(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/data/models.csv", []byte(testutil.ModelsCSVNoAxis))

	ds, err := Load(mfs, "/data/models.csv", testutil.Criteria)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	_, err = Load(mfs, "/data/missing.csv", testutil.Criteria)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open /data/missing.csv")

	mfs.WriteFile("/data/empty.csv", nil)
	_, err = Load(mfs, "/data/empty.csv", testutil.Criteria)
	assert.True(t, errors.Is(err, ErrEmptyFile))
	assert.Contains(t, err.Error(), "/data/empty.csv")
}

func TestLoad_OSFileSystem(t *testing.T) {
	path := testutil.WriteFile(t, "models.csv", testutil.ModelsCSV)
	ds, err := Load(fsutil.OSFileSystem{}, path, testutil.Criteria)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
}
