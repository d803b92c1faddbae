package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func setLevels(t *testing.T, n *Network, levels []string) {
	t.Helper()
	for _, v := range n.Vertices() {
		v.Levels = append([]string(nil), levels...)
	}
}

func TestGenerateContinuousParameters(t *testing.T) {
	n := testNetwork(t)
	n.GenerateContinuousParameters([]float64{1}, 0, rand.NewSource(1))

	for _, v := range n.Vertices() {
		require.NotNil(t, v.CPD)
		for _, w := range v.CPD.Weights {
			assert.Equal(t, 1.0, w)
		}
	}
	require.NoError(t, n.Validate())
}

func TestGenerateDiscreteParameterShapes(t *testing.T) {
	for _, levels := range [][]string{{"0", "1"}, {"0", "1", "2"}} {
		n := testNetwork(t)
		setLevels(t, n, levels)
		require.NoError(t, n.GenerateDiscreteParameters(0, 2, 2, rand.NewSource(0)))

		k := len(levels)
		wantShapes := map[string][]int{
			"A": {k},
			"B": {k, k, k},
			"C": {k, k},
			"D": {k},
		}
		for _, v := range n.Vertices() {
			require.NotNil(t, v.CPT, v.Name)
			assert.Equal(t, wantShapes[v.Name], v.CPT.Array.Shape, v.Name)
		}
		require.NoError(t, n.Validate())
	}
}

func TestGenerateDiscreteAssignsLevels(t *testing.T) {
	n := testNetwork(t)
	require.NoError(t, n.GenerateDiscreteParameters(0, 2, 4, rand.NewSource(3)))
	for _, v := range n.Vertices() {
		assert.GreaterOrEqual(t, len(v.Levels), 2)
		assert.LessOrEqual(t, len(v.Levels), 4)
	}
}

func TestSampleContinuousNoNoise(t *testing.T) {
	n := testNetwork(t)
	n.GenerateContinuousParameters(nil, 0, rand.NewSource(1))

	data, err := n.SampleData(10, rand.NewSource(1))
	require.NoError(t, err)
	rows, cols := data.Dims()
	require.Equal(t, 10, rows)
	require.Equal(t, 4, cols)
	// Zero noise, zero mean roots: everything collapses to zero.
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			assert.InDelta(t, 0, data.At(r, c), 1e-12)
		}
	}
}

func TestSampleContinuousWithNoise(t *testing.T) {
	n := testNetwork(t)
	n.GenerateContinuousParameters(nil, 1.0, rand.NewSource(1))

	data, err := n.SampleData(10, rand.NewSource(1))
	require.NoError(t, err)
	nonzero := false
	rows, cols := data.Dims()
	for r := 0; r < rows && !nonzero; r++ {
		for c := 0; c < cols; c++ {
			if data.At(r, c) != 0 {
				nonzero = true
				break
			}
		}
	}
	assert.True(t, nonzero)
}

func TestSampleDiscrete(t *testing.T) {
	n := testNetwork(t)
	require.NoError(t, n.GenerateDiscreteParameters(0, 2, 3, rand.NewSource(1)))

	data, err := n.SampleData(50, rand.NewSource(1))
	require.NoError(t, err)
	rows, _ := data.Dims()
	require.Equal(t, 50, rows)
	for r := 0; r < rows; r++ {
		for c, v := range n.Vertices() {
			lvl := int(data.At(r, c))
			assert.GreaterOrEqual(t, lvl, 0)
			assert.Less(t, lvl, len(v.Levels))
		}
	}
}

func TestSampleDeterministicWithSeed(t *testing.T) {
	n := testNetwork(t)
	require.NoError(t, n.GenerateDiscreteParameters(0, 2, 2, rand.NewSource(5)))

	a, err := n.SampleData(20, rand.NewSource(9))
	require.NoError(t, err)
	b, err := n.SampleData(20, rand.NewSource(9))
	require.NoError(t, err)
	assert.Equal(t, a.RawMatrix().Data, b.RawMatrix().Data)
}

func TestSampleWithoutParameters(t *testing.T) {
	n := testNetwork(t)
	_, err := n.SampleData(5, nil)
	assert.Error(t, err)

	_, err = n.SampleData(0, nil)
	assert.Error(t, err)
}

func TestLevelName(t *testing.T) {
	n := testNetwork(t)
	setLevels(t, n, []string{"low", "high"})

	name, err := n.LevelName("A", 1)
	require.NoError(t, err)
	assert.Equal(t, "high", name)

	_, err = n.LevelName("A", 2)
	assert.Error(t, err)
	_, err = n.LevelName("Z", 0)
	assert.Error(t, err)
}
