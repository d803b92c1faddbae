package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestRemoveNodes(t *testing.T) {
	n := testNetwork(t)
	require.NoError(t, n.GenerateDiscreteParameters(0, 2, 2, rand.NewSource(1)))

	require.NoError(t, n.RemoveNodes([]string{"C"}))
	assert.Equal(t, []string{"A", "B", "D"}, n.Names())

	b, err := n.Vertex("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, n.Parents("B"))
	assert.Equal(t, []string{"D"}, b.CPT.Parents)
	// B's CPT lost the C axis: (2,2,2) -> (2,2).
	assert.Equal(t, []int{2, 2}, b.CPT.Array.Shape)
	require.NoError(t, n.Validate())

	assert.Error(t, n.RemoveNodes([]string{"Z"}))
}

func TestRemoveNodesContinuous(t *testing.T) {
	n := testNetwork(t)
	n.GenerateContinuousParameters([]float64{1}, 0, rand.NewSource(1))

	require.NoError(t, n.RemoveNodes([]string{"D"}))
	b, err := n.Vertex("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, b.CPD.Parents)
	assert.Len(t, b.CPD.Weights, 1)
	require.NoError(t, n.Validate())
}

func TestMutilate(t *testing.T) {
	n := testNetwork(t)
	setLevels(t, n, []string{"0", "1"})
	require.NoError(t, n.GenerateDiscreteParameters(0, 2, 2, rand.NewSource(1)))

	mutilated, err := n.Mutilate("C", "1")
	require.NoError(t, err)

	// The source network is untouched.
	assert.Equal(t, []string{"A", "B", "C", "D"}, n.Names())

	// Only C and its descendants survive.
	assert.Equal(t, []string{"B", "C"}, mutilated.Names())
	_, err = mutilated.Vertex("D")
	assert.Error(t, err)
	_, err = mutilated.Vertex("A")
	assert.Error(t, err)

	c, err := mutilated.Vertex("C")
	require.NoError(t, err)
	assert.Empty(t, mutilated.Parents("C"))
	assert.Empty(t, c.CPT.Parents)
	assert.Equal(t, []float64{0, 1}, c.CPT.Array.Data)

	b, err := mutilated.Vertex("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, mutilated.Parents("B"))
	assert.Equal(t, []int{2, 2}, b.CPT.Array.Shape)

	// Sampling the intervened vertex always yields the forced level.
	data, err := mutilated.SampleData(100, rand.NewSource(2))
	require.NoError(t, err)
	col := 1 // vertices are (B, C); C is column 1
	for r := 0; r < 100; r++ {
		assert.Equal(t, 1.0, data.At(r, col))
	}
	require.NoError(t, mutilated.Validate())
}

func TestMutilateErrors(t *testing.T) {
	n := testNetwork(t)
	setLevels(t, n, []string{"0", "1"})

	_, err := n.Mutilate("Z", "0")
	assert.Error(t, err)

	// No CPT yet.
	_, err = n.Mutilate("C", "0")
	assert.Error(t, err)

	require.NoError(t, n.GenerateDiscreteParameters(0, 2, 2, rand.NewSource(1)))
	_, err = n.Mutilate("C", "nope")
	assert.Error(t, err)
}
