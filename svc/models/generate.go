package models

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// GenerateDiscreteParameters gives every vertex a dirichlet-sampled CPT.
// Vertices without levels get a level count drawn uniformly from
// [minLevels, maxLevels] (defaulting to 2); existing levels are kept.
func (n *Network) GenerateDiscreteParameters(alpha float64, minLevels, maxLevels int, src rand.Source) error {
	if minLevels < 2 {
		minLevels = 2
	}
	if maxLevels < minLevels {
		maxLevels = minLevels
	}
	rng := newRand(src)
	for _, v := range n.vertices {
		if len(v.Levels) == 0 {
			count := minLevels + rng.Intn(maxLevels-minLevels+1)
			v.Levels = make([]string, count)
			for i := range v.Levels {
				v.Levels[i] = strconv.Itoa(i)
			}
		}
	}
	for _, v := range n.vertices {
		counts, err := n.parentLevelCounts(v.Name)
		if err != nil {
			return err
		}
		cpt := NewConditionalProbabilityTable(n.parents[v.Name], v.Levels, counts)
		cpt.SampleParameters(alpha, src)
		v.CPT = cpt
		v.CPD = nil
		v.Raw = nil
		v.Type = VariableDiscrete
	}
	return nil
}

func (n *Network) parentLevelCounts(name string) ([]int, error) {
	ps := n.parents[name]
	counts := make([]int, len(ps))
	for i, p := range ps {
		pv, err := n.Vertex(p)
		if err != nil {
			return nil, err
		}
		if len(pv.Levels) == 0 {
			return nil, fmt.Errorf("parent %q of %q has no levels", p, name)
		}
		counts[i] = len(pv.Levels)
	}
	return counts, nil
}

// GenerateContinuousParameters gives every vertex a linear-gaussian CPD with
// weights drawn from possibleWeights (nil selects the default candidate
// set), zero mean and the given noise std.
func (n *Network) GenerateContinuousParameters(possibleWeights []float64, std float64, src rand.Source) {
	for _, v := range n.vertices {
		cpd := NewConditionalProbabilityDistribution(n.parents[v.Name], 0, std)
		cpd.SampleParameters(possibleWeights, src)
		v.CPD = cpd
		v.CPT = nil
		v.Raw = nil
		v.Type = VariableContinuous
	}
}

// SampleData forward-samples the network: rows observations, one column per
// vertex in insertion order. Discrete vertices yield level indices as
// floats, continuous vertices their sampled values. Every vertex must carry
// parameters.
func (n *Network) SampleData(rows int, src rand.Source) (*mat.Dense, error) {
	if rows <= 0 {
		return nil, fmt.Errorf("rows must be positive, got %d", rows)
	}
	if len(n.vertices) == 0 {
		return nil, fmt.Errorf("network has no vertices")
	}
	rng := newRand(src)
	data := mat.NewDense(rows, len(n.vertices), nil)
	for _, name := range n.TopologicalOrder() {
		v := n.vertices[n.index[name]]
		col := n.index[name]
		ps := n.parents[name]
		switch {
		case v.CPT != nil:
			for r := 0; r < rows; r++ {
				parentLevels := make([]int, len(ps))
				for i, p := range ps {
					parentLevels[i] = int(data.At(r, n.index[p]))
				}
				lvl, err := v.CPT.Sample(parentLevels, rng.Float64())
				if err != nil {
					return nil, fmt.Errorf("sampling %q: %w", name, err)
				}
				data.Set(r, col, float64(lvl))
			}
		case v.CPD != nil:
			for r := 0; r < rows; r++ {
				parentValues := make([]float64, len(ps))
				for i, p := range ps {
					parentValues[i] = data.At(r, n.index[p])
				}
				val, err := v.CPD.Sample(parentValues, rng)
				if err != nil {
					return nil, fmt.Errorf("sampling %q: %w", name, err)
				}
				data.Set(r, col, val)
			}
		default:
			return nil, fmt.Errorf("vertex %q has no parameters; generate or load them first", name)
		}
	}
	return data, nil
}

// LevelName maps a sampled level index back to the vertex's level label.
func (n *Network) LevelName(name string, level int) (string, error) {
	v, err := n.Vertex(name)
	if err != nil {
		return "", err
	}
	if level < 0 || level >= len(v.Levels) {
		return "", fmt.Errorf("level %d out of range for %q (%d levels)", level, name, len(v.Levels))
	}
	return v.Levels[level], nil
}
