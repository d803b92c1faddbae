package models

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// newRand wraps a source into a *rand.Rand, falling back to a time-seeded
// source when none is given.
func newRand(src rand.Source) *rand.Rand {
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return rand.New(src)
}

// ConditionalProbabilityTable holds the distribution of a discrete variable
// given its discrete parents. Array has one dimension per parent (in Parents
// order, extent = that parent's level count) plus a final dimension over the
// variable's own levels.
type ConditionalProbabilityTable struct {
	Parents []string
	Levels  []string
	Array   *Tensor

	cumsum *Tensor
	scaled bool
}

// NewConditionalProbabilityTable returns a zero-filled CPT for a variable
// with the given levels and parent level counts.
func NewConditionalProbabilityTable(parents []string, levels []string, parentLevelCounts []int) *ConditionalProbabilityTable {
	shape := append(append([]int(nil), parentLevelCounts...), len(levels))
	return &ConditionalProbabilityTable{
		Parents: append([]string(nil), parents...),
		Levels:  append([]string(nil), levels...),
		Array:   NewTensor(shape...),
	}
}

// RescaleProbabilities normalizes every row of the table: rows that sum to
// zero become uniform, NaN and +Inf entries are clamped, each row is scaled
// to sum to one, and cumulative sums are cached for sampling.
func (cpt *ConditionalProbabilityTable) RescaleProbabilities() {
	if cpt.Array == nil || len(cpt.Array.Shape) == 0 {
		return
	}
	rowLen := cpt.Array.Shape[len(cpt.Array.Shape)-1]
	if rowLen == 0 {
		return
	}
	cpt.cumsum = cpt.Array.Clone()
	data := cpt.Array.Data
	for start := 0; start < len(data); start += rowLen {
		row := data[start : start+rowLen]
		sum := 0.0
		for i, v := range row {
			if math.IsNaN(v) {
				v = 1e-8
				row[i] = v
			} else if math.IsInf(v, 1) {
				v = 1 - 1e-8
				row[i] = v
			}
			sum += v
		}
		if sum == 0 {
			for i := range row {
				row[i] = 1
			}
			sum = float64(rowLen)
		}
		acc := 0.0
		for i := range row {
			row[i] /= sum
			acc += row[i]
			cpt.cumsum.Data[start+i] = acc
		}
	}
	cpt.scaled = true
}

// SampleParameters fills the table with draws from a symmetric dirichlet
// distribution and rescales it. alpha is the total concentration; values at
// or below zero select the default of 20.
func (cpt *ConditionalProbabilityTable) SampleParameters(alpha float64, src rand.Source) {
	if alpha <= 0 {
		alpha = 20.0
	}
	nLevels := len(cpt.Levels)
	if nLevels == 0 || cpt.Array == nil {
		return
	}
	parentConfigs := cpt.Array.Size() / nLevels
	alphaNorm := math.Max(0.01, alpha/float64(parentConfigs*nLevels))
	concentration := make([]float64, nLevels)
	for i := range concentration {
		concentration[i] = alphaNorm
	}
	dir := distmv.NewDirichlet(concentration, src)
	for start := 0; start < len(cpt.Array.Data); start += nLevels {
		dir.Rand(cpt.Array.Data[start : start+nLevels])
	}
	cpt.RescaleProbabilities()
}

// Sample draws a level index given the parent level indices (in Parents
// order) and a uniform variate in [0, 1).
func (cpt *ConditionalProbabilityTable) Sample(parentLevels []int, u float64) (int, error) {
	if !cpt.scaled {
		return 0, fmt.Errorf("CPT not scaled; call RescaleProbabilities before sampling")
	}
	if len(parentLevels) != len(cpt.Array.Shape)-1 {
		return 0, fmt.Errorf("got %d parent levels, CPT has %d parent dimensions", len(parentLevels), len(cpt.Array.Shape)-1)
	}
	rowLen := cpt.Array.Shape[len(cpt.Array.Shape)-1]
	idx := append(append([]int(nil), parentLevels...), 0)
	start := cpt.cumsum.offset(idx)
	row := cpt.cumsum.Data[start : start+rowLen]
	for i, c := range row {
		if u < c {
			return i, nil
		}
	}
	return rowLen - 1, nil
}

// ConditionalProbabilityDistribution is a linear-gaussian model for a
// continuous variable: value = parent values · Weights + Normal(Mean, Std).
type ConditionalProbabilityDistribution struct {
	Parents []string
	Mean    float64
	Std     float64
	Weights []float64
}

// NewConditionalProbabilityDistribution returns a CPD with zero weights for
// the given parents.
func NewConditionalProbabilityDistribution(parents []string, mean, std float64) *ConditionalProbabilityDistribution {
	return &ConditionalProbabilityDistribution{
		Parents: append([]string(nil), parents...),
		Mean:    mean,
		Std:     std,
		Weights: make([]float64, len(parents)),
	}
}

// SampleParameters draws each parent weight uniformly from the candidate
// set. A nil candidate set selects the default {-2, -0.5, 0.5, 2}.
func (cpd *ConditionalProbabilityDistribution) SampleParameters(possibleWeights []float64, src rand.Source) {
	if len(possibleWeights) == 0 {
		possibleWeights = []float64{-2.0, -0.5, 0.5, 2.0}
	}
	rng := newRand(src)
	cpd.Weights = make([]float64, len(cpd.Parents))
	for i := range cpd.Weights {
		cpd.Weights[i] = possibleWeights[rng.Intn(len(possibleWeights))]
	}
}

// Sample draws one value given the parent values (in Parents order).
func (cpd *ConditionalProbabilityDistribution) Sample(parentValues []float64, src rand.Source) (float64, error) {
	if len(parentValues) != len(cpd.Weights) {
		return 0, fmt.Errorf("got %d parent values, CPD has %d weights", len(parentValues), len(cpd.Weights))
	}
	noise := distuv.Normal{Mu: cpd.Mean, Sigma: cpd.Std, Src: src}
	value := 0.0
	if cpd.Std > 0 {
		value = noise.Rand()
	} else {
		value = cpd.Mean
	}
	for i, pv := range parentValues {
		value += cpd.Weights[i] * pv
	}
	return value, nil
}
