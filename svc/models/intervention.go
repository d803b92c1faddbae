package models

import (
	"fmt"
	"sort"
)

// RemoveNodes drops the named vertices from the network in place. Surviving
// vertices lose the dropped names from their parent lists; CPTs are
// marginalized over the dropped parent axes by uniform averaging, CPD
// weights for dropped parents are discarded.
func (n *Network) RemoveNodes(names []string) error {
	removed := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := n.index[name]; !ok {
			return fmt.Errorf("vertex %q not found", name)
		}
		removed[name] = true
	}

	var kept []*Vertex
	index := make(map[string]int)
	parents := make(map[string][]string)
	children := make(map[string][]string)
	for _, v := range n.vertices {
		if removed[v.Name] {
			continue
		}
		keptParents := pruneVertexParents(v, n.parents[v.Name], removed)
		index[v.Name] = len(kept)
		kept = append(kept, v)
		parents[v.Name] = keptParents
	}
	for child, ps := range parents {
		for _, p := range ps {
			children[p] = append(children[p], child)
		}
	}
	n.vertices = kept
	n.index = index
	n.parents = parents
	n.children = children
	return nil
}

// Mutilate applies the intervention do(name = level): the vertex loses its
// parents and gets a point-mass CPT on the level, only the vertex and its
// descendants survive, and surviving CPTs are marginalized over removed
// parent axes. Returns the mutilated network; the receiver is unchanged.
func (n *Network) Mutilate(name, level string) (*Network, error) {
	target, err := n.Vertex(name)
	if err != nil {
		return nil, err
	}
	if target.CPT == nil {
		return nil, fmt.Errorf("vertex %q has no CPT; only discrete vertices can be intervened on", name)
	}
	levelIdx := -1
	for i, lvl := range target.Levels {
		if lvl == level {
			levelIdx = i
			break
		}
	}
	if levelIdx < 0 {
		return nil, fmt.Errorf("vertex %q has no level %q", name, level)
	}

	desc, err := n.Descendants(name)
	if err != nil {
		return nil, err
	}
	keep := map[string]bool{name: true}
	for _, d := range desc {
		keep[d] = true
	}

	out := NewNetwork()
	for _, v := range n.vertices {
		if !keep[v.Name] {
			continue
		}
		nv, err := out.AddVertex(v.Name)
		if err != nil {
			return nil, err
		}
		*nv = *copyVertex(v)
	}
	for _, v := range out.vertices {
		removed := make(map[string]bool)
		var keptParents []string
		for _, p := range n.parents[v.Name] {
			if keep[p] && v.Name != name {
				keptParents = append(keptParents, p)
			} else {
				removed[p] = true
			}
		}
		pruneVertexParents(v, n.parents[v.Name], removed)
		for _, p := range keptParents {
			if err := out.AddEdge(p, v.Name); err != nil {
				return nil, err
			}
		}
	}

	// Point mass on the intervened level.
	intervened, err := out.Vertex(name)
	if err != nil {
		return nil, err
	}
	cpt := NewConditionalProbabilityTable(nil, intervened.Levels, nil)
	cpt.Array.Set(1, levelIdx)
	cpt.RescaleProbabilities()
	intervened.CPT = cpt
	return out, nil
}

// pruneVertexParents rewrites a vertex's parameters after some of its
// parents were removed, returning the surviving parent list in order. CPT
// axes for removed parents are averaged out; CPD weights are dropped.
func pruneVertexParents(v *Vertex, oldParents []string, removed map[string]bool) []string {
	var kept []string
	var removedAxes []int
	for i, p := range oldParents {
		if removed[p] {
			removedAxes = append(removedAxes, i)
		} else {
			kept = append(kept, p)
		}
	}
	if len(removedAxes) == 0 {
		return kept
	}
	if v.CPT != nil && v.CPT.Array != nil {
		arr := v.CPT.Array
		// Drop higher axes first so the remaining indices stay valid.
		sort.Sort(sort.Reverse(sort.IntSlice(removedAxes)))
		for _, axis := range removedAxes {
			if axis < len(arr.Shape)-1 {
				arr = arr.MeanAxis(axis)
			}
		}
		v.CPT.Array = arr
		v.CPT.Parents = append([]string(nil), kept...)
		v.CPT.RescaleProbabilities()
	}
	if v.CPD != nil {
		weights := make([]float64, 0, len(kept))
		for i, p := range oldParents {
			if !removed[p] && i < len(v.CPD.Weights) {
				weights = append(weights, v.CPD.Weights[i])
			}
		}
		v.CPD.Weights = weights
		v.CPD.Parents = append([]string(nil), kept...)
	}
	return kept
}

func copyVertex(v *Vertex) *Vertex {
	nv := *v
	nv.Levels = append([]string(nil), v.Levels...)
	if v.CPT != nil {
		cpt := *v.CPT
		cpt.Parents = append([]string(nil), v.CPT.Parents...)
		cpt.Levels = append([]string(nil), v.CPT.Levels...)
		if v.CPT.Array != nil {
			cpt.Array = v.CPT.Array.Clone()
		}
		if v.CPT.cumsum != nil {
			cpt.cumsum = v.CPT.cumsum.Clone()
		}
		nv.CPT = &cpt
	}
	if v.CPD != nil {
		cpd := *v.CPD
		cpd.Parents = append([]string(nil), v.CPD.Parents...)
		cpd.Weights = append([]float64(nil), v.CPD.Weights...)
		nv.CPD = &cpd
	}
	if v.Raw != nil {
		nv.Raw = v.Raw.Clone()
	}
	return &nv
}
