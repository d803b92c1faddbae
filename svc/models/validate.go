package models

import (
	"fmt"

	"go.uber.org/multierr"

	pbmodels "github.com/ysongK/BayNet/pb/models"
)

// ValidateProto runs the consumer-side contract checks the wire format
// assumes but cannot enforce: unique node names, resolvable parent
// references, acyclicity, levels consistent with CPT shapes, and the
// shape-product-times-element-width byte contract. All violations are
// reported, not just the first.
func ValidateProto(dag *pbmodels.DAG) error {
	var errs error

	seen := make(map[string]bool, len(dag.Nodes))
	for _, node := range dag.Nodes {
		if node.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("node with empty name"))
			continue
		}
		if seen[node.Name] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate node name %q", node.Name))
		}
		seen[node.Name] = true
	}

	parents := make(map[string][]string, len(dag.Nodes))
	for _, node := range dag.Nodes {
		for _, p := range node.Parents {
			if !seen[p] {
				errs = multierr.Append(errs, fmt.Errorf("node %q references undefined parent %q", node.Name, p))
				continue
			}
			parents[node.Name] = append(parents[node.Name], p)
		}
	}

	if cycle := findCycle(dag, parents); cycle != "" {
		errs = multierr.Append(errs, fmt.Errorf("dependency cycle through %q", cycle))
	}

	for _, node := range dag.Nodes {
		errs = multierr.Append(errs, validateNodeData(node))
	}
	return errs
}

func validateNodeData(node *pbmodels.Node) error {
	var errs error

	if node.VariableType == pbmodels.NodeTypeDiscrete && node.CpdArray != nil && len(node.Levels) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("discrete node %q has probability data but no levels", node.Name))
	}

	a := node.CpdArray
	if a == nil {
		return errs
	}

	size := uint64(1)
	for _, dim := range a.Shape {
		size *= dim
	}
	if len(a.Shape) > 0 {
		if want := size * ElementWidth; uint64(len(a.FlatArray)) != want {
			errs = multierr.Append(errs, fmt.Errorf(
				"node %q: array payload is %d bytes, shape %v requires %d",
				node.Name, len(a.FlatArray), a.Shape, want))
		}
	} else if len(a.FlatArray)%ElementWidth != 0 {
		errs = multierr.Append(errs, fmt.Errorf(
			"node %q: shapeless array payload of %d bytes is not a multiple of the element width %d",
			node.Name, len(a.FlatArray), ElementWidth))
	}

	if node.VariableType == pbmodels.NodeTypeDiscrete && len(node.Levels) > 0 && len(a.Shape) > 0 {
		if last := a.Shape[len(a.Shape)-1]; last != uint64(len(node.Levels)) {
			errs = multierr.Append(errs, fmt.Errorf(
				"node %q: CPT's last dimension is %d but the node has %d levels",
				node.Name, last, len(node.Levels)))
		}
		if len(a.Shape) != len(node.Parents)+1 {
			errs = multierr.Append(errs, fmt.Errorf(
				"node %q: CPT has %d dimensions for %d parents",
				node.Name, len(a.Shape), len(node.Parents)))
		}
	}
	return errs
}

// findCycle returns the name of some node on a dependency cycle, or "".
func findCycle(dag *pbmodels.DAG, parents map[string][]string) string {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(dag.Nodes))
	var visit func(name string) string
	visit = func(name string) string {
		color[name] = grey
		for _, p := range parents[name] {
			switch color[p] {
			case grey:
				return p
			case white:
				if hit := visit(p); hit != "" {
					return hit
				}
			}
		}
		color[name] = black
		return ""
	}
	for _, node := range dag.Nodes {
		if color[node.Name] == white {
			if hit := visit(node.Name); hit != "" {
				return hit
			}
		}
	}
	return ""
}

// Validate checks the network's parameters against its structure: CPT and
// CPD parent lists must match the graph, CPT shapes must match parent and
// own level counts, CPD weights must cover every parent.
func (n *Network) Validate() error {
	var errs error
	for _, v := range n.vertices {
		ps := n.parents[v.Name]
		if v.CPT != nil {
			if !stringsEqual(v.CPT.Parents, ps) {
				errs = multierr.Append(errs, fmt.Errorf(
					"vertex %q: CPT parents %v disagree with graph parents %v", v.Name, v.CPT.Parents, ps))
			}
			if v.CPT.Array != nil {
				shape := v.CPT.Array.Shape
				if len(shape) != len(ps)+1 {
					errs = multierr.Append(errs, fmt.Errorf(
						"vertex %q: CPT has %d dimensions for %d parents", v.Name, len(shape), len(ps)))
				} else {
					for i, p := range ps {
						pv, err := n.Vertex(p)
						if err == nil && len(pv.Levels) > 0 && shape[i] != len(pv.Levels) {
							errs = multierr.Append(errs, fmt.Errorf(
								"vertex %q: CPT dimension %d has extent %d but parent %q has %d levels",
								v.Name, i, shape[i], p, len(pv.Levels)))
						}
					}
					if last := shape[len(shape)-1]; last != len(v.Levels) {
						errs = multierr.Append(errs, fmt.Errorf(
							"vertex %q: CPT's last dimension is %d but the vertex has %d levels",
							v.Name, last, len(v.Levels)))
					}
				}
			}
		}
		if v.CPD != nil {
			if !stringsEqual(v.CPD.Parents, ps) {
				errs = multierr.Append(errs, fmt.Errorf(
					"vertex %q: CPD parents %v disagree with graph parents %v", v.Name, v.CPD.Parents, ps))
			}
			if len(v.CPD.Weights) != len(ps) {
				errs = multierr.Append(errs, fmt.Errorf(
					"vertex %q: CPD has %d weights for %d parents", v.Name, len(v.CPD.Weights), len(ps)))
			}
		}
	}
	return errs
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
