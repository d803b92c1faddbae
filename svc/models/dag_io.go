package models

import (
	"fmt"
	"os"

	pbmodels "github.com/ysongK/BayNet/pb/models"
)

// ToProto converts the network into its wire form. Parents are emitted in
// edge insertion order; levels only for discrete vertices; cpd_array only
// when the vertex carries data.
func (n *Network) ToProto() *pbmodels.DAG {
	dag := &pbmodels.DAG{Nodes: make([]*pbmodels.Node, 0, len(n.vertices))}
	for _, v := range n.vertices {
		node := &pbmodels.Node{
			Name:    v.Name,
			Parents: n.Parents(v.Name),
		}
		switch {
		case v.CPT != nil:
			node.VariableType = pbmodels.NodeTypeDiscrete
			node.Levels = append([]string(nil), v.Levels...)
			if v.CPT.Array != nil {
				node.CpdArray = v.CPT.Array.ToProto()
			}
		case v.CPD != nil:
			node.VariableType = pbmodels.NodeTypeContinuous
			weights := &Tensor{Shape: []int{len(v.CPD.Weights)}, Data: v.CPD.Weights}
			node.CpdArray = weights.ToProto()
		default:
			switch v.Type {
			case VariableDiscrete:
				node.VariableType = pbmodels.NodeTypeDiscrete
				node.Levels = append([]string(nil), v.Levels...)
			case VariableContinuous:
				node.VariableType = pbmodels.NodeTypeContinuous
			case VariableMixed:
				node.VariableType = pbmodels.NodeTypeMixed
				node.Levels = append([]string(nil), v.Levels...)
			default:
				node.VariableType = v.rawType
				node.Levels = append([]string(nil), v.Levels...)
			}
			if v.Raw != nil {
				node.CpdArray = v.Raw.ToProto()
			}
		}
		dag.Nodes = append(dag.Nodes, node)
	}
	return dag
}

// NetworkFromProto materializes a network from its wire form: vertices
// first, then the parent edges, then parameters. Discrete CPTs are rescaled
// after loading, matching what producers of this format expect.
func NetworkFromProto(dag *pbmodels.DAG) (*Network, error) {
	n := NewNetwork()
	for _, node := range dag.Nodes {
		if _, err := n.AddVertex(node.Name); err != nil {
			return nil, err
		}
	}
	for _, node := range dag.Nodes {
		for _, p := range node.Parents {
			if err := n.AddEdge(p, node.Name); err != nil {
				return nil, fmt.Errorf("node %q: %w", node.Name, err)
			}
		}
	}
	for _, node := range dag.Nodes {
		v := n.vertices[n.index[node.Name]]
		v.Type = VariableTypeFromProto(node.VariableType)
		if v.Type == VariableUnknown {
			v.rawType = node.VariableType
		}
		switch v.Type {
		case VariableDiscrete:
			v.Levels = append([]string(nil), node.Levels...)
			if node.CpdArray != nil {
				arr, err := TensorFromProto(node.CpdArray)
				if err != nil {
					return nil, fmt.Errorf("node %q: %w", node.Name, err)
				}
				cpt := &ConditionalProbabilityTable{
					Parents: append([]string(nil), node.Parents...),
					Levels:  append([]string(nil), node.Levels...),
					Array:   arr,
				}
				cpt.RescaleProbabilities()
				v.CPT = cpt
			}
		case VariableContinuous:
			if node.CpdArray != nil {
				arr, err := TensorFromProto(node.CpdArray)
				if err != nil {
					return nil, fmt.Errorf("node %q: %w", node.Name, err)
				}
				v.CPD = &ConditionalProbabilityDistribution{
					Parents: append([]string(nil), node.Parents...),
					Mean:    0,
					Std:     1,
					Weights: arr.Data,
				}
			}
		default:
			v.Levels = append([]string(nil), node.Levels...)
			if node.CpdArray != nil {
				arr, err := TensorFromProto(node.CpdArray)
				if err != nil {
					return nil, fmt.Errorf("node %q: %w", node.Name, err)
				}
				v.Raw = arr
			}
		}
	}
	return n, nil
}

// Encode serializes the network to wire bytes.
func (n *Network) Encode() ([]byte, error) {
	return n.ToProto().Marshal()
}

// DecodeNetwork deserializes wire bytes into a network.
func DecodeNetwork(data []byte) (*Network, error) {
	var dag pbmodels.DAG
	if err := dag.Unmarshal(data); err != nil {
		return nil, err
	}
	return NetworkFromProto(&dag)
}

// Save writes the encoded network to a file.
func (n *Network) Save(path string) error {
	data, err := n.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadNetwork reads a network from a file written by Save.
func LoadNetwork(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeNetwork(data)
}
