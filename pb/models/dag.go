// Package models holds the wire messages for the Bayesian network exchange
// format. Field numbers are part of the binary compatibility contract and
// must not be renumbered:
//
//	DAG:   nodes=1
//	Node:  name=1 variable_type=2 levels=3 parents=4 cpd_array=5
//	Array: shape=1 flat_array=2
//
// The codec is written directly against the protobuf wire format (see
// codec.go) so the messages stay plain structs.
package models

import "fmt"

// NodeType labels the kind of random variable a Node represents.
type NodeType int32

const (
	NodeTypeDiscrete   NodeType = 0
	NodeTypeContinuous NodeType = 1
	NodeTypeMixed      NodeType = 2
)

// Known reports whether t is one of the ordinals this schema defines.
// Unknown ordinals still decode and re-encode unchanged; consumers decide
// what to do with them.
func (t NodeType) Known() bool {
	return t >= NodeTypeDiscrete && t <= NodeTypeMixed
}

func (t NodeType) String() string {
	switch t {
	case NodeTypeDiscrete:
		return "DISCRETE"
	case NodeTypeContinuous:
		return "CONTINUOUS"
	case NodeTypeMixed:
		return "MIXED"
	default:
		return fmt.Sprintf("NODE_TYPE(%d)", int32(t))
	}
}

// Array is a dense multi-dimensional tensor packed for transport: the extent
// of each dimension, outermost first, and the raw element bytes in row-major
// order. The element type and byte width are an out-of-band contract between
// producer and consumer; everything in this module writes and expects
// little-endian IEEE-754 float64.
type Array struct {
	Shape     []uint64
	FlatArray []byte
}

// Node is one random variable in the network.
type Node struct {
	Name         string
	VariableType NodeType
	// Levels names the discrete states of the variable, in order. Only
	// meaningful for discrete (or the discrete part of mixed) variables.
	Levels []string
	// Parents references the Name of other nodes in the same DAG, each one a
	// direct dependency edge parent -> this node.
	Parents  []string
	CpdArray *Array
}

// DAG is the whole network: an ordered sequence of nodes. The schema itself
// enforces neither name uniqueness nor acyclicity; those are consumer
// contracts (see svc/models.Validate).
type DAG struct {
	Nodes []*Node
}
