package models

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestArrayMarshalKnownBytes(t *testing.T) {
	a := &Array{Shape: []uint64{2, 3}, FlatArray: []byte{0xAA, 0xBB}}
	b, err := a.Marshal()
	require.NoError(t, err)

	// field 1 packed varints [2 3], field 2 bytes.
	want := []byte{
		0x0A, 0x02, 0x02, 0x03,
		0x12, 0x02, 0xAA, 0xBB,
	}
	assert.Equal(t, want, b)
}

func TestArrayUnpackedShapeAccepted(t *testing.T) {
	// The same shape written as two unpacked varint fields.
	var b []byte
	b = protowire.AppendTag(b, arrayFieldShape, protowire.VarintType)
	b = protowire.AppendVarint(b, 2)
	b = protowire.AppendTag(b, arrayFieldShape, protowire.VarintType)
	b = protowire.AppendVarint(b, 3)

	var a Array
	require.NoError(t, a.Unmarshal(b))
	assert.Equal(t, []uint64{2, 3}, a.Shape)
}

func TestDAGRoundTrip(t *testing.T) {
	dag := &DAG{
		Nodes: []*Node{
			{
				Name:         "A",
				VariableType: NodeTypeDiscrete,
				Levels:       []string{"low", "high"},
				CpdArray:     &Array{Shape: []uint64{2}, FlatArray: payload(16)},
			},
			{
				Name:         "B",
				VariableType: NodeTypeDiscrete,
				Levels:       []string{"low", "high"},
				Parents:      []string{"A"},
				CpdArray:     &Array{Shape: []uint64{2, 2}, FlatArray: payload(32)},
			},
		},
	}

	b, err := dag.Marshal()
	require.NoError(t, err)

	var got DAG
	require.NoError(t, got.Unmarshal(b))

	require.Len(t, got.Nodes, 2)
	assert.Equal(t, dag.Nodes[0], got.Nodes[0])
	assert.Equal(t, dag.Nodes[1], got.Nodes[1])
	assert.Equal(t, []string{"A"}, got.Nodes[1].Parents)
	assert.True(t, bytes.Equal(payload(32), got.Nodes[1].CpdArray.FlatArray))
}

func TestContinuousNodeEmptyLevels(t *testing.T) {
	dag := &DAG{Nodes: []*Node{{
		Name:         "X",
		VariableType: NodeTypeContinuous,
		CpdArray:     &Array{Shape: []uint64{3}, FlatArray: payload(24)},
	}}}

	b, err := dag.Marshal()
	require.NoError(t, err)

	var got DAG
	require.NoError(t, got.Unmarshal(b))
	require.Len(t, got.Nodes, 1)
	assert.Empty(t, got.Nodes[0].Levels)
	assert.Equal(t, NodeTypeContinuous, got.Nodes[0].VariableType)
}

func TestUnknownEnumOrdinalSurvives(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, nodeFieldName, protowire.BytesType)
	b = protowire.AppendString(b, "weird")
	b = protowire.AppendTag(b, nodeFieldVariableType, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)

	var n Node
	require.NoError(t, n.Unmarshal(b))
	assert.Equal(t, NodeType(7), n.VariableType)
	assert.False(t, n.VariableType.Known())

	// Re-encoding carries the ordinal through unchanged.
	out, err := n.Marshal()
	require.NoError(t, err)
	var again Node
	require.NoError(t, again.Unmarshal(out))
	assert.Equal(t, NodeType(7), again.VariableType)
}

func TestUnknownFieldsIgnored(t *testing.T) {
	n := &Node{Name: "A", VariableType: NodeTypeMixed}
	b, err := n.Marshal()
	require.NoError(t, err)

	// A future field this schema knows nothing about.
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "from the future")
	b = protowire.AppendTag(b, 100, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)

	var got Node
	require.NoError(t, got.Unmarshal(b))
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, NodeTypeMixed, got.VariableType)
}

func TestMalformedBytesRejected(t *testing.T) {
	// Length-delimited field claiming more bytes than exist.
	bad := []byte{0x0A, 0x10, 0x01}
	var d DAG
	assert.Error(t, d.Unmarshal(bad))

	var a Array
	assert.Error(t, a.Unmarshal([]byte{0x08}))
}

func TestZeroValuesOmitted(t *testing.T) {
	b, err := (&Node{}).Marshal()
	require.NoError(t, err)
	assert.Empty(t, b)

	b, err = (&DAG{}).Marshal()
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestNodeTypeString(t *testing.T) {
	assert.Equal(t, "DISCRETE", NodeTypeDiscrete.String())
	assert.Equal(t, "CONTINUOUS", NodeTypeContinuous.String())
	assert.Equal(t, "MIXED", NodeTypeMixed.String())
	assert.Equal(t, "NODE_TYPE(9)", NodeType(9).String())
}
