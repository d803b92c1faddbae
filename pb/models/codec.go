package models

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers. These are frozen; see the package comment.
const (
	dagFieldNodes = 1

	nodeFieldName         = 1
	nodeFieldVariableType = 2
	nodeFieldLevels       = 3
	nodeFieldParents      = 4
	nodeFieldCpdArray     = 5

	arrayFieldShape     = 1
	arrayFieldFlatArray = 2
)

// Marshal encodes the DAG in protobuf wire format. Zero values (empty
// strings, empty repeated fields, zero enum, nil messages) are omitted,
// matching proto3 encoding.
func (d *DAG) Marshal() ([]byte, error) {
	var b []byte
	for _, n := range d.Nodes {
		if n == nil {
			return nil, fmt.Errorf("baynet/pb: DAG contains nil node")
		}
		nb, err := n.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, dagFieldNodes, protowire.BytesType)
		b = protowire.AppendBytes(b, nb)
	}
	return b, nil
}

// Unmarshal decodes a DAG, replacing d's contents. Unrecognized fields are
// skipped rather than rejected so newer producers stay readable.
func (d *DAG) Unmarshal(data []byte) error {
	d.Nodes = nil
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("baynet/pb: malformed DAG: %w", protowire.ParseError(n))
		}
		data = data[n:]
		if num == dagFieldNodes && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed DAG.nodes: %w", protowire.ParseError(n))
			}
			data = data[n:]
			node := new(Node)
			if err := node.Unmarshal(raw); err != nil {
				return err
			}
			d.Nodes = append(d.Nodes, node)
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return fmt.Errorf("baynet/pb: malformed DAG field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return nil
}

// Marshal encodes the Node in protobuf wire format.
func (nd *Node) Marshal() ([]byte, error) {
	var b []byte
	if nd.Name != "" {
		b = protowire.AppendTag(b, nodeFieldName, protowire.BytesType)
		b = protowire.AppendString(b, nd.Name)
	}
	if nd.VariableType != 0 {
		b = protowire.AppendTag(b, nodeFieldVariableType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(nd.VariableType))
	}
	for _, lvl := range nd.Levels {
		b = protowire.AppendTag(b, nodeFieldLevels, protowire.BytesType)
		b = protowire.AppendString(b, lvl)
	}
	for _, p := range nd.Parents {
		b = protowire.AppendTag(b, nodeFieldParents, protowire.BytesType)
		b = protowire.AppendString(b, p)
	}
	if nd.CpdArray != nil {
		ab, err := nd.CpdArray.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, nodeFieldCpdArray, protowire.BytesType)
		b = protowire.AppendBytes(b, ab)
	}
	return b, nil
}

// Unmarshal decodes a Node, replacing nd's contents.
func (nd *Node) Unmarshal(data []byte) error {
	*nd = Node{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("baynet/pb: malformed Node: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == nodeFieldName && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Node.name: %w", protowire.ParseError(n))
			}
			data = data[n:]
			nd.Name = s
		case num == nodeFieldVariableType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Node.variable_type: %w", protowire.ParseError(n))
			}
			data = data[n:]
			nd.VariableType = NodeType(int32(v))
		case num == nodeFieldLevels && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Node.levels: %w", protowire.ParseError(n))
			}
			data = data[n:]
			nd.Levels = append(nd.Levels, s)
		case num == nodeFieldParents && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Node.parents: %w", protowire.ParseError(n))
			}
			data = data[n:]
			nd.Parents = append(nd.Parents, s)
		case num == nodeFieldCpdArray && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Node.cpd_array: %w", protowire.ParseError(n))
			}
			data = data[n:]
			arr := new(Array)
			if err := arr.Unmarshal(raw); err != nil {
				return err
			}
			nd.CpdArray = arr
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Node field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

// Marshal encodes the Array in protobuf wire format. shape is emitted packed,
// the standard proto3 encoding for repeated scalars.
func (a *Array) Marshal() ([]byte, error) {
	var b []byte
	if len(a.Shape) > 0 {
		var packed []byte
		for _, dim := range a.Shape {
			packed = protowire.AppendVarint(packed, dim)
		}
		b = protowire.AppendTag(b, arrayFieldShape, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	if len(a.FlatArray) > 0 {
		b = protowire.AppendTag(b, arrayFieldFlatArray, protowire.BytesType)
		b = protowire.AppendBytes(b, a.FlatArray)
	}
	return b, nil
}

// Unmarshal decodes an Array, replacing a's contents. shape is accepted in
// both packed and unpacked form.
func (a *Array) Unmarshal(data []byte) error {
	*a = Array{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("baynet/pb: malformed Array: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == arrayFieldShape && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Array.shape: %w", protowire.ParseError(n))
			}
			data = data[n:]
			for len(packed) > 0 {
				dim, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return fmt.Errorf("baynet/pb: malformed Array.shape entry: %w", protowire.ParseError(n))
				}
				packed = packed[n:]
				a.Shape = append(a.Shape, dim)
			}
		case num == arrayFieldShape && typ == protowire.VarintType:
			dim, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Array.shape: %w", protowire.ParseError(n))
			}
			data = data[n:]
			a.Shape = append(a.Shape, dim)
		case num == arrayFieldFlatArray && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Array.flat_array: %w", protowire.ParseError(n))
			}
			data = data[n:]
			a.FlatArray = append([]byte(nil), raw...)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("baynet/pb: malformed Array field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}
