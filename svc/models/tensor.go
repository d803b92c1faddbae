package models

import (
	"encoding/binary"
	"fmt"
	"math"

	pbmodels "github.com/ysongK/BayNet/pb/models"
)

// ElementWidth is the byte width of one tensor element on the wire. The
// schema leaves the element encoding to an out-of-band convention; this
// module fixes it as little-endian IEEE-754 float64, row-major with the last
// dimension fastest, which is what the original producers of this format
// emit.
const ElementWidth = 8

// Tensor is a dense multi-dimensional float64 array. Data is row-major:
// incrementing the last index moves one element forward.
type Tensor struct {
	Shape []int
	Data  []float64
}

// NewTensor returns a zero-filled tensor with the given shape. A tensor with
// no dimensions holds a single scalar.
func NewTensor(shape ...int) *Tensor {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	return &Tensor{
		Shape: append([]int(nil), shape...),
		Data:  make([]float64, size),
	}
}

// Size is the number of elements, the product of all dimensions.
func (t *Tensor) Size() int {
	size := 1
	for _, dim := range t.Shape {
		size *= dim
	}
	return size
}

func (t *Tensor) strides() []int {
	strides := make([]int, len(t.Shape))
	stride := 1
	for i := len(t.Shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= t.Shape[i]
	}
	return strides
}

func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("tensor index has %d dimensions, shape has %d", len(idx), len(t.Shape)))
	}
	off := 0
	for i, stride := range t.strides() {
		if idx[i] < 0 || idx[i] >= t.Shape[i] {
			panic(fmt.Sprintf("tensor index %d out of range for dimension %d (extent %d)", idx[i], i, t.Shape[i]))
		}
		off += idx[i] * stride
	}
	return off
}

// At returns the element at the given multi-index.
func (t *Tensor) At(idx ...int) float64 {
	return t.Data[t.offset(idx)]
}

// Set stores v at the given multi-index.
func (t *Tensor) Set(v float64, idx ...int) {
	t.Data[t.offset(idx)] = v
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		Shape: append([]int(nil), t.Shape...),
		Data:  append([]float64(nil), t.Data...),
	}
}

// MeanAxis averages the tensor over one axis, dropping that dimension.
func (t *Tensor) MeanAxis(axis int) *Tensor {
	if axis < 0 || axis >= len(t.Shape) {
		panic(fmt.Sprintf("tensor axis %d out of range for %d dimensions", axis, len(t.Shape)))
	}
	outShape := make([]int, 0, len(t.Shape)-1)
	outShape = append(outShape, t.Shape[:axis]...)
	outShape = append(outShape, t.Shape[axis+1:]...)
	out := NewTensor(outShape...)

	strides := t.strides()
	extent := t.Shape[axis]
	// outer iterates dimensions before axis, inner the ones after.
	outer := 1
	for _, dim := range t.Shape[:axis] {
		outer *= dim
	}
	inner := strides[axis]
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			sum := 0.0
			base := o*strides[axis]*extent + i
			for k := 0; k < extent; k++ {
				sum += t.Data[base+k*strides[axis]]
			}
			out.Data[o*inner+i] = sum / float64(extent)
		}
	}
	return out
}

// ToProto packs the tensor for transport.
func (t *Tensor) ToProto() *pbmodels.Array {
	shape := make([]uint64, len(t.Shape))
	for i, dim := range t.Shape {
		shape[i] = uint64(dim)
	}
	flat := make([]byte, len(t.Data)*ElementWidth)
	for i, v := range t.Data {
		binary.LittleEndian.PutUint64(flat[i*ElementWidth:], math.Float64bits(v))
	}
	return &pbmodels.Array{Shape: shape, FlatArray: flat}
}

// TensorFromProto unpacks a wire Array, enforcing the byte-width contract:
// the product of the shape entries times ElementWidth must equal the payload
// length exactly.
func TensorFromProto(a *pbmodels.Array) (*Tensor, error) {
	if a == nil {
		return nil, nil
	}
	shape := make([]int, len(a.Shape))
	size := 1
	for i, dim := range a.Shape {
		shape[i] = int(dim)
		size *= int(dim)
	}
	if len(a.Shape) == 0 {
		// A shapeless array carries however many elements its payload holds,
		// as a flat vector.
		size = len(a.FlatArray) / ElementWidth
		if size > 0 {
			shape = []int{size}
		}
	}
	if want := size * ElementWidth; len(a.FlatArray) != want {
		return nil, fmt.Errorf("array payload is %d bytes, shape %v requires %d", len(a.FlatArray), a.Shape, want)
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(a.FlatArray[i*ElementWidth:]))
	}
	return &Tensor{Shape: shape, Data: data}, nil
}
