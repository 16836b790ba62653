// Package tensors - Dtype-aware tensors for precision-managed training.
package tensors

import (
	"github.com/pkg/errors"

	"github.com/weave-ml/go-train/dtype"
)

// Tensor is a contiguous row-major numeric array with an explicit
// floating-point representation.
//
// Storage is discriminated by the dtype: the wide types keep native Go slices,
// the half-width types keep raw 16-bit encodings. A tensor never changes its
// representation in place; Convert produces a new tensor (or returns the
// receiver when nothing would change).
type Tensor struct {
	dt    dtype.DType
	shape []int

	f32 []float32
	f64 []float64
	u16 []uint16 // Float16 or BFloat16 bit patterns, per dt.
}

// New creates a zero-filled tensor with the given representation and shape.
//
// Arguments:
// - dt: Element representation.
// - shape: Tensor dimensions; an empty shape yields a scalar tensor of one element.
//
// Returns:
// - *Tensor: The allocated tensor.
// - error: An error if the dtype is invalid or a dimension is negative.
func New(dt dtype.DType, shape ...int) (*Tensor, error) {
	if !dt.Valid() {
		return nil, errors.Errorf("tensors: invalid dtype %s", dt)
	}
	n := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, errors.Errorf("tensors: negative dimension %d", dim)
		}
		n *= dim
	}
	t := &Tensor{dt: dt, shape: append([]int(nil), shape...)}
	switch dt {
	case dtype.Float32:
		t.f32 = make([]float32, n)
	case dtype.Float64:
		t.f64 = make([]float64, n)
	default:
		t.u16 = make([]uint16, n)
	}
	return t, nil
}

// FromFloat32 creates a Float32 tensor backed by a copy of data.
//
// Arguments:
// - data: Element values in row-major order.
// - shape: Tensor dimensions; the element count must match len(data).
//
// Returns:
// - *Tensor: The new tensor.
// - error: An error if the shape does not cover the data.
func FromFloat32(data []float32, shape ...int) (*Tensor, error) {
	t, err := New(dtype.Float32, shape...)
	if err != nil {
		return nil, err
	}
	if len(t.f32) != len(data) {
		return nil, errors.Errorf("tensors: shape %v holds %d elements, got %d values", shape, len(t.f32), len(data))
	}
	copy(t.f32, data)
	return t, nil
}

// Scalar creates a single-element Float32 tensor. Loss values are passed
// around as scalar tensors.
func Scalar(v float32) *Tensor {
	t, _ := FromFloat32([]float32{v})
	return t
}

// DType returns the element representation.
func (t *Tensor) DType() dtype.DType { return t.dt }

// Shape returns the tensor dimensions. The returned slice must not be mutated.
func (t *Tensor) Shape() []int { return t.shape }

// Len returns the total number of elements.
func (t *Tensor) Len() int {
	switch t.dt {
	case dtype.Float32:
		return len(t.f32)
	case dtype.Float64:
		return len(t.f64)
	default:
		return len(t.u16)
	}
}

// At returns the element at flat index i, widened to float32.
func (t *Tensor) At(i int) float32 {
	switch t.dt {
	case dtype.Float32:
		return t.f32[i]
	case dtype.Float64:
		return float32(t.f64[i])
	case dtype.Float16:
		return dtype.F16ToFloat32(t.u16[i])
	default:
		return dtype.BF16ToFloat32(t.u16[i])
	}
}

// Set stores v at flat index i, narrowed to the tensor's representation.
func (t *Tensor) Set(i int, v float32) {
	switch t.dt {
	case dtype.Float32:
		t.f32[i] = v
	case dtype.Float64:
		t.f64[i] = float64(v)
	case dtype.Float16:
		t.u16[i] = dtype.F16FromFloat32(v)
	default:
		t.u16[i] = dtype.BF16FromFloat32(v)
	}
}

// Float32s materializes the elements as a fresh float32 slice, widening or
// narrowing as the representation requires.
func (t *Tensor) Float32s() []float32 {
	out := make([]float32, t.Len())
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

// Raw16 exposes the underlying 16-bit encodings of a half-width tensor.
// It returns nil for Float32 and Float64 tensors.
func (t *Tensor) Raw16() []uint16 { return t.u16 }

// Float32Data exposes the underlying float32 storage of a Float32 tensor
// without copying. It returns nil for any other representation.
func (t *Tensor) Float32Data() []float32 {
	if t.dt != dtype.Float32 {
		return nil
	}
	return t.f32
}

// Convert returns a tensor with the same shape and values in the dst
// representation. Values are converted numerically (standard narrowing and
// widening), never reinterpreted bit-for-bit.
//
// When the receiver already has the dst representation the receiver itself is
// returned and no allocation happens.
func (t *Tensor) Convert(dst dtype.DType) (*Tensor, error) {
	if !dst.Valid() {
		return nil, errors.Errorf("tensors: invalid target dtype %s", dst)
	}
	if t.dt == dst {
		return t, nil
	}
	out, err := New(dst, t.shape...)
	if err != nil {
		return nil, err
	}
	// Float64 sources keep their full width when widening to Float64 is not
	// involved; all other pairs round-trip through float32, which is exact for
	// every half-width value.
	if t.dt == dtype.Float64 || dst == dtype.Float64 {
		for i := 0; i < t.Len(); i++ {
			out.setF64(i, t.atF64(i))
		}
		return out, nil
	}
	for i := 0; i < t.Len(); i++ {
		out.Set(i, t.At(i))
	}
	return out, nil
}

func (t *Tensor) atF64(i int) float64 {
	if t.dt == dtype.Float64 {
		return t.f64[i]
	}
	return float64(t.At(i))
}

func (t *Tensor) setF64(i int, v float64) {
	if t.dt == dtype.Float64 {
		t.f64[i] = v
		return
	}
	t.Set(i, float32(v))
}

// Clone returns a deep copy with the same representation and values.
func (t *Tensor) Clone() *Tensor {
	out, _ := New(t.dt, t.shape...)
	copy(out.f32, t.f32)
	copy(out.f64, t.f64)
	copy(out.u16, t.u16)
	return out
}

// Scale multiplies every element by f in place and returns the receiver.
// Used by loss scaling; the multiply happens in the tensor's own
// representation so half-width tensors round after each element.
func (t *Tensor) Scale(f float32) *Tensor {
	for i := 0; i < t.Len(); i++ {
		t.Set(i, t.At(i)*f)
	}
	return t
}
