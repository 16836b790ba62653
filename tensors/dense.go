// Package tensors - gorgonia interop for the wide representations.
package tensors

import (
	"github.com/pkg/errors"
	gt "gorgonia.org/tensor"

	"github.com/weave-ml/go-train/dtype"
)

// Dense bridges a tensor to a gorgonia *tensor.Dense sharing no memory with
// the receiver. Only the wide representations map onto gorgonia dtypes; the
// half-width formats have no gorgonia equivalent and must be converted to
// Float32 first.
//
// Returns:
// - *gt.Dense: A dense gorgonia tensor with copied values.
// - error: An error if the representation is half-width.
func (t *Tensor) Dense() (*gt.Dense, error) {
	switch t.dt {
	case dtype.Float32:
		backing := make([]float32, len(t.f32))
		copy(backing, t.f32)
		return gt.New(gt.WithShape(t.shape...), gt.WithBacking(backing)), nil
	case dtype.Float64:
		backing := make([]float64, len(t.f64))
		copy(backing, t.f64)
		return gt.New(gt.WithShape(t.shape...), gt.WithBacking(backing)), nil
	default:
		return nil, errors.Errorf("tensors: no gorgonia dtype for %s, convert to float32 first", t.dt)
	}
}

// FromDense copies a gorgonia dense tensor into a new Tensor. Float32 and
// Float64 backings are supported.
func FromDense(d *gt.Dense) (*Tensor, error) {
	shape := []int(d.Shape())
	switch data := d.Data().(type) {
	case []float32:
		return FromFloat32(data, shape...)
	case []float64:
		t, err := New(dtype.Float64, shape...)
		if err != nil {
			return nil, err
		}
		if len(t.f64) != len(data) {
			return nil, errors.Errorf("tensors: dense shape %v does not cover %d values", shape, len(data))
		}
		copy(t.f64, data)
		return t, nil
	case float32:
		return FromFloat32([]float32{data}, shape...)
	case float64:
		t, err := New(dtype.Float64, shape...)
		if err != nil {
			return nil, err
		}
		t.f64[0] = data
		return t, nil
	default:
		return nil, errors.Errorf("tensors: unsupported dense backing %T", d.Data())
	}
}
