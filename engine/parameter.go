package engine

import (
	"github.com/pkg/errors"

	"github.com/weave-ml/go-train/dtype"
	"github.com/weave-ml/go-train/tensors"
)

// Parameter is a trainable value with a full-precision master copy and a
// float32 gradient buffer. The master stays Float32 regardless of the
// precision the forward pass runs in; updates always apply to the master.
type Parameter struct {
	Name  string
	Value *tensors.Tensor
	Grad  []float32
}

// NewParameter creates a parameter from initial float32 values.
//
// Arguments:
// - name: Identifier used in logs and lookups.
// - data: Initial values, row-major.
// - shape: Tensor dimensions covering the data.
//
// Returns:
// - *Parameter: The parameter with a zeroed gradient buffer.
// - error: An error if the shape does not cover the data.
func NewParameter(name string, data []float32, shape ...int) (*Parameter, error) {
	v, err := tensors.FromFloat32(data, shape...)
	if err != nil {
		return nil, errors.Wrapf(err, "parameter %s", name)
	}
	return &Parameter{
		Name:  name,
		Value: v,
		Grad:  make([]float32, v.Len()),
	}, nil
}

// ZeroGrad clears the gradient buffer.
func (p *Parameter) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// Cast returns the parameter value in the requested representation. The
// master copy is untouched; a matching representation returns it directly.
func (p *Parameter) Cast(dt dtype.DType) (*tensors.Tensor, error) {
	return p.Value.Convert(dt)
}
