// Package linear - A least-squares linear model used to exercise the
// precision plugins end to end on a local engine.
package linear

import (
	"github.com/pkg/errors"

	"github.com/weave-ml/go-train/dtype"
	"github.com/weave-ml/go-train/engine"
	"github.com/weave-ml/go-train/tensors"
)

// Model fits y = X·w + b by mean squared error. The forward matrix math runs
// through gorgonia dense tensors; gradients are closed-form.
type Model struct {
	Weight *engine.Parameter
	Bias   *engine.Parameter

	targets []float32

	// Cached by Forward for the closed-form backward.
	residuals []float32
	lastLoss  float32
	lastBatch *tensors.Tensor
}

// New creates a model with zero weights for inputs of width in.
//
// Arguments:
// - in: Number of input features.
// - targets: Regression targets, one per dataset row.
//
// Returns:
// - *Model: The model.
// - error: An error if parameter allocation fails.
func New(in int, targets []float32) (*Model, error) {
	w, err := engine.NewParameter("weight", make([]float32, in), in)
	if err != nil {
		return nil, err
	}
	b, err := engine.NewParameter("bias", make([]float32, 1), 1)
	if err != nil {
		return nil, err
	}
	return &Model{
		Weight:  w,
		Bias:    b,
		targets: append([]float32(nil), targets...),
	}, nil
}

// Params returns the trainable parameters.
func (m *Model) Params() []*engine.Parameter {
	return []*engine.Parameter{m.Weight, m.Bias}
}

// Forward computes the mean squared error over the batch and returns it as a
// scalar tensor. The batch arrives in whatever representation the active
// precision plugin produced; the matrix math widens to float32.
func (m *Model) Forward(batch *tensors.Tensor) (*tensors.Tensor, error) {
	shape := batch.Shape()
	if len(shape) != 2 {
		return nil, errors.Errorf("linear: batch must be 2-D, got shape %v", shape)
	}
	n, in := shape[0], shape[1]
	if n != len(m.targets) {
		return nil, errors.Errorf("linear: batch has %d rows, targets have %d", n, len(m.targets))
	}
	if in != m.Weight.Value.Len() {
		return nil, errors.Errorf("linear: batch width %d does not match weight size %d", in, m.Weight.Value.Len())
	}

	x32, err := batch.Convert(dtype.Float32)
	if err != nil {
		return nil, err
	}
	xd, err := x32.Dense()
	if err != nil {
		return nil, err
	}
	wd, err := m.Weight.Value.Dense()
	if err != nil {
		return nil, err
	}
	pd, err := xd.MatVecMul(wd)
	if err != nil {
		return nil, errors.Wrap(err, "linear: forward matmul")
	}
	pred, ok := pd.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("linear: unexpected prediction backing %T", pd.Data())
	}

	bias := m.Bias.Value.At(0)
	m.residuals = make([]float32, n)
	var sum float32
	for i := range pred {
		r := pred[i] + bias - m.targets[i]
		m.residuals[i] = r
		sum += r * r
	}
	m.lastLoss = sum / float32(n)
	m.lastBatch = x32
	return tensors.Scalar(m.lastLoss), nil
}

// Backward is the engine.BackwardFunc for this model. The incoming loss
// tensor seeds the pass: a loss scaled by k (as mixed precision does) yields
// gradients scaled by k, which is exactly how a scaled loss reaches a real
// backend. Gradients accumulate into the parameter buffers.
func (m *Model) Backward(loss *tensors.Tensor, params []*engine.Parameter, args ...any) error {
	if m.residuals == nil || m.lastBatch == nil {
		return errors.New("linear: backward called before forward")
	}
	seed := float32(1)
	if m.lastLoss != 0 {
		seed = loss.At(0) / m.lastLoss
	}

	n := len(m.residuals)
	x := m.lastBatch.Float32Data()
	in := m.Weight.Value.Len()
	scale := seed * 2 / float32(n)
	for i, r := range m.residuals {
		for j := 0; j < in; j++ {
			m.Weight.Grad[j] += scale * r * x[i*in+j]
		}
		m.Bias.Grad[0] += scale * r
	}
	return nil
}
