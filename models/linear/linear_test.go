package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-ml/go-train/dtype"
	"github.com/weave-ml/go-train/tensors"
)

func TestForwardLoss(t *testing.T) {
	// Two samples, one feature, zero-initialized model: loss is mean(y^2).
	model, err := New(1, []float32{1, 3})
	require.NoError(t, err)

	batch, err := tensors.FromFloat32([]float32{0.5, 1}, 2, 1)
	require.NoError(t, err)

	loss, err := model.Forward(batch)
	require.NoError(t, err)
	assert.InDelta(t, (1.0+9.0)/2, loss.At(0), 1e-6)
}

func TestForwardValidatesShape(t *testing.T) {
	model, err := New(2, []float32{1})
	require.NoError(t, err)

	flat, err := tensors.FromFloat32([]float32{1, 2}, 2)
	require.NoError(t, err)
	_, err = model.Forward(flat)
	assert.Error(t, err)

	wrongRows, err := tensors.FromFloat32([]float32{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	_, err = model.Forward(wrongRows)
	assert.Error(t, err, "row count must match targets")
}

func TestForwardAcceptsHalfWidthBatch(t *testing.T) {
	model, err := New(1, []float32{2})
	require.NoError(t, err)
	model.Weight.Value.Set(0, 1)

	batch, err := tensors.FromFloat32([]float32{1.5}, 1, 1)
	require.NoError(t, err)
	half, err := batch.Convert(dtype.Float16)
	require.NoError(t, err)

	loss, err := model.Forward(half)
	require.NoError(t, err)
	// pred = 1.5, target = 2 -> mse = 0.25.
	assert.InDelta(t, 0.25, loss.At(0), 1e-6)
}

func TestBackwardGradients(t *testing.T) {
	// One sample: pred = w*x + b, loss = (pred - y)^2.
	// With w=0, b=0, x=2, y=1: residual -1, dL/dw = 2*r*x = -4, dL/db = 2*r = -2.
	model, err := New(1, []float32{1})
	require.NoError(t, err)

	batch, err := tensors.FromFloat32([]float32{2}, 1, 1)
	require.NoError(t, err)

	loss, err := model.Forward(batch)
	require.NoError(t, err)

	require.NoError(t, model.Backward(loss, model.Params()))
	assert.InDelta(t, -4, model.Weight.Grad[0], 1e-6)
	assert.InDelta(t, -2, model.Bias.Grad[0], 1e-6)
}

func TestBackwardScalesWithSeed(t *testing.T) {
	model, err := New(1, []float32{1})
	require.NoError(t, err)

	batch, err := tensors.FromFloat32([]float32{2}, 1, 1)
	require.NoError(t, err)
	loss, err := model.Forward(batch)
	require.NoError(t, err)

	scaled := loss.Clone().Scale(128)
	require.NoError(t, model.Backward(scaled, model.Params()))
	assert.InDelta(t, -4*128, model.Weight.Grad[0], 1e-3)
	assert.InDelta(t, -2*128, model.Bias.Grad[0], 1e-3)
}

func TestBackwardBeforeForward(t *testing.T) {
	model, err := New(1, []float32{1})
	require.NoError(t, err)
	assert.Error(t, model.Backward(tensors.Scalar(1), model.Params()))
}

func TestBackwardAccumulates(t *testing.T) {
	model, err := New(1, []float32{1})
	require.NoError(t, err)

	batch, err := tensors.FromFloat32([]float32{2}, 1, 1)
	require.NoError(t, err)
	loss, err := model.Forward(batch)
	require.NoError(t, err)

	require.NoError(t, model.Backward(loss, model.Params()))
	require.NoError(t, model.Backward(loss, model.Params()))
	assert.InDelta(t, -8, model.Weight.Grad[0], 1e-6)
}
