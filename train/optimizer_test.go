package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-ml/go-train/engine"
)

func newParam(t *testing.T, name string, values ...float32) *engine.Parameter {
	t.Helper()
	p, err := engine.NewParameter(name, values, len(values))
	require.NoError(t, err)
	return p
}

func TestNewSGDValidatesLearningRate(t *testing.T) {
	_, err := NewSGD(nil, 0, 0, 0)
	assert.Error(t, err)
	_, err = NewSGD(nil, -0.1, 0, 0)
	assert.Error(t, err)
}

func TestSGDStep(t *testing.T) {
	p := newParam(t, "w", 1, 2)
	p.Grad[0] = 0.5
	p.Grad[1] = -1

	opt, err := NewSGD([]*engine.Parameter{p}, 0.1, 0, 0)
	require.NoError(t, err)

	_, err = opt.Step()
	require.NoError(t, err)
	assert.InDelta(t, 0.95, p.Value.At(0), 1e-6)
	assert.InDelta(t, 2.1, p.Value.At(1), 1e-6)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	p := newParam(t, "w", 0)
	opt, err := NewSGD([]*engine.Parameter{p}, 1, 0.5, 0)
	require.NoError(t, err)

	p.Grad[0] = 1
	_, err = opt.Step()
	require.NoError(t, err)
	assert.InDelta(t, -1, p.Value.At(0), 1e-6)

	// Same gradient again: velocity = 0.5*1 + 1 = 1.5.
	_, err = opt.Step()
	require.NoError(t, err)
	assert.InDelta(t, -2.5, p.Value.At(0), 1e-6)
}

func TestSGDZeroGradAndParameters(t *testing.T) {
	p := newParam(t, "w", 1)
	p.Grad[0] = 3

	opt, err := NewSGD([]*engine.Parameter{p}, 0.1, 0, 0)
	require.NoError(t, err)

	opt.ZeroGrad()
	assert.Equal(t, []float32{0}, p.Grad)
	assert.Equal(t, []*engine.Parameter{p}, opt.Parameters())
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	// Minimize f(w) = (w - 3)^2 with gradient 2(w - 3).
	p := newParam(t, "w", 0)
	opt, err := NewAdam([]*engine.Parameter{p}, 0.1, 0, 0, 0)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		w := p.Value.At(0)
		p.Grad[0] = 2 * (w - 3)
		_, err = opt.Step()
		require.NoError(t, err)
		opt.ZeroGrad()
	}
	assert.InDelta(t, 3, p.Value.At(0), 0.05)
}
