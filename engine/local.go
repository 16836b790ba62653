package engine

import (
	"github.com/pkg/errors"

	"github.com/weave-ml/go-train/tensors"
)

// BackwardFunc computes gradients for a model's parameters given the loss
// tensor. Implementations write into each parameter's Grad buffer,
// accumulating rather than overwriting, which matches how backends sum
// gradients over micro-batches.
type BackwardFunc func(loss *tensors.Tensor, params []*Parameter, args ...any) error

// LocalEngine is a single-process reference backend. It owns the parameter
// set and delegates the actual gradient math to a caller-supplied routine,
// which keeps it useful both as a test double and as a CPU-only engine for
// small models.
type LocalEngine struct {
	params   []*Parameter
	backward BackwardFunc
}

// NewLocalEngine creates a local engine over params.
//
// Arguments:
// - params: The trainable parameters the engine manages.
// - backward: Gradient routine invoked by Backward. Required.
//
// Returns:
// - *LocalEngine: The engine.
// - error: An error if the backward routine is missing.
func NewLocalEngine(params []*Parameter, backward BackwardFunc) (*LocalEngine, error) {
	if backward == nil {
		return nil, errors.New("engine: backward routine is required")
	}
	return &LocalEngine{params: params, backward: backward}, nil
}

// Backward runs the gradient routine over the managed parameters. The loss
// tensor and any extra arguments are handed through unchanged.
func (e *LocalEngine) Backward(loss *tensors.Tensor, args ...any) error {
	return e.backward(loss, e.params, args...)
}

// Parameters exposes the managed parameter set.
func (e *LocalEngine) Parameters() []*Parameter { return e.params }
