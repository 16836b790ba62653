// Package engine - Capability interfaces for pluggable training backends.
//
// A backend engine owns gradient computation and, for partitioned setups,
// optimizer state. Precision plugins depend only on the narrow contracts
// below, never on a concrete engine library, so they stay testable with a
// double standing in for the real backend.
package engine

import (
	"github.com/weave-ml/go-train/tensors"
)

// Engine is the backward-pass capability of a training backend.
//
// Backward propagates gradients from the loss tensor into whatever gradient
// storage the engine manages. Extra positional arguments are passed through
// to the backend untouched; their meaning is backend-specific.
type Engine interface {
	Backward(loss *tensors.Tensor, args ...any) error
}

// Optimizer is the step capability of a training backend's optimizer.
//
// Step applies one parameter update and returns whatever the backend's step
// produces (commonly nil, sometimes a loss re-evaluation). Arguments are
// backend-specific and passed through unchanged by callers such as the
// precision plugins.
type Optimizer interface {
	Step(args ...any) (any, error)
}

// GradZeroer is implemented by optimizers that can clear gradient buffers
// between steps.
type GradZeroer interface {
	ZeroGrad()
}

// GradSource is implemented by engines and optimizers that expose their
// parameters. Mixed-precision bookkeeping uses it to unscale gradients and
// detect overflow before a step.
type GradSource interface {
	Parameters() []*Parameter
}
