package precision

import (
	"github.com/weave-ml/go-train/engine"
	"github.com/weave-ml/go-train/tensors"
)

// EnginePrecision delegates all precision handling to an external training
// backend. The backend owns gradient scaling, loss scaling and optimizer
// state; this plugin only validates the requested mode, casts inputs to the
// matching representation, and forwards the backward pass and optimizer step
// to the backend's own implementations.
type EnginePrecision struct {
	precision Precision
}

// NewEnginePrecision creates a backend-delegating plugin for the requested
// mode.
//
// Arguments:
// - p: Requested mode; one of 16, 32, "16", "32", "bf16" or a Precision.
//
// Returns:
// - *EnginePrecision: The plugin holding the validated, immutable mode.
// - error: *UnsupportedPrecisionError if the mode is outside {16, 32, bf16}.
func NewEnginePrecision(p any) (*EnginePrecision, error) {
	mode, err := ParsePrecision(p)
	if err != nil {
		return nil, err
	}
	return &EnginePrecision{precision: mode}, nil
}

// Precision returns the validated mode.
func (e *EnginePrecision) Precision() Precision { return e.precision }

// ConvertInput casts a tensor to the representation the stored mode dictates:
// bf16 -> bfloat16, 16 -> float16, 32 -> float32. A tensor already in the
// target representation is returned unchanged, without a copy.
func (e *EnginePrecision) ConvertInput(t *tensors.Tensor) (*tensors.Tensor, error) {
	return convertInput(e.precision, t)
}

// Backward performs back-propagation using the backend engine.
//
// The loss tensor and any extra arguments are handed to the engine's own
// backward routine unchanged; its error, if any, propagates untouched.
func (e *EnginePrecision) Backward(loss *tensors.Tensor, eng engine.Engine, args ...any) error {
	return eng.Backward(loss, args...)
}

// OptimizerStep forwards the step to the optimizer and returns its result.
// The backend manages optimizer state and step execution internally, so no
// update logic may be applied here.
func (e *EnginePrecision) OptimizerStep(opt engine.Optimizer, args ...any) (any, error) {
	return opt.Step(args...)
}
