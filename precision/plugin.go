package precision

import (
	"github.com/weave-ml/go-train/engine"
	"github.com/weave-ml/go-train/tensors"
)

// Plugin is the uniform interface a training loop uses regardless of which
// precision backend is active.
type Plugin interface {
	// Precision returns the validated mode the plugin was built with.
	Precision() Precision

	// ConvertInput casts a tensor to the representation the mode dictates.
	// A tensor already in that representation is returned unchanged.
	ConvertInput(t *tensors.Tensor) (*tensors.Tensor, error)

	// Backward forwards back-propagation to the backend engine, passing the
	// loss tensor and extra arguments through unchanged.
	Backward(loss *tensors.Tensor, eng engine.Engine, args ...any) error

	// OptimizerStep forwards the step to the optimizer and returns its result
	// untouched.
	OptimizerStep(opt engine.Optimizer, args ...any) (any, error)
}

// convertInput is the shared cast used by every plugin: a fixed lookup from
// the stored mode to the target representation, then a value conversion that
// short-circuits when the tensor already matches.
func convertInput(p Precision, t *tensors.Tensor) (*tensors.Tensor, error) {
	return t.Convert(p.DType())
}

// FullPrecision is the default plugin: single-precision inputs and plain
// delegation with no scaling or bookkeeping.
type FullPrecision struct{}

// NewFullPrecision creates the fp32 passthrough plugin.
func NewFullPrecision() *FullPrecision { return &FullPrecision{} }

// Precision returns PrecisionFull.
func (*FullPrecision) Precision() Precision { return PrecisionFull }

// ConvertInput casts to float32, returning the input unchanged when it
// already is float32.
func (*FullPrecision) ConvertInput(t *tensors.Tensor) (*tensors.Tensor, error) {
	return convertInput(PrecisionFull, t)
}

// Backward delegates to the engine's backward routine.
func (*FullPrecision) Backward(loss *tensors.Tensor, eng engine.Engine, args ...any) error {
	return eng.Backward(loss, args...)
}

// OptimizerStep delegates to the optimizer's step routine.
func (*FullPrecision) OptimizerStep(opt engine.Optimizer, args ...any) (any, error) {
	return opt.Step(args...)
}
