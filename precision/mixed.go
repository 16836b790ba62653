package precision

import (
	"github.com/chewxy/math32"

	"github.com/weave-ml/go-train/engine"
	"github.com/weave-ml/go-train/tensors"
)

// Loss scaling defaults. Scale growth and backoff follow the usual amp
// schedule: halve on overflow, double after a long enough run of finite
// steps.
const (
	DefaultLossScale      = 65536.0
	DefaultGrowthFactor   = 2.0
	DefaultBackoffFactor  = 0.5
	DefaultGrowthInterval = 2000

	minLossScale = 1.0
)

// LossScaler tracks the dynamic loss scale for half-precision training.
// Small gradients underflow in float16, so the loss is multiplied by the
// scale before backward and gradients divided by it before the step.
type LossScaler struct {
	scale          float32
	growthFactor   float32
	backoffFactor  float32
	growthInterval int
	goodSteps      int
}

// NewLossScaler creates a scaler with the default amp schedule. A zero or
// negative initial scale falls back to DefaultLossScale.
func NewLossScaler(initial float32) *LossScaler {
	if initial <= 0 {
		initial = DefaultLossScale
	}
	return &LossScaler{
		scale:          initial,
		growthFactor:   DefaultGrowthFactor,
		backoffFactor:  DefaultBackoffFactor,
		growthInterval: DefaultGrowthInterval,
	}
}

// Scale returns the current loss scale.
func (s *LossScaler) Scale() float32 { return s.scale }

// update adjusts the scale after a step: backoff on overflow, growth after
// growthInterval consecutive finite steps.
func (s *LossScaler) update(overflow bool) {
	if overflow {
		s.scale *= s.backoffFactor
		if s.scale < minLossScale {
			s.scale = minLossScale
		}
		s.goodSteps = 0
		return
	}
	s.goodSteps++
	if s.goodSteps >= s.growthInterval {
		s.scale *= s.growthFactor
		s.goodSteps = 0
	}
}

// MixedPrecision is the amp-style plugin: half-width inputs, scaled loss, and
// gradient unscaling with overflow-driven step skipping. Unlike
// EnginePrecision it keeps the scaling bookkeeping on this side, which suits
// backends that compute raw gradients but leave loss scaling to the caller.
type MixedPrecision struct {
	precision Precision
	scaler    *LossScaler
}

// mixedSupported is the closed set of modes mixed precision accepts; full
// precision needs no scaling and belongs to FullPrecision.
var mixedSupported = []Precision{PrecisionHalf, PrecisionBF16}

// NewMixedPrecision creates a mixed-precision plugin.
//
// Arguments:
// - p: Requested mode; 16 or "bf16" in any accepted spelling.
// - scaler: Loss scaler; nil gets a default dynamic scaler.
//
// Returns:
// - *MixedPrecision: The plugin.
// - error: *UnsupportedPrecisionError for modes outside {16, bf16}.
func NewMixedPrecision(p any, scaler *LossScaler) (*MixedPrecision, error) {
	mode, err := ParsePrecision(p)
	if err != nil {
		return nil, err
	}
	if mode == PrecisionFull {
		return nil, &UnsupportedPrecisionError{Value: p, Supported: mixedSupported}
	}
	if scaler == nil {
		scaler = NewLossScaler(0)
	}
	// bfloat16 keeps float32's exponent range, so underflow protection is
	// unnecessary; pin the scale at 1 and the schedule degenerates to a no-op.
	if mode == PrecisionBF16 {
		scaler.scale = 1
		scaler.growthFactor = 1
		scaler.backoffFactor = 1
	}
	return &MixedPrecision{precision: mode, scaler: scaler}, nil
}

// Precision returns the validated mode.
func (m *MixedPrecision) Precision() Precision { return m.precision }

// Scaler exposes the loss scaler, mainly for inspection in logs and tests.
func (m *MixedPrecision) Scaler() *LossScaler { return m.scaler }

// ConvertInput casts a tensor to the half-width representation of the mode.
func (m *MixedPrecision) ConvertInput(t *tensors.Tensor) (*tensors.Tensor, error) {
	return convertInput(m.precision, t)
}

// Backward scales the loss and delegates to the engine. The caller's loss
// tensor is never mutated; the engine sees a scaled copy.
func (m *MixedPrecision) Backward(loss *tensors.Tensor, eng engine.Engine, args ...any) error {
	scaled := loss.Clone().Scale(m.scaler.Scale())
	return eng.Backward(scaled, args...)
}

// OptimizerStep unscales gradients, skips the step when any gradient is
// non-finite, and otherwise delegates to the optimizer. Skipped steps back
// the scale off; completed ones feed the growth schedule.
//
// Gradient access needs the optimizer to expose its parameters via
// engine.GradSource; without it the step is delegated as-is.
func (m *MixedPrecision) OptimizerStep(opt engine.Optimizer, args ...any) (any, error) {
	gs, ok := opt.(engine.GradSource)
	if !ok {
		return opt.Step(args...)
	}

	inv := 1 / m.scaler.Scale()
	overflow := false
	for _, p := range gs.Parameters() {
		for i, g := range p.Grad {
			g *= inv
			p.Grad[i] = g
			if math32.IsNaN(g) || math32.IsInf(g, 0) {
				overflow = true
			}
		}
	}

	if overflow {
		m.scaler.update(true)
		if z, ok := opt.(engine.GradZeroer); ok {
			z.ZeroGrad()
		}
		return nil, nil
	}
	res, err := opt.Step(args...)
	if err == nil {
		m.scaler.update(false)
	}
	return res, err
}
