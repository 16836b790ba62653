package train

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/weave-ml/go-train/engine"
	"github.com/weave-ml/go-train/precision"
	"github.com/weave-ml/go-train/profiler"
	"github.com/weave-ml/go-train/tensors"
)

// ForwardFunc runs the model on a (precision-converted) batch and returns the
// loss as a scalar tensor.
type ForwardFunc func(batch *tensors.Tensor) (*tensors.Tensor, error)

// BatchFunc produces the input batch for a given step.
type BatchFunc func(step int) (*tensors.Tensor, error)

// Trainer drives training steps through a precision plugin: it never touches
// dtypes, scaling or optimizer state itself.
type Trainer struct {
	plugin   precision.Plugin
	eng      engine.Engine
	opt      engine.Optimizer
	forward  ForwardFunc
	log      *slog.Logger
	profiler *profiler.StepProfiler
	logEvery int
}

// Step runs one training step: convert the batch, forward, delegate backward
// and the optimizer step through the plugin.
//
// Arguments:
// - ctx: Context checked before the step starts.
// - batch: Input batch in any floating-point representation.
//
// Returns:
// - float32: The (unscaled) loss value.
// - error: The first error from forward, backward or the step, unchanged.
func (t *Trainer) Step(ctx context.Context, batch *tensors.Tensor) (float32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if z, ok := t.opt.(engine.GradZeroer); ok {
		z.ZeroGrad()
	}

	var converted *tensors.Tensor
	err := t.profiler.Time("convert", func() error {
		var convErr error
		converted, convErr = t.plugin.ConvertInput(batch)
		return convErr
	})
	if err != nil {
		return 0, err
	}

	var loss *tensors.Tensor
	err = t.profiler.Time("forward", func() error {
		var fwdErr error
		loss, fwdErr = t.forward(converted)
		return fwdErr
	})
	if err != nil {
		return 0, err
	}
	if loss == nil || loss.Len() != 1 {
		return 0, errors.New("train: forward must return a scalar loss tensor")
	}
	lossValue := loss.At(0)

	err = t.profiler.Time("backward", func() error {
		return t.plugin.Backward(loss, t.eng)
	})
	if err != nil {
		return 0, err
	}

	err = t.profiler.Time("step", func() error {
		_, stepErr := t.plugin.OptimizerStep(t.opt)
		return stepErr
	})
	if err != nil {
		return 0, err
	}
	return lossValue, nil
}

// Run executes steps sequentially, logging progress, and returns the final
// loss.
func (t *Trainer) Run(ctx context.Context, steps int, next BatchFunc) (float32, error) {
	var last float32
	start := time.Now()
	for step := 0; step < steps; step++ {
		batch, err := next(step)
		if err != nil {
			return last, errors.Wrapf(err, "batch for step %d", step)
		}
		last, err = t.Step(ctx, batch)
		if err != nil {
			return last, errors.Wrapf(err, "step %d", step)
		}
		if t.logEvery > 0 && (step+1)%t.logEvery == 0 {
			t.log.Info("training progress",
				"step", step+1,
				"loss", last,
				"precision", string(t.plugin.Precision()),
				"elapsed", time.Since(start),
			)
		}
	}
	return last, nil
}

// Profiler exposes the step profiler for reporting.
func (t *Trainer) Profiler() *profiler.StepProfiler { return t.profiler }
