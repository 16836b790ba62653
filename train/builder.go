package train

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/weave-ml/go-train/engine"
	"github.com/weave-ml/go-train/precision"
	"github.com/weave-ml/go-train/profiler"
)

// Builder assembles a Trainer with a fluent API. The first error sticks and
// short-circuits the remaining calls.
type Builder struct {
	plugin   precision.Plugin
	eng      engine.Engine
	opt      engine.Optimizer
	forward  ForwardFunc
	log      *slog.Logger
	logEvery int
	err      error
}

// NewBuilder creates an empty trainer builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig selects the precision plugin and logging cadence from a
// validated configuration.
//
// Arguments:
// - cfg: The training configuration.
//
// Returns:
// - *Builder: The builder.
func (b *Builder) WithConfig(cfg Config) *Builder {
	if b.HasError() {
		return b
	}
	if err := cfg.Validate(); err != nil {
		b.err = err
		return b
	}
	plugin, err := cfg.Plugin()
	if err != nil {
		b.err = err
		return b
	}
	b.plugin = plugin
	b.logEvery = cfg.LogEvery
	return b
}

// WithPrecision sets the precision plugin directly.
func (b *Builder) WithPrecision(p precision.Plugin) *Builder {
	if b.HasError() {
		return b
	}
	b.plugin = p
	return b
}

// WithEngine sets the backend engine.
func (b *Builder) WithEngine(eng engine.Engine) *Builder {
	if b.HasError() {
		return b
	}
	b.eng = eng
	return b
}

// WithOptimizer sets the optimizer the plugin will delegate steps to.
func (b *Builder) WithOptimizer(opt engine.Optimizer) *Builder {
	if b.HasError() {
		return b
	}
	b.opt = opt
	return b
}

// WithForward sets the model forward routine.
func (b *Builder) WithForward(fn ForwardFunc) *Builder {
	if b.HasError() {
		return b
	}
	b.forward = fn
	return b
}

// WithLogger sets the structured logger used for progress lines.
func (b *Builder) WithLogger(log *slog.Logger) *Builder {
	if b.HasError() {
		return b
	}
	b.log = log
	return b
}

// HasError reports whether a previous builder call failed.
func (b *Builder) HasError() bool { return b.err != nil }

// Build validates the assembly and returns the trainer.
//
// Returns:
// - *Trainer: The ready trainer.
// - error: The first builder error, or an error naming the missing part.
func (b *Builder) Build() (*Trainer, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.plugin == nil {
		return nil, errors.New("train: precision plugin is required")
	}
	if b.eng == nil {
		return nil, errors.New("train: engine is required")
	}
	if b.opt == nil {
		return nil, errors.New("train: optimizer is required")
	}
	if b.forward == nil {
		return nil, errors.New("train: forward routine is required")
	}
	log := b.log
	if log == nil {
		log = slog.Default()
	}
	return &Trainer{
		plugin:   b.plugin,
		eng:      b.eng,
		opt:      b.opt,
		forward:  b.forward,
		log:      log,
		profiler: profiler.NewStepProfiler(),
		logEvery: b.logEvery,
	}, nil
}
