// Package train - Configuration and training-loop support around the
// precision plugins.
package train

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weave-ml/go-train/precision"
)

// Config controls a training session.
type Config struct {
	// Precision selects the floating-point mode: "16", "32" or "bf16".
	Precision string `json:"precision" yaml:"precision"`

	// Mixed enables amp-style loss scaling instead of delegating all
	// precision handling to the backend.
	Mixed bool `json:"mixed" yaml:"mixed"`

	// LossScale is the initial loss scale for mixed precision; 0 uses the
	// default dynamic scale.
	LossScale float32 `json:"loss_scale" yaml:"loss_scale"`

	// LearningRate is the optimizer step size.
	LearningRate float32 `json:"learning_rate" yaml:"learning_rate"`

	// Steps is the number of training steps to run.
	Steps int `json:"steps" yaml:"steps"`

	// LogEvery emits a progress line every N steps; 0 disables progress logs.
	LogEvery int `json:"log_every" yaml:"log_every"`
}

// Validate checks the configuration for values no session can run with.
func (c Config) Validate() error {
	if _, err := precision.ParsePrecision(c.Precision); err != nil {
		return err
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %g", c.LearningRate)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.LossScale < 0 {
		return fmt.Errorf("loss_scale must not be negative, got %g", c.LossScale)
	}
	return nil
}

// DefaultConfig returns a production-ready configuration: full precision,
// no scaling, modest learning rate.
func DefaultConfig() Config {
	return Config{
		Precision:    string(precision.PrecisionFull),
		LearningRate: 0.01,
		Steps:        1000,
		LogEvery:     100,
	}
}

// DevelopmentConfig returns a configuration for quick local iteration:
// short run, chatty logging.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Steps = 50
	cfg.LogEvery = 10
	return cfg
}

// LoadConfig reads and validates a JSON configuration file.
//
// Arguments:
// - path: Path to the configuration file.
//
// Returns:
// - Config: The decoded configuration.
// - error: An error if the file cannot be read, decoded or validated.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Plugin builds the precision plugin the configuration asks for.
func (c Config) Plugin() (precision.Plugin, error) {
	p, err := precision.ParsePrecision(c.Precision)
	if err != nil {
		return nil, err
	}
	if c.Mixed && p != precision.PrecisionFull {
		return precision.NewMixedPrecision(p, precision.NewLossScaler(c.LossScale))
	}
	if p == precision.PrecisionFull {
		return precision.NewFullPrecision(), nil
	}
	return precision.NewEnginePrecision(p)
}
