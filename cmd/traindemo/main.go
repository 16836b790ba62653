package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/weave-ml/go-train/engine"
	"github.com/weave-ml/go-train/models/linear"
	"github.com/weave-ml/go-train/tensors"
	"github.com/weave-ml/go-train/train"
)

const (
	featureCount = 2
	sampleCount  = 64
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to training configuration file")
		precMode   = flag.String("precision", "32", "Precision mode: 16, 32 or bf16")
		mixed      = flag.Bool("mixed", false, "Use amp-style loss scaling instead of engine delegation")
		steps      = flag.Int("steps", 200, "Number of training steps")
		lr         = flag.Float64("lr", 0.05, "Learning rate")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var cfg train.Config
	if *configFile != "" {
		var err error
		cfg, err = train.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	} else {
		cfg = train.DefaultConfig()
		cfg.Precision = *precMode
		cfg.Mixed = *mixed
		cfg.Steps = *steps
		cfg.LearningRate = float32(*lr)
		cfg.LogEvery = *steps / 10
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}

	// Synthetic regression task: y = 2*x0 - 3*x1 + 0.5.
	features := make([]float32, sampleCount*featureCount)
	targets := make([]float32, sampleCount)
	for i := 0; i < sampleCount; i++ {
		x0 := float32(i%8) / 8
		x1 := float32(i/8) / 8
		features[i*featureCount] = x0
		features[i*featureCount+1] = x1
		targets[i] = 2*x0 - 3*x1 + 0.5
	}
	batch, err := tensors.FromFloat32(features, sampleCount, featureCount)
	if err != nil {
		log.Fatalf("Failed to build dataset: %v", err)
	}

	model, err := linear.New(featureCount, targets)
	if err != nil {
		log.Fatalf("Failed to create model: %v", err)
	}
	eng, err := engine.NewLocalEngine(model.Params(), model.Backward)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	opt, err := train.NewSGD(model.Params(), cfg.LearningRate, 0.9, 0)
	if err != nil {
		log.Fatalf("Failed to create optimizer: %v", err)
	}

	trainer, err := train.NewBuilder().
		WithConfig(cfg).
		WithEngine(eng).
		WithOptimizer(opt).
		WithForward(model.Forward).
		WithLogger(logger).
		Build()
	if err != nil {
		log.Fatalf("Failed to build trainer: %v", err)
	}

	loss, err := trainer.Run(context.Background(), cfg.Steps, func(int) (*tensors.Tensor, error) {
		return batch, nil
	})
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	logger.Info("training finished",
		"loss", loss,
		"weights", model.Weight.Value.Float32s(),
		"bias", model.Bias.Value.At(0),
	)
	fmt.Print(trainer.Profiler().Report())
}
