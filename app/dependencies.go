package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/fbenum/binding"
	"github.com/upb/fbenum/config"
	"github.com/upb/fbenum/enum"
	"github.com/upb/fbenum/validation"
	"go.uber.org/zap"
)

// Dependencies holds the wired components of the decoding pipeline.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Fallback adapter built from config.EnumConfig
	Adapter *enum.Adapter

	// Pipeline
	Validator *validation.Validator
	Binder    *binding.Binder
}

// NewDependencies creates and wires up all dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initAdapter(cfg)
	deps.initPipeline(cfg)

	logger.Info("all dependencies initialized successfully",
		zap.String("environment", cfg.Environment))
	return deps, nil
}

// initAdapter builds the configured fallback adapter
func (d *Dependencies) initAdapter(cfg *config.Config) {
	d.Adapter = enum.NewAdapter(cfg.Enum.AdapterOptions(d.Logger.Named("enum"))...)
	d.Logger.Info("fallback adapter initialized",
		zap.String("unknown_name", d.Adapter.UnknownName()),
		zap.Bool("type_casting", d.Adapter.TypeCasting()))
}

// initPipeline initializes the validator and the binder, which applies the
// configured adapter to every decoded payload
func (d *Dependencies) initPipeline(cfg *config.Config) {
	d.Validator = validation.New(d.Logger.Named("validation"))
	d.Binder = binding.New(d.Validator, binding.Config{
		MaxBodyBytes:          cfg.Binding.MaxBodyBytes,
		DisallowUnknownFields: cfg.Binding.DisallowUnknownFields,
		Adapter:               d.Adapter,
	}, d.Logger.Named("binding"))

	d.Logger.Info("decoding pipeline initialized",
		zap.Int("enums", len(enum.Registered())))
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
	return nil
}
