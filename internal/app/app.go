package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/superelastix/internal/config"
	"github.com/vk/superelastix/internal/ctxlog"
	"github.com/vk/superelastix/internal/metrics"
	"github.com/vk/superelastix/internal/registry"
	"github.com/vk/superelastix/internal/tracing"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	logFile  io.Closer
	registry *registry.Registry
	loader   config.Loader
	config   *Config
	metrics  *metrics.Collector
	tracing  *tracing.Provider
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// It panics when the compiled-in modules fail registry validation.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logW, logFile, err := logOutput(outW, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "variants", reg.Len())

	// A mismatch between a module and its components is a programmer error.
	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		Exporter:     cfg.TraceExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Writer:       outW,
	})
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		logFile:  logFile,
		registry: reg,
		loader:   loader,
		config:   cfg,
		metrics:  metrics.New(),
		tracing:  tp,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the collector fed by every run.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}
