package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/superelastix/internal/tracing"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string          // blueprint files or directories, merged in order
	Inputs      map[string]string // Source component name -> file
	Outputs     map[string]string // Sink component name -> file
	GraphOut    string            // graphviz file of the loaded blueprint

	LogFormat string
	LogLevel  string
	LogFile   string

	MetricsTextfile string
	TraceExporter   string
	OTLPEndpoint    string
}

var (
	logLevels      = []string{"debug", "info", "warn", "error"}
	logFormats     = []string{"text", "json"}
	traceExporters = []string{tracing.ExporterNone, tracing.ExporterStdout, tracing.ExporterOTLP}
)

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one blueprint configuration is required")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.TraceExporter == "" {
		cfg.TraceExporter = tracing.ExporterNone
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log-level %q: must be one of %v", cfg.LogLevel, logLevels)
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be one of %v", cfg.LogFormat, logFormats)
	}
	if !slices.Contains(traceExporters, cfg.TraceExporter) {
		return nil, fmt.Errorf("invalid trace exporter %q: must be one of %v", cfg.TraceExporter, traceExporters)
	}
	for name, path := range cfg.Inputs {
		if name == "" || path == "" {
			return nil, fmt.Errorf("input %q=%q: name and path are required", name, path)
		}
	}
	for name, path := range cfg.Outputs {
		if name == "" || path == "" {
			return nil, fmt.Errorf("output %q=%q: name and path are required", name, path)
		}
	}
	return &cfg, nil
}
