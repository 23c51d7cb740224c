package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/vk/superelastix/internal/blueprint"
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/ctxlog"
	"github.com/vk/superelastix/internal/filter"
	"github.com/vk/superelastix/internal/network"
)

// Run loads the blueprint, feeds the input files to their Source
// components, executes the network and writes every requested output.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer func() {
		err = errors.Join(err, a.close(ctx))
	}()

	bp, err := a.loader.Load(ctx, a.config.ConfigPaths...)
	if err != nil {
		return fmt.Errorf("failed to load blueprint: %w", err)
	}
	if a.config.GraphOut != "" {
		if err := writeGraph(a.config.GraphOut, bp); err != nil {
			return err
		}
		a.logger.Info("Blueprint graph written.", "path", a.config.GraphOut)
	}

	f := filter.New(a.registry,
		network.WithMetrics(a.metrics),
		network.WithTracer(a.tracing.Tracer()),
	)
	f.SetBlueprint(bp)

	for _, name := range sortedKeys(a.config.Inputs) {
		path := a.config.Inputs[name]
		reader, err := f.InputFileReader(ctx, name)
		if err != nil {
			return err
		}
		data, err := reader.ReadFile(path)
		if err != nil {
			return fmt.Errorf("input '%s': %w", name, err)
		}
		f.SetInput(name, data)
		a.logger.Debug("Input read.", "name", name, "path", path)
	}

	writers := make(map[string]component.FileWriter, len(a.config.Outputs))
	for _, name := range sortedKeys(a.config.Outputs) {
		w, err := f.OutputFileWriter(ctx, name)
		if err != nil {
			return err
		}
		writers[name] = w
		f.RequestOutput(name)
	}

	if err := f.Update(ctx); err != nil {
		return err
	}

	for _, name := range sortedKeys(a.config.Outputs) {
		path := a.config.Outputs[name]
		data, err := f.Output(name)
		if err != nil {
			return err
		}
		if err := writers[name].WriteFile(path, data); err != nil {
			return fmt.Errorf("output '%s': %w", name, err)
		}
		a.logger.Info("Output written.", "name", name, "path", path)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// close flushes metrics and traces and releases the log file.
func (a *App) close(ctx context.Context) error {
	var errs []error
	if a.config.MetricsTextfile != "" {
		if err := a.metrics.WriteTextfile(a.config.MetricsTextfile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down tracing: %w", err))
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
		a.logFile = nil
	}
	return errors.Join(errs...)
}

func writeGraph(path string, bp *blueprint.Blueprint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	if err := bp.WriteDOT(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return f.Close()
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
