// Package filter is the host-facing entry point: give it a blueprint, named
// inputs and the names of the outputs you want, call Update, read results.
package filter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/vk/superelastix/internal/blueprint"
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/ctxlog"
	"github.com/vk/superelastix/internal/network"
	"github.com/vk/superelastix/internal/registry"
)

// Filter drives a blueprint through selection, connection and execution.
// The blueprint is re-resolved whenever it changed since the last pass.
type Filter struct {
	registry  *registry.Registry
	blueprint *blueprint.Blueprint
	opts      []network.Option

	builder  *network.Builder
	revision uint64

	inputs  map[string]any
	outputs map[string]struct{}
	results map[string]any
}

// New creates a filter over reg. The options are passed to every builder.
func New(reg *registry.Registry, opts ...network.Option) *Filter {
	return &Filter{
		registry: reg,
		opts:     opts,
		inputs:   make(map[string]any),
		outputs:  make(map[string]struct{}),
	}
}

// SetBlueprint replaces the blueprint. The filter keeps the pointer and
// notices later modifications through the blueprint revision.
func (f *Filter) SetBlueprint(bp *blueprint.Blueprint) {
	f.blueprint = bp
	f.builder = nil
	f.results = nil
}

// Blueprint returns the current blueprint.
func (f *Filter) Blueprint() *blueprint.Blueprint { return f.blueprint }

// SetInput attaches data to the Source component called name.
func (f *Filter) SetInput(name string, data any) {
	f.inputs[name] = data
}

// RequestOutput asks for the result of the Sink component called name.
func (f *Filter) RequestOutput(name string) {
	f.outputs[name] = struct{}{}
}

// resolved returns a configured builder whose components are all unique,
// creating a new one when the blueprint changed.
func (f *Filter) resolved(ctx context.Context) (*network.Builder, error) {
	if f.blueprint == nil {
		return nil, fmt.Errorf("%w: no blueprint set", network.ErrUsage)
	}
	if f.builder != nil && f.revision == f.blueprint.Revision() {
		return f.builder, nil
	}

	ctxlog.FromContext(ctx).Debug("Resolving blueprint.", "revision", f.blueprint.Revision())
	b := network.NewBuilder(f.registry, f.blueprint, f.opts...)
	unique, err := b.Configure(ctx)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, b.AmbiguityError()
	}
	f.builder = b
	f.revision = f.blueprint.Revision()
	return b, nil
}

// InputFileReader returns the reader that turns a file into data for the
// named Source.
func (f *Filter) InputFileReader(ctx context.Context, name string) (component.FileReader, error) {
	b, err := f.resolved(ctx)
	if err != nil {
		return nil, err
	}
	return b.InputFileReader(name)
}

// OutputFileWriter returns the writer that persists the named Sink's output.
func (f *Filter) OutputFileWriter(ctx context.Context, name string) (component.FileWriter, error) {
	b, err := f.resolved(ctx)
	if err != nil {
		return nil, err
	}
	return b.OutputFileWriter(name)
}

// InitializedOutput returns an empty output of the type the named Sink
// will produce.
func (f *Filter) InitializedOutput(ctx context.Context, name string) (any, error) {
	b, err := f.resolved(ctx)
	if err != nil {
		return nil, err
	}
	return b.InitializedOutput(name)
}

// Update resolves the blueprint if needed, checks that inputs and outputs
// match the Source and Sink components one to one, then connects, realizes
// and executes the network.
func (f *Filter) Update(ctx context.Context) error {
	ctx = ctxlog.With(ctx, "run_id", uuid.NewString())
	logger := ctxlog.FromContext(ctx)
	f.results = nil

	b, err := f.resolved(ctx)
	if err != nil {
		return err
	}
	// A realized builder cannot serve another run.
	f.builder = nil

	sources, err := b.SourceInterfaces()
	if err != nil {
		return err
	}
	sinks, err := b.SinkInterfaces()
	if err != nil {
		return err
	}
	if err := matchPorts("Source", keys(sources), "input", keys(f.inputs)); err != nil {
		return err
	}
	if err := matchPorts("Sink", keys(sinks), "output", keys(f.outputs)); err != nil {
		return err
	}

	for _, name := range keys(f.inputs) {
		if err := sources[name].SetInput(f.inputs[name]); err != nil {
			return fmt.Errorf("source '%s': %w", name, err)
		}
	}

	if _, err := b.ConnectComponents(ctx); err != nil {
		return err
	}
	if _, err := b.CheckConnectionsSatisfied(ctx); err != nil {
		return err
	}
	net, err := b.Realize(ctx)
	if err != nil {
		return err
	}
	if err := net.Execute(ctx); err != nil {
		return err
	}
	outputs, err := net.OutputObjects()
	if err != nil {
		return err
	}

	f.results = make(map[string]any, len(f.outputs))
	for name := range f.outputs {
		f.results[name] = outputs[name]
	}
	logger.Info("Filter update finished.", "inputs", len(f.inputs), "outputs", len(f.results))
	return nil
}

// Output returns the result of a requested Sink after a successful Update.
func (f *Filter) Output(name string) (any, error) {
	if f.results == nil {
		return nil, fmt.Errorf("%w: outputs are available only after update", network.ErrUsage)
	}
	v, ok := f.results[name]
	if !ok {
		return nil, fmt.Errorf("%w: output '%s' was not requested", network.ErrUsage, name)
	}
	return v, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// matchPorts requires a one to one match between components of a role and
// the port names the caller supplied.
func matchPorts(role string, components []string, port string, names []string) error {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	declared := make(map[string]bool, len(components))
	var problems []string
	for _, c := range components {
		declared[c] = true
		if !have[c] {
			problems = append(problems, fmt.Sprintf("%s component '%s' has no %s", role, c, port))
		}
	}
	for _, n := range names {
		if !declared[n] {
			problems = append(problems, fmt.Sprintf("%s '%s' has no %s component", port, n, role))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", network.ErrUsage, strings.Join(problems, "; "))
	}
	return nil
}
