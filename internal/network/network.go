package network

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vk/superelastix/internal/blueprint"
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/ctxlog"
	"github.com/vk/superelastix/internal/dag"
	"github.com/vk/superelastix/internal/metrics"
)

type stage struct {
	name    string
	class   string
	updater component.Updater
}

// Network is a set of connected components ready to run.
type Network struct {
	names      []string
	components map[string]component.Component
	stages     []stage
	sources    map[string]component.Source
	sinks      map[string]component.Sink
	opts       options
	executed   bool
}

func newNetwork(names []string, components map[string]component.Component, conns []blueprint.Connection, opts options) (*Network, error) {
	lookup := func(name string) component.Component { return components[name] }
	updaters, err := collect[component.Updater](names, lookup, criteria.UpdateInterface)
	if err != nil {
		return nil, err
	}
	sources, err := collect[component.Source](names, lookup, criteria.SourceInterface)
	if err != nil {
		return nil, err
	}
	sinks, err := collect[component.Sink](names, lookup, criteria.SinkInterface)
	if err != nil {
		return nil, err
	}

	g := dag.New()
	for _, name := range names {
		if _, ok := updaters[name]; ok {
			g.AddNode(name)
		}
	}
	for _, c := range conns {
		_, upOK := updaters[c.Upstream]
		_, downOK := updaters[c.Downstream]
		if !upOK || !downOK {
			continue
		}
		if err := g.AddEdge(c.Upstream, c.Downstream); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInternal, err)
		}
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	stages := make([]stage, 0, len(order))
	for _, name := range order {
		stages = append(stages, stage{name: name, class: components[name].ClassName(), updater: updaters[name]})
	}

	return &Network{
		names:      names,
		components: components,
		stages:     stages,
		sources:    sources,
		sinks:      sinks,
		opts:       opts,
	}, nil
}

// Order returns the updatable components in the order Execute runs them.
func (n *Network) Order() []string {
	out := make([]string, 0, len(n.stages))
	for _, s := range n.stages {
		out = append(out, s.name)
	}
	return out
}

// Component returns the component selected for a blueprint name.
func (n *Network) Component(name string) (component.Component, bool) {
	c, ok := n.components[name]
	return c, ok
}

// SourceInterfaces maps each Source component to its handle.
func (n *Network) SourceInterfaces() map[string]component.Source {
	out := make(map[string]component.Source, len(n.sources))
	for k, v := range n.sources {
		out[k] = v
	}
	return out
}

// SinkInterfaces maps each Sink component to its handle.
func (n *Network) SinkInterfaces() map[string]component.Sink {
	out := make(map[string]component.Sink, len(n.sinks))
	for k, v := range n.sinks {
		out[k] = v
	}
	return out
}

// Execute runs BeforeUpdate on every updatable component and then Update,
// both in pipeline order. The first component error stops the run and is
// returned as is.
func (n *Network) Execute(ctx context.Context) error {
	ctx, span := n.opts.tracer.Start(ctx, "selx.execute")
	defer span.End()
	logger := ctxlog.FromContext(ctx)

	n.executed = false
	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		n.opts.metrics.Executed(metrics.OutcomeFailed)
		return err
	}

	for _, s := range n.stages {
		logger.Debug("Running BeforeUpdate.", "component", s.name)
		if err := s.updater.BeforeUpdate(ctx); err != nil {
			logger.Error("BeforeUpdate failed.", "component", s.name, "error", err)
			return fail(err)
		}
	}

	logger.Info("🚀 Executing network...", "stages", len(n.stages))
	for _, s := range n.stages {
		_, stageSpan := n.opts.tracer.Start(ctx, "selx.update")
		stageSpan.SetAttributes(attribute.String("selx.component", s.name), attribute.String("selx.class", s.class))
		start := time.Now()
		err := s.updater.Update(ctx)
		n.opts.metrics.Updated(s.name, s.class, time.Since(start))
		if err != nil {
			stageSpan.SetStatus(codes.Error, err.Error())
			stageSpan.End()
			logger.Error("Update failed.", "component", s.name, "error", err)
			return fail(err)
		}
		stageSpan.End()
		logger.Debug("Update finished.", "component", s.name, "duration", time.Since(start))
	}

	n.executed = true
	n.opts.metrics.Executed(metrics.OutcomeSucceeded)
	logger.Info("🏁 Network execution finished.")
	return nil
}

// OutputObjects collects the output of every sink. It is only available
// after a successful Execute.
func (n *Network) OutputObjects() (map[string]any, error) {
	if !n.executed {
		return nil, fmt.Errorf("%w: outputs are available only after execute", ErrUsage)
	}
	out := make(map[string]any, len(n.sinks))
	for name, s := range n.sinks {
		v, err := s.Output()
		if err != nil {
			return nil, fmt.Errorf("sink '%s': %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
