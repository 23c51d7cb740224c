package network

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vk/superelastix/internal/blueprint"
	"github.com/vk/superelastix/internal/candidates"
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/ctxlog"
	"github.com/vk/superelastix/internal/metrics"
	"github.com/vk/superelastix/internal/registry"
)

// Option configures a Builder.
type Option func(*options)

type options struct {
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// WithMetrics records selection and execution metrics on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer records spans on t.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

func newOptions(opts []Option) options {
	o := options{tracer: noop.NewTracerProvider().Tracer("noop")}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Builder resolves a blueprint against a registry. A Builder serves exactly
// one selection pass; a changed blueprint needs a new Builder.
type Builder struct {
	registry  *registry.Registry
	blueprint *blueprint.Blueprint
	opts      options

	sets       map[string]*candidates.Set
	configured bool
	allUnique  bool
	connected  bool
	realized   bool
}

// NewBuilder creates a builder over a snapshot of bp.
func NewBuilder(reg *registry.Registry, bp *blueprint.Blueprint, opts ...Option) *Builder {
	return &Builder{
		registry:  reg,
		blueprint: bp.Clone(),
		opts:      newOptions(opts),
	}
}

// Blueprint returns the snapshot the builder resolves.
func (b *Builder) Blueprint() *blueprint.Blueprint { return b.blueprint }

// Configure narrows every component's candidates until the handshake
// reaches a fixed point. It reports whether every component ended up with
// exactly one candidate; leftover ambiguity is not an error by itself and
// can be inspected through Residual. Calling Configure again is a no-op.
func (b *Builder) Configure(ctx context.Context) (bool, error) {
	if b.realized {
		return false, fmt.Errorf("%w: builder already realized its network", ErrUsage)
	}
	if b.configured {
		return b.allUnique, nil
	}

	ctx, span := b.opts.tracer.Start(ctx, "selx.configure")
	defer span.End()
	logger := ctxlog.FromContext(ctx)

	allUnique, iterations, err := b.configure(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.opts.metrics.Resolved(metrics.OutcomeFailed, iterations)
		logger.Error("Component selection failed.", "error", err)
		return false, err
	}

	b.configured = true
	b.allUnique = allUnique
	span.SetAttributes(
		attribute.Bool("selx.all_unique", allUnique),
		attribute.Int("selx.handshake_iterations", iterations),
	)
	if allUnique {
		b.opts.metrics.Resolved(metrics.OutcomeUnique, iterations)
		logger.Info("All components uniquely selected.", "components", len(b.sets), "iterations", iterations)
	} else {
		b.opts.metrics.Resolved(metrics.OutcomeAmbiguous, iterations)
		for _, r := range b.Residual() {
			logger.Warn("Component not uniquely selected.", "component", r.Component, "candidates", r.Candidates, "classes", r.Classes)
		}
	}
	return allUnique, nil
}

func (b *Builder) configure(ctx context.Context) (bool, int, error) {
	if err := b.blueprint.Validate(); err != nil {
		return false, 0, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	b.sets = make(map[string]*candidates.Set)

	if err := b.applyComponentConfiguration(ctx); err != nil {
		return false, 0, err
	}
	if err := b.applyConnectionConfiguration(ctx); err != nil {
		return false, 0, err
	}
	iterations, err := b.propagateUniqueness(ctx)
	if err != nil {
		return false, iterations, err
	}
	return len(b.Residual()) == 0, iterations, nil
}

func (b *Builder) applyComponentConfiguration(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for _, name := range b.blueprint.ComponentNames() {
		m, err := b.blueprint.GetComponent(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}
		set := candidates.New(name, b.registry)
		if set.Size() == 0 {
			return &ConfigurationError{Stage: StageNode, Component: name, Criterion: "(no registered variants)"}
		}
		for _, c := range m.Criteria() {
			if err := set.NarrowByCriterion(c); err != nil {
				return &ConfigurationError{Stage: StageNode, Component: name, Criterion: c.String(), Err: err}
			}
			logger.Debug("Applied component criterion.", "component", name, "criterion", c.String(), "candidates", set.Size())
			if set.Size() == 0 {
				return &ConfigurationError{Stage: StageNode, Component: name, Criterion: c.String()}
			}
		}
		b.opts.metrics.CandidatesLeft(name, StageNode, set.Size())
		b.sets[name] = set
	}
	return nil
}

func (b *Builder) applyConnectionConfiguration(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for _, conn := range b.blueprint.Connections() {
		ic := criteria.Flatten(conn.Criteria)
		up, down := b.sets[conn.Upstream], b.sets[conn.Downstream]

		up.NarrowByProvidingInterfaceCriteria(ic)
		if up.Size() == 0 {
			return &ConfigurationError{Stage: StageConnection, Component: conn.Upstream, Upstream: conn.Upstream, Downstream: conn.Downstream}
		}
		down.NarrowByAcceptingInterfaceCriteria(ic)
		if down.Size() == 0 {
			return &ConfigurationError{Stage: StageConnection, Component: conn.Downstream, Upstream: conn.Upstream, Downstream: conn.Downstream}
		}
		logger.Debug("Applied connection criteria.", "upstream", conn.Upstream, "downstream", conn.Downstream,
			"upstream_candidates", up.Size(), "downstream_candidates", down.Size())
	}
	for name, set := range b.sets {
		b.opts.metrics.CandidatesLeft(name, StageConnection, set.Size())
	}
	return nil
}

// propagateUniqueness narrows the ambiguous neighbours of unique components
// until no set shrinks any more. Pairs where both sides are ambiguous are
// skipped, and so are pairs where both sides are unique: an incompatible
// unique pair surfaces in ConnectComponents.
func (b *Builder) propagateUniqueness(ctx context.Context) (int, error) {
	logger := ctxlog.FromContext(ctx)
	conns := b.blueprint.Connections()
	iterations := 0
	for {
		iterations++
		changed := false
		for _, conn := range conns {
			ic := criteria.Flatten(conn.Criteria)
			up, down := b.sets[conn.Upstream], b.sets[conn.Downstream]

			if provider, ok := up.UniqueSurvivor(); ok && down.Size() > 1 {
				before := down.Size()
				down.NarrowByRequiredAcceptorFrom(provider, ic)
				if down.Size() == 0 {
					return iterations, &ConfigurationError{Stage: StageHandshake, Component: conn.Downstream, Upstream: conn.Upstream, Downstream: conn.Downstream}
				}
				changed = changed || down.Size() != before
			}
			if acceptor, ok := down.UniqueSurvivor(); ok && up.Size() > 1 {
				before := up.Size()
				up.NarrowByRequiredProviderFor(acceptor, ic)
				if up.Size() == 0 {
					return iterations, &ConfigurationError{Stage: StageHandshake, Component: conn.Upstream, Upstream: conn.Upstream, Downstream: conn.Downstream}
				}
				changed = changed || up.Size() != before
			}
		}
		logger.Debug("Handshake round finished.", "iteration", iterations, "changed", changed)
		if !changed {
			break
		}
	}
	for name, set := range b.sets {
		b.opts.metrics.CandidatesLeft(name, StageHandshake, set.Size())
	}
	return iterations, nil
}

// Residual lists the components that still have more than one candidate,
// in blueprint order.
func (b *Builder) Residual() []Residual {
	var out []Residual
	for _, name := range b.blueprint.ComponentNames() {
		set, ok := b.sets[name]
		if !ok || set.Size() <= 1 {
			continue
		}
		out = append(out, Residual{Component: name, Candidates: set.Size(), Classes: set.ClassNames()})
	}
	return out
}

// NonUniqueComponentNames lists the components left ambiguous by Configure.
func (b *Builder) NonUniqueComponentNames() []string {
	var out []string
	for _, r := range b.Residual() {
		out = append(out, r.Component)
	}
	return out
}

// AmbiguityError describes residual ambiguity, or returns nil when every
// component is unique.
func (b *Builder) AmbiguityError() error {
	residual := b.Residual()
	if len(residual) == 0 {
		return nil
	}
	return &ConfigurationError{Stage: StageAmbiguity, Residual: residual}
}

func (b *Builder) requireUnique() error {
	if !b.configured {
		return fmt.Errorf("%w: components must be configured first", ErrUsage)
	}
	if b.realized {
		return fmt.Errorf("%w: builder already realized its network", ErrUsage)
	}
	if !b.allUnique {
		return b.AmbiguityError()
	}
	return nil
}

func (b *Builder) unique(name string) component.Component {
	c, _ := b.sets[name].UniqueSurvivor()
	return c
}

// ConnectComponents binds the interfaces of every connection. A connection
// that binds nothing after a successful Configure is an internal error.
func (b *Builder) ConnectComponents(ctx context.Context) (bool, error) {
	if err := b.requireUnique(); err != nil {
		return false, err
	}
	if b.connected {
		return true, nil
	}

	ctx, span := b.opts.tracer.Start(ctx, "selx.connect")
	defer span.End()
	logger := ctxlog.FromContext(ctx)

	for _, conn := range b.blueprint.Connections() {
		ic := criteria.Flatten(conn.Criteria)
		up, down := b.unique(conn.Upstream), b.unique(conn.Downstream)
		n, err := down.AcceptConnectionFrom(up, ic)
		if err != nil {
			err = fmt.Errorf("%w: connection '%s' -> '%s': %w", ErrInternal, conn.Upstream, conn.Downstream, err)
			span.SetStatus(codes.Error, err.Error())
			return false, err
		}
		if n == 0 {
			err := fmt.Errorf("%w: connection '%s' -> '%s' bound no interfaces", ErrInternal, conn.Upstream, conn.Downstream)
			span.SetStatus(codes.Error, err.Error())
			return false, err
		}
		logger.Debug("Connected components.", "upstream", conn.Upstream, "downstream", conn.Downstream, "interfaces", n)
	}
	b.connected = true
	return true, nil
}

// CheckConnectionsSatisfied reports whether every component received all
// of its required connections.
func (b *Builder) CheckConnectionsSatisfied(ctx context.Context) (bool, error) {
	if err := b.requireUnique(); err != nil {
		return false, err
	}
	if !b.connected {
		return false, fmt.Errorf("%w: components must be connected first", ErrUsage)
	}
	logger := ctxlog.FromContext(ctx)

	var errs []error
	for _, name := range b.blueprint.ComponentNames() {
		c := b.unique(name)
		if !c.ConnectionsSatisfied() {
			logger.Error("Component has unsatisfied connections.", "component", name, "class", c.ClassName())
			errs = append(errs, &ConfigurationError{Stage: StageConnections, Component: name})
		}
	}
	if len(errs) > 0 {
		return false, errors.Join(errs...)
	}
	return true, nil
}

// SourceInterfaces maps each Source component to its handle.
func (b *Builder) SourceInterfaces() (map[string]component.Source, error) {
	if err := b.requireUnique(); err != nil {
		return nil, err
	}
	return collect[component.Source](b.blueprint.ComponentNames(), b.unique, criteria.SourceInterface)
}

// SinkInterfaces maps each Sink component to its handle.
func (b *Builder) SinkInterfaces() (map[string]component.Sink, error) {
	if err := b.requireUnique(); err != nil {
		return nil, err
	}
	return collect[component.Sink](b.blueprint.ComponentNames(), b.unique, criteria.SinkInterface)
}

func collect[T any](names []string, lookup func(string) component.Component, tag string) (map[string]T, error) {
	out := make(map[string]T)
	for _, name := range names {
		c := lookup(name)
		h, ok := c.Provided(tag)
		if !ok {
			continue
		}
		t, ok := h.(T)
		if !ok {
			return nil, fmt.Errorf("%w: component '%s' provides %s with handle %T", ErrInternal, name, tag, h)
		}
		out[name] = t
	}
	return out, nil
}

// InitializedOutput returns the empty output object of the named sink.
func (b *Builder) InitializedOutput(name string) (any, error) {
	sinks, err := b.SinkInterfaces()
	if err != nil {
		return nil, err
	}
	s, ok := sinks[name]
	if !ok {
		return nil, fmt.Errorf("%w: no sink component named '%s'", ErrUsage, name)
	}
	return s.InitializedOutput(), nil
}

// InputFileReader returns the file reader of the named source.
func (b *Builder) InputFileReader(name string) (component.FileReader, error) {
	sources, err := b.SourceInterfaces()
	if err != nil {
		return nil, err
	}
	s, ok := sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: no source component named '%s'", ErrUsage, name)
	}
	return s.FileReader(), nil
}

// OutputFileWriter returns the file writer of the named sink.
func (b *Builder) OutputFileWriter(name string) (component.FileWriter, error) {
	sinks, err := b.SinkInterfaces()
	if err != nil {
		return nil, err
	}
	s, ok := sinks[name]
	if !ok {
		return nil, fmt.Errorf("%w: no sink component named '%s'", ErrUsage, name)
	}
	return s.FileWriter(), nil
}

// Realize hands the connected components over to a Network. The builder
// cannot be used afterwards.
func (b *Builder) Realize(ctx context.Context) (*Network, error) {
	if err := b.requireUnique(); err != nil {
		return nil, err
	}
	if !b.connected {
		return nil, fmt.Errorf("%w: components must be connected first", ErrUsage)
	}

	_, span := b.opts.tracer.Start(ctx, "selx.realize")
	defer span.End()

	names := b.blueprint.ComponentNames()
	components := make(map[string]component.Component, len(names))
	for _, name := range names {
		components[name] = b.unique(name)
	}

	net, err := newNetwork(names, components, b.blueprint.Connections(), b.opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, name := range names {
		if _, err := b.sets[name].Take(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInternal, err)
		}
	}
	b.sets = nil
	b.realized = true
	ctxlog.FromContext(ctx).Debug("Network realized.", "components", len(names), "update_order", net.Order())
	return net, nil
}
