// Package testutil provides configurable fake components for exercising the
// selection engine without real algorithms.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/registry"
)

// Shape describes a fake variant.
type Shape struct {
	Class     string
	Props     criteria.Properties
	Version   string
	Accepting []component.Interface
	Optional  []component.Interface
	Providing []component.Interface
	Updatable bool
	Source    bool
	Sink      bool
	// Known maps a non-reserved criterion key to the values the fake
	// accepts. Keys not listed evaluate to Unknown.
	Known map[string][]string
	// FailUpdate makes Update return this error.
	FailUpdate error
	Log        *Log
}

// Log records the order of lifecycle calls across fakes.
type Log struct {
	mu      sync.Mutex
	entries []string
}

func (l *Log) add(entry string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the recorded entries.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Handle is what a fake provides on every non-special interface.
type Handle struct {
	owner *Fake
}

// Value returns the owner's current value.
func (h *Handle) Value() string { return h.owner.Value() }

// Fake is a component built from a Shape. Data flows through it as strings:
// a source holds its input, every other fake renders name(upstream...).
type Fake struct {
	*component.Base
	shape    Shape
	upstream []*Handle
	input    any
	value    string
	applied  map[string]string
}

// Variant returns the registry entry for shape.
func Variant(shape Shape) registry.Variant {
	return registry.Variant{
		ClassName:          shape.Class,
		TemplateProperties: shape.Props,
		Version:            shape.Version,
		New:                func(name string) component.Component { return New(name, shape) },
	}
}

// Module registers a fixed list of fake variants.
type Module []Shape

// Register registers every shape of the module.
func (m Module) Register(r *registry.Registry) {
	for _, s := range m {
		r.RegisterVariant(Variant(s))
	}
}

// New creates a fake instance.
func New(name string, shape Shape) *Fake {
	f := &Fake{
		Base:    component.NewBase(name, shape.Class, shape.Props),
		shape:   shape,
		applied: make(map[string]string),
	}
	f.SetVersion(shape.Version)
	for _, i := range shape.Accepting {
		component.Accept(f.Base, i, f.accept)
	}
	for _, i := range shape.Optional {
		component.AcceptOptional(f.Base, i, f.accept)
	}
	for _, i := range shape.Providing {
		f.Provides(i, &Handle{owner: f})
	}
	if shape.Updatable {
		f.Provides(component.NewInterface(criteria.UpdateInterface), component.Updater(f))
	}
	if shape.Source {
		f.Provides(component.NewInterface(criteria.SourceInterface), component.Source(f))
	}
	if shape.Sink {
		f.Provides(component.NewInterface(criteria.SinkInterface), component.Sink(f))
	}
	return f
}

func (f *Fake) accept(h *Handle) error {
	f.upstream = append(f.upstream, h)
	return nil
}

// Applied returns the value a known criterion set on this instance.
func (f *Fake) Applied(key string) string { return f.applied[key] }

// MeetsCriterion checks the Known table and records accepted settings.
func (f *Fake) MeetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	allowed, ok := f.shape.Known[c.Key]
	if !ok {
		return criteria.Unknown, nil
	}
	for _, v := range c.Values {
		if !slices.Contains(allowed, v) {
			return criteria.Failed, nil
		}
	}
	f.applied[c.Key] = strings.Join(c.Values, ",")
	return criteria.Satisfied, nil
}

func (f *Fake) render() string {
	parts := make([]string, 0, len(f.upstream))
	for _, h := range f.upstream {
		parts = append(parts, h.Value())
	}
	return f.Name() + "(" + strings.Join(parts, ",") + ")"
}

// Value returns the fake's current output.
func (f *Fake) Value() string {
	switch {
	case f.shape.Source:
		return fmt.Sprint(f.input)
	case f.shape.Updatable:
		return f.value
	default:
		return f.render()
	}
}

func (f *Fake) BeforeUpdate(context.Context) error {
	f.shape.Log.add("before:" + f.Name())
	return nil
}

func (f *Fake) Update(context.Context) error {
	f.shape.Log.add("update:" + f.Name())
	if f.shape.FailUpdate != nil {
		return f.shape.FailUpdate
	}
	f.value = f.render()
	return nil
}

func (f *Fake) SetInput(data any) error {
	f.input = data
	return nil
}

func (f *Fake) InitializedOutput() any { return "" }

func (f *Fake) Output() (any, error) {
	parts := make([]string, 0, len(f.upstream))
	for _, h := range f.upstream {
		parts = append(parts, h.Value())
	}
	return strings.Join(parts, ","), nil
}

func (f *Fake) FileReader() component.FileReader { return fileIO{} }
func (f *Fake) FileWriter() component.FileWriter { return fileIO{} }

type fileIO struct{}

func (fileIO) ReadFile(path string) (any, error)     { return "file:" + path, nil }
func (fileIO) WriteFile(path string, data any) error { return nil }
