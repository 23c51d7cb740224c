package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
)

// Module is the interface that all component modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Variant is one concrete, instantiable component implementation: a class
// name with fixed template properties.
type Variant struct {
	ClassName          string
	TemplateProperties criteria.Properties
	// Version is the semantic version instances report, if any.
	Version string
	// New creates a fresh instance named after the blueprint node it serves.
	New func(name string) component.Component
}

// Key identifies a variant by class name and template properties.
func (v *Variant) Key() string {
	keys := make([]string, 0, len(v.TemplateProperties))
	for k := range v.TemplateProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(v.ClassName)
	for _, k := range keys {
		fmt.Fprintf(&sb, ";%s=%s", k, v.TemplateProperties[k])
	}
	return sb.String()
}

// Registry holds the registered variants of a single application instance
// in registration order.
type Registry struct {
	variants []*Variant
	index    map[string]*Variant
}

// New creates and initializes a new Registry instance.
func New(modules ...Module) *Registry {
	r := &Registry{index: make(map[string]*Variant)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterVariant adds a variant to the catalog. Registering the same class
// and template properties twice is a programming error and panics.
func (r *Registry) RegisterVariant(v Variant) {
	if v.New == nil {
		panic(fmt.Sprintf("variant '%s' registered without a constructor", v.ClassName))
	}
	key := v.Key()
	if _, exists := r.index[key]; exists {
		panic(fmt.Sprintf("variant '%s' already registered", key))
	}
	slog.Debug("Registering component variant.", "variant", key)
	stored := v
	r.variants = append(r.variants, &stored)
	r.index[key] = &stored
}

// Variants returns the registered variants in registration order.
func (r *Registry) Variants() []*Variant {
	out := make([]*Variant, len(r.variants))
	copy(out, r.variants)
	return out
}

// Len returns the number of registered variants.
func (r *Registry) Len() int {
	return len(r.variants)
}

// Instantiate creates one fresh instance of every variant, all named name.
func (r *Registry) Instantiate(name string) []component.Component {
	out := make([]component.Component, 0, len(r.variants))
	for _, v := range r.variants {
		out = append(out, v.New(name))
	}
	return out
}
