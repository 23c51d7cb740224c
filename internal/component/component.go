package component

import (
	"fmt"

	"github.com/vk/superelastix/internal/criteria"
)

// Component is a selectable, connectable unit of work. Concrete components
// embed *Base and override MeetsCriterion or ConnectionsSatisfied as needed.
type Component interface {
	Name() string
	ClassName() string
	TemplateProperties() criteria.Properties
	Version() string
	AcceptingInterfaces() []Interface
	ProvidingInterfaces() []Interface

	// Provided returns the handle of the first providing interface with
	// the given name.
	Provided(name string) (any, bool)

	// MeetsCriterion evaluates a non-reserved criterion. It may apply the
	// criterion as a setting on the component.
	MeetsCriterion(c criteria.Criterion) (criteria.Status, error)

	CanAcceptConnectionFrom(other Component, ic criteria.InterfaceCriteria) InterfaceStatus
	AcceptConnectionFrom(other Component, ic criteria.InterfaceCriteria) (int, error)
	ConnectionsSatisfied() bool

	// provide returns the handle for an exact interface.
	provide(i Interface) (any, bool)
}

type acceptingSlot struct {
	iface    Interface
	accept   func(handle any) error
	optional bool
	accepted int
}

type providingSlot struct {
	iface  Interface
	handle any
}

// Base carries the bookkeeping shared by every component.
type Base struct {
	name      string
	class     string
	props     criteria.Properties
	version   string
	accepting []*acceptingSlot
	providing []*providingSlot
}

// NewBase creates the base of a component instance called name.
func NewBase(name, class string, props criteria.Properties) *Base {
	cp := make(criteria.Properties, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return &Base{name: name, class: class, props: cp}
}

// SetVersion declares the semantic version of the component.
func (b *Base) SetVersion(v string) { b.version = v }

// Provides registers a providing interface and the handle given to acceptors.
func (b *Base) Provides(i Interface, handle any) {
	b.providing = append(b.providing, &providingSlot{iface: i, handle: handle})
}

// Accepts registers a required accepting interface.
func (b *Base) Accepts(i Interface, accept func(handle any) error) {
	b.accepting = append(b.accepting, &acceptingSlot{iface: i, accept: accept})
}

// AcceptsOptional registers an accepting interface that does not need a
// connection for the component to be satisfied.
func (b *Base) AcceptsOptional(i Interface, accept func(handle any) error) {
	b.accepting = append(b.accepting, &acceptingSlot{iface: i, accept: accept, optional: true})
}

// Accept registers a required accepting interface whose handle must be a T.
func Accept[T any](b *Base, i Interface, fn func(T) error) {
	b.Accepts(i, typed(i, fn))
}

// AcceptOptional is the optional form of Accept.
func AcceptOptional[T any](b *Base, i Interface, fn func(T) error) {
	b.AcceptsOptional(i, typed(i, fn))
}

func typed[T any](i Interface, fn func(T) error) func(any) error {
	return func(handle any) error {
		h, ok := handle.(T)
		if !ok {
			return fmt.Errorf("interface %s: handle of type %T cannot be accepted", i, handle)
		}
		return fn(h)
	}
}

func (b *Base) Name() string                            { return b.name }
func (b *Base) ClassName() string                       { return b.class }
func (b *Base) TemplateProperties() criteria.Properties { return b.props }
func (b *Base) Version() string                         { return b.version }

func (b *Base) AcceptingInterfaces() []Interface {
	out := make([]Interface, 0, len(b.accepting))
	for _, s := range b.accepting {
		out = append(out, s.iface)
	}
	return out
}

func (b *Base) ProvidingInterfaces() []Interface {
	out := make([]Interface, 0, len(b.providing))
	for _, s := range b.providing {
		out = append(out, s.iface)
	}
	return out
}

func (b *Base) Provided(name string) (any, bool) {
	for _, s := range b.providing {
		if s.iface.Name == name {
			return s.handle, true
		}
	}
	return nil, false
}

func (b *Base) provide(i Interface) (any, bool) {
	for _, s := range b.providing {
		if s.iface.Equal(i) {
			return s.handle, true
		}
	}
	return nil, false
}

// MeetsCriterion reports Unknown for every criterion.
func (b *Base) MeetsCriterion(criteria.Criterion) (criteria.Status, error) {
	return criteria.Unknown, nil
}

// CanAcceptConnectionFrom counts the accepting interfaces of b that meet ic
// and are provided by other.
func (b *Base) CanAcceptConnectionFrom(other Component, ic criteria.InterfaceCriteria) InterfaceStatus {
	meeting, bindable := 0, 0
	for _, s := range b.accepting {
		if !s.iface.MeetsCriteria(ic) {
			continue
		}
		meeting++
		if _, ok := other.provide(s.iface); ok {
			bindable++
		}
	}
	switch {
	case bindable > 1:
		return Multiple
	case bindable == 1:
		return Success
	case meeting > 0:
		return NoProvider
	default:
		return NoAccepter
	}
}

// AcceptConnectionFrom binds every accepting interface of b that meets ic to
// the matching handle of other and returns how many were bound.
func (b *Base) AcceptConnectionFrom(other Component, ic criteria.InterfaceCriteria) (int, error) {
	n := 0
	for _, s := range b.accepting {
		if !s.iface.MeetsCriteria(ic) {
			continue
		}
		handle, ok := other.provide(s.iface)
		if !ok {
			continue
		}
		if err := s.accept(handle); err != nil {
			return n, fmt.Errorf("component '%s' accepting %s from '%s': %w", b.name, s.iface, other.Name(), err)
		}
		s.accepted++
		n++
	}
	return n, nil
}

// ConnectionsSatisfied reports whether every required accepting interface
// has been bound at least once.
func (b *Base) ConnectionsSatisfied() bool {
	for _, s := range b.accepting {
		if !s.optional && s.accepted == 0 {
			return false
		}
	}
	return true
}

// CountAccepting returns how many accepting interfaces of c meet ic.
func CountAccepting(c Component, ic criteria.InterfaceCriteria) int {
	n := 0
	for _, i := range c.AcceptingInterfaces() {
		if i.MeetsCriteria(ic) {
			n++
		}
	}
	return n
}

// CountProviding returns how many providing interfaces of c meet ic.
func CountProviding(c Component, ic criteria.InterfaceCriteria) int {
	n := 0
	for _, i := range c.ProvidingInterfaces() {
		if i.MeetsCriteria(ic) {
			n++
		}
	}
	return n
}
