// Package candidates implements the per-node candidate collection that the
// selection engine narrows until a single component remains.
package candidates

import (
	"fmt"

	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/registry"
)

// Set holds the surviving candidate instances of one blueprint node. Every
// narrowing operation only ever removes candidates.
type Set struct {
	node  string
	items []component.Component
}

// New instantiates one candidate per registered variant for node.
func New(node string, reg *registry.Registry) *Set {
	return &Set{node: node, items: reg.Instantiate(node)}
}

// FromComponents builds a set over existing instances.
func FromComponents(node string, items ...component.Component) *Set {
	return &Set{node: node, items: append([]component.Component(nil), items...)}
}

// Node returns the blueprint node the set belongs to.
func (s *Set) Node() string { return s.node }

// Size returns the number of surviving candidates.
func (s *Set) Size() int { return len(s.items) }

// UniqueSurvivor returns the only candidate, if exactly one remains.
func (s *Set) UniqueSurvivor() (component.Component, bool) {
	if len(s.items) != 1 {
		return nil, false
	}
	return s.items[0], true
}

// ClassNames lists the class names of surviving candidates, for diagnostics.
func (s *Set) ClassNames() []string {
	out := make([]string, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c.ClassName())
	}
	return out
}

// Take transfers the unique survivor out of the set and empties it.
func (s *Set) Take() (component.Component, error) {
	c, ok := s.UniqueSurvivor()
	if !ok {
		return nil, fmt.Errorf("component '%s' has %d candidates, need exactly one", s.node, len(s.items))
	}
	s.items = nil
	return c, nil
}

func (s *Set) keep(pred func(component.Component) bool) {
	kept := s.items[:0]
	for _, c := range s.items {
		if pred(c) {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = nil
	}
	s.items = kept
}

// NarrowByCriterion removes candidates for which the criterion fails.
// Candidates that do not recognise the criterion are kept.
func (s *Set) NarrowByCriterion(c criteria.Criterion) error {
	var firstErr error
	s.keep(func(cand component.Component) bool {
		if firstErr != nil {
			return true
		}
		status, err := component.Evaluate(cand, c)
		if err != nil {
			firstErr = fmt.Errorf("component '%s', criterion %s: %w", s.node, c, err)
			return true
		}
		return status != criteria.Failed
	})
	return firstErr
}

// NarrowByProvidingInterfaceCriteria keeps candidates with at least one
// providing interface that meets ic.
func (s *Set) NarrowByProvidingInterfaceCriteria(ic criteria.InterfaceCriteria) {
	s.keep(func(c component.Component) bool {
		return component.CountProviding(c, ic) > 0
	})
}

// NarrowByAcceptingInterfaceCriteria keeps candidates with at least one
// accepting interface that meets ic.
func (s *Set) NarrowByAcceptingInterfaceCriteria(ic criteria.InterfaceCriteria) {
	s.keep(func(c component.Component) bool {
		return component.CountAccepting(c, ic) > 0
	})
}

// NarrowByRequiredProviderFor keeps candidates that downstream can accept
// a connection from.
func (s *Set) NarrowByRequiredProviderFor(downstream component.Component, ic criteria.InterfaceCriteria) {
	s.keep(func(c component.Component) bool {
		return downstream.CanAcceptConnectionFrom(c, ic).Compatible()
	})
}

// NarrowByRequiredAcceptorFrom keeps candidates that can accept a
// connection from upstream.
func (s *Set) NarrowByRequiredAcceptorFrom(upstream component.Component, ic criteria.InterfaceCriteria) {
	s.keep(func(c component.Component) bool {
		return c.CanAcceptConnectionFrom(upstream, ic).Compatible()
	})
}
