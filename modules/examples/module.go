// Package examples provides a toy optimisation family used to demonstrate
// selection by interface, version and settings. Two "vendors" offer metrics
// and gradient descent optimisers with different capabilities.
package examples

import (
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/registry"
)

// Interface names of the family.
const (
	MetricValueInterface      = "MetricValueInterface"
	MetricDerivativeInterface = "MetricDerivativeInterface"
	OptimizerUpdateInterface  = "OptimizerUpdateInterface"
	ConflictinUpdateInterface = "ConflictinUpdateInterface"
	TransformedInterface      = "TransformedImageInterface"
)

// Class names of the family.
const (
	SSDMetric3rdPartyClass   = "SSDMetric3rdParty"
	SSDMetric4thPartyClass   = "SSDMetric4thParty"
	GDOptimizer3rdPartyClass = "GDOptimizer3rdParty"
	GDOptimizer4thPartyClass = "GDOptimizer4thParty"
	TransformComponent1Class = "TransformComponent1"
	MetricComponent1Class    = "MetricComponent1"
)

// Vendor versions.
const (
	Version1        = "1.0.0"
	Version3rdParty = "3.1.0"
	Version4thParty = "4.0.2"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every class of the family.
func (m *Module) Register(r *registry.Registry) {
	variants := []struct {
		class, version string
		ctor           func(name string) component.Component
	}{
		{SSDMetric3rdPartyClass, Version3rdParty, func(n string) component.Component { return NewSSDMetric3rdParty(n) }},
		{SSDMetric4thPartyClass, Version4thParty, func(n string) component.Component { return NewSSDMetric4thParty(n) }},
		{GDOptimizer3rdPartyClass, Version3rdParty, func(n string) component.Component { return NewGDOptimizer3rdParty(n) }},
		{GDOptimizer4thPartyClass, Version4thParty, func(n string) component.Component { return NewGDOptimizer4thParty(n) }},
		{TransformComponent1Class, Version1, func(n string) component.Component { return NewTransformComponent1(n) }},
		{MetricComponent1Class, Version1, func(n string) component.Component { return NewMetricComponent1(n) }},
	}
	for _, v := range variants {
		r.RegisterVariant(registry.Variant{ClassName: v.class, Version: v.version, New: v.ctor})
	}
}
