package examples

import (
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
)

// TargetKey sets the minimum of the squared difference metrics.
const TargetKey = "Target"

type ssd struct {
	target float64
}

func (m *ssd) Value(x float64) float64 {
	d := x - m.target
	return d * d
}

func (m *ssd) meetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	if c.Key != TargetKey {
		return criteria.Unknown, nil
	}
	return floatSetting(c, &m.target)
}

// SSDMetric3rdParty provides a squared difference value and its derivative.
type SSDMetric3rdParty struct {
	*component.Base
	ssd
}

func NewSSDMetric3rdParty(name string) *SSDMetric3rdParty {
	m := &SSDMetric3rdParty{Base: component.NewBase(name, SSDMetric3rdPartyClass, nil)}
	m.SetVersion(Version3rdParty)
	m.Provides(component.NewInterface(MetricDerivativeInterface), MetricDerivative(m))
	m.Provides(component.NewInterface(MetricValueInterface), MetricValue(m))
	return m
}

func (m *SSDMetric3rdParty) Derivative(x float64) float64 {
	return 2 * (x - m.target)
}

func (m *SSDMetric3rdParty) MeetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	return m.meetsCriterion(c)
}

// SSDMetric4thParty provides only the squared difference value.
type SSDMetric4thParty struct {
	*component.Base
	ssd
}

func NewSSDMetric4thParty(name string) *SSDMetric4thParty {
	m := &SSDMetric4thParty{Base: component.NewBase(name, SSDMetric4thPartyClass, nil)}
	m.SetVersion(Version4thParty)
	m.Provides(component.NewInterface(MetricValueInterface), MetricValue(m))
	return m
}

func (m *SSDMetric4thParty) MeetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	return m.meetsCriterion(c)
}

// TransformComponent1 shifts positions by a fixed offset.
type TransformComponent1 struct {
	*component.Base
	offset float64
}

// OffsetKey sets the shift of TransformComponent1.
const OffsetKey = "Offset"

func NewTransformComponent1(name string) *TransformComponent1 {
	t := &TransformComponent1{Base: component.NewBase(name, TransformComponent1Class, nil)}
	t.SetVersion(Version1)
	t.Provides(component.NewInterface(TransformedInterface), Transform(t))
	return t
}

func (t *TransformComponent1) Transform(x float64) float64 { return x + t.offset }

func (t *TransformComponent1) MeetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	if c.Key != OffsetKey {
		return criteria.Unknown, nil
	}
	return floatSetting(c, &t.offset)
}

// MetricComponent1 measures the squared magnitude of a transformed position.
type MetricComponent1 struct {
	*component.Base
	transform Transform
}

func NewMetricComponent1(name string) *MetricComponent1 {
	m := &MetricComponent1{Base: component.NewBase(name, MetricComponent1Class, nil)}
	m.SetVersion(Version1)
	component.Accept(m.Base, component.NewInterface(TransformedInterface), func(t Transform) error {
		m.transform = t
		return nil
	})
	m.Provides(component.NewInterface(MetricValueInterface), MetricValue(m))
	return m
}

func (m *MetricComponent1) Value(x float64) float64 {
	y := m.transform.Transform(x)
	return y * y
}
