package component

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/superelastix/internal/criteria"
)

type valueHandle struct{ v float64 }

// tunable overrides MeetsCriterion to apply a setting.
type tunable struct {
	*Base
	radius string
}

func (t *tunable) MeetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	if c.Key != "Radius" {
		return criteria.Unknown, nil
	}
	t.radius = c.Values[0]
	return criteria.Satisfied, nil
}

var (
	valueIface      = NewInterface("MetricValueInterface")
	derivativeIface = NewInterface("MetricDerivativeInterface")
)

func newProvider(name string, ifaces ...Interface) *Base {
	b := NewBase(name, "Provider", criteria.Properties{criteria.Dimensionality: "2"})
	for _, i := range ifaces {
		b.Provides(i, &valueHandle{v: 1})
	}
	return b
}

func newAcceptor(name string, got *[]*valueHandle, ifaces ...Interface) *Base {
	b := NewBase(name, "Acceptor", nil)
	for _, i := range ifaces {
		Accept(b, i, func(h *valueHandle) error {
			*got = append(*got, h)
			return nil
		})
	}
	return b
}

func TestInterfaceMeetsCriteria(t *testing.T) {
	i := NewInterface("ImageInterface", criteria.Dimensionality, "3", criteria.PixelType, "float")

	assert.True(t, i.MeetsCriteria(nil))
	assert.True(t, i.MeetsCriteria(criteria.InterfaceCriteria{criteria.NameOfInterface: "ImageInterface"}))
	assert.True(t, i.MeetsCriteria(criteria.InterfaceCriteria{criteria.Dimensionality: "3"}))
	assert.False(t, i.MeetsCriteria(criteria.InterfaceCriteria{criteria.Dimensionality: "2"}))
	assert.False(t, i.MeetsCriteria(criteria.InterfaceCriteria{"Unrelated": "x"}))
}

func TestCanAcceptConnectionFrom(t *testing.T) {
	var got []*valueHandle

	t.Run("single match is success", func(t *testing.T) {
		acc := newAcceptor("opt", &got, valueIface)
		assert.Equal(t, Success, acc.CanAcceptConnectionFrom(newProvider("m", valueIface, derivativeIface), nil))
	})

	t.Run("two matches is multiple", func(t *testing.T) {
		acc := newAcceptor("opt", &got, valueIface, derivativeIface)
		assert.Equal(t, Multiple, acc.CanAcceptConnectionFrom(newProvider("m", valueIface, derivativeIface), nil))
	})

	t.Run("criteria narrow multiple to success", func(t *testing.T) {
		acc := newAcceptor("opt", &got, valueIface, derivativeIface)
		ic := criteria.InterfaceCriteria{criteria.NameOfInterface: "MetricValueInterface"}
		assert.Equal(t, Success, acc.CanAcceptConnectionFrom(newProvider("m", valueIface, derivativeIface), ic))
	})

	t.Run("accepting interface missing on provider", func(t *testing.T) {
		acc := newAcceptor("opt", &got, valueIface, derivativeIface)
		assert.Equal(t, NoProvider, acc.CanAcceptConnectionFrom(newProvider("m", valueIface), criteria.InterfaceCriteria{criteria.NameOfInterface: "MetricDerivativeInterface"}))
	})

	t.Run("no accepting interface meets criteria", func(t *testing.T) {
		acc := newAcceptor("opt", &got, valueIface)
		assert.Equal(t, NoAccepter, acc.CanAcceptConnectionFrom(newProvider("m", valueIface), criteria.InterfaceCriteria{criteria.NameOfInterface: "Other"}))
	})
}

func TestAcceptConnectionFromAndSatisfied(t *testing.T) {
	// --- Arrange ---
	var got []*valueHandle
	acc := newAcceptor("opt", &got, valueIface, derivativeIface)
	require.False(t, acc.ConnectionsSatisfied())

	// --- Act ---
	n, err := acc.AcceptConnectionFrom(newProvider("m", valueIface, derivativeIface), nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, got, 2)
	assert.True(t, acc.ConnectionsSatisfied())
}

func TestOptionalAcceptingInterface(t *testing.T) {
	b := NewBase("sink", "Sink", nil)
	AcceptOptional(b, valueIface, func(*valueHandle) error { return nil })
	assert.True(t, b.ConnectionsSatisfied())
}

func TestAcceptPropagatesHandleErrors(t *testing.T) {
	b := NewBase("a", "A", nil)
	boom := errors.New("boom")
	Accept(b, valueIface, func(*valueHandle) error { return boom })

	n, err := b.AcceptConnectionFrom(newProvider("p", valueIface), nil)

	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, boom)
}

func TestEvaluate(t *testing.T) {
	var got []*valueHandle
	acc := &tunable{Base: newAcceptor("opt", &got, valueIface)}
	acc.SetVersion("1.4.2")
	prov := newProvider("m", valueIface, derivativeIface)

	cases := []struct {
		name string
		c    Component
		crit criteria.Criterion
		want criteria.Status
	}{
		{"class matches", prov, criteria.Criterion{Key: criteria.NameOfClass, Values: []string{"Provider"}}, criteria.Satisfied},
		{"class differs", prov, criteria.Criterion{Key: criteria.NameOfClass, Values: []string{"Acceptor"}}, criteria.Failed},
		{"has all providing", prov, criteria.Criterion{Key: criteria.HasProvidingInterface, Values: []string{"MetricValueInterface", "MetricDerivativeInterface"}}, criteria.Satisfied},
		{"missing providing", acc, criteria.Criterion{Key: criteria.HasProvidingInterface, Values: []string{"MetricValueInterface"}}, criteria.Failed},
		{"has accepting", acc, criteria.Criterion{Key: criteria.HasAcceptingInterface, Values: []string{"MetricValueInterface"}}, criteria.Satisfied},
		{"template property", prov, criteria.Criterion{Key: criteria.Dimensionality, Values: []string{"2"}}, criteria.Satisfied},
		{"undeclared template property", acc, criteria.Criterion{Key: criteria.Dimensionality, Values: []string{"2"}}, criteria.Unknown},
		{"version in range", acc, criteria.Criterion{Key: criteria.Version, Values: []string{">=1.0.0", "<2.0.0"}}, criteria.Satisfied},
		{"version out of range", acc, criteria.Criterion{Key: criteria.Version, Values: []string{"^2"}}, criteria.Failed},
		{"no version declared", prov, criteria.Criterion{Key: criteria.Version, Values: []string{">=0.0.0"}}, criteria.Failed},
		{"component predicate", acc, criteria.Criterion{Key: "Radius", Values: []string{"3"}}, criteria.Satisfied},
		{"unknown key", prov, criteria.Criterion{Key: "Radius", Values: []string{"3"}}, criteria.Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.c, tc.crit)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Equal(t, "3", acc.radius)
}

func TestEvaluateErrors(t *testing.T) {
	prov := newProvider("m", valueIface)

	_, err := Evaluate(prov, criteria.Criterion{Key: criteria.NameOfClass, Values: []string{"A", "B"}})
	assert.Error(t, err)

	_, err = Evaluate(prov, criteria.Criterion{Key: criteria.Dimensionality, Values: []string{"2", "3"}})
	assert.Error(t, err)

	_, err = Evaluate(prov, criteria.Criterion{Key: criteria.Version, Values: []string{"not a constraint"}})
	assert.Error(t, err)
}
