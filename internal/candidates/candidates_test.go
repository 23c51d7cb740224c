package candidates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/registry"
	"github.com/vk/superelastix/internal/testutil"
	"pgregory.net/rapid"
)

var (
	value      = component.NewInterface("MetricValueInterface")
	derivative = component.NewInterface("MetricDerivativeInterface")
)

func catalog() *registry.Registry {
	return registry.New(testutil.Module{
		{Class: "SSDMetric3rdParty", Providing: []component.Interface{value, derivative}},
		{Class: "SSDMetric4thParty", Providing: []component.Interface{value}},
		{Class: "GDOptimizer3rdParty", Accepting: []component.Interface{value, derivative}},
		{Class: "GDOptimizer4thParty", Accepting: []component.Interface{value}},
		{Class: "DerivativeOptimizer", Accepting: []component.Interface{derivative}},
		{Class: "Image2D", Props: criteria.Properties{criteria.Dimensionality: "2"}},
		{Class: "Image3D", Props: criteria.Properties{criteria.Dimensionality: "3"}},
		{Class: "Smoother", Known: map[string][]string{"Radius": {"1", "2"}}},
	})
}

func TestNarrowByCriterion(t *testing.T) {
	t.Run("class name leaves one", func(t *testing.T) {
		s := New("n", catalog())
		require.NoError(t, s.NarrowByCriterion(criteria.Criterion{Key: criteria.NameOfClass, Values: []string{"Image3D"}}))
		c, ok := s.UniqueSurvivor()
		require.True(t, ok)
		assert.Equal(t, "Image3D", c.ClassName())
	})

	t.Run("template property keeps undeclared", func(t *testing.T) {
		s := New("n", catalog())
		require.NoError(t, s.NarrowByCriterion(criteria.Criterion{Key: criteria.Dimensionality, Values: []string{"2"}}))
		assert.NotContains(t, s.ClassNames(), "Image3D")
		assert.Contains(t, s.ClassNames(), "Image2D")
		assert.Equal(t, 7, s.Size())
	})

	t.Run("component predicate", func(t *testing.T) {
		s := New("n", catalog())
		require.NoError(t, s.NarrowByCriterion(criteria.Criterion{Key: "Radius", Values: []string{"7"}}))
		assert.NotContains(t, s.ClassNames(), "Smoother")
	})

	t.Run("evaluation error is reported", func(t *testing.T) {
		s := New("n", catalog())
		err := s.NarrowByCriterion(criteria.Criterion{Key: criteria.Dimensionality, Values: []string{"2", "3"}})
		assert.ErrorContains(t, err, "component 'n'")
	})

	t.Run("has providing interface", func(t *testing.T) {
		s := New("n", catalog())
		require.NoError(t, s.NarrowByCriterion(criteria.Criterion{Key: criteria.HasProvidingInterface, Values: []string{"MetricValueInterface", "MetricDerivativeInterface"}}))
		assert.Equal(t, []string{"SSDMetric3rdParty"}, s.ClassNames())
	})
}

func TestNarrowByInterfaceCriteria(t *testing.T) {
	s := New("n", catalog())
	s.NarrowByProvidingInterfaceCriteria(criteria.InterfaceCriteria{criteria.NameOfInterface: "MetricDerivativeInterface"})
	assert.Equal(t, []string{"SSDMetric3rdParty"}, s.ClassNames())

	s = New("n", catalog())
	s.NarrowByAcceptingInterfaceCriteria(criteria.InterfaceCriteria{criteria.NameOfInterface: "MetricValueInterface"})
	assert.Equal(t, []string{"GDOptimizer3rdParty", "GDOptimizer4thParty"}, s.ClassNames())

	s = New("n", catalog())
	s.NarrowByAcceptingInterfaceCriteria(criteria.InterfaceCriteria{criteria.NameOfInterface: "Missing"})
	assert.Equal(t, 0, s.Size())
}

func TestHandshakeNarrowing(t *testing.T) {
	// --- Arrange ---
	metric := testutil.New("metric", testutil.Shape{Class: "SSDMetric4thParty", Providing: []component.Interface{value}})
	optimizers := New("optimizer", catalog())
	optimizers.NarrowByAcceptingInterfaceCriteria(nil)
	require.Equal(t, 3, optimizers.Size())

	// --- Act ---
	optimizers.NarrowByRequiredAcceptorFrom(metric, nil)

	// --- Assert ---
	assert.Equal(t, []string{"GDOptimizer3rdParty", "GDOptimizer4thParty"}, optimizers.ClassNames())

	// Reverse direction: both metrics feed the 3rd party optimizer until the
	// connection asks for the derivative.
	optimizer := testutil.New("optimizer", testutil.Shape{Class: "GDOptimizer3rdParty", Accepting: []component.Interface{value, derivative}})
	metrics := New("metric", catalog())
	metrics.NarrowByProvidingInterfaceCriteria(nil)
	metrics.NarrowByRequiredProviderFor(optimizer, nil)
	assert.Equal(t, []string{"SSDMetric3rdParty", "SSDMetric4thParty"}, metrics.ClassNames())

	metrics.NarrowByRequiredProviderFor(optimizer, criteria.InterfaceCriteria{criteria.NameOfInterface: "MetricDerivativeInterface"})
	assert.Equal(t, []string{"SSDMetric3rdParty"}, metrics.ClassNames())
}

func TestTake(t *testing.T) {
	s := New("n", catalog())
	_, err := s.Take()
	assert.ErrorContains(t, err, "has 8 candidates")

	require.NoError(t, s.NarrowByCriterion(criteria.Criterion{Key: criteria.NameOfClass, Values: []string{"Smoother"}}))
	c, err := s.Take()
	require.NoError(t, err)
	assert.Equal(t, "Smoother", c.ClassName())
	assert.Equal(t, 0, s.Size())
}

func TestNarrowingIsMonotonic(t *testing.T) {
	keys := []string{criteria.NameOfClass, criteria.Dimensionality, criteria.HasProvidingInterface, "Radius", "Unrelated"}
	vals := []string{"2", "3", "Smoother", "Image2D", "MetricValueInterface", "1"}

	rapid.Check(t, func(t *rapid.T) {
		s := New("n", catalog())
		before := s.ClassNames()
		steps := rapid.IntRange(1, 6).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			c := criteria.Criterion{
				Key:    rapid.SampledFrom(keys).Draw(t, "key"),
				Values: []string{rapid.SampledFrom(vals).Draw(t, "value")},
			}
			if err := s.NarrowByCriterion(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			after := s.ClassNames()
			if len(after) > len(before) {
				t.Fatalf("set grew from %v to %v", before, after)
			}
			for _, name := range after {
				if !contains(before, name) {
					t.Fatalf("%s appeared after narrowing", name)
				}
			}
			before = after
		}
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
