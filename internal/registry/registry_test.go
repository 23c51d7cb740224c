package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/registry"
	"github.com/vk/superelastix/internal/testutil"
)

func TestRegisterVariantKeepsOrder(t *testing.T) {
	// --- Arrange ---
	mod := testutil.Module{
		{Class: "B", Props: criteria.Properties{criteria.Dimensionality: "2"}},
		{Class: "B", Props: criteria.Properties{criteria.Dimensionality: "3"}},
		{Class: "A"},
	}

	// --- Act ---
	r := registry.New(mod)

	// --- Assert ---
	require.Equal(t, 3, r.Len())
	var keys []string
	for _, v := range r.Variants() {
		keys = append(keys, v.Key())
	}
	assert.Equal(t, []string{"B;Dimensionality=2", "B;Dimensionality=3", "A"}, keys)

	instances := r.Instantiate("node")
	require.Len(t, instances, 3)
	for _, c := range instances {
		assert.Equal(t, "node", c.Name())
	}
	assert.NotSame(t, instances[0], r.Instantiate("node")[0])
}

func TestRegisterVariantPanicsOnDuplicate(t *testing.T) {
	r := registry.New()
	r.RegisterVariant(testutil.Variant(testutil.Shape{Class: "A"}))

	assert.Panics(t, func() {
		r.RegisterVariant(testutil.Variant(testutil.Shape{Class: "A"}))
	})
	assert.Panics(t, func() {
		r.RegisterVariant(registry.Variant{ClassName: "NoConstructor"})
	})
}

func TestValidateRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("consistent variants pass", func(t *testing.T) {
		r := registry.New(testutil.Module{
			{Class: "A", Version: "1.2.0", Providing: []component.Interface{component.NewInterface("X")}},
		})
		require.NoError(t, r.ValidateRegistry(ctx))
	})

	t.Run("mismatches are collected", func(t *testing.T) {
		// --- Arrange ---
		r := registry.New()
		r.RegisterVariant(registry.Variant{
			ClassName:          "Declared",
			TemplateProperties: criteria.Properties{criteria.PixelType: "float"},
			New: func(name string) component.Component {
				return testutil.New(name, testutil.Shape{Class: "Actual", Props: criteria.Properties{criteria.PixelType: "double"}})
			},
		})
		r.RegisterVariant(testutil.Variant(testutil.Shape{
			Class:     "Twice",
			Version:   "banana",
			Providing: []component.Interface{component.NewInterface("X"), component.NewInterface("X")},
		}))

		// --- Act ---
		err := r.ValidateRegistry(ctx)

		// --- Assert ---
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registry validation failed")
		assert.Contains(t, err.Error(), "instance reports class 'Actual'")
		assert.Contains(t, err.Error(), "template property 'PixelType'")
		assert.Contains(t, err.Error(), "invalid version 'banana'")
		assert.Contains(t, err.Error(), "providing interface X declared twice")
	})
}
