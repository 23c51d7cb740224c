package sources

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/superelastix/internal/blueprint"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/network"
	"github.com/vk/superelastix/internal/raster"
	"github.com/vk/superelastix/internal/registry"
)

func TestModuleRegistersEveryImageType(t *testing.T) {
	// --- Arrange / Act ---
	reg := registry.New(&Module{})

	// --- Assert ---
	assert.Equal(t, 2*len(raster.Dimensions)*len(raster.PixelTypes), reg.Len())
	require.NoError(t, reg.ValidateRegistry(context.Background()))
}

func TestSourceSetInput(t *testing.T) {
	s := NewImageSource("in", 2, raster.Double)

	_, err := s.Image()
	require.Error(t, err, "image before input")

	t.Run("pixel type is filled in", func(t *testing.T) {
		im := &raster.Image{Size: []int{2, 1}, Pixels: []float64{1, 2}}
		require.NoError(t, s.SetInput(im))
		got, err := s.Image()
		require.NoError(t, err)
		assert.Equal(t, raster.Double, got.PixelType)
		assert.Empty(t, im.PixelType, "caller's image is not modified")
	})

	t.Run("wrong dimension", func(t *testing.T) {
		err := s.SetInput(raster.New(raster.Double, 2, 2, 2))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expects a 2D image")
	})

	t.Run("wrong pixel type", func(t *testing.T) {
		err := s.SetInput(raster.New(raster.Float, 2, 2))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pixel type")
	})

	t.Run("wrong data type", func(t *testing.T) {
		err := s.SetInput("pixels")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expects *raster.Image")
	})
}

func TestFileRoundTrip(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "image.yaml")
	src := NewImageSource("in", 2, raster.Float)
	sink := NewImageSink("out", 2, raster.Float)
	_, err := sink.AcceptConnectionFrom(src, nil)
	require.NoError(t, err)
	im := raster.New(raster.Float, 2, 2)
	im.Pixels = []float64{1, 2, 3, 4}
	require.NoError(t, src.SetInput(im))

	// --- Act ---
	out, err := sink.Output()
	require.NoError(t, err)
	require.NoError(t, sink.FileWriter().WriteFile(path, out))
	read, err := src.FileReader().ReadFile(path)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, im, read)
}

func TestSinkRejectsForeignData(t *testing.T) {
	sink := NewImageSink("out", 3, raster.Float)

	_, err := sink.Output()
	require.Error(t, err)
	assert.Equal(t, &raster.Image{PixelType: raster.Float}, sink.InitializedOutput())
	assert.Error(t, sink.WriteFile(filepath.Join(t.TempDir(), "x.yaml"), "pixels"))
}

func TestHandshakePicksMatchingSink(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	bp := blueprint.New()
	bp.SetComponent("in", criteria.Map{
		criteria.NameOfClass:    {SourceClass},
		criteria.Dimensionality: {"3"},
		criteria.PixelType:      {raster.Double},
	})
	bp.SetComponent("out", criteria.Map{criteria.NameOfClass: {SinkClass}})
	bp.SetConnection("in", "out", nil)
	b := network.NewBuilder(registry.New(&Module{}), bp)

	// --- Act ---
	unique, err := b.Configure(ctx)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, unique, "residual: %v", b.Residual())
	sinks, err := b.SinkInterfaces()
	require.NoError(t, err)
	require.Contains(t, sinks, "out")
	assert.Equal(t, &raster.Image{PixelType: raster.Double}, sinks["out"].InitializedOutput())
}
