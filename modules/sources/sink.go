package sources

import (
	"errors"
	"fmt"

	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/raster"
)

// SinkClass is the class name of ImageSink.
const SinkClass = "ImageSink"

// ImageSink exposes the image it is connected to as a network output.
type ImageSink struct {
	*component.Base
	pixelType string
	upstream  raster.Provider
}

// NewImageSink creates an ImageSink for one image type.
func NewImageSink(name string, dim int, pixelType string) *ImageSink {
	s := &ImageSink{
		Base:      component.NewBase(name, SinkClass, raster.Properties(dim, pixelType)),
		pixelType: pixelType,
	}
	s.SetVersion(Version)
	component.Accept(s.Base, raster.Tag(raster.ImageInterface, dim, pixelType), func(p raster.Provider) error {
		s.upstream = p
		return nil
	})
	s.Provides(component.NewInterface(criteria.SinkInterface), component.Sink(s))
	return s
}

// InitializedOutput returns an empty image of the sink's pixel type.
func (s *ImageSink) InitializedOutput() any {
	return &raster.Image{PixelType: s.pixelType}
}

// Output returns a copy of the connected image.
func (s *ImageSink) Output() (any, error) {
	if s.upstream == nil {
		return nil, errors.New("image sink '" + s.Name() + "' is not connected")
	}
	im, err := s.upstream.Image()
	if err != nil {
		return nil, err
	}
	return im.Clone(), nil
}

// FileWriter writes image documents.
func (s *ImageSink) FileWriter() component.FileWriter { return s }

// WriteFile stores an image document.
func (s *ImageSink) WriteFile(path string, data any) error {
	im, ok := data.(*raster.Image)
	if !ok || im == nil {
		return fmt.Errorf("image sink '%s' cannot write %T", s.Name(), data)
	}
	return raster.WriteFile(path, im)
}
