package sources

import (
	"errors"
	"fmt"

	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/raster"
)

// SourceClass is the class name of ImageSource.
const SourceClass = "ImageSource"

// ImageSource feeds an externally supplied image into the network. It
// provides the image as plain, fixed and moving image.
type ImageSource struct {
	*component.Base
	dim       int
	pixelType string
	image     *raster.Image
}

// NewImageSource creates an ImageSource for one image type.
func NewImageSource(name string, dim int, pixelType string) *ImageSource {
	s := &ImageSource{
		Base:      component.NewBase(name, SourceClass, raster.Properties(dim, pixelType)),
		dim:       dim,
		pixelType: pixelType,
	}
	s.SetVersion(Version)
	for _, iface := range []string{raster.ImageInterface, raster.FixedImageInterface, raster.MovingImageInterface} {
		s.Provides(raster.Tag(iface, dim, pixelType), raster.Provider(s))
	}
	s.Provides(component.NewInterface(criteria.SourceInterface), component.Source(s))
	return s
}

// SetInput accepts a *raster.Image of the source's dimension. An image
// without pixel type takes the source's.
func (s *ImageSource) SetInput(data any) error {
	im, ok := data.(*raster.Image)
	if !ok || im == nil {
		return fmt.Errorf("image source '%s' expects *raster.Image, got %T", s.Name(), data)
	}
	if err := im.Validate(); err != nil {
		return fmt.Errorf("image source '%s': %w", s.Name(), err)
	}
	if im.Dimension() != s.dim {
		return fmt.Errorf("image source '%s' expects a %dD image, got %dD", s.Name(), s.dim, im.Dimension())
	}
	im = im.Clone()
	if im.PixelType == "" {
		im.PixelType = s.pixelType
	}
	if im.PixelType != s.pixelType {
		return fmt.Errorf("image source '%s' expects pixel type %s, got %s", s.Name(), s.pixelType, im.PixelType)
	}
	s.image = im
	return nil
}

// Image returns the supplied image.
func (s *ImageSource) Image() (*raster.Image, error) {
	if s.image == nil {
		return nil, errors.New("image source '" + s.Name() + "' has no input")
	}
	return s.image, nil
}

// FileReader reads image documents.
func (s *ImageSource) FileReader() component.FileReader { return s }

// ReadFile loads an image document.
func (s *ImageSource) ReadFile(path string) (any, error) {
	im, err := raster.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return im, nil
}
