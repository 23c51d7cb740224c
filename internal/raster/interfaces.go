package raster

import (
	"strconv"

	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
)

// Names of the image interfaces.
const (
	ImageInterface       = "ImageInterface"
	FixedImageInterface  = "FixedImageInterface"
	MovingImageInterface = "MovingImageInterface"
)

// Tag builds an image interface carrying dimension and pixel type, so only
// components of the same image type connect.
func Tag(name string, dim int, pixelType string) component.Interface {
	return component.NewInterface(name,
		criteria.Dimensionality, strconv.Itoa(dim),
		criteria.PixelType, pixelType,
	)
}

// Properties returns the template properties of an image component.
func Properties(dim int, pixelType string) criteria.Properties {
	return criteria.Properties{
		criteria.Dimensionality: strconv.Itoa(dim),
		criteria.PixelType:      pixelType,
	}
}

// Dimensions and pixel types every image component is registered for.
var (
	Dimensions = []int{2, 3}
	PixelTypes = []string{Float, Double}
)
