// Package sources provides the components that bring images into a network
// and take results out of it.
package sources

import (
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/raster"
	"github.com/vk/superelastix/internal/registry"
)

// Version of the source and sink components.
const Version = "1.0.0"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers an ImageSource and an ImageSink for every supported
// image type.
func (m *Module) Register(r *registry.Registry) {
	for _, dim := range raster.Dimensions {
		for _, pt := range raster.PixelTypes {
			r.RegisterVariant(registry.Variant{
				ClassName:          SourceClass,
				TemplateProperties: raster.Properties(dim, pt),
				Version:            Version,
				New: func(name string) component.Component {
					return NewImageSource(name, dim, pt)
				},
			})
			r.RegisterVariant(registry.Variant{
				ClassName:          SinkClass,
				TemplateProperties: raster.Properties(dim, pt),
				Version:            Version,
				New: func(name string) component.Component {
					return NewImageSink(name, dim, pt)
				},
			})
		}
	}
}
