// Package filters provides updatable image processing components.
package filters

import (
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/raster"
	"github.com/vk/superelastix/internal/registry"
)

// Version of the filter components.
const Version = "1.2.0"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every filter for every supported image type.
func (m *Module) Register(r *registry.Registry) {
	for _, dim := range raster.Dimensions {
		for _, pt := range raster.PixelTypes {
			r.RegisterVariant(registry.Variant{
				ClassName:          SmoothingClass,
				TemplateProperties: raster.Properties(dim, pt),
				Version:            Version,
				New: func(name string) component.Component {
					return NewBoxSmoothingFilter(name, dim, pt)
				},
			})
			r.RegisterVariant(registry.Variant{
				ClassName:          RegistrationClass,
				TemplateProperties: raster.Properties(dim, pt),
				Version:            Version,
				New: func(name string) component.Component {
					return NewTranslationRegistration(name, dim, pt)
				},
			})
		}
	}
}
