package filters

import (
	"context"
	"errors"

	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/ctxlog"
	"github.com/vk/superelastix/internal/raster"
)

// SmoothingClass is the class name of BoxSmoothingFilter.
const SmoothingClass = "BoxSmoothingFilter"

// RadiusKey sets the half width of the smoothing box.
const RadiusKey = "Radius"

// BoxSmoothingFilter replaces every pixel by the mean of the pixels inside a
// box around it. Pixels outside the image are ignored.
type BoxSmoothingFilter struct {
	*component.Base
	dim    int
	radius int
	input  raster.Provider
	output *raster.Image
}

// NewBoxSmoothingFilter creates a smoothing filter with radius 1.
func NewBoxSmoothingFilter(name string, dim int, pixelType string) *BoxSmoothingFilter {
	f := &BoxSmoothingFilter{
		Base:   component.NewBase(name, SmoothingClass, raster.Properties(dim, pixelType)),
		dim:    dim,
		radius: 1,
	}
	f.SetVersion(Version)
	component.Accept(f.Base, raster.Tag(raster.ImageInterface, dim, pixelType), func(p raster.Provider) error {
		f.input = p
		return nil
	})
	f.Provides(raster.Tag(raster.ImageInterface, dim, pixelType), raster.Provider(f))
	f.Provides(component.NewInterface(criteria.UpdateInterface), component.Updater(f))
	return f
}

// MeetsCriterion applies the Radius setting.
func (f *BoxSmoothingFilter) MeetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	if c.Key != RadiusKey {
		return criteria.Unknown, nil
	}
	return nonNegativeInt(c, &f.radius)
}

// Radius returns the configured radius.
func (f *BoxSmoothingFilter) Radius() int { return f.radius }

func (f *BoxSmoothingFilter) BeforeUpdate(context.Context) error {
	f.output = nil
	return nil
}

func (f *BoxSmoothingFilter) Update(ctx context.Context) error {
	in, err := f.input.Image()
	if err != nil {
		return err
	}
	out := raster.New(in.PixelType, in.Size...)
	coord := make([]int, 0, f.dim)
	probe := make([]int, f.dim)
	for idx := range in.Pixels {
		coord = in.Coord(idx, coord)
		sum, n := 0.0, 0
		neighbourhood(f.dim, f.radius, func(offset []int) {
			for axis := range probe {
				probe[axis] = coord[axis] + offset[axis]
			}
			if j, ok := in.Index(probe); ok {
				sum += in.Pixels[j]
				n++
			}
		})
		out.Pixels[idx] = sum / float64(n)
	}
	f.output = out
	ctxlog.FromContext(ctx).Debug("Image smoothed.", "component", f.Name(), "radius", f.radius, "pixels", out.Len())
	return nil
}

// Image returns the smoothed image.
func (f *BoxSmoothingFilter) Image() (*raster.Image, error) {
	if f.output == nil {
		return nil, errors.New("smoothing filter '" + f.Name() + "' has not been updated")
	}
	return f.output, nil
}
