package filters

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/ctxlog"
	"github.com/vk/superelastix/internal/raster"
)

// RegistrationClass is the class name of TranslationRegistration.
const RegistrationClass = "TranslationRegistration"

// MaximumShiftKey bounds the searched translation per axis.
const MaximumShiftKey = "MaximumShift"

// TranslationRegistration finds the integer translation of the moving image
// that best matches the fixed image by mean squared difference, and
// provides the moving image resampled onto the fixed grid.
type TranslationRegistration struct {
	*component.Base
	dim      int
	maxShift int
	fixed    raster.Provider
	moving   raster.Provider
	shift    []int
	output   *raster.Image
}

// NewTranslationRegistration creates a registration searching shifts up to 3.
func NewTranslationRegistration(name string, dim int, pixelType string) *TranslationRegistration {
	r := &TranslationRegistration{
		Base:     component.NewBase(name, RegistrationClass, raster.Properties(dim, pixelType)),
		dim:      dim,
		maxShift: 3,
	}
	r.SetVersion(Version)
	component.Accept(r.Base, raster.Tag(raster.FixedImageInterface, dim, pixelType), func(p raster.Provider) error {
		r.fixed = p
		return nil
	})
	component.Accept(r.Base, raster.Tag(raster.MovingImageInterface, dim, pixelType), func(p raster.Provider) error {
		r.moving = p
		return nil
	})
	r.Provides(raster.Tag(raster.ImageInterface, dim, pixelType), raster.Provider(r))
	r.Provides(component.NewInterface(criteria.UpdateInterface), component.Updater(r))
	return r
}

// MeetsCriterion applies the MaximumShift setting.
func (r *TranslationRegistration) MeetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	if c.Key != MaximumShiftKey {
		return criteria.Unknown, nil
	}
	return nonNegativeInt(c, &r.maxShift)
}

// Shift returns the translation found by the last update.
func (r *TranslationRegistration) Shift() []int {
	return append([]int(nil), r.shift...)
}

func (r *TranslationRegistration) BeforeUpdate(context.Context) error {
	r.shift, r.output = nil, nil
	return nil
}

func (r *TranslationRegistration) Update(ctx context.Context) error {
	fixed, err := r.fixed.Image()
	if err != nil {
		return err
	}
	moving, err := r.moving.Image()
	if err != nil {
		return err
	}
	if !fixed.SameGeometry(moving) {
		return fmt.Errorf("registration '%s': fixed image %v and moving image %v differ in size", r.Name(), fixed.Size, moving.Size)
	}

	best := math.Inf(1)
	var bestShift []int
	neighbourhood(r.dim, r.maxShift, func(offset []int) {
		cost, ok := meanSquaredDifference(fixed, moving, offset)
		if ok && cost < best {
			best = cost
			bestShift = append(bestShift[:0], offset...)
		}
	})
	if bestShift == nil {
		return errors.New("registration '" + r.Name() + "': no shift overlaps the images")
	}

	r.shift = bestShift
	r.output = resample(fixed, moving, bestShift)
	ctxlog.FromContext(ctx).Debug("Registration finished.", "component", r.Name(), "shift", bestShift, "cost", best)
	return nil
}

// Image returns the moving image resampled with the found translation.
func (r *TranslationRegistration) Image() (*raster.Image, error) {
	if r.output == nil {
		return nil, errors.New("registration '" + r.Name() + "' has not been updated")
	}
	return r.output, nil
}

// meanSquaredDifference compares fixed(x) with moving(x+shift) over the
// overlap of both images.
func meanSquaredDifference(fixed, moving *raster.Image, shift []int) (float64, bool) {
	coord := make([]int, 0, len(shift))
	probe := make([]int, len(shift))
	sum, n := 0.0, 0
	for idx, v := range fixed.Pixels {
		coord = fixed.Coord(idx, coord)
		for axis := range probe {
			probe[axis] = coord[axis] + shift[axis]
		}
		j, ok := moving.Index(probe)
		if !ok {
			continue
		}
		d := v - moving.Pixels[j]
		sum += d * d
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func resample(fixed, moving *raster.Image, shift []int) *raster.Image {
	out := raster.New(moving.PixelType, fixed.Size...)
	coord := make([]int, 0, len(shift))
	probe := make([]int, len(shift))
	for idx := range out.Pixels {
		coord = out.Coord(idx, coord)
		for axis := range probe {
			probe[axis] = coord[axis] + shift[axis]
		}
		if j, ok := moving.Index(probe); ok {
			out.Pixels[idx] = moving.Pixels[j]
		}
	}
	return out
}
