// Package raster holds the in-memory N-dimensional image exchanged between
// the image components, and its YAML document form.
package raster

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Supported pixel types.
const (
	Float  = "float"
	Double = "double"
)

// Image is a dense scalar image stored in x-fastest order.
type Image struct {
	Size      []int     `yaml:"size"`
	PixelType string    `yaml:"pixelType"`
	Pixels    []float64 `yaml:"pixels"`
}

// Provider is the handle behind every image interface.
type Provider interface {
	Image() (*Image, error)
}

// New returns a zero image of the given size.
func New(pixelType string, size ...int) *Image {
	n := 1
	for _, s := range size {
		n *= s
	}
	return &Image{Size: append([]int(nil), size...), PixelType: pixelType, Pixels: make([]float64, n)}
}

// Dimension returns the number of axes.
func (im *Image) Dimension() int { return len(im.Size) }

// Len returns the number of pixels.
func (im *Image) Len() int { return len(im.Pixels) }

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	return &Image{
		Size:      append([]int(nil), im.Size...),
		PixelType: im.PixelType,
		Pixels:    append([]float64(nil), im.Pixels...),
	}
}

// Validate checks that the pixel count matches the size.
func (im *Image) Validate() error {
	if len(im.Size) == 0 {
		return errors.New("image has no size")
	}
	n := 1
	for axis, s := range im.Size {
		if s <= 0 {
			return fmt.Errorf("image axis %d has size %d", axis, s)
		}
		n *= s
	}
	if n != len(im.Pixels) {
		return fmt.Errorf("image of size %v needs %d pixels, has %d", im.Size, n, len(im.Pixels))
	}
	return nil
}

// SameGeometry reports whether both images have the same size.
func (im *Image) SameGeometry(other *Image) bool {
	if len(im.Size) != len(other.Size) {
		return false
	}
	for i := range im.Size {
		if im.Size[i] != other.Size[i] {
			return false
		}
	}
	return true
}

// Index converts coordinates to a pixel offset. It reports false outside
// the image.
func (im *Image) Index(coord []int) (int, bool) {
	idx, stride := 0, 1
	for axis, c := range coord {
		if c < 0 || c >= im.Size[axis] {
			return 0, false
		}
		idx += c * stride
		stride *= im.Size[axis]
	}
	return idx, true
}

// Coord converts a pixel offset to coordinates, writing into dst.
func (im *Image) Coord(idx int, dst []int) []int {
	dst = dst[:0]
	for _, s := range im.Size {
		dst = append(dst, idx%s)
		idx /= s
	}
	return dst
}

// Decode parses a YAML (or JSON) image document.
func Decode(data []byte) (*Image, error) {
	var im Image
	if err := yaml.Unmarshal(data, &im); err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return &im, nil
}

// ReadFile loads an image document from path.
func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	im, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return im, nil
}

// WriteFile stores im as a YAML document at path.
func WriteFile(path string, im *Image) error {
	data, err := yaml.Marshal(im)
	if err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
