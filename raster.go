package inkpack

import (
	"fmt"
	"image"
	"image/draw"
	"math"
)

// Raster is a row-major RGBA pixel buffer, 4 bytes per pixel. Width and
// Height are always supplied with the buffer and never inferred from it.
type Raster struct {
	Pix    []byte
	Width  int
	Height int
}

// NewRaster allocates a transparent black raster of the given size.
func NewRaster(width, height int) (*Raster, error) {
	if !ValidSize(width, height) {
		return nil, fmt.Errorf("inkpack: NewRaster: %dx%d: %w", width, height, ErrInvalidDimensions)
	}
	return &Raster{
		Pix:    make([]byte, width*height*4),
		Width:  width,
		Height: height,
	}, nil
}

// Validate reports whether the raster's dimensions and buffer agree.
func (r *Raster) Validate() error {
	if r == nil || !ValidSize(r.Width, r.Height) {
		return ErrInvalidDimensions
	}
	if len(r.Pix) != r.Width*r.Height*4 {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrBufferSize,
			len(r.Pix), r.Width*r.Height*4)
	}
	return nil
}

// ValidSize reports whether a width x height raster can exist: both sides
// positive and width*height*4 representable as an int.
func ValidSize(width, height int) bool {
	return width > 0 && height > 0 && width <= math.MaxInt/4/height
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]byte, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Pix: pix, Width: r.Width, Height: r.Height}
}

// Image returns an *image.RGBA view sharing the raster's pixels.
func (r *Raster) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// FromImage copies img into a new raster anchored at the origin.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		pix := make([]byte, len(rgba.Pix[:b.Dx()*b.Dy()*4]))
		copy(pix, rgba.Pix)
		return &Raster{Pix: pix, Width: b.Dx(), Height: b.Dy()}
	}

	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return &Raster{Pix: dst.Pix, Width: b.Dx(), Height: b.Dy()}
}

// offset returns the index of the red sample of pixel (x, y), or -1 when the
// pixel lies outside the canvas.
func (r *Raster) offset(x, y int) int {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return -1
	}
	return (y*r.Width + x) * 4
}
