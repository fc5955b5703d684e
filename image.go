package inkpack

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/gift"
	"golang.org/x/image/draw"
)

// Fit controls how Prepare maps the source onto the target canvas.
type Fit int

const (
	// FitContain scales to fit inside the canvas, preserving aspect ratio,
	// and centres the result on the background.
	FitContain Fit = iota
	// FitCover scales to fill the canvas, preserving aspect ratio, and crops
	// the overflow evenly.
	FitCover
	// FitStretch scales each axis independently.
	FitStretch
)

// ParseFit maps contain, cover or stretch to a Fit. The empty string selects
// FitContain.
func ParseFit(name string) (Fit, error) {
	switch strings.ToLower(name) {
	case "", "contain":
		return FitContain, nil
	case "cover":
		return FitCover, nil
	case "stretch":
		return FitStretch, nil
	}
	return 0, fmt.Errorf("inkpack: unknown fit %q", name)
}

// PrepareOptions configures Prepare.
type PrepareOptions struct {
	// Target size; zero keeps the (rotated) source size on that axis.
	Width  int
	Height int
	Fit    Fit
	// Background fills the canvas outside the scaled image. Nil is white.
	Background color.Color

	Brightness float32 // percent, -100 to 100
	Contrast   float32 // percent, -100 to 100
	Gamma      float32 // zero or 1 leaves the image unchanged
	Rotate     int     // counter-clockwise degrees: 0, 90, 180 or 270
	FlipH      bool

	Parallel bool
}

func (o *PrepareOptions) validate() error {
	if o.Width < 0 || o.Height < 0 {
		return ErrInvalidDimensions
	}
	if o.Brightness < -100 || o.Brightness > 100 {
		return errors.New("inkpack: Prepare: brightness must be between -100 and 100")
	}
	if o.Contrast < -100 || o.Contrast > 100 {
		return errors.New("inkpack: Prepare: contrast must be between -100 and 100")
	}
	if o.Gamma < 0 {
		return errors.New("inkpack: Prepare: gamma cannot be negative")
	}
	switch o.Rotate {
	case 0, 90, 180, 270:
	default:
		return errors.New("inkpack: Prepare: rotation must be 0, 90, 180 or 270")
	}
	return nil
}

func (o *PrepareOptions) filters() []gift.Filter {
	var filters []gift.Filter
	switch o.Rotate {
	case 90:
		filters = append(filters, gift.Rotate90())
	case 180:
		filters = append(filters, gift.Rotate180())
	case 270:
		filters = append(filters, gift.Rotate270())
	}
	if o.FlipH {
		filters = append(filters, gift.FlipHorizontal())
	}
	if o.Brightness != 0 {
		filters = append(filters, gift.Brightness(o.Brightness))
	}
	if o.Contrast != 0 {
		filters = append(filters, gift.Contrast(o.Contrast))
	}
	if o.Gamma != 0 && o.Gamma != 1 {
		filters = append(filters, gift.Gamma(o.Gamma))
	}
	return filters
}

// Prepare turns a decoded image into a raster of the target size: it applies
// the geometric and tonal adjustments, then scales the result onto a filled
// background canvas.
func Prepare(src image.Image, opts PrepareOptions) (*Raster, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("inkpack: Prepare: empty source: %w", ErrInvalidDimensions)
	}

	g := gift.New(opts.filters()...)
	g.SetParallelization(opts.Parallel)
	adjusted := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(adjusted, src)

	sb := adjusted.Bounds()
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = sb.Dx()
	}
	if h == 0 {
		h = sb.Dy()
	}

	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	dr := fitRect(sb.Dx(), sb.Dy(), w, h, opts.Fit)
	if dr.Dx() == sb.Dx() && dr.Dy() == sb.Dy() {
		draw.Draw(canvas, dr, adjusted, sb.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, dr, adjusted, sb, draw.Over, nil)
	}

	Logger().Debug("prepare",
		"srcWidth", src.Bounds().Dx(), "srcHeight", src.Bounds().Dy(),
		"width", w, "height", h)

	return &Raster{Pix: canvas.Pix, Width: w, Height: h}, nil
}

// fitRect returns the destination rectangle of an sw x sh source on a
// w x h canvas. With FitCover the rectangle may extend past the canvas.
func fitRect(sw, sh, w, h int, fit Fit) image.Rectangle {
	if fit == FitStretch {
		return image.Rect(0, 0, w, h)
	}

	// Compare w/sw against h/sh without floating point.
	widthBound := w*sh <= h*sw
	if fit == FitCover {
		widthBound = !widthBound
	}

	var dw, dh int
	if widthBound {
		dw, dh = w, sh*w/sw
	} else {
		dw, dh = sw*h/sh, h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	x := (w - dw) / 2
	y := (h - dh) / 2
	return image.Rect(x, y, x+dw, y+dh)
}
