package inkpack

import (
	"fmt"
	"image/color"
	"strings"
)

// Diffusion selects how palette quantization spreads its residual.
type Diffusion int

const (
	// DiffusionStandard spreads residual/8 unweighted over the six Atkinson
	// neighbours of every channel.
	DiffusionStandard Diffusion = iota
	// DiffusionFloydSteinberg spreads residual/16 with weights 7, 3, 5 and 1.
	DiffusionFloydSteinberg
)

func (d Diffusion) String() string {
	if d == DiffusionFloydSteinberg {
		return "floydsteinberg"
	}
	return "standard"
}

// ParseDiffusion maps a name to a Diffusion. Anything other than a
// Floyd-Steinberg name selects DiffusionStandard.
func ParseDiffusion(name string) Diffusion {
	switch strings.ToLower(name) {
	case "floydsteinberg", "bwr_floydsteinberg":
		return DiffusionFloydSteinberg
	}
	return DiffusionStandard
}

// QuantizeOptions configures Quantize.
type QuantizeOptions struct {
	Diffusion Diffusion
	// Metric ranks palette entries. The zero value is Squared.
	Metric Metric
}

// QuantizeToPalette maps every pixel of r to its nearest entry of p by
// squared RGB distance, diffusing the residual with d.
func QuantizeToPalette(r *Raster, p Palette, d Diffusion) error {
	return Quantize(r, p, QuantizeOptions{Diffusion: d})
}

// Quantize maps every pixel of r to an entry of p in place, row-major, and
// diffuses the per-channel residual to unvisited neighbours. Alpha is never
// altered.
func Quantize(r *Raster, p Palette, opts QuantizeOptions) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if len(p) == 0 {
		return fmt.Errorf("inkpack: Quantize: empty palette: %w", ErrUnknownPalette)
	}

	Logger().Debug("quantize",
		"width", r.Width, "height", r.Height, "colors", len(p),
		"diffusion", opts.Diffusion.String(), "metric", opts.Metric.String())

	taps, div := atkinsonTaps[:], atkinsonDivisor
	if opts.Diffusion == DiffusionFloydSteinberg {
		taps, div = floydSteinbergTaps[:], floydSteinbergDivisor
	}

	pix := r.Pix
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			i := (y*r.Width + x) * 4
			orig := color.RGBA{pix[i], pix[i+1], pix[i+2], pix[i+3]}
			chosen := p[Nearest(orig, p, opts.Metric)]

			pix[i] = chosen.R
			pix[i+1] = chosen.G
			pix[i+2] = chosen.B

			spread(r, x, y, 0, floorDiv(int(orig.R)-int(chosen.R), div), taps)
			spread(r, x, y, 1, floorDiv(int(orig.G)-int(chosen.G), div), taps)
			spread(r, x, y, 2, floorDiv(int(orig.B)-int(chosen.B), div), taps)
		}
	}
	return nil
}
