package inkpack

import (
	"fmt"
	"math"
	"strings"
)

// Algorithm is a single channel dithering algorithm.
type Algorithm int

const (
	// Atkinson is the zero value: unrecognised names fall back to it.
	Atkinson Algorithm = iota
	// Flat posterizes to threshold evenly spaced levels.
	Flat
	// None is a plain binary threshold.
	None
	// Bayer is 4x4 ordered dithering.
	Bayer
	// FloydSteinberg diffuses error at a fixed cutoff of 129.
	FloydSteinberg
)

var algorithmNames = map[Algorithm]string{
	Atkinson:       "atkinson",
	Flat:           "flat",
	None:           "none",
	Bayer:          "bayer",
	FloydSteinberg: "floydsteinberg",
}

func (a Algorithm) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm maps a name to an Algorithm. Names that match nothing select
// Atkinson; this fallback is intentional and callers rely on it.
func ParseAlgorithm(name string) Algorithm {
	switch strings.ToLower(name) {
	case "flat", "gray", "grey":
		return Flat
	case "none":
		return None
	case "bayer":
		return Bayer
	case "floydsteinberg":
		return FloydSteinberg
	}
	return Atkinson
}

// BayerMatrix is the 4x4 ordered dither matrix, indexed [x%4][y%4].
var BayerMatrix = [4][4]int{
	{15, 135, 45, 165},
	{195, 75, 225, 105},
	{60, 180, 30, 150},
	{240, 120, 210, 90},
}

// floydSteinbergCutoff is the fixed binary threshold of FloydSteinberg; the
// threshold argument does not apply to it.
const floydSteinbergCutoff = 129

// DitherGreyscale dithers the luma held in the red channel of r in place,
// visiting pixels in row-major order, and mirrors each result into green
// and blue. Greyscale must have been applied first. Alpha is not touched.
//
// Flat requires threshold >= 2. The other algorithms accept any threshold;
// FloydSteinberg ignores it.
func DitherGreyscale(r *Raster, threshold int, algo Algorithm) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if algo == Flat && threshold < 2 {
		return fmt.Errorf("inkpack: DitherGreyscale: flat needs at least 2 levels, got %d: %w",
			threshold, ErrInvalidThreshold)
	}

	Logger().Debug("dither greyscale",
		"width", r.Width, "height", r.Height,
		"algorithm", algo.String(), "threshold", threshold)

	pix := r.Pix
	factor := 0.0
	if algo == Flat {
		factor = 255 / float64(threshold-1)
	}

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			i := (y*r.Width + x) * 4
			v := int(pix[i])

			switch algo {
			case Flat:
				level := math.Floor(float64(v)/factor+0.5) * factor
				pix[i] = clampRound(level)
			case None:
				pix[i] = binarize(v, threshold)
			case Bayer:
				pix[i] = binarize((v+BayerMatrix[x%4][y%4])/2, threshold)
			case FloydSteinberg:
				out := binarize(v, floydSteinbergCutoff)
				pix[i] = out
				spread(r, x, y, 0, floorDiv(v-int(out), floydSteinbergDivisor), floydSteinbergTaps[:])
			default:
				out := binarize(v, threshold)
				pix[i] = out
				spread(r, x, y, 0, floorDiv(v-int(out), atkinsonDivisor), atkinsonTaps[:])
			}

			pix[i+1] = pix[i]
			pix[i+2] = pix[i]
		}
	}
	return nil
}

// binarize returns 0 when v is below threshold and 255 otherwise.
func binarize(v, threshold int) uint8 {
	if v < threshold {
		return 0
	}
	return 255
}

// clampRound stores a float sample the way a clamped byte array does:
// round half to even, then saturate.
func clampRound(f float64) uint8 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(f))
}
