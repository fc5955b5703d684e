package inkpack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/makeworld-the-better-one/dither/v2"
)

var diffusionKernels = map[string]dither.ErrorDiffusionMatrix{
	"atkinson":            dither.Atkinson,
	"burkes":              dither.Burkes,
	"falsefloydsteinberg": dither.FalseFloydSteinberg,
	"floydsteinberg":      dither.FloydSteinberg,
	"jarvisjudiceninke":   dither.JarvisJudiceNinke,
	"sierra":              dither.Sierra,
	"sierra2":             dither.Sierra2,
	"sierra2_4a":          dither.Sierra2_4A,
	"sierralite":          dither.SierraLite,
	"simple2d":            dither.Simple2D,
	"stevenpigeon":        dither.StevenPigeon,
	"stucki":              dither.Stucki,
	"tworowsierra":        dither.TwoRowSierra,
}

var orderedKernels = map[string]func(strength float32) dither.PixelMapper{
	"bayer4": func(s float32) dither.PixelMapper { return dither.Bayer(4, 4, s) },
	"bayer8": func(s float32) dither.PixelMapper { return dither.Bayer(8, 8, s) },
	"clustereddot4x4": func(s float32) dither.PixelMapper {
		return dither.PixelMapperFromMatrix(dither.ClusteredDot4x4, s)
	},
}

// KernelNames lists every name DitherKernel accepts.
func KernelNames() []string {
	names := make([]string, 0, len(diffusionKernels)+len(orderedKernels))
	for n := range diffusionKernels {
		names = append(names, n)
	}
	for n := range orderedKernels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// KernelOptions configures DitherKernel.
type KernelOptions struct {
	Name string
	// Strength scales the diffused error or the ordered matrix. Zero means 1.
	Strength float32
	// Serpentine alternates scan direction on every row.
	Serpentine bool
}

// DitherKernel dithers r in place against p using one of the general purpose
// kernels of the dither library, working in linear RGB. Alpha is kept.
func DitherKernel(r *Raster, p Palette, opts KernelOptions) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if len(p) < 2 {
		return fmt.Errorf("inkpack: DitherKernel: %d colours: %w", len(p), ErrUnknownPalette)
	}

	strength := opts.Strength
	if strength == 0 {
		strength = 1
	}

	d := dither.NewDitherer(p.Colors())
	name := opts.lower()
	if m, ok := diffusionKernels[name]; ok {
		d.Matrix = dither.ErrorDiffusionStrength(m, strength)
		d.Serpentine = opts.Serpentine
	} else if mapper, ok := orderedKernels[name]; ok {
		d.Mapper = mapper(strength)
	} else {
		return fmt.Errorf("%w: %q", ErrUnknownKernel, opts.Name)
	}

	Logger().Debug("dither kernel",
		"width", r.Width, "height", r.Height, "kernel", name,
		"strength", strength, "serpentine", opts.Serpentine)

	out := d.DitherCopy(r.Image())
	for y := 0; y < r.Height; y++ {
		src := out.Pix[y*out.Stride : y*out.Stride+r.Width*4]
		dst := r.Pix[y*r.Width*4 : (y+1)*r.Width*4]
		for x := 0; x < len(dst); x += 4 {
			dst[x], dst[x+1], dst[x+2] = src[x], src[x+1], src[x+2]
		}
	}
	return nil
}

func (o KernelOptions) lower() string {
	return strings.ToLower(o.Name)
}
