package inkpack

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultThreshold is the binary cutoff used when Options.Threshold is nil.
const DefaultThreshold = 128

// Options configures Encode. String fields take the names accepted by the
// corresponding Parse functions so they can come straight from flags or
// query parameters.
type Options struct {
	// Panel, when set, supplies Mode and RowAligned.
	Panel string

	// Threshold drives the greyscale algorithms. Nil means DefaultThreshold;
	// 0 is a valid cutoff that turns every pixel white.
	Threshold *int
	// Algorithm is the greyscale algorithm; unknown names select atkinson.
	Algorithm string

	// Palette names a registered palette. Empty selects the palette that
	// matches Mode. Colors, when set, overrides it with hex colours.
	Palette string
	Colors  []string
	// Diffusion is standard or floydsteinberg.
	Diffusion string
	// Metric is squared, perceptual or lab.
	Metric string

	// Kernel, when set, dithers with the named library kernel instead of
	// the built-in algorithms.
	Kernel         string
	KernelStrength float32
	Serpentine     bool

	// Mode is bw, bwr or bwry. Required unless Panel is set.
	Mode       string
	Invert     bool
	RowAligned bool
	Compressed bool

	// Workers bounds EncodeBatch parallelism. Zero means GOMAXPROCS.
	Workers int
}

// plan is Options resolved into typed values.
type plan struct {
	threshold int
	algorithm Algorithm
	palette   Palette
	greyscale bool
	quantize  QuantizeOptions
	kernel    KernelOptions
	mode      PackMode
	pack      PackOptions
}

func (o *Options) validate() (*plan, error) {
	p := &plan{
		threshold: DefaultThreshold,
		algorithm: ParseAlgorithm(o.Algorithm),
		pack:      PackOptions{Invert: o.Invert, RowAligned: o.RowAligned},
	}
	if o.Threshold != nil {
		p.threshold = *o.Threshold
	}
	if p.threshold < 0 || p.threshold > 256 {
		return nil, fmt.Errorf("inkpack: Encode: threshold %d: %w", p.threshold, ErrInvalidThreshold)
	}
	if p.algorithm == Flat && p.threshold < 2 {
		return nil, fmt.Errorf("inkpack: Encode: flat threshold %d: %w", p.threshold, ErrInvalidThreshold)
	}

	var panel Panel
	if o.Panel != "" {
		var err error
		if panel, err = PanelByName(o.Panel); err != nil {
			return nil, err
		}
		p.mode = panel.Mode
		p.pack.RowAligned = p.pack.RowAligned || panel.RowAligned
	}
	if o.Mode != "" {
		mode, err := ParsePackMode(o.Mode)
		if err != nil {
			return nil, err
		}
		p.mode = mode
	}
	if p.mode == 0 {
		return nil, errors.New("inkpack: Encode: pack mode must be specified")
	}

	switch {
	case len(o.Colors) > 0:
		pal, err := ParsePalette(o.Colors)
		if err != nil {
			return nil, err
		}
		p.palette = pal
	case o.Palette != "":
		pal, err := PaletteByName(o.Palette)
		if err != nil {
			return nil, err
		}
		p.palette = pal
	default:
		p.palette = Panel{Mode: p.mode}.Palette()
	}

	metric, err := ParseMetric(o.Metric)
	if err != nil {
		return nil, err
	}
	p.quantize = QuantizeOptions{Diffusion: ParseDiffusion(o.Diffusion), Metric: metric}

	if o.Kernel != "" {
		p.kernel = KernelOptions{Name: o.Kernel, Strength: o.KernelStrength, Serpentine: o.Serpentine}
		if _, ok := diffusionKernels[p.kernel.lower()]; !ok {
			if _, ok := orderedKernels[p.kernel.lower()]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, o.Kernel)
			}
		}
	} else {
		p.greyscale = samePalette(p.palette, BW)
	}

	if o.Workers < 0 {
		return nil, errors.New("inkpack: Encode: workers cannot be negative")
	}
	return p, nil
}

func samePalette(a, b Palette) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Encode runs the full pipeline on a copy of r and returns the packed frame.
// Black and white targets go through Greyscale and DitherGreyscale; every
// other palette goes through Quantize. A kernel replaces both.
func Encode(r *Raster, opts Options) (*Frame, error) {
	p, err := opts.validate()
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("inkpack: Encode: %w", err)
	}
	return p.encode(r.Clone(), opts.Compressed)
}

func (p *plan) encode(work *Raster, compressed bool) (*Frame, error) {
	switch {
	case p.kernel.Name != "":
		if err := DitherKernel(work, p.palette, p.kernel); err != nil {
			return nil, err
		}
	case p.greyscale:
		if err := Greyscale(work); err != nil {
			return nil, err
		}
		if err := DitherGreyscale(work, p.threshold, p.algorithm); err != nil {
			return nil, err
		}
	default:
		if err := Quantize(work, p.palette, p.quantize); err != nil {
			return nil, err
		}
	}

	modes := []PackMode{p.mode}
	if p.mode == PackBWR {
		modes = []PackMode{PackBW, PackBWR}
	}

	f := &Frame{
		Width:      work.Width,
		Height:     work.Height,
		Mode:       p.mode,
		Invert:     p.pack.Invert,
		RowAligned: p.pack.RowAligned,
		Compressed: compressed,
		Preview:    work,
	}
	for _, m := range modes {
		plane, err := Pack(work, m, p.pack)
		if err != nil {
			return nil, err
		}
		f.Planes = append(f.Planes, plane)
	}
	return f, nil
}

// EncodeBatch encodes every raster with the same options, running up to
// opts.Workers encodes at once. Results keep the input order. The first
// error cancels the remaining work.
func EncodeBatch(ctx context.Context, rasters []*Raster, opts Options) ([]*Frame, error) {
	p, err := opts.validate()
	if err != nil {
		return nil, err
	}
	for i, r := range rasters {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("inkpack: EncodeBatch: raster %d: %w", i, err)
		}
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	frames := make([]*Frame, len(rasters))
	for i, r := range rasters {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		i, r := i, r
		g.Go(func() error {
			defer sem.Release(1)
			f, err := p.encode(r.Clone(), opts.Compressed)
			if err != nil {
				return fmt.Errorf("inkpack: EncodeBatch: raster %d: %w", i, err)
			}
			frames[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}
