package main

import (
	"context"
	"flag"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tmpim/inkpack"
	_ "golang.org/x/image/bmp"
)

var (
	outputPath  = flag.String("o", "image.inkp", "set location of output frame")
	previewPath = flag.String("p", "preview.png", "set location of output preview (will be PNG)")
	panelName   = flag.String("panel", "", "target panel (sets size and pack mode), see -panels")
	width       = flag.Int("w", 0, "target width in pixels (0 = panel or source width)")
	height      = flag.Int("h", 0, "target height in pixels (0 = panel or source height)")
	fit         = flag.String("fit", "contain", "how to fit the image: contain, cover or stretch")
	rotate      = flag.Int("rotate", 0, "rotate counter-clockwise by 0, 90, 180 or 270 degrees")
	brightness  = flag.Float64("brightness", 0, "brightness adjustment (-100 to 100)")
	contrast    = flag.Float64("contrast", 0, "contrast adjustment (-100 to 100)")
	mode        = flag.String("mode", "", "pack mode: bw, bwr or bwry")
	algorithm   = flag.String("a", "atkinson", "greyscale algorithm: flat, none, bayer, floydsteinberg, atkinson")
	threshold   = flag.Int("t", inkpack.DefaultThreshold, "threshold, 0 to 256 (levels for flat)")
	diffusion   = flag.String("d", "standard", "palette diffusion: standard or floydsteinberg")
	metric      = flag.String("metric", "squared", "palette distance: squared, perceptual or lab")
	kernel      = flag.String("kernel", "", "use a library kernel instead, see -kernels")
	colors      = flag.String("colors", "", "comma separated hex palette, overrides the mode's palette")
	invert      = flag.Bool("invert", false, "invert output bits")
	aligned     = flag.Bool("aligned", false, "pad every row to a whole byte")
	compressed  = flag.Bool("z", false, "compress the frame body with zstd")
	listPanels  = flag.Bool("panels", false, "list panels and exit")
	listKernels = flag.Bool("kernels", false, "list kernels and exit")
	verbose     = flag.Bool("v", false, "log pipeline steps")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *verbose {
		inkpack.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if *listPanels {
		for _, p := range inkpack.Panels() {
			log.Printf("%-8s %4dx%-4d %s\n", p.Name, p.Width, p.Height, p.Mode)
		}
		os.Exit(0)
	}

	if *listKernels {
		log.Println(strings.Join(inkpack.KernelNames(), "\n"))
		os.Exit(0)
	}

	if flag.Arg(0) == "" {
		log.Println("Usage: inkpack [options] input_image [input_image...]")
		log.Println("")
		log.Println("inkpack dithers an image (PNG, JPG or BMP) to the palette of an e-ink")
		log.Println("or thermal display and writes the packed bit planes it expects.")
		log.Println("Several images are encoded in parallel into one stream of frames;")
		log.Println("the preview shows the first.")
		log.Println("")
		log.Println("Options:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	opts := inkpack.Options{
		Panel:      *panelName,
		Threshold:  threshold,
		Algorithm:  *algorithm,
		Diffusion:  *diffusion,
		Metric:     *metric,
		Kernel:     *kernel,
		Mode:       *mode,
		Invert:     *invert,
		RowAligned: *aligned,
		Compressed: *compressed,
	}
	if *colors != "" {
		opts.Colors = strings.Split(*colors, ",")
	}

	prep := inkpack.PrepareOptions{
		Width:      *width,
		Height:     *height,
		Rotate:     *rotate,
		Brightness: float32(*brightness),
		Contrast:   float32(*contrast),
		Parallel:   true,
	}
	var err error
	if prep.Fit, err = inkpack.ParseFit(*fit); err != nil {
		log.Println(err)
		os.Exit(1)
	}
	if *panelName != "" {
		panel, err := inkpack.PanelByName(*panelName)
		if err != nil {
			log.Println(err)
			os.Exit(1)
		}
		if prep.Width == 0 {
			prep.Width = panel.Width
		}
		if prep.Height == 0 {
			prep.Height = panel.Height
		}
	} else if *mode == "" {
		log.Println("Either -panel or -mode must be given.")
		os.Exit(1)
	}

	start := time.Now()

	rasters := make([]*inkpack.Raster, flag.NArg())
	for i, path := range flag.Args() {
		img, err := decode(path)
		if err != nil {
			log.Println("Failed to load image:", err)
			os.Exit(1)
		}
		if rasters[i], err = inkpack.Prepare(img, prep); err != nil {
			log.Println("Failed to prepare image:", err)
			os.Exit(1)
		}
	}

	log.Println("Images prepared, dithering and packing...")

	frames, err := inkpack.EncodeBatch(context.Background(), rasters, opts)
	if err != nil {
		log.Println("Failed to encode image:", err)
		os.Exit(1)
	}

	writePreview(*previewPath, frames[0].Preview.Image())

	output, err := os.Create(*outputPath)
	if err != nil {
		log.Println("Failed to create output file:", err)
		os.Exit(1)
	}
	for _, frame := range frames {
		if _, err := frame.WriteTo(output); err != nil {
			output.Close()
			log.Println("Failed to write output file:", err)
			os.Exit(1)
		}
	}
	if err := output.Close(); err != nil {
		log.Println("Failed to write output file:", err)
		os.Exit(1)
	}

	log.Println("\nDone! That took " + time.Since(start).String() + ".")
	log.Printf("%d frame(s) outputted to \"%s\", preview outputted to \"%s\".\n",
		len(frames), *outputPath, *previewPath)
}

func decode(path string) (image.Image, error) {
	input, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer input.Close()

	img, _, err := image.Decode(input)
	return img, err
}

func writePreview(path string, img image.Image) {
	preview, err := os.Create(path)
	if err != nil {
		log.Println("Warning: Failed to create preview image:", err)
		return
	}

	defer preview.Close()

	err = png.Encode(preview, img)
	if err != nil {
		log.Println("Warning: Failed to encode preview image:", err)
	}
}
