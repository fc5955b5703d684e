package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/tmpim/inkpack"
)

var (
	inputDir  = flag.String("i", "./input_test", "directory of images to convert")
	outputDir = flag.String("o", "./output_test", "directory for previews")
	panelName = flag.String("panel", "4in37g", "target panel")
)

// variants is every pipeline configuration rendered for each input.
var variants = map[string]inkpack.Options{
	"flat4":          {Mode: "bw", Algorithm: "flat", Threshold: threshold(4)},
	"none":           {Mode: "bw", Algorithm: "none"},
	"bayer":          {Mode: "bw", Algorithm: "bayer"},
	"floydsteinberg": {Mode: "bw", Algorithm: "floydsteinberg"},
	"atkinson":       {Mode: "bw", Algorithm: "atkinson"},
	"bwr":            {Mode: "bwr"},
	"bwr_fs":         {Mode: "bwr", Diffusion: "floydsteinberg"},
	"bwry":           {Mode: "bwry"},
	"bwry_fs":        {Mode: "bwry", Diffusion: "floydsteinberg"},
	"bwry_lab":       {Mode: "bwry", Metric: "lab"},
	"bwry_stucki":    {Mode: "bwry", Kernel: "stucki", Serpentine: true},
}

func threshold(v int) *int {
	return &v
}

func main() {
	flag.Parse()

	panel, err := inkpack.PanelByName(*panelName)
	if err != nil {
		log.Fatal(err)
	}

	files, err := ioutil.ReadDir(*inputDir)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatal(err)
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		convert(filepath.Base(f.Name()), panel)
	}
}

func convert(name string, panel inkpack.Panel) {
	start := time.Now()

	var orig image.Image
	func() {
		input, err := os.Open(filepath.Join(*inputDir, name))
		if err != nil {
			log.Println("Failed to open image:", err)
			os.Exit(1)
		}
		defer input.Close()

		orig, _, err = image.Decode(input)
		if err != nil {
			log.Println("Failed to decode image:", name, err)
			os.Exit(1)
		}
	}()

	log.Println("read+decode:", time.Since(start))

	raster, err := inkpack.Prepare(orig, inkpack.PrepareOptions{
		Width:  panel.Width,
		Height: panel.Height,
		Fit:    inkpack.FitCover,
	})
	if err != nil {
		log.Println("Failed to prepare image:", err)
		os.Exit(1)
	}

	log.Println("prepare:", time.Since(start))

	basename := strings.TrimSuffix(name, filepath.Ext(name))
	for variant, opts := range variants {
		frame, err := inkpack.Encode(raster, opts)
		if err != nil {
			log.Println("Failed to encode image:", variant, err)
			os.Exit(1)
		}

		out := filepath.Join(*outputDir, fmt.Sprintf("%s_%s.png", basename, variant))
		writePreview(out, frame.Preview.Image())
		log.Println("["+variant+"]", time.Since(start))
	}
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
