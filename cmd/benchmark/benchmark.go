package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"
	"time"

	"github.com/tmpim/inkpack"
	_ "golang.org/x/image/bmp"
)

func main() {
	if len(os.Args) != 2 {
		panic("must have path to image")
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		panic(err)
	}

	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		panic(err)
	}

	raster, err := inkpack.Prepare(img, inkpack.PrepareOptions{
		Width:  512,
		Height: 368,
		Fit:    inkpack.FitCover,
	})
	if err != nil {
		panic(err)
	}

	batch := make([]*inkpack.Raster, 800)
	for i := range batch {
		batch[i] = raster
	}

	for _, mode := range []string{"bw", "bwr", "bwry"} {
		start := time.Now()
		_, err := inkpack.EncodeBatch(context.Background(), batch, inkpack.Options{
			Mode:    mode,
			Workers: runtime.NumCPU(),
		})
		if err != nil {
			panic(err)
		}
		fmt.Println(mode, "took:", time.Since(start))
	}
}
