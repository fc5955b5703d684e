package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmpim/inkpack"
)

var (
	previewDir = flag.String("p", "", "write a PNG preview of every frame into this directory")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if flag.NArg() != 1 {
		log.Println("Usage: inkdump [options] frames.inkp")
		log.Println("")
		log.Println("inkdump lists the frames in a file written by inkpack and can render")
		log.Println("them back into preview images.")
		log.Println("")
		log.Println("Options:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	file, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	if *previewDir != "" {
		if err := os.MkdirAll(*previewDir, 0755); err != nil {
			log.Fatal(err)
		}
	}

	base := strings.TrimSuffix(filepath.Base(flag.Arg(0)), filepath.Ext(flag.Arg(0)))
	n, err := readFrames(file, func(i int, f *inkpack.Frame) error {
		log.Println(describe(i, f))
		if *previewDir == "" {
			return nil
		}
		return writePreview(filepath.Join(*previewDir, fmt.Sprintf("%s_%03d.png", base, i)), f)
	})
	if err != nil {
		log.Fatalf("frame %d: %v", n, err)
	}
	log.Printf("%d frame(s)\n", n)
}

func writePreview(path string, f *inkpack.Frame) error {
	r, err := f.Render()
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, r.Image()); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
