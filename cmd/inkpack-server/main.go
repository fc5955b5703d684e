package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/labstack/echo/middleware"
	"github.com/tmpim/inkpack"
	"github.com/tmpim/inkpack/stream"
	"github.com/tmpim/inkpack/stream/server"
)

var (
	addr      = flag.String("addr", ":9999", "address to listen on")
	panel     = flag.String("panel", "4in37g", "default panel for /api/encode")
	algorithm = flag.String("a", "atkinson", "default greyscale algorithm")
	diffusion = flag.String("d", "standard", "default palette diffusion")
	invert    = flag.Bool("invert", false, "invert output bits by default")
	compress  = flag.Bool("z", false, "compress published frames with zstd")
	verbose   = flag.Bool("v", false, "log pipeline steps")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	inkpack.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))

	if _, err := inkpack.PanelByName(*panel); err != nil {
		log.Fatal(err)
	}

	mgr := stream.NewManager()
	e := server.New(mgr, inkpack.Options{
		Panel:      *panel,
		Algorithm:  *algorithm,
		Diffusion:  *diffusion,
		Invert:     *invert,
		Compressed: *compress,
	})
	e.Use(middleware.Logger())

	log.Println("inkpack server: listening on", *addr)
	log.Fatal(e.Start(*addr))
}
