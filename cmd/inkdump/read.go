package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tmpim/inkpack"
)

// readFrames calls fn for every frame in r until EOF and returns the number
// of frames read.
func readFrames(r io.Reader, fn func(i int, f *inkpack.Frame) error) (int, error) {
	for i := 0; ; i++ {
		f, err := inkpack.ReadFrame(r)
		if err == io.EOF {
			return i, nil
		} else if err != nil {
			return i, err
		}

		if err := fn(i, f); err != nil {
			return i, err
		}
	}
}

func describe(i int, f *inkpack.Frame) string {
	var flags []string
	if f.Invert {
		flags = append(flags, "inverted")
	}
	if f.RowAligned {
		flags = append(flags, "aligned")
	}
	if f.Compressed {
		flags = append(flags, "zstd")
	}

	sizes := make([]string, len(f.Planes))
	for p, plane := range f.Planes {
		sizes[p] = fmt.Sprint(len(plane))
	}

	return fmt.Sprintf("#%d %dx%d %v planes=[%s] %s", i, f.Width, f.Height, f.Mode,
		strings.Join(sizes, " "), strings.Join(flags, ","))
}
