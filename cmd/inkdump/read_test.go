package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tmpim/inkpack"
)

func TestReadFrames(t *testing.T) {
	var buf bytes.Buffer
	for _, w := range []int{8, 16, 24} {
		f := &inkpack.Frame{Width: w, Height: 1, Mode: inkpack.PackBW, Compressed: w == 16,
			Planes: [][]byte{bytes.Repeat([]byte{0xAA}, w/8)}}
		if _, err := f.WriteTo(&buf); err != nil {
			t.Fatalf("expected nil error, but got %v", err)
		}
	}

	var widths []int
	n, err := readFrames(&buf, func(i int, f *inkpack.Frame) error {
		widths = append(widths, f.Width)
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if n != 3 || len(widths) != 3 || widths[2] != 24 {
		t.Errorf("read %d frames with widths %v", n, widths)
	}
}

func TestReadFramesStopsOnError(t *testing.T) {
	var buf bytes.Buffer
	f := &inkpack.Frame{Width: 8, Height: 1, Mode: inkpack.PackBW, Planes: [][]byte{{0}}}
	f.WriteTo(&buf)
	f.WriteTo(&buf)

	stop := errors.New("stop")
	n, err := readFrames(&buf, func(i int, f *inkpack.Frame) error {
		if i == 1 {
			return stop
		}
		return nil
	})
	if err != stop || n != 1 {
		t.Errorf("readFrames = %d, %v; want 1, stop", n, err)
	}
}

func TestDescribe(t *testing.T) {
	f := &inkpack.Frame{Width: 8, Height: 2, Mode: inkpack.PackBWR, Invert: true,
		Planes: [][]byte{{0, 0}, {1, 1}}}
	want := "#3 8x2 bwr planes=[2 2] inverted"
	if got := describe(3, f); got != want {
		t.Errorf("describe = %q, want %q", got, want)
	}
}
