package inkpack

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestFitRect(t *testing.T) {
	tests := []struct {
		name         string
		sw, sh, w, h int
		fit          Fit
		want         image.Rectangle
	}{
		{"contain wide", 200, 100, 100, 100, FitContain, image.Rect(0, 25, 100, 75)},
		{"contain tall", 100, 200, 100, 100, FitContain, image.Rect(25, 0, 75, 100)},
		{"contain exact", 50, 50, 50, 50, FitContain, image.Rect(0, 0, 50, 50)},
		{"cover wide", 200, 100, 100, 100, FitCover, image.Rect(-50, 0, 150, 100)},
		{"cover tall", 100, 200, 100, 100, FitCover, image.Rect(0, -50, 100, 150)},
		{"stretch", 200, 100, 100, 100, FitStretch, image.Rect(0, 0, 100, 100)},
		{"contain tiny", 1000, 1, 10, 10, FitContain, image.Rect(0, 4, 10, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitRect(tt.sw, tt.sh, tt.w, tt.h, tt.fit); got != tt.want {
				t.Errorf("fitRect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFit(t *testing.T) {
	tests := []struct {
		name    string
		want    Fit
		wantErr bool
	}{
		{"", FitContain, false},
		{"contain", FitContain, false},
		{"Cover", FitCover, false},
		{"stretch", FitStretch, false},
		{"tile", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFit(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFit(%q) = %v, %v", tt.name, got, err)
		}
	}
}

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestPrepareKeepsSize(t *testing.T) {
	src := uniformImage(5, 3, color.RGBA{10, 20, 30, 255})
	src.SetRGBA(1, 1, color.RGBA{200, 100, 50, 255})

	r, err := Prepare(src, PrepareOptions{})
	if err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if r.Width != 5 || r.Height != 3 {
		t.Fatalf("size = %dx%d, want 5x3", r.Width, r.Height)
	}
	if got := pixelAt(r, 1, 1); got != (color.RGBA{200, 100, 50, 255}) {
		t.Errorf("(1, 1) = %v", got)
	}
	if got := pixelAt(r, 0, 0); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("(0, 0) = %v", got)
	}
}

func TestPrepareContainLetterboxes(t *testing.T) {
	src := uniformImage(4, 2, Red)
	r, err := Prepare(src, PrepareOptions{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if got := pixelAt(r, 0, 0); got != White {
		t.Errorf("(0, 0) = %v, want white background", got)
	}
	if got := pixelAt(r, 4, 7); got != White {
		t.Errorf("(4, 7) = %v, want white background", got)
	}
	if got := pixelAt(r, 4, 4); got.R < 200 || got.G > 50 || got.B > 50 {
		t.Errorf("(4, 4) = %v, want red", got)
	}
}

func TestPrepareBackground(t *testing.T) {
	src := uniformImage(4, 2, Red)
	r, err := Prepare(src, PrepareOptions{Width: 8, Height: 8, Background: color.Black})
	if err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if got := pixelAt(r, 0, 0); got != Black {
		t.Errorf("(0, 0) = %v, want black", got)
	}
}

func TestPrepareRotate(t *testing.T) {
	src := uniformImage(4, 2, Red)
	r, err := Prepare(src, PrepareOptions{Rotate: 90})
	if err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if r.Width != 2 || r.Height != 4 {
		t.Errorf("size = %dx%d, want 2x4", r.Width, r.Height)
	}
}

func TestPrepareErrors(t *testing.T) {
	src := uniformImage(4, 4, Red)
	tests := []struct {
		name string
		src  image.Image
		opts PrepareOptions
	}{
		{"rotate", src, PrepareOptions{Rotate: 45}},
		{"negative width", src, PrepareOptions{Width: -1}},
		{"brightness", src, PrepareOptions{Brightness: 101}},
		{"contrast", src, PrepareOptions{Contrast: -200}},
		{"gamma", src, PrepareOptions{Gamma: -1}},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 0)), PrepareOptions{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Prepare(tt.src, tt.opts); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := Prepare(image.NewRGBA(image.Rect(0, 0, 0, 0)), PrepareOptions{}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("error = %v, want ErrInvalidDimensions", err)
	}
}
