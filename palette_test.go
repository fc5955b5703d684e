package inkpack

import (
	"errors"
	"image/color"
	"testing"
)

func TestRegisteredPalettes(t *testing.T) {
	tests := []struct {
		name string
		want Palette
	}{
		{"bw", Palette{{0, 0, 0, 255}, {255, 255, 255, 255}}},
		{"bwr", Palette{{0, 0, 0, 255}, {255, 255, 255, 255}, {255, 0, 0, 255}}},
		{"BWRY", Palette{{0, 0, 0, 255}, {255, 255, 255, 255}, {255, 0, 0, 255}, {255, 255, 0, 255}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PaletteByName(tt.name)
			if err != nil {
				t.Fatalf("expected nil error, but got %v", err)
			}
			if !samePalette(got, tt.want) {
				t.Errorf("PaletteByName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if _, err := PaletteByName("cmyk"); !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("PaletteByName(cmyk) error = %v, want ErrUnknownPalette", err)
	}
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette([]string{"#000000", "fff", " #ff0000 "})
	if err != nil {
		t.Fatalf("expected nil error, but got %v", err)
	}
	if !samePalette(p, BWR) {
		t.Errorf("ParsePalette = %v, want %v", p, BWR)
	}

	if _, err := ParsePalette([]string{"#000"}); err == nil {
		t.Error("expected error for a single colour")
	}
	if _, err := ParsePalette([]string{"#000", "#zzzzzz"}); err == nil {
		t.Error("expected error for bad hex")
	}
}

func TestPaletteColors(t *testing.T) {
	cp := BWRY.Colors()
	if len(cp) != 4 {
		t.Fatalf("len = %d, want 4", len(cp))
	}
	if cp[3] != color.Color(Yellow) {
		t.Errorf("Colors()[3] = %v, want %v", cp[3], Yellow)
	}
}
