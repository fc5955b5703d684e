package inkpack

import (
	"errors"
	"sort"
	"testing"
)

func TestPanelByName(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		mode          PackMode
	}{
		{"2in13", 122, 250, PackBW},
		{"7IN5B", 800, 480, PackBWR},
		{"4in37g", 512, 368, PackBWRY},
	}
	for _, tt := range tests {
		p, err := PanelByName(tt.name)
		if err != nil {
			t.Fatalf("expected nil error, but got %v", err)
		}
		if p.Width != tt.width || p.Height != tt.height || p.Mode != tt.mode {
			t.Errorf("PanelByName(%q) = %+v", tt.name, p)
		}
	}

	if _, err := PanelByName("9in7"); !errors.Is(err, ErrUnknownPanel) {
		t.Errorf("error = %v, want ErrUnknownPanel", err)
	}
}

func TestPanelPalette(t *testing.T) {
	tests := []struct {
		mode PackMode
		want int
	}{
		{PackBW, 2},
		{PackBWR, 3},
		{PackBWRY, 4},
	}
	for _, tt := range tests {
		if got := len(Panel{Mode: tt.mode}.Palette()); got != tt.want {
			t.Errorf("%v palette has %d colours, want %d", tt.mode, got, tt.want)
		}
	}
}

func TestPanelsSorted(t *testing.T) {
	ps := Panels()
	if len(ps) == 0 {
		t.Fatal("no panels registered")
	}
	if !sort.SliceIsSorted(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name }) {
		t.Error("Panels is not sorted by name")
	}
	for _, p := range ps {
		if p.Mode.BitsPerPixel() == 0 {
			t.Errorf("panel %s has unknown mode %v", p.Name, p.Mode)
		}
	}
}
