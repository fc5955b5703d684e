package inkpack

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered set of opaque output colours. The registered
// palettes are shared values and must not be modified.
type Palette []color.RGBA

// Named palette entries.
var (
	Black  = color.RGBA{0, 0, 0, 255}
	White  = color.RGBA{255, 255, 255, 255}
	Red    = color.RGBA{255, 0, 0, 255}
	Yellow = color.RGBA{255, 255, 0, 255}
)

// Registered palettes.
var (
	BW   = Palette{Black, White}
	BWR  = Palette{Black, White, Red}
	BWRY = Palette{Black, White, Red, Yellow}
)

// PaletteByName returns a registered palette: bw, bwr or bwry.
func PaletteByName(name string) (Palette, error) {
	switch strings.ToLower(name) {
	case "bw":
		return BW, nil
	case "bwr":
		return BWR, nil
	case "bwry":
		return BWRY, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
}

// ParsePalette builds a palette from hex colours such as "#000" or "#ff0000".
// Between 2 and 16 entries are accepted.
func ParsePalette(hexes []string) (Palette, error) {
	if len(hexes) < 2 || len(hexes) > 16 {
		return nil, fmt.Errorf("inkpack: ParsePalette: %d colours: %w", len(hexes), ErrUnknownPalette)
	}

	p := make(Palette, 0, len(hexes))
	for _, h := range hexes {
		h = strings.TrimSpace(h)
		if !strings.HasPrefix(h, "#") {
			h = "#" + h
		}
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("inkpack: ParsePalette: %s", err.Error())
		}
		r, g, b := c.RGB255()
		p = append(p, color.RGBA{r, g, b, 255})
	}
	return p, nil
}

// Colors returns the palette as a color.Palette.
func (p Palette) Colors() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = c
	}
	return out
}
