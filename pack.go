package inkpack

import (
	"fmt"
	"image/color"
	"strings"
)

// PackMode selects how pixels are classified and how many bits each takes.
type PackMode int

const (
	// PackBW emits 1 bit per pixel: 0 for pure black, 1 otherwise.
	PackBW PackMode = iota + 1
	// PackBWR emits 1 bit per pixel: 0 for red (R>0, G=0, B=0), 1 otherwise.
	PackBWR
	// PackBWRY emits 2 bits per pixel: black 00, white 01, yellow 10, red 11.
	PackBWRY
)

// bwry symbols.
const (
	SymbolBlack  byte = 0b00
	SymbolWhite  byte = 0b01
	SymbolYellow byte = 0b10
	SymbolRed    byte = 0b11
)

func (m PackMode) String() string {
	switch m {
	case PackBW:
		return "bw"
	case PackBWR:
		return "bwr"
	case PackBWRY:
		return "bwry"
	}
	return fmt.Sprintf("PackMode(%d)", int(m))
}

// ParsePackMode maps bw, bwr or bwry to a PackMode. There is no default:
// any other name is an error.
func ParsePackMode(name string) (PackMode, error) {
	switch strings.ToLower(name) {
	case "bw":
		return PackBW, nil
	case "bwr":
		return PackBWR, nil
	case "bwry":
		return PackBWRY, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPackMode, name)
}

// BitsPerPixel returns 1 or 2, or 0 for an unknown mode.
func (m PackMode) BitsPerPixel() int {
	switch m {
	case PackBW, PackBWR:
		return 1
	case PackBWRY:
		return 2
	}
	return 0
}

// fill is the symbol used to pad the final partial byte.
func (m PackMode) fill() byte {
	if m == PackBWRY {
		return SymbolWhite
	}
	return 1
}

func (m PackMode) symbol(r, g, b uint8) byte {
	switch m {
	case PackBW:
		if r == 0 && g == 0 && b == 0 {
			return 0
		}
		return 1
	case PackBWR:
		if r > 0 && g == 0 && b == 0 {
			return 0
		}
		return 1
	}

	switch {
	case r < 50 && g < 50 && b < 50:
		return SymbolBlack
	case r > 200 && g > 200 && b > 200:
		return SymbolWhite
	case r > 200 && g > 200 && b < 50:
		return SymbolYellow
	case r > 200 && g < 50 && b < 50:
		return SymbolRed
	}
	return SymbolWhite
}

// PackOptions configures Pack.
type PackOptions struct {
	// Invert complements every output byte.
	Invert bool
	// RowAligned pads each row to a whole byte with the fill symbol instead
	// of packing continuously across rows.
	RowAligned bool
}

// PackedSize returns the number of bytes Pack produces.
func PackedSize(width, height int, mode PackMode, rowAligned bool) int {
	bpp := mode.BitsPerPixel()
	if bpp == 0 || !ValidSize(width, height) {
		return 0
	}
	perByte := 8 / bpp
	if rowAligned {
		return (width + perByte - 1) / perByte * height
	}
	return (width*height + perByte - 1) / perByte
}

// PackBits packs r continuously in raster order.
func PackBits(r *Raster, mode PackMode, invert bool) ([]byte, error) {
	return Pack(r, mode, PackOptions{Invert: invert})
}

// Pack serializes r into a packed byte sequence. Symbols fill each byte most
// significant bits first and the last partial byte is padded with the fill
// symbol (1 for bw and bwr, white for bwry). r is only read.
func Pack(r *Raster, mode PackMode, opts PackOptions) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if mode.BitsPerPixel() == 0 {
		return nil, fmt.Errorf("inkpack: Pack: %w: %v", ErrUnknownPackMode, mode)
	}

	pix := r.Pix
	out := packSymbols(r.Width, r.Height, mode, opts, func(x, y int) byte {
		i := (y*r.Width + x) * 4
		return mode.symbol(pix[i], pix[i+1], pix[i+2])
	})

	Logger().Debug("pack",
		"width", r.Width, "height", r.Height, "mode", mode.String(),
		"invert", opts.Invert, "rowAligned", opts.RowAligned, "bytes", len(out))
	return out, nil
}

// PackSolid returns the packed form of a width x height canvas where every
// pixel is symbol, as used to clear a panel.
func PackSolid(width, height int, mode PackMode, symbol byte, opts PackOptions) ([]byte, error) {
	if !ValidSize(width, height) {
		return nil, ErrInvalidDimensions
	}
	bpp := mode.BitsPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("inkpack: PackSolid: %w: %v", ErrUnknownPackMode, mode)
	}
	if int(symbol) >= 1<<bpp {
		return nil, fmt.Errorf("inkpack: PackSolid: symbol %d does not fit %d bits", symbol, bpp)
	}
	return packSymbols(width, height, mode, opts, func(int, int) byte { return symbol }), nil
}

func packSymbols(width, height int, mode PackMode, opts PackOptions, at func(x, y int) byte) []byte {
	bpp := mode.BitsPerPixel()
	perByte := 8 / bpp
	fill := mode.fill()
	out := make([]byte, 0, PackedSize(width, height, mode, opts.RowAligned))

	var acc byte
	n := 0
	flush := func() {
		for ; n < perByte; n++ {
			acc = acc<<bpp | fill
		}
		if opts.Invert {
			acc ^= 0xFF
		}
		out = append(out, acc)
		acc, n = 0, 0
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			acc = acc<<bpp | at(x, y)
			n++
			if n == perByte {
				flush()
			}
		}
		if opts.RowAligned && n > 0 {
			flush()
		}
	}
	if n > 0 {
		flush()
	}
	return out
}

// Unpack expands packed data back into a raster for previewing. bw maps to
// black and white, bwr to red and white, bwry to its four colours.
func Unpack(data []byte, width, height int, mode PackMode, opts PackOptions) (*Raster, error) {
	if !ValidSize(width, height) {
		return nil, ErrInvalidDimensions
	}
	bpp := mode.BitsPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("inkpack: Unpack: %w: %v", ErrUnknownPackMode, mode)
	}
	if want := PackedSize(width, height, mode, opts.RowAligned); len(data) != want {
		return nil, fmt.Errorf("inkpack: Unpack: %w: have %d bytes, want %d", ErrBufferSize, len(data), want)
	}

	r, _ := NewRaster(width, height)
	perByte := 8 / bpp
	mask := byte(1<<bpp - 1)
	pos := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b := data[pos/perByte]
			if opts.Invert {
				b ^= 0xFF
			}
			shift := uint(8 - bpp*(pos%perByte+1))
			c := mode.color((b >> shift) & mask)
			i := (y*width + x) * 4
			r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3] = c.R, c.G, c.B, c.A
			pos++
		}
		if opts.RowAligned && pos%perByte != 0 {
			pos += perByte - pos%perByte
		}
	}
	return r, nil
}

// color returns the display colour of a packed symbol.
func (m PackMode) color(s byte) color.RGBA {
	switch m {
	case PackBW:
		if s == 0 {
			return Black
		}
	case PackBWR:
		if s == 0 {
			return Red
		}
	case PackBWRY:
		switch s {
		case SymbolBlack:
			return Black
		case SymbolYellow:
			return Yellow
		case SymbolRed:
			return Red
		}
	}
	return White
}

// MarshalText implements encoding.TextMarshaler.
func (m PackMode) MarshalText() ([]byte, error) {
	if m.BitsPerPixel() == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPackMode, m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PackMode) UnmarshalText(text []byte) error {
	mode, err := ParsePackMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
