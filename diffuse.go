package inkpack

// tap is one neighbour of an error diffusion kernel: a pixel offset and the
// multiplier applied to the scaled residual.
type tap struct {
	dx, dy int
	weight int
}

// Atkinson spreads residual/8 to six neighbours. Only 6/8 of the residual is
// propagated; the remainder is dropped on purpose.
var atkinsonTaps = [...]tap{
	{1, 0, 1}, {2, 0, 1},
	{-1, 1, 1}, {0, 1, 1}, {1, 1, 1},
	{0, 2, 1},
}

// Floyd-Steinberg spreads residual/16 with weights 7, 3, 5 and 1.
var floydSteinbergTaps = [...]tap{
	{1, 0, 7},
	{-1, 1, 3}, {0, 1, 5}, {1, 1, 1},
}

const (
	atkinsonDivisor       = 8
	floydSteinbergDivisor = 16
)

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// addClamped adds d to v, saturating at 0 and 255.
func addClamped(v uint8, d int) uint8 {
	n := int(v) + d
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

// spread adds err*weight to channel ch of every in-canvas neighbour of
// (x, y). Targets outside the canvas are skipped; nothing wraps into an
// adjacent row.
func spread(r *Raster, x, y, ch, err int, taps []tap) {
	if err == 0 {
		return
	}
	for _, t := range taps {
		i := r.offset(x+t.dx, y+t.dy)
		if i < 0 {
			continue
		}
		r.Pix[i+ch] = addClamped(r.Pix[i+ch], err*t.weight)
	}
}
