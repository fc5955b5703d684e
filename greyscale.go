package inkpack

// Per-channel luma contributions, precomputed for every sample value.
var lumR, lumG, lumB [256]float64

func init() {
	for i := 0; i < 256; i++ {
		lumR[i] = float64(i) * 0.299
		lumG[i] = float64(i) * 0.587
		lumB[i] = float64(i) * 0.114
	}
}

// Luma returns floor(0.299R + 0.587G + 0.114B).
func Luma(r, g, b uint8) uint8 {
	y := lumR[r] + lumG[g] + lumB[b]
	if y >= 255 {
		return 255
	}
	return uint8(y)
}

// Greyscale replaces the red sample of every pixel with its luma. Green and
// blue are left untouched; DitherGreyscale mirrors the final value into them.
func Greyscale(r *Raster) error {
	if err := r.Validate(); err != nil {
		return err
	}
	pix := r.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = Luma(pix[i], pix[i+1], pix[i+2])
	}
	return nil
}
