// Package inkpack converts full-colour RGBA rasters into the reduced palettes
// accepted by e-ink and thermal displays, and packs the result into the dense
// 1 or 2 bit per pixel streams those devices consume.
//
// A typical pipeline is
//
//	raster -> Greyscale -> DitherGreyscale -> PackBits   (two colour targets)
//	raster -> QuantizeToPalette            -> PackBits   (three and four colour targets)
//
// Encode runs the whole pipeline from an Options value, and EncodeBatch runs
// it over many rasters in parallel. Every function works in memory on an
// already decoded buffer; decoding image files is left to the caller.
package inkpack
