package inkpack

import "errors"

var (
	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("inkpack: invalid dimensions")

	// ErrBufferSize is returned when a pixel buffer is not width*height*4 bytes.
	ErrBufferSize = errors.New("inkpack: buffer size does not match dimensions")

	// ErrInvalidThreshold is returned for thresholds that cannot drive the
	// selected algorithm.
	ErrInvalidThreshold = errors.New("inkpack: invalid threshold")

	// ErrUnknownPackMode is returned for pack modes other than bw, bwr and bwry.
	ErrUnknownPackMode = errors.New("inkpack: unknown pack mode")

	ErrUnknownPalette = errors.New("inkpack: unknown palette")
	ErrUnknownKernel  = errors.New("inkpack: unknown kernel")
	ErrUnknownPanel   = errors.New("inkpack: unknown panel")
	ErrUnknownMetric  = errors.New("inkpack: unknown metric")
)
