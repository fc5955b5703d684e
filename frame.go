package inkpack

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// frameMagic opens every encoded frame.
var frameMagic = [4]byte{'I', 'N', 'K', 'P'}

const frameVersion = 1

// Frame flags.
const (
	flagInvert = 1 << iota
	flagRowAligned
	flagCompressed
)

// maxFrameBody bounds the body length accepted by ReadFrame.
const maxFrameBody = 64 << 20

// Frame is the packed output for one image. A bwr frame carries two planes,
// the black plane (bw) followed by the red plane (bwr); the other modes
// carry one.
type Frame struct {
	Width      int
	Height     int
	Mode       PackMode
	Invert     bool
	RowAligned bool
	Planes     [][]byte

	// Compressed selects zstd compression of the body when written.
	Compressed bool

	// Preview is the quantized raster the planes were packed from. It is
	// not serialized.
	Preview *Raster
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	})
	return zstdEnc, zstdDec, zstdErr
}

func (f *Frame) flags() byte {
	var flags byte
	if f.Invert {
		flags |= flagInvert
	}
	if f.RowAligned {
		flags |= flagRowAligned
	}
	if f.Compressed {
		flags |= flagCompressed
	}
	return flags
}

// WriteTo writes the frame to w: magic, version, mode, flags, plane count,
// big-endian uint16 width and height, a uint32 body length, then the body.
// The body holds a uint32 length and the bytes of each plane.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	if f.Width <= 0 || f.Height <= 0 || f.Width > 0xFFFF || f.Height > 0xFFFF {
		return 0, fmt.Errorf("inkpack: Frame.WriteTo: %dx%d: %w", f.Width, f.Height, ErrInvalidDimensions)
	}
	if f.Mode.BitsPerPixel() == 0 {
		return 0, fmt.Errorf("inkpack: Frame.WriteTo: %w: %v", ErrUnknownPackMode, f.Mode)
	}

	var body bytes.Buffer
	for _, plane := range f.Planes {
		binary.Write(&body, binary.BigEndian, uint32(len(plane)))
		body.Write(plane)
	}

	payload := body.Bytes()
	if f.Compressed {
		enc, _, err := zstdCodec()
		if err != nil {
			return 0, fmt.Errorf("inkpack: Frame.WriteTo: zstd: %w", err)
		}
		payload = enc.EncodeAll(payload, nil)
	}

	cw := &countingWriter{w: w}
	wr := bufio.NewWriter(cw)
	wr.Write(frameMagic[:])
	wr.Write([]byte{frameVersion, byte(f.Mode), f.flags(), byte(len(f.Planes))})
	binary.Write(wr, binary.BigEndian, uint16(f.Width))
	binary.Write(wr, binary.BigEndian, uint16(f.Height))
	binary.Write(wr, binary.BigEndian, uint32(len(payload)))
	wr.Write(payload)

	err := wr.Flush()
	return cw.n, err
}

// MarshalBinary returns the WriteTo encoding of f.
func (f *Frame) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render unpacks the planes back into a raster. The two planes of a bwr
// frame are combined, with red drawn over the black plane.
func (f *Frame) Render() (*Raster, error) {
	opts := PackOptions{Invert: f.Invert, RowAligned: f.RowAligned}
	want := 1
	if f.Mode == PackBWR {
		want = 2
	}
	if len(f.Planes) != want {
		return nil, fmt.Errorf("inkpack: Frame.Render: %v frame has %d planes, want %d",
			f.Mode, len(f.Planes), want)
	}
	if f.Mode != PackBWR {
		return Unpack(f.Planes[0], f.Width, f.Height, f.Mode, opts)
	}

	out, err := Unpack(f.Planes[0], f.Width, f.Height, PackBW, opts)
	if err != nil {
		return nil, err
	}
	red, err := Unpack(f.Planes[1], f.Width, f.Height, PackBWR, opts)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(out.Pix); i += 4 {
		if red.Pix[i+1] == 0 {
			copy(out.Pix[i:i+4], red.Pix[i:i+4])
		}
	}
	return out, nil
}

// ReadFrame reads one frame written by WriteTo.
func ReadFrame(r io.Reader) (*Frame, error) {
	var hdr [16]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if !bytes.Equal(hdr[:4], frameMagic[:]) {
		return nil, errors.New("inkpack: ReadFrame: bad magic")
	}
	if hdr[4] != frameVersion {
		return nil, fmt.Errorf("inkpack: ReadFrame: unsupported version %d", hdr[4])
	}

	flags := hdr[6]
	f := &Frame{
		Mode:       PackMode(hdr[5]),
		Invert:     flags&flagInvert != 0,
		RowAligned: flags&flagRowAligned != 0,
		Compressed: flags&flagCompressed != 0,
		Width:      int(binary.BigEndian.Uint16(hdr[8:10])),
		Height:     int(binary.BigEndian.Uint16(hdr[10:12])),
	}
	if f.Mode.BitsPerPixel() == 0 {
		return nil, fmt.Errorf("inkpack: ReadFrame: %w: %d", ErrUnknownPackMode, hdr[5])
	}
	planes := int(hdr[7])

	n := binary.BigEndian.Uint32(hdr[12:16])
	if n > maxFrameBody {
		return nil, fmt.Errorf("inkpack: ReadFrame: body of %d bytes is too large", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("inkpack: ReadFrame: body: %w", err)
	}

	if f.Compressed {
		_, dec, err := zstdCodec()
		if err != nil {
			return nil, fmt.Errorf("inkpack: ReadFrame: zstd: %w", err)
		}
		body, err = dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("inkpack: ReadFrame: zstd: %w", err)
		}
	}

	for i := 0; i < planes; i++ {
		if len(body) < 4 {
			return nil, io.ErrUnexpectedEOF
		}
		size := binary.BigEndian.Uint32(body)
		body = body[4:]
		if uint32(len(body)) < size {
			return nil, io.ErrUnexpectedEOF
		}
		f.Planes = append(f.Planes, body[:size:size])
		body = body[size:]
	}
	return f, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
