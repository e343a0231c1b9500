// Package hmg decodes and encodes HMG textures: a small header followed by
// an LZ4 block holding width*height RGBA8 pixels.
package hmg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/pierrec/lz4/v4"

	"github.com/VriskaSerket51/eastward-go/src/buffer"
)

// Magic is the three-byte tag at the start of every HMG file.
const Magic = "PGF"

const (
	bitDepth        = 32 // RGBA8888
	typeMarker      = 1
	methodLZ4       = 0
	encodedOverhead = 24 // header bytes with both dummy chunks empty

	// maxExpansion bounds how much an LZ4 block can grow when decoded.
	maxExpansion = 255
)

var (
	// ErrFormat is returned for data that is not an HMG file.
	ErrFormat = errors.New("not an hmg file")
	// ErrCorrupt is returned when the pixel block does not decode to width*height*4 bytes.
	ErrCorrupt = errors.New("corrupt hmg data")
)

// Image is an RGBA8 raster with straight alpha. len(Data) is always
// Width*Height*4.
type Image struct {
	Width  int
	Height int
	Data   []byte
}

// New returns a fully transparent image.
func New(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{Width: width, Height: height, Data: make([]byte, width*height*4)}
}

// Stride returns the byte length of one row.
func (m *Image) Stride() int {
	return m.Width * 4
}

// Bounds returns the image rectangle at the origin.
func (m *Image) Bounds() Rect {
	return Rect{W: m.Width, H: m.Height}
}

// Decode parses an HMG file.
func Decode(raw []byte) (*Image, error) {
	r := buffer.NewReader(raw)

	magic, err := r.ReadChars(3)
	if err != nil || magic != Magic {
		return nil, ErrFormat
	}

	h, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	block, err := r.ReadBytes(h.compressedSize)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated pixel block: %v", ErrCorrupt, err)
	}

	img := New(h.width, h.height)
	if len(img.Data) == 0 {
		return img, nil
	}
	n, err := lz4.UncompressBlock(block, img.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if n != len(img.Data) {
		return nil, fmt.Errorf("%w: decoded %d bytes, want %d", ErrCorrupt, n, len(img.Data))
	}
	return img, nil
}

type header struct {
	compressedSize int
	width, height  int
}

func readHeader(r *buffer.Reader) (header, error) {
	var h header

	dummyLen1, err := r.ReadUint8()
	if err != nil {
		return h, err
	}
	if _, err := r.ReadUint32(); err != nil { // file size
		return h, err
	}
	if _, err := r.ReadBytes(int(dummyLen1)); err != nil {
		return h, err
	}

	var fields [3]int32
	for i := range fields {
		if fields[i], err = r.ReadInt32(); err != nil {
			return h, err
		}
	}
	h.compressedSize, h.width, h.height = int(fields[0]), int(fields[1]), int(fields[2])
	if h.compressedSize < 0 || h.width < 0 || h.height < 0 {
		return h, fmt.Errorf("negative size in header (%d, %dx%d)", h.compressedSize, h.width, h.height)
	}
	pixels, ok := pixelLen(h.width, h.height)
	if !ok || pixels > h.compressedSize*maxExpansion+16 {
		return h, fmt.Errorf("%dx%d pixels cannot come from a %d byte block", h.width, h.height, h.compressedSize)
	}

	// bit depth, type marker
	if _, err := r.ReadBytes(2); err != nil {
		return h, err
	}
	dummyLen2, err := r.ReadUint8()
	if err != nil {
		return h, err
	}
	if _, err := r.ReadUint8(); err != nil { // compression method
		return h, err
	}
	if _, err := r.ReadBytes(int(dummyLen2)); err != nil {
		return h, err
	}
	return h, nil
}

// pixelLen returns width*height*4, or false when it does not fit in an int.
func pixelLen(width, height int) (int, bool) {
	if width == 0 || height == 0 {
		return 0, true
	}
	if width > math.MaxInt/4/height {
		return 0, false
	}
	return width * height * 4, true
}

// Encode compresses m into an HMG file with empty dummy chunks.
func Encode(m *Image) ([]byte, error) {
	if want := m.Width * m.Height * 4; len(m.Data) != want {
		return nil, fmt.Errorf("%w: pixel buffer is %d bytes, want %d", ErrCorrupt, len(m.Data), want)
	}

	var block []byte
	if len(m.Data) > 0 {
		block = make([]byte, lz4.CompressBlockBound(len(m.Data)))
		n, err := lz4.CompressBlock(m.Data, block, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		block = block[:n]
	}

	out := make([]byte, 0, encodedOverhead+len(block))
	word := func(v uint32) {
		out = binary.LittleEndian.AppendUint32(out, v)
	}

	out = append(out, Magic...)
	out = append(out, 0) // dummy chunk 1 length
	word(uint32(encodedOverhead + len(block)))
	word(uint32(len(block)))
	word(uint32(m.Width))
	word(uint32(m.Height))
	out = append(out, bitDepth, typeMarker)
	out = append(out, 0) // dummy chunk 2 length
	out = append(out, methodLZ4)
	out = append(out, block...)
	return out, nil
}
