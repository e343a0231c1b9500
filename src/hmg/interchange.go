package hmg

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/bmp"
)

// NRGBA returns a copy of m as a standard library image.
func (m *Image) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	copy(img.Pix, m.Data)
	return img
}

// FromImage converts any image to an HMG raster.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}
	m := New(b.Dx(), b.Dy())
	copy(m.Data, nrgba.Pix)
	return m
}

// EncodePNG writes m as a PNG.
func EncodePNG(w io.Writer, m *Image) error {
	return png.Encode(w, m.NRGBA())
}

// DecodePNG reads a PNG into an HMG raster.
func DecodePNG(r io.Reader) (*Image, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("png decode: %w", err)
	}
	return FromImage(img), nil
}

const (
	bmpFileHeaderLen = 14
	bmpV4HeaderLen   = 108
	bmpBitfields     = 3
	bmpSRGB          = 0x73524742 // "sRGB"
)

// EncodeBMP writes m as a bottom-up 32bpp BMP with a BITMAPV4HEADER. The
// alpha mask in the header keeps translucent pixels intact on decode.
func EncodeBMP(w io.Writer, m *Image) error {
	offset := bmpFileHeaderLen + bmpV4HeaderLen
	size := offset + len(m.Data)

	hdr := make([]byte, offset)
	le := binary.LittleEndian
	copy(hdr, "BM")
	le.PutUint32(hdr[2:], uint32(size))
	le.PutUint32(hdr[10:], uint32(offset))

	info := hdr[bmpFileHeaderLen:]
	le.PutUint32(info[0:], bmpV4HeaderLen)
	le.PutUint32(info[4:], uint32(m.Width))
	le.PutUint32(info[8:], uint32(m.Height))
	le.PutUint16(info[12:], 1)  // planes
	le.PutUint16(info[14:], 32) // bits per pixel
	le.PutUint32(info[16:], bmpBitfields)
	le.PutUint32(info[20:], uint32(len(m.Data)))
	le.PutUint32(info[40:], 0x00ff0000)
	le.PutUint32(info[44:], 0x0000ff00)
	le.PutUint32(info[48:], 0x000000ff)
	le.PutUint32(info[52:], 0xff000000)
	le.PutUint32(info[56:], bmpSRGB)

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(hdr); err != nil {
		return err
	}
	row := make([]byte, m.Stride())
	for y := m.Height - 1; y >= 0; y-- {
		src := m.Data[y*m.Stride() : (y+1)*m.Stride()]
		for x := 0; x < len(src); x += 4 {
			row[x], row[x+1], row[x+2], row[x+3] = src[x+2], src[x+1], src[x], src[x+3]
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeBMP reads a BMP into an HMG raster.
func DecodeBMP(r io.Reader) (*Image, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("bmp decode: %w", err)
	}
	return FromImage(img), nil
}

// SavePNG writes m as a PNG file at path, creating parent directories.
func SavePNG(path string, m *Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := imgio.Save(path, m.NRGBA(), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Load reads a PNG, BMP or JPEG file into an HMG raster.
func Load(path string) (*Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return FromImage(img), nil
}

// ToPNG converts raw HMG bytes to PNG bytes.
func ToPNG(raw []byte) ([]byte, error) {
	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToBMP converts raw HMG bytes to BMP bytes.
func ToBMP(raw []byte) ([]byte, error) {
	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodeBMP(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeFile reads the PNG, BMP or JPEG file at path and returns it as raw
// HMG bytes.
func EncodeFile(path string) ([]byte, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Encode(m)
}
