package hmg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, px [4]byte) *Image {
	m := New(w, h)
	for i := 0; i < len(m.Data); i += 4 {
		copy(m.Data[i:i+4], px[:])
	}
	return m
}

func randomImage(t *testing.T, w, h int, seed int64) *Image {
	t.Helper()

	m := New(w, h)
	rng := rand.New(rand.NewSource(seed))
	rng.Read(m.Data)
	return m
}

func TestEncodeDecodeRedSquare(t *testing.T) {
	m := solid(2, 2, [4]byte{255, 0, 0, 255})
	raw, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != 2 || got.Height != 2 {
		t.Fatalf("size = %dx%d, want 2x2", got.Width, got.Height)
	}
	want := bytes.Repeat([]byte{255, 0, 0, 255}, 4)
	if !bytes.Equal(got.Data, want) {
		t.Fatalf("Data = %v, want %v", got.Data, want)
	}
}

func TestEncodeDecodeArbitraryContent(t *testing.T) {
	sizes := [][2]int{{0, 0}, {1, 1}, {3, 7}, {64, 33}}
	for i, s := range sizes {
		m := randomImage(t, s[0], s[1], int64(i))
		raw, err := Encode(m)
		if err != nil {
			t.Fatalf("Encode %dx%d: %v", s[0], s[1], err)
		}
		got, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode %dx%d: %v", s[0], s[1], err)
		}
		if !bytes.Equal(got.Data, m.Data) {
			t.Fatalf("%dx%d round trip changed pixel data", s[0], s[1])
		}
	}
}

func TestEncodedHeaderLayout(t *testing.T) {
	raw, err := Encode(solid(4, 2, [4]byte{1, 2, 3, 4}))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(raw[:3]) != Magic {
		t.Fatalf("magic = %q, want %q", raw[:3], Magic)
	}
	if size := int(raw[4]) | int(raw[5])<<8 | int(raw[6])<<16 | int(raw[7])<<24; size != len(raw) {
		t.Fatalf("file size field = %d, want %d", size, len(raw))
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	raw, _ := Encode(solid(1, 1, [4]byte{0, 0, 0, 255}))
	raw[0] = 'X'
	if _, err := Decode(raw); !errors.Is(err, ErrFormat) {
		t.Fatalf("Decode err = %v, want ErrFormat", err)
	}
	if _, err := Decode([]byte("PG")); !errors.Is(err, ErrFormat) {
		t.Fatalf("Decode short err = %v, want ErrFormat", err)
	}
}

func TestDecodeRejectsTruncatedBlock(t *testing.T) {
	raw, _ := Encode(randomImage(t, 8, 8, 1))
	if _, err := Decode(raw[:len(raw)-4]); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Decode err = %v, want ErrCorrupt", err)
	}
}

func TestDecodeRejectsWrongDimensions(t *testing.T) {
	raw, _ := Encode(solid(4, 4, [4]byte{9, 9, 9, 255}))
	// height field sits after magic, dummy length, file size, block size and width
	raw[3+1+4+4+4] = 5
	if _, err := Decode(raw); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Decode err = %v, want ErrCorrupt", err)
	}
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	raw, _ := Encode(solid(1, 1, [4]byte{1, 2, 3, 4}))
	// width and height follow magic, dummy length, file size and block size
	binary.LittleEndian.PutUint32(raw[12:], 0x7fffffff)
	binary.LittleEndian.PutUint32(raw[16:], 0x7fffffff)
	if _, err := Decode(raw); !errors.Is(err, ErrFormat) {
		t.Fatalf("Decode err = %v, want ErrFormat", err)
	}

	binary.LittleEndian.PutUint32(raw[12:], 4096)
	binary.LittleEndian.PutUint32(raw[16:], 4096)
	if _, err := Decode(raw); !errors.Is(err, ErrFormat) {
		t.Fatalf("Decode err = %v, want ErrFormat for a block too small", err)
	}
}

func TestEncodeRejectsShortBuffer(t *testing.T) {
	if _, err := Encode(&Image{Width: 2, Height: 2, Data: make([]byte, 3)}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Encode err = %v, want ErrCorrupt", err)
	}
}

func TestCropFullExtentIsIdentity(t *testing.T) {
	m := randomImage(t, 5, 3, 7)
	got := Crop(m, m.Bounds())
	if !bytes.Equal(got.Data, m.Data) {
		t.Fatalf("full crop changed pixel data")
	}
	if &got.Data[0] == &m.Data[0] {
		t.Fatalf("crop shares the source buffer")
	}
}

func TestCropSubRect(t *testing.T) {
	m := New(3, 3)
	for i := range m.Data {
		m.Data[i] = byte(i / 4)
	}
	got := Crop(m, Rect{X: 1, Y: 1, W: 2, H: 2})
	want := []byte{4, 4, 4, 4, 5, 5, 5, 5, 7, 7, 7, 7, 8, 8, 8, 8}
	if !bytes.Equal(got.Data, want) {
		t.Fatalf("Crop = %v, want %v", got.Data, want)
	}
}

func TestCropOutsideSourceIsTransparent(t *testing.T) {
	m := solid(2, 2, [4]byte{1, 1, 1, 255})
	got := Crop(m, Rect{X: 1, Y: 1, W: 2, H: 2})
	if len(got.Data) != 16 {
		t.Fatalf("len(Data) = %d, want 16", len(got.Data))
	}
	if !bytes.Equal(got.Data[:4], []byte{1, 1, 1, 255}) || !bytes.Equal(got.Data[4:], make([]byte, 12)) {
		t.Fatalf("Crop = %v", got.Data)
	}
}

func TestMergeOpaqueSourceOverwrites(t *testing.T) {
	dst := randomImage(t, 4, 4, 3)
	src := randomImage(t, 2, 2, 4)
	for i := 3; i < len(src.Data); i += 4 {
		src.Data[i] = 255
	}
	Merge(dst, src, 1, 1)
	got := Crop(dst, Rect{X: 1, Y: 1, W: 2, H: 2})
	if !bytes.Equal(got.Data, src.Data) {
		t.Fatalf("overlap = %v, want %v", got.Data, src.Data)
	}
}

func TestMergeBlendsTranslucent(t *testing.T) {
	dst := solid(1, 1, [4]byte{0, 0, 255, 255})
	src := solid(1, 1, [4]byte{255, 0, 0, 128})
	Merge(dst, src, 0, 0)
	want := []byte{128, 0, 127, 255}
	if !bytes.Equal(dst.Data, want) {
		t.Fatalf("blend = %v, want %v", dst.Data, want)
	}
}

func TestMergeOntoTransparentKeepsSource(t *testing.T) {
	dst := New(1, 1)
	src := solid(1, 1, [4]byte{10, 20, 30, 100})
	Merge(dst, src, 0, 0)
	if !bytes.Equal(dst.Data, src.Data) {
		t.Fatalf("blend = %v, want %v", dst.Data, src.Data)
	}
}

func TestMergeClipsToDestination(t *testing.T) {
	dst := New(2, 2)
	src := solid(2, 2, [4]byte{5, 5, 5, 255})
	Merge(dst, src, -1, 1)
	want := []byte{0, 0, 0, 0, 0, 0, 0, 0, 5, 5, 5, 255, 0, 0, 0, 0}
	if !bytes.Equal(dst.Data, want) {
		t.Fatalf("Merge = %v, want %v", dst.Data, want)
	}
}

func TestUnion(t *testing.T) {
	if got := Union(); got != (Rect{}) {
		t.Fatalf("Union() = %+v, want zero", got)
	}
	r := Rect{X: -3, Y: 2, W: 5, H: 1}
	if got := Union(r); got != r {
		t.Fatalf("Union(r) = %+v, want %+v", got, r)
	}
	got := Union(Rect{X: 0, Y: 0, W: 2, H: 2}, Rect{X: -1, Y: 3, W: 1, H: 4})
	want := Rect{X: -1, Y: 0, W: 3, H: 7}
	if got != want {
		t.Fatalf("Union = %+v, want %+v", got, want)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	m := randomImage(t, 6, 5, 11)
	var buf bytes.Buffer
	if err := EncodePNG(&buf, m); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	got, err := DecodePNG(&buf)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if got.Width != m.Width || got.Height != m.Height || !bytes.Equal(got.Data, m.Data) {
		t.Fatalf("PNG round trip changed the image")
	}
}

func TestBMPRoundTripKeepsAlpha(t *testing.T) {
	m := randomImage(t, 3, 4, 12)
	copy(m.Data, []byte{10, 20, 30, 128, 200, 100, 50, 0})
	var buf bytes.Buffer
	if err := EncodeBMP(&buf, m); err != nil {
		t.Fatalf("EncodeBMP: %v", err)
	}
	raw := buf.Bytes()
	if !bytes.HasPrefix(raw, []byte("BM")) {
		t.Fatalf("BMP header = %q", raw[:2])
	}
	if got := binary.LittleEndian.Uint32(raw[14:18]); got != 108 {
		t.Fatalf("info header size = %d, want 108", got)
	}
	got, err := DecodeBMP(&buf)
	if err != nil {
		t.Fatalf("DecodeBMP: %v", err)
	}
	if got.Width != 3 || got.Height != 4 {
		t.Fatalf("size = %dx%d, want 3x4", got.Width, got.Height)
	}
	if !bytes.Equal(got.Data, m.Data) {
		t.Fatalf("BMP round trip changed pixel data: %v, want %v", got.Data[:8], m.Data[:8])
	}
}

func TestHMGToPNGAndBack(t *testing.T) {
	raw, _ := Encode(randomImage(t, 4, 4, 13))
	pngData, err := ToPNG(raw)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	path := filepath.Join(t.TempDir(), "a.png")
	if err := os.WriteFile(path, pngData, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := EncodeFile(path)
	if err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	a, _ := Decode(raw)
	b, _ := Decode(back)
	if !bytes.Equal(a.Data, b.Data) {
		t.Fatalf("hmg -> png -> hmg changed pixel data")
	}
}

func TestSavePNGThenLoad(t *testing.T) {
	src := randomImage(t, 5, 4, 7)
	path := filepath.Join(t.TempDir(), "nested", "out.png")

	if err := SavePNG(path, src); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Width != 5 || got.Height != 4 || !bytes.Equal(got.Data, src.Data) {
		t.Fatalf("loaded image differs from saved one")
	}
}

func TestEncodeFileAcceptsBMP(t *testing.T) {
	src := randomImage(t, 3, 2, 21)
	var buf bytes.Buffer
	if err := EncodeBMP(&buf, src); err != nil {
		t.Fatalf("EncodeBMP: %v", err)
	}
	path := filepath.Join(t.TempDir(), "a.bmp")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := EncodeFile(path)
	if err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got.Data, src.Data) {
		t.Fatalf("bmp -> hmg changed pixel data")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.png")); err == nil {
		t.Fatalf("Load succeeded on a missing file")
	}
}
