package buffer

import (
	"errors"
	"testing"
)

func TestReaderReadsLittleEndianAndAdvances(t *testing.T) {
	data := []byte{
		0xFF,                   // int8 -1
		0x37, 0x6A, 0x00, 0x00, // int32 27191
		'P', 'G', 'F',
		'a', 'b', 0x00,
		0x01, 0x02,
	}
	r := NewReader(data)

	i8, err := r.ReadInt8()
	if err != nil || i8 != -1 {
		t.Fatalf("ReadInt8 = %d, %v, want -1", i8, err)
	}
	i32, err := r.ReadInt32()
	if err != nil || i32 != 27191 {
		t.Fatalf("ReadInt32 = %d, %v, want 27191", i32, err)
	}
	chars, err := r.ReadChars(3)
	if err != nil || chars != "PGF" {
		t.Fatalf("ReadChars = %q, %v, want PGF", chars, err)
	}
	z, err := r.ReadZString()
	if err != nil || z != "ab" {
		t.Fatalf("ReadZString = %q, %v, want ab", z, err)
	}
	if r.Offset() != 11 {
		t.Fatalf("Offset = %d, want 11", r.Offset())
	}
	b, err := r.ReadBytes(2)
	if err != nil || b[0] != 0x01 || b[1] != 0x02 {
		t.Fatalf("ReadBytes = %v, %v", b, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", r.Remaining())
	}
}

func TestReaderOutOfBounds(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.ReadUint32(); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("ReadUint32 err = %v, want ErrOutOfBounds", err)
	}
	if r.Offset() != 0 {
		t.Fatalf("failed read advanced offset to %d", r.Offset())
	}
	if _, err := r.ReadZString(); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("ReadZString err = %v, want ErrOutOfBounds", err)
	}
	if _, err := r.ReadBytes(3); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("ReadBytes err = %v, want ErrOutOfBounds", err)
	}
}
