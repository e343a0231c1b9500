// Package buffer provides a little-endian cursor over a fixed byte slice.
package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a read would run past the end of the buffer.
var ErrOutOfBounds = errors.New("read out of bounds")

// Reader reads fixed-width values from a byte slice, advancing an offset.
type Reader struct {
	raw    []byte
	offset int
}

// NewReader wraps raw. The slice is not copied.
func NewReader(raw []byte) *Reader {
	return &Reader{raw: raw}
}

// Raw returns the underlying slice.
func (r *Reader) Raw() []byte {
	return r.raw
}

// Offset returns the current read position.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.raw) - r.offset
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.offset+n > len(r.raw) {
		return nil, fmt.Errorf("%w: want %d bytes at offset %d, have %d", ErrOutOfBounds, n, r.offset, len(r.raw))
	}
	b := r.raw[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadBytes returns the next n bytes as a sub-slice of the buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}

// ReadChars returns the next n bytes as a string.
func (r *Reader) ReadChars(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadZString reads up to and including a NUL terminator and returns the
// bytes before it.
func (r *Reader) ReadZString() (string, error) {
	start := r.offset
	for i := start; i < len(r.raw); i++ {
		if r.raw[i] == 0 {
			r.offset = i + 1
			return string(r.raw[start:i]), nil
		}
	}
	return "", fmt.Errorf("%w: unterminated string at offset %d", ErrOutOfBounds, start)
}
