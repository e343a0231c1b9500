// Package garchive reads and writes ".g" package files: a flat table of named
// entries, each optionally zstd-compressed.
//
// Layout (all integers little-endian uint32):
//
//	magic (27191) | entry count
//	per entry: name NUL | offset | method | decompressed size | compressed size
//	payload bytes at their absolute offsets
package garchive

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/DataDog/zstd"

	"github.com/VriskaSerket51/eastward-go/src/buffer"
)

const (
	// Magic is the first word of every package file.
	Magic = 27191

	// MethodCompressed marks a zstd-compressed payload. Any other method value
	// is treated as stored.
	MethodCompressed = 2

	headerSize     = 8
	descriptorSize = 16
)

var (
	// ErrFormat is returned when the data is not a package file.
	ErrFormat = errors.New("not a recognized container")
	// ErrCorrupt is returned when a payload does not decompress to its declared size.
	ErrCorrupt = errors.New("corrupt container entry")
)

// Entry is one named payload. Its bytes are decompressed in place on first
// read.
type Entry struct {
	Name string

	mu         sync.Mutex
	compressed bool
	data       []byte
	size       int
}

// Size returns the declared decompressed length.
func (e *Entry) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

// Compressed reports whether the entry still holds compressed bytes.
func (e *Entry) Compressed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compressed
}

func (e *Entry) bytes() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.compressed {
		return e.data, nil
	}
	if len(e.data) == 0 && e.size == 0 {
		e.data, e.compressed = []byte{}, false
		return e.data, nil
	}
	out, err := zstd.Decompress(nil, e.data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, e.Name, err)
	}
	if len(out) != e.size {
		return nil, fmt.Errorf("%w: %s: decompressed %d bytes, declared %d", ErrCorrupt, e.Name, len(out), e.size)
	}
	e.data = out
	e.compressed = false
	return e.data, nil
}

// packed returns the compressed payload, compressing it first if needed.
func (e *Entry) packed() ([]byte, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.compressed {
		out, err := zstd.Compress(nil, e.data)
		if err != nil {
			return nil, 0, fmt.Errorf("compress %s: %w", e.Name, err)
		}
		e.size = len(e.data)
		e.data = out
		e.compressed = true
	}
	return e.data, e.size, nil
}

// Archive is an in-memory entry table. Entries keep their first insertion
// order; replacing an entry keeps its position.
type Archive struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

// New returns an empty archive.
func New() *Archive {
	return &Archive{entries: make(map[string]*Entry)}
}

// Decode indexes a package file without decompressing any payload.
func Decode(data []byte) (*Archive, error) {
	a := New()
	if err := a.Merge(data); err != nil {
		return nil, err
	}
	return a, nil
}

// Open reads and indexes the package file at path.
func Open(path string) (*Archive, error) {
	a := New()
	if err := a.LoadFile(path); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadFile merges the package file at path into a, overriding entries that
// share a name.
func (a *Archive) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := a.Merge(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Merge indexes data and adds its entries to a. Entries already present
// under the same name are replaced.
func (a *Archive) Merge(data []byte) error {
	r := buffer.NewReader(data)

	magic, err := r.ReadUint32()
	if err != nil || magic != Magic {
		return ErrFormat
	}
	count, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	// each descriptor takes at least a NUL and four words
	if limit := r.Remaining() / (1 + descriptorSize); uint64(count) > uint64(limit) {
		return fmt.Errorf("%w: %d entries cannot fit in %d bytes", ErrFormat, count, r.Remaining())
	}

	entries := make([]*Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		e, err := readDescriptor(r, data)
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrFormat, i, err)
		}
		entries = append(entries, e)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range entries {
		a.put(e)
	}
	return nil
}

func readDescriptor(r *buffer.Reader, data []byte) (*Entry, error) {
	name, err := r.ReadZString()
	if err != nil {
		return nil, err
	}
	var fields [4]uint32
	for i := range fields {
		if fields[i], err = r.ReadUint32(); err != nil {
			return nil, err
		}
	}
	offset, method, size, csize := fields[0], fields[1], fields[2], fields[3]
	end := uint64(offset) + uint64(csize)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%s: payload [%d:%d] past end of file (%d)", name, offset, end, len(data))
	}
	return &Entry{
		Name:       name,
		compressed: method == MethodCompressed,
		data:       data[offset:end],
		size:       int(size),
	}, nil
}

func (a *Archive) put(e *Entry) {
	if _, ok := a.entries[e.Name]; !ok {
		a.order = append(a.order, e.Name)
	}
	a.entries[e.Name] = e
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order)
}

// Names returns entry names in table order.
func (a *Archive) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.order...)
}

// Has reports whether name is present.
func (a *Archive) Has(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.entries[name]
	return ok
}

// Entry returns the entry for name, or nil.
func (a *Archive) Entry(name string) *Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.entries[name]
}

// ReadFile returns the decompressed bytes of name. A missing name is
// reported with ok=false and a nil error.
func (a *Archive) ReadFile(name string) (data []byte, ok bool, err error) {
	e := a.Entry(name)
	if e == nil {
		return nil, false, nil
	}
	data, err = e.bytes()
	if err != nil {
		return nil, true, err
	}
	return data, true, nil
}

// SetFile inserts or replaces name with uncompressed data.
func (a *Archive) SetFile(name string, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.put(&Entry{Name: name, data: data, size: len(data)})
}

// List returns the names under prefix with the prefix stripped, sorted.
func (a *Archive) List(prefix string) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []string
	for _, name := range a.order {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			out = append(out, rest)
		}
	}
	sort.Strings(out)
	return out
}

// Encode compresses every uncompressed entry and writes the package file.
func (a *Archive) Encode(w io.Writer) error {
	a.mu.RLock()
	entries := make([]*Entry, 0, len(a.order))
	for _, name := range a.order {
		entries = append(entries, a.entries[name])
	}
	a.mu.RUnlock()

	payloads := make([][]byte, len(entries))
	sizes := make([]int, len(entries))
	offset := headerSize
	for i, e := range entries {
		data, size, err := e.packed()
		if err != nil {
			return err
		}
		payloads[i], sizes[i] = data, size
		offset += len(e.Name) + 1 + descriptorSize
	}

	bw := bufio.NewWriter(w)
	word := make([]byte, 4)
	putWord := func(v uint32) {
		binary.LittleEndian.PutUint32(word, v)
		bw.Write(word)
	}

	putWord(Magic)
	putWord(uint32(len(entries)))
	for i, e := range entries {
		bw.WriteString(e.Name)
		bw.WriteByte(0)
		putWord(uint32(offset))
		putWord(MethodCompressed)
		putWord(uint32(sizes[i]))
		putWord(uint32(len(payloads[i])))
		offset += len(payloads[i])
	}
	for _, p := range payloads {
		bw.Write(p)
	}
	return bw.Flush()
}

// Save writes the archive to path, creating parent directories.
func (a *Archive) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
