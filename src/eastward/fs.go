package eastward

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/vmihailenco/msgpack/v5"
)

// PackedSuffix is appended to a JSON path to name its MessagePack variant.
const PackedSuffix = ".packed"

func (g *Graph) physical(p string) string {
	return filepath.Join(g.root, filepath.FromSlash(p))
}

// LoadFile resolves a virtual path: a loose file under the game root wins,
// otherwise the first segment names an archive and the rest an entry in it.
// A path that resolves to nothing returns (nil, nil).
func (g *Graph) LoadFile(p string) ([]byte, error) {
	if p == "" {
		return nil, nil
	}
	full := g.physical(p)
	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		return os.ReadFile(full)
	}

	id, rest := splitVirtual(p)
	a, err := g.Archive(id)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", id, err)
	}
	if a == nil {
		return nil, nil
	}
	data, ok, err := a.ReadFile(rest)
	if err != nil || !ok {
		return nil, err
	}
	return data, nil
}

// FileExists reports whether p resolves to a loose file or an archive entry.
// Checking an archive entry loads the archive but does not decompress the entry.
func (g *Graph) FileExists(p string) (bool, error) {
	if p == "" {
		return false, nil
	}
	if info, err := os.Stat(g.physical(p)); err == nil && !info.IsDir() {
		return true, nil
	}
	id, rest := splitVirtual(p)
	a, err := g.Archive(id)
	if err != nil || a == nil {
		return false, err
	}
	return a.Has(rest), nil
}

// LoadText returns the file at p as a string. ok is false if p is absent.
func (g *Graph) LoadText(p string) (text string, ok bool, err error) {
	data, err := g.LoadFile(p)
	if err != nil || data == nil {
		return "", false, err
	}
	return string(data), true, nil
}

// LoadJSON decodes the JSON file at p into generic values. Comments and
// trailing commas are tolerated. An absent file returns (nil, nil).
func (g *Graph) LoadJSON(p string) (any, error) {
	var v any
	ok, err := g.LoadJSONInto(p, &v)
	if err != nil || !ok {
		return nil, err
	}
	return v, nil
}

// LoadJSONInto decodes the JSON file at p into v.
func (g *Graph) LoadJSONInto(p string, v any) (bool, error) {
	data, err := g.LoadFile(p)
	if err != nil || data == nil {
		return false, err
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return false, fmt.Errorf("parse %s: %w", p, err)
	}
	return true, nil
}

// LoadPacked decodes the MessagePack file at p. An absent file returns
// (nil, nil).
func (g *Graph) LoadPacked(p string) (any, error) {
	data, err := g.LoadFile(p)
	if err != nil || data == nil {
		return nil, err
	}
	v, err := DecodePacked(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	return v, nil
}

// LoadPackedOrJSON prefers the packed file and falls back to the JSON one.
func (g *Graph) LoadPackedOrJSON(packedPath, jsonPath string) (any, error) {
	v, err := g.LoadPacked(packedPath)
	if err != nil || v != nil {
		return v, err
	}
	return g.LoadJSON(jsonPath)
}

// LoadDirectory lists the direct children of directory p, sorted. A loose
// directory under the root wins over archive entries. An absent directory
// returns nil.
func (g *Graph) LoadDirectory(p string) ([]string, error) {
	p = strings.TrimSuffix(p, "/")
	entries, err := os.ReadDir(g.physical(p))
	if err == nil {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return names, nil
	}

	id, rest := splitVirtual(p)
	a, err := g.Archive(id)
	if err != nil || a == nil {
		return nil, err
	}
	prefix := rest + "/"
	if rest == "" {
		prefix = ""
	}
	seen := make(map[string]bool)
	var names []string
	for _, name := range a.List(prefix) {
		first, _, _ := strings.Cut(name, "/")
		if !seen[first] {
			seen[first] = true
			names = append(names, first)
		}
	}
	sort.Strings(names)
	return names, nil
}

// DecodePacked decodes MessagePack data into generic values. Map keys are
// always strings; non-string keys are formatted.
func DecodePacked(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetMapDecoder(decodeStringMap)
	return dec.DecodeInterface()
}

func decodeStringMap(d *msgpack.Decoder) (any, error) {
	n, err := d.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	m := make(map[string]any, n)
	for i := 0; i < n; i++ {
		k, err := d.DecodeInterface()
		if err != nil {
			return nil, err
		}
		v, err := d.DecodeInterface()
		if err != nil {
			return nil, err
		}
		switch k := k.(type) {
		case string:
			m[k] = v
		default:
			m[fmt.Sprint(k)] = v
		}
	}
	return m, nil
}
