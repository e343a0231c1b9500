package eastward

import (
	"errors"
	"fmt"
	"sort"
)

// ErrObjectMap is returned for serialized object maps that cannot be rebuilt.
var ErrObjectMap = errors.New("malformed object map")

// ObjectMap is a deserialized object graph. Objects holds every id,
// aliases included, mapped to its object.
type ObjectMap struct {
	Root    any
	Objects map[string]any
}

type objectEntry struct {
	obj  any
	body map[string]any // nil for plain values
}

// Deserialize rebuilds a serialized object map of the form
//
//	{"root": id, "map": {id: {"model": ..., "alias": ..., "namespace": ..., "body": {...}}}}
//
// Modelled entries become objects whose fields come from body; a field or
// array element naming a known id is replaced by that object. Alias entries
// resolve to the object they name, following alias chains.
func Deserialize(data any) (*ObjectMap, error) {
	doc, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T", ErrObjectMap, data)
	}
	rootID, _ := doc["root"].(string)
	if rootID == "" {
		return nil, fmt.Errorf("%w: no root id", ErrObjectMap)
	}
	raw, _ := doc["map"].(map[string]any)

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make(map[string]*objectEntry, len(raw))
	aliases := make(map[string]string)
	for _, id := range ids {
		od, _ := raw[id].(map[string]any)
		body, _ := od["body"].(map[string]any)
		if model, _ := od["model"].(string); model != "" {
			entries[id] = &objectEntry{obj: make(map[string]any), body: body}
			continue
		}
		if alias, _ := od["alias"].(string); alias != "" {
			if ns, _ := od["namespace"].(string); ns != "" {
				alias = alias + ":" + ns
			}
			aliases[id] = alias
			continue
		}
		entries[id] = &objectEntry{obj: od["body"]}
	}

	for id, alias := range aliases {
		target := alias
		for steps := 0; ; steps++ {
			if e, ok := entries[target]; ok {
				entries[id] = e
				break
			}
			next, ok := aliases[target]
			if !ok || steps > len(aliases) {
				return nil, fmt.Errorf("%w: alias %s of %s not found", ErrObjectMap, alias, id)
			}
			target = next
		}
	}

	resolve := func(v any) any {
		if s, ok := v.(string); ok {
			if e, ok := entries[s]; ok {
				return e.obj
			}
		}
		return v
	}
	filled := make(map[*objectEntry]bool)
	for _, id := range ids {
		e := entries[id]
		if e == nil || e.body == nil || filled[e] {
			continue
		}
		filled[e] = true
		obj := e.obj.(map[string]any)
		for k, v := range e.body {
			if l, ok := v.([]any); ok {
				out := make([]any, len(l))
				for i, item := range l {
					out[i] = resolve(item)
				}
				obj[k] = out
				continue
			}
			obj[k] = resolve(v)
		}
	}

	root, ok := entries[rootID]
	if !ok {
		return nil, fmt.Errorf("%w: root %s not in map", ErrObjectMap, rootID)
	}
	objects := make(map[string]any, len(entries))
	for id, e := range entries {
		objects[id] = e.obj
	}
	return &ObjectMap{Root: root.obj, Objects: objects}, nil
}
