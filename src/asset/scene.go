package asset

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/VriskaSerket51/eastward-go/src/eastward"
)

const sceneGroupExt = ".scene_group"

// Scene is a scene index with its groups keyed by file name.
type Scene struct {
	Index  any
	Groups map[string]any
}

func loadScene(g *eastward.Graph, n *eastward.Node) (eastward.Asset, error) {
	def := n.ObjectFile("def")
	compiled := n.ObjectFile("compiled")

	indexPath := path.Join(def, "scene_index.json")
	ok, err := g.FileExists(indexPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		// single-file scene definition
		index, err := g.LoadJSON(def)
		if err != nil {
			return nil, err
		}
		if index == nil {
			return nil, fmt.Errorf("scene definition %s not found", def)
		}
		return &Scene{Index: index}, nil
	}

	index, err := g.LoadJSON(indexPath)
	if err != nil {
		return nil, err
	}
	sc := &Scene{Index: index}

	files, err := g.LoadDirectory(def)
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		if !strings.HasSuffix(name, sceneGroupExt) {
			continue
		}
		group, err := g.LoadPackedOrJSON(path.Join(compiled, name+eastward.PackedSuffix), path.Join(def, name))
		if err != nil {
			return nil, err
		}
		if group == nil {
			return nil, fmt.Errorf("scene group %s not found", name)
		}
		if sc.Groups == nil {
			sc.Groups = make(map[string]any)
		}
		sc.Groups[name] = group
	}
	return sc, nil
}

// Save writes dst as a directory with scene_index.json and one JSON file per
// group.
func (sc *Scene) Save(dst string) error {
	if err := writeJSON(filepath.Join(dst, "scene_index.json"), sc.Index); err != nil {
		return err
	}
	names := make([]string, 0, len(sc.Groups))
	for name := range sc.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeJSON(filepath.Join(dst, name), sc.Groups[name]); err != nil {
			return err
		}
	}
	return nil
}
