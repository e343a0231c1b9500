package asset

import (
	"fmt"

	"github.com/VriskaSerket51/eastward-go/src/eastward"
	"github.com/VriskaSerket51/eastward-go/src/sq"
)

// BuildSuffix is appended to a script's output path for its built record
// tree.
const BuildSuffix = ".build.json"

// Script is a loaded sq_script node.
type Script struct {
	Path   string
	Raw    any
	Script *sq.Script

	graph *eastward.Graph
	opts  Options
}

func scriptLoader(opts Options) eastward.LoaderFunc {
	return func(g *eastward.Graph, n *eastward.Node) (eastward.Asset, error) {
		raw, err := g.LoadPackedOrJSON(n.ObjectFile("packed_data"), n.ObjectFile("data"))
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, nil
		}
		root, err := sq.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse script: %w", err)
		}
		return &Script{Path: n.Path, Raw: raw, Script: sq.NewScript(root), graph: g, opts: opts}, nil
	}
}

// Decompile renders the script as text. With a language, speech lines are
// replaced by their translation where the locale pack covering this script
// has one.
func (s *Script) Decompile(lang string) (string, error) {
	root := s.Script.Root
	if lang != "" {
		idx, err := LoadLocaleIndex(s.graph)
		if err != nil {
			return "", err
		}
		if lp := idx[s.Path]; lp != nil {
			root = sq.Localize(root, func(id string) (string, bool) {
				return lp.Translate(s.Path, id, lang)
			})
		}
	}
	return sq.Decompile(root), nil
}

// Save writes the decompiled script and, when builds are enabled, the built
// record tree next to it.
func (s *Script) Save(dst string) error {
	text, err := s.Decompile(s.opts.Language)
	if err != nil {
		return err
	}
	if err := writeBytes(dst, []byte(text)); err != nil {
		return err
	}
	if s.opts.Builds {
		return s.SaveBuild(dst + BuildSuffix)
	}
	return nil
}

// SaveBuild writes the minimized record tree as JSON.
func (s *Script) SaveBuild(dst string) error {
	return writeJSON(dst, s.Script.Build(false))
}
