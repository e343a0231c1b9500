// Package asset holds the loaders of the asset kinds the extractor knows and
// the table that registers them into a graph.
package asset

import (
	"fmt"
	"sort"

	"github.com/VriskaSerket51/eastward-go/src/eastward"
)

// Asset types with dedicated loaders.
const (
	TypeTexture    = "texture"
	TypeMSprite    = "msprite"
	TypeLocalePack = "locale_pack"
	TypeSQScript   = "sq_script"
	TypeScene      = "scene"
)

// Options tune how loaded assets are saved.
type Options struct {
	// Language selects the translation used when decompiling scripts.
	Language string
	// Builds also writes the built record tree of every script.
	Builds bool
}

type entry struct {
	loader     func(Options) eastward.LoaderFunc
	skipParent bool
}

func fixed(fn eastward.LoaderFunc) func(Options) eastward.LoaderFunc {
	return func(Options) eastward.LoaderFunc { return fn }
}

func rawKind(keys ...string) entry {
	return entry{loader: fixed(rawFileLoader(keys...)), skipParent: true}
}

// Every kind resolves its own peers, so none needs its parent loaded first.
var kinds = map[string]entry{
	TypeTexture:    {loader: fixed(loadTexture), skipParent: true},
	TypeMSprite:    {loader: fixed(loadMultiSprite), skipParent: true},
	TypeLocalePack: {loader: fixed(loadLocalePack), skipParent: true},
	TypeSQScript:   {loader: scriptLoader, skipParent: true},
	TypeScene:      {loader: fixed(loadScene), skipParent: true},

	"data_json":          rawKind("data"),
	"data_csv":           rawKind("data"),
	"data_xls":           rawKind("data"),
	"code_tileset":       rawKind("data"),
	"font_bmfont":        rawKind("font"),
	"font_ttf":           rawKind("font"),
	"glsl":               rawKind("src"),
	"shader_script":      rawKind("src"),
	"lua":                rawKind("src", "script"),
	"movie":              rawKind("data"),
	"text":               rawKind("data", "text", "src"),
	"com_script":         rawKind("src", "script"),
	"bt_script":          rawKind("def"),
	"tb_scheme":          rawKind("data"),
	"fsm_scheme":         rawKind("def"),
	"quest_scheme":       rawKind("def"),
	"scene_portal_graph": rawKind("def"),
	"deck2d":             rawKind("def"),
}

// Kinds that load other kinds as peers.
var requires = map[string][]string{
	TypeMSprite:  {TypeTexture},
	TypeSQScript: {TypeLocalePack},
}

// Types returns every asset type this package can load, sorted.
func Types() []string {
	out := make([]string, 0, len(kinds))
	for t := range kinds {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RegisterAll installs every known loader into g.
func RegisterAll(g *eastward.Graph, opts Options) {
	for t, e := range kinds {
		g.Register(t, e.loader(opts), e.skipParent)
	}
}

// Register installs the loader for typ into g, along with the loaders of the
// kinds it reads peers from.
func Register(g *eastward.Graph, typ string, opts Options) error {
	e, ok := kinds[typ]
	if !ok {
		return fmt.Errorf("unknown asset type %q", typ)
	}
	g.Register(typ, e.loader(opts), e.skipParent)
	for _, dep := range requires[typ] {
		if !g.Registered(dep) {
			d := kinds[dep]
			g.Register(dep, d.loader(opts), d.skipParent)
		}
	}
	return nil
}
