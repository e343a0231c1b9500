package asset

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/VriskaSerket51/eastward-go/src/eastward"
)

// Languages lists the locale pack languages in load order.
var Languages = []string{"en", "ko", "de", "es", "fr", "zh-TW", "zh-CN", "ja"}

type LocaleItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type LocaleConfig struct {
	GUID  string       `json:"guid"`
	Items []LocaleItem `json:"items"`
}

// LocalePack holds the string tables of a locale_pack node:
// Data[lang][item name][key] = text.
type LocalePack struct {
	Config LocaleConfig
	Langs  []string
	Data   map[string]map[string]map[string]string
}

func loadLocalePack(g *eastward.Graph, n *eastward.Node) (eastward.Asset, error) {
	var cfg LocaleConfig
	ok, err := g.LoadJSONInto(n.ObjectFile("config"), &cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	lp := &LocalePack{Config: cfg, Data: make(map[string]map[string]map[string]string)}
	dataDir := n.ObjectFile("data")
	for _, lang := range Languages {
		src, ok, err := g.LoadText(path.Join(dataDir, lang))
		if err != nil {
			return nil, err
		}
		// languages are shipped in order; the first gap ends the pack
		if !ok {
			break
		}
		tables, err := EvalLocaleTable(src)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", dataDir, lang, err)
		}
		lp.Langs = append(lp.Langs, lang)
		lp.Data[lang] = tables
	}
	log.Debug().Str("path", n.Path).Strs("langs", lp.Langs).Msg("locale pack loaded")
	return lp, nil
}

// EvalLocaleTable runs a Lua chunk returning {name = {key = text}} and
// converts the result.
func EvalLocaleTable(src string) (map[string]map[string]string, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	if err := L.DoString(src); err != nil {
		return nil, err
	}
	top, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("chunk returned %s, want table", L.Get(-1).Type())
	}

	out := make(map[string]map[string]string)
	top.ForEach(func(k, v lua.LValue) {
		inner, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		entries := make(map[string]string)
		inner.ForEach(func(ik, iv lua.LValue) {
			entries[ik.String()] = iv.String()
		})
		out[k.String()] = entries
	})
	return out, nil
}

// ItemName returns the item name the pack uses for an asset path.
func (lp *LocalePack) ItemName(assetPath string) (string, bool) {
	for _, it := range lp.Config.Items {
		if it.Path == assetPath {
			return it.Name, true
		}
	}
	return "", false
}

// Translate looks up key for assetPath in lang.
func (lp *LocalePack) Translate(assetPath, key, lang string) (string, bool) {
	if !slices.Contains(lp.Langs, lang) {
		return "", false
	}
	name, ok := lp.ItemName(assetPath)
	if !ok {
		return "", false
	}
	text, ok := lp.Data[lang][name][key]
	return text, ok
}

// Save writes dst as a directory: locale_pack.json with the pack config and
// locales/<lang>/<item>.json with each string table.
func (lp *LocalePack) Save(dst string) error {
	if err := writeJSON(filepath.Join(dst, "locale_pack.json"), lp.Config); err != nil {
		return err
	}
	for _, lang := range lp.Langs {
		for name, table := range lp.Data[lang] {
			if err := writeJSON(filepath.Join(dst, "locales", lang, name+".json"), table); err != nil {
				return err
			}
		}
	}
	return nil
}

// LocaleIndex maps asset paths to the locale pack that translates them.
type LocaleIndex map[string]*LocalePack

// LoadLocaleIndex loads every locale_pack node once per graph and indexes
// the packs by the asset paths they cover. Packs that fail to load are
// logged and left out.
func LoadLocaleIndex(g *eastward.Graph) (LocaleIndex, error) {
	v, err := g.Memo("locale_index", func() (any, error) {
		idx := make(LocaleIndex)
		for _, n := range g.NodesOfType(TypeLocalePack) {
			a, err := g.LoadAsset(n.Path)
			if err != nil {
				log.Warn().Err(err).Str("path", n.Path).Msg("locale pack skipped")
				continue
			}
			lp, ok := a.(*LocalePack)
			if !ok {
				continue
			}
			for _, it := range lp.Config.Items {
				if _, dup := idx[it.Path]; !dup {
					idx[it.Path] = lp
				}
			}
		}
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(LocaleIndex), nil
}
