package asset

import (
	"fmt"
	"path"
	"reflect"

	"github.com/rs/zerolog/log"

	"github.com/VriskaSerket51/eastward-go/src/eastward"
	"github.com/VriskaSerket51/eastward-go/src/hmg"
	"github.com/VriskaSerket51/eastward-go/src/value"
)

// TextureGroup is a texture library group. Textures of a group in atlas mode
// live on shared atlas pages under AtlasCachePath.
type TextureGroup struct {
	Name           string
	AtlasMode      bool
	AtlasCachePath string
}

func (tg *TextureGroup) key() string {
	if tg.Name != "" {
		return tg.Name
	}
	return tg.AtlasCachePath
}

// TextureRef locates one texture in the library.
type TextureRef struct {
	Path    string
	AtlasID int
	Group   *TextureGroup
}

// TextureLibrary indexes the textures of the game's texture library by
// asset path.
type TextureLibrary struct {
	refs map[string]TextureRef
}

// Find returns the library entry for an asset path.
func (l *TextureLibrary) Find(p string) (TextureRef, bool) {
	r, ok := l.refs[p]
	return r, ok
}

func (l *TextureLibrary) Len() int {
	return len(l.refs)
}

// LoadTextureLibrary returns the texture library named in the game config,
// loading it once per graph.
func LoadTextureLibrary(g *eastward.Graph) (*TextureLibrary, error) {
	v, err := g.Memo("texture_library", func() (any, error) {
		p := g.Config().TextureLibrary
		if p == "" {
			return nil, fmt.Errorf("game config has no texture_library")
		}
		data, err := g.LoadPackedOrJSON(p+eastward.PackedSuffix, p)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, fmt.Errorf("texture library %s not found", p)
		}
		return ParseTextureLibrary(data)
	})
	if err != nil {
		return nil, err
	}
	return v.(*TextureLibrary), nil
}

// ParseTextureLibrary builds the index from a serialized texture library.
// Every object holding a "textures" list is a group; every entry of that
// list with a "path" is a texture.
func ParseTextureLibrary(data any) (*TextureLibrary, error) {
	om, err := eastward.Deserialize(data)
	if err != nil {
		return nil, err
	}

	lib := &TextureLibrary{refs: make(map[string]TextureRef)}
	// aliases map several ids to the same group object
	seen := make(map[uintptr]bool)
	for _, obj := range om.Objects {
		gm := value.Map(obj)
		textures := value.List(gm["textures"])
		if gm == nil || textures == nil {
			continue
		}
		id := reflect.ValueOf(gm).Pointer()
		if seen[id] {
			continue
		}
		seen[id] = true
		group := &TextureGroup{
			Name:           value.String(gm["name"]),
			AtlasCachePath: value.String(gm["atlasCachePath"]),
		}
		group.AtlasMode, _ = gm["atlasMode"].(bool)

		for _, t := range textures {
			tm := value.Map(t)
			p := value.String(tm["path"])
			if p == "" {
				continue
			}
			lib.refs[p] = TextureRef{Path: p, AtlasID: value.Int(tm["atlasId"]), Group: group}
		}
	}
	log.Debug().Int("textures", len(lib.refs)).Msg("texture library loaded")
	return lib, nil
}

// atlasPages returns the decoded atlas pages of group, loading them once per
// graph. A page whose file is missing is nil.
func atlasPages(g *eastward.Graph, group *TextureGroup) ([]*hmg.Image, error) {
	v, err := g.Memo("atlas:"+group.key(), func() (any, error) {
		base := group.AtlasCachePath
		var cfg struct {
			Atlases []struct {
				Name string `json:"name"`
			} `json:"atlases"`
		}
		ok, err := g.LoadJSONInto(path.Join(base, "atlas.json"), &cfg)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("atlas config %s/atlas.json not found", base)
		}

		pages := make([]*hmg.Image, len(cfg.Atlases))
		for i, a := range cfg.Atlases {
			raw, err := g.LoadFile(path.Join(base, a.Name))
			if err != nil {
				return nil, err
			}
			if raw == nil {
				log.Warn().Str("group", group.key()).Str("page", a.Name).Msg("atlas page missing")
				continue
			}
			if pages[i], err = hmg.Decode(raw); err != nil {
				return nil, fmt.Errorf("atlas page %s: %w", a.Name, err)
			}
		}
		return pages, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*hmg.Image), nil
}

// Texture is a decoded texture. Image may be shared with other textures on
// the same atlas page and must not be modified.
type Texture struct {
	Image *hmg.Image
}

func loadTexture(g *eastward.Graph, n *eastward.Node) (eastward.Asset, error) {
	lib, err := LoadTextureLibrary(g)
	if err != nil {
		return nil, err
	}
	ref, ok := lib.Find(n.Path)
	if !ok {
		return nil, fmt.Errorf("texture %s not in texture library", n.Path)
	}

	var img *hmg.Image
	if ref.Group.AtlasMode {
		pages, err := atlasPages(g, ref.Group)
		if err != nil {
			return nil, err
		}
		if i := ref.AtlasID - 1; i >= 0 && i < len(pages) {
			img = pages[i]
		}
	} else {
		raw, err := g.LoadFile(n.ObjectFile("pixmap"))
		if err != nil {
			return nil, err
		}
		if raw != nil {
			if img, err = hmg.Decode(raw); err != nil {
				return nil, err
			}
		}
	}
	if img == nil {
		log.Debug().Str("path", n.Path).Msg("texture has no pixmap")
		return nil, nil
	}
	return &Texture{Image: img}, nil
}

// Save writes the texture as PNG.
func (t *Texture) Save(dst string) error {
	return hmg.SavePNG(dst, t.Image)
}
