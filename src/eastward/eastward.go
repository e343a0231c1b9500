// Package eastward resolves game content: it mounts the packed archives of a
// game root, parses the asset manifest into a node tree and materializes
// nodes through registered loaders.
package eastward

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/VriskaSerket51/eastward-go/src/garchive"
)

const (
	packagesFile   = "content/packages.json"
	gameConfigFile = "config/game_config"
	systemPackage  = "_system"
	packedMode     = "packed"
)

// GameConfig holds the library locations read from config/game_config.
type GameConfig struct {
	AssetLibrary   string `json:"asset_library"`
	TextureLibrary string `json:"texture_library"`
}

type packageInfo struct {
	ID   string `json:"id"`
	Mode string `json:"mode"`
}

type Option func(*Graph)

// WithOverlay registers add-on archives found in dirs. A file <dir>/<id>.g is
// loaded after the base archive of the same id, so its entries win.
func WithOverlay(dirs ...string) Option {
	return func(g *Graph) {
		g.overlays = append(g.overlays, dirs...)
	}
}

// Graph is the asset graph of one game root.
type Graph struct {
	root     string
	overlays []string
	config   GameConfig

	archives map[string]*garchive.Lazy
	nodes    map[string]*Node

	loadersMu sync.RWMutex
	loaders   map[string]loader

	memoMu sync.Mutex
	memo   map[string]*memoSlot
}

// New returns an empty graph reading loose files from root. Archives and the
// manifest are added with RegisterArchive and LoadManifest.
func New(root string, opts ...Option) *Graph {
	g := &Graph{
		root:     root,
		archives: make(map[string]*garchive.Lazy),
		nodes:    make(map[string]*Node),
		loaders:  make(map[string]loader),
		memo:     make(map[string]*memoSlot),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open mounts the game at root: every packed package in
// content/packages.json becomes a lazily loaded archive, then the asset
// library named by config/game_config is loaded.
func Open(root string, opts ...Option) (*Graph, error) {
	g := New(root, opts...)

	if err := g.mountPackages(); err != nil {
		return nil, err
	}

	var cfg GameConfig
	ok, err := g.LoadJSONInto(gameConfigFile, &cfg)
	if err != nil {
		return nil, fmt.Errorf("load game config: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("game config %s not found under %s", gameConfigFile, root)
	}
	g.config = cfg

	if cfg.AssetLibrary == "" {
		return nil, fmt.Errorf("game config has no asset_library")
	}
	if err := g.LoadManifest(cfg.AssetLibrary); err != nil {
		return nil, err
	}

	log.Info().
		Str("root", root).
		Int("archives", len(g.archives)).
		Int("nodes", len(g.nodes)).
		Msg("game opened")
	return g, nil
}

func (g *Graph) mountPackages() error {
	data, err := os.ReadFile(filepath.Join(g.root, filepath.FromSlash(packagesFile)))
	if err != nil {
		return fmt.Errorf("read packages: %w", err)
	}
	var doc struct {
		Packages map[string]packageInfo `json:"packages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", packagesFile, err)
	}

	keys := make([]string, 0, len(doc.Packages))
	for k := range doc.Packages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		p := doc.Packages[k]
		if p.Mode != packedMode || p.ID == systemPackage {
			continue
		}
		paths := []string{filepath.Join(g.root, "content", "game", p.ID+".g")}
		for _, dir := range g.overlays {
			extra := filepath.Join(dir, p.ID+".g")
			if _, err := os.Stat(extra); err == nil {
				paths = append(paths, extra)
			}
		}
		g.RegisterArchive(p.ID, paths...)
	}
	return nil
}

// RegisterArchive adds archive files under id. Files registered later
// override entries of earlier ones.
func (g *Graph) RegisterArchive(id string, paths ...string) {
	if l, ok := g.archives[id]; ok {
		for _, p := range paths {
			l.Add(p)
		}
		return
	}
	g.archives[id] = garchive.NewLazy(paths...)
	log.Debug().Str("id", id).Strs("files", paths).Msg("archive registered")
}

// Archive returns the archive registered under id, loading it on first use.
// An unknown id yields nil.
func (g *Graph) Archive(id string) (*garchive.Archive, error) {
	l, ok := g.archives[id]
	if !ok {
		return nil, nil
	}
	return l.Archive()
}

// ArchiveIDs returns the registered archive identifiers, sorted.
func (g *Graph) ArchiveIDs() []string {
	ids := make([]string, 0, len(g.archives))
	for id := range g.archives {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *Graph) Root() string {
	return g.root
}

func (g *Graph) Config() GameConfig {
	return g.config
}

// SetConfig replaces the game config. Open sets it from config/game_config.
func (g *Graph) SetConfig(cfg GameConfig) {
	g.config = cfg
}

// splitVirtual splits a virtual path into archive id and entry name.
func splitVirtual(p string) (id, rest string) {
	id, rest, _ = strings.Cut(p, "/")
	return id, rest
}
