package eastward

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrMissingDependency is returned by loaders whose required peer asset
// cannot be resolved.
var ErrMissingDependency = errors.New("missing dependency")

// Asset is a materialized node.
type Asset interface {
	// Save writes the asset to dst, the output path of its node.
	Save(dst string) error
}

// LoaderFunc materializes n. It may read files and load other assets through
// g. Returning a nil Asset without an error means the node has nothing to
// produce.
type LoaderFunc func(g *Graph, n *Node) (Asset, error)

type loader struct {
	fn         LoaderFunc
	skipParent bool
}

// Register installs fn for nodes of type typ, replacing any earlier loader.
// Unless skipParent is set, a node's parent is loaded before fn runs.
func (g *Graph) Register(typ string, fn LoaderFunc, skipParent bool) {
	g.loadersMu.Lock()
	defer g.loadersMu.Unlock()
	g.loaders[typ] = loader{fn: fn, skipParent: skipParent}
}

// Registered reports whether a loader is installed for typ.
func (g *Graph) Registered(typ string) bool {
	_, ok := g.loader(typ)
	return ok
}

// Types returns the registered types, sorted.
func (g *Graph) Types() []string {
	g.loadersMu.RLock()
	defer g.loadersMu.RUnlock()
	out := make([]string, 0, len(g.loaders))
	for t := range g.loaders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) loader(typ string) (loader, bool) {
	g.loadersMu.RLock()
	defer g.loadersMu.RUnlock()
	l, ok := g.loaders[typ]
	return l, ok
}

// LoadAsset materializes the node at path. An unknown path or a type with no
// registered loader yields (nil, nil). The parent is loaded first unless the
// loader skips it, and each node is materialized at most once.
//
// Loaders must not form cycles through LoadAsset: a loader waiting on a node
// that is waiting on it never returns.
func (g *Graph) LoadAsset(path string) (Asset, error) {
	n := g.Node(path)
	if n == nil {
		log.Debug().Str("path", path).Msg("asset not in manifest")
		return nil, nil
	}
	l, ok := g.loader(n.Type)
	if !ok {
		log.Debug().Str("path", path).Str("type", n.Type).Msg("no loader registered")
		return nil, nil
	}

	if n.Parent != "" && !l.skipParent {
		if _, err := g.LoadAsset(n.Parent); err != nil {
			return nil, fmt.Errorf("parent %s: %w", n.Parent, err)
		}
	}

	v, err := g.Memo("asset:"+path, func() (any, error) {
		log.Debug().Str("path", path).Str("type", n.Type).Msg("loading asset")
		a, err := l.fn(g, n)
		if err != nil || a == nil {
			return nil, err
		}
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a, _ := v.(Asset)
	return a, nil
}

type memoSlot struct {
	once sync.Once
	v    any
	err  error
}

// Memo returns the value computed by fn for key, running fn at most once per
// graph. Concurrent callers of the same key wait for the first to finish and
// share its result, including its error.
func (g *Graph) Memo(key string, fn func() (any, error)) (any, error) {
	g.memoMu.Lock()
	s, ok := g.memo[key]
	if !ok {
		s = &memoSlot{}
		g.memo[key] = s
	}
	g.memoMu.Unlock()

	s.once.Do(func() {
		s.v, s.err = fn()
	})
	return s.v, s.err
}
