package eastward

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrUnsafePath is returned for a node whose output path leaves the
// extraction root.
var ErrUnsafePath = errors.New("output path escapes extraction root")

type ExtractOptions struct {
	// Types restricts extraction to these node types. Empty means all
	// registered types.
	Types []string
	// Jobs is the number of nodes processed concurrently. Values below 1
	// mean 1.
	Jobs int
	// OnNode is called after each node, from the worker that handled it.
	OnNode func(n *Node, err error)
}

// Failure records one node that could not be extracted.
type Failure struct {
	Path string
	Err  error
}

// Summary counts the outcome of an extraction.
type Summary struct {
	Total    int
	Saved    int
	Skipped  int
	Failed   int
	Failures []Failure
}

// Extractable returns the nodes with an output path and a registered
// loader, limited to types when given, sorted by path.
func (g *Graph) Extractable(types ...string) []*Node {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []*Node
	for _, n := range g.Nodes() {
		if !n.Extractable {
			continue
		}
		if len(want) > 0 && !want[n.Type] {
			continue
		}
		if !g.Registered(n.Type) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Extract loads every extractable node and saves it under dst. A node that
// fails is logged and counted; the others still run. The returned error is
// only set when ctx is cancelled, in which case nodes already saved stay on
// disk.
func (g *Graph) Extract(ctx context.Context, dst string, opts ExtractOptions) (Summary, error) {
	nodes := g.Extractable(opts.Types...)
	jobs := max(opts.Jobs, 1)

	var (
		mu  sync.Mutex
		sum = Summary{Total: len(nodes)}
	)
	record := func(n *Node, saved bool, err error) {
		mu.Lock()
		switch {
		case err != nil:
			sum.Failed++
			sum.Failures = append(sum.Failures, Failure{Path: n.Path, Err: err})
		case saved:
			sum.Saved++
		default:
			sum.Skipped++
		}
		mu.Unlock()
		if opts.OnNode != nil {
			opts.OnNode(n, err)
		}
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for _, n := range nodes {
		n := n
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			saved, err := g.extractNode(n, dst)
			if err != nil {
				log.Error().Err(err).Str("path", n.Path).Str("type", n.Type).Msg("extract failed")
			}
			record(n, saved, err)
			return nil
		})
	}
	err := eg.Wait()
	if err == nil {
		err = ctx.Err()
	}

	log.Info().
		Int("total", sum.Total).
		Int("saved", sum.Saved).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("extraction finished")
	return sum, err
}

// extractNode loads and saves one node. A panic in a loader or codec fails
// only this node.
func (g *Graph) extractNode(n *Node, dst string) (saved bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			saved, err = false, fmt.Errorf("%s: panic: %v", n.Path, r)
		}
	}()

	rel := filepath.FromSlash(n.FilePath)
	if !filepath.IsLocal(rel) {
		return false, fmt.Errorf("%w: %q", ErrUnsafePath, n.FilePath)
	}
	a, err := g.LoadAsset(n.Path)
	if err != nil || a == nil {
		return false, err
	}
	out := filepath.Join(dst, rel)
	if err := a.Save(out); err != nil {
		return false, err
	}
	log.Debug().Str("path", n.Path).Str("out", out).Msg("saved")
	return true, nil
}

// EnsureDir creates the parent directory of file.
func EnsureDir(file string) error {
	return os.MkdirAll(filepath.Dir(file), 0o755)
}
