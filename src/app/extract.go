package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/VriskaSerket51/eastward-go/src/asset"
	"github.com/VriskaSerket51/eastward-go/src/eastward"
)

// ExtractConfig describes one extraction run.
type ExtractConfig struct {
	Root     string
	Out      string
	Types    []string
	Jobs     int
	Overlays []string
	Language string
	Builds   bool
}

// Extract opens the game at cfg.Root, registers the loaders for cfg.Types
// (all of them when empty) and saves every matching node under cfg.Out.
// Failed nodes are reported in the summary, not as an error.
func Extract(ctx context.Context, cfg ExtractConfig) (eastward.Summary, error) {
	root := sanitizeGameRoot(cfg.Root)
	g, err := eastward.Open(root, eastward.WithOverlay(cfg.Overlays...))
	if err != nil {
		return eastward.Summary{}, fmt.Errorf("open game %s: %w", root, err)
	}

	opts := asset.Options{Language: cfg.Language, Builds: cfg.Builds}
	if len(cfg.Types) == 0 {
		asset.RegisterAll(g, opts)
	} else {
		for _, t := range cfg.Types {
			if err := asset.Register(g, t, opts); err != nil {
				return eastward.Summary{}, err
			}
		}
	}

	total := len(g.Extractable(cfg.Types...))
	log.Debug().Int("nodes", total).Strs("types", cfg.Types).Msg("extracting")

	progress := newProgress(total, "Extracting assets", "assets")
	sum, err := g.Extract(ctx, cfg.Out, eastward.ExtractOptions{
		Types: cfg.Types,
		Jobs:  cfg.Jobs,
		OnNode: func(*eastward.Node, error) {
			_ = progress.Add(1)
		},
	})
	_ = progress.Finish()
	return sum, err
}
