package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	bar "github.com/schollz/progressbar/v3"
)

const packagesFile = "packages.json"

func ExpandPath(path string) string {
	if len(path) > 1 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// sanitizeGameRoot accepts either the game root or the path of its
// content/packages.json and returns the root.
func sanitizeGameRoot(path string) string {
	path = filepath.Clean(path)
	if strings.HasSuffix(path, packagesFile) {
		path = filepath.Dir(path)
		if filepath.Base(path) == "content" {
			return filepath.Dir(path)
		}
	}
	return path
}

// listFiles returns the regular files under dir as slash-separated paths
// relative to dir, sorted.
func listFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func newProgress(total int, description, its string) *bar.ProgressBar {
	return bar.NewOptions(
		total,
		bar.OptionSetDescription(description),
		bar.OptionShowCount(),
		bar.OptionShowIts(),
		bar.OptionSetItsString(its),
		bar.OptionThrottle(100),
		bar.OptionClearOnFinish(),
	)
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
