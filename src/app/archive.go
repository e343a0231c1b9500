package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/VriskaSerket51/eastward-go/src/garchive"
)

// BatchResult counts the files a batch driver handled.
type BatchResult struct {
	Done   int
	Failed int
}

// Unzip writes the entries of every archive under out/<archive name>/.
func Unzip(archives []string, out string) (BatchResult, error) {
	var res BatchResult
	for _, file := range archives {
		a, err := garchive.Open(file)
		if err != nil {
			return res, err
		}
		base := filepath.Base(file)
		dir := filepath.Join(out, strings.TrimSuffix(base, filepath.Ext(base)))

		names := a.Names()
		progress := newProgress(len(names), "Unpacking "+base, "files")
		for _, name := range names {
			data, _, err := a.ReadFile(name)
			if err == nil {
				err = writeOutput(filepath.Join(dir, filepath.FromSlash(name)), data)
			}
			if err != nil {
				res.Failed++
				log.Error().Err(err).Str("archive", file).Str("file", name).Msg("failed to unpack")
				_ = progress.Add(1)
				continue
			}
			res.Done++
			_ = progress.Add(1)
		}
		_ = progress.Finish()

		log.Info().Str("archive", file).Str("out", dir).Int("files", len(names)).Msg("archive unpacked")
	}
	return res, nil
}

// Zip packs every file under root into a new archive at out, named by its
// slash-separated path relative to root.
func Zip(root, out string) (BatchResult, error) {
	return pack(garchive.New(), root, out, "Packing")
}

// Inject overlays every file under root onto the archive at in and writes
// the result to out. Files replace same-named entries; new names are
// appended.
func Inject(root, in, out string) (BatchResult, error) {
	a, err := garchive.Open(in)
	if err != nil {
		return BatchResult{}, err
	}
	return pack(a, root, out, "Injecting")
}

func pack(a *garchive.Archive, root, out, description string) (BatchResult, error) {
	var res BatchResult
	files, err := listFiles(root)
	if err != nil {
		return res, fmt.Errorf("list %s: %w", root, err)
	}

	progress := newProgress(len(files), description, "files")
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			res.Failed++
			log.Error().Err(err).Str("file", name).Msg("failed to read")
			_ = progress.Add(1)
			continue
		}
		a.SetFile(name, data)
		log.Debug().Str("file", name).Int("bytes", len(data)).Msg("added")
		res.Done++
		_ = progress.Add(1)
	}
	_ = progress.Finish()

	if err := a.Save(out); err != nil {
		return res, err
	}
	log.Info().Str("out", out).Int("entries", a.Len()).Int("failed", res.Failed).Msg("archive written")
	return res, nil
}
