package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/jsonc"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/VriskaSerket51/eastward-go/src/eastward"
	"github.com/VriskaSerket51/eastward-go/src/hmg"
)

// Conversion is a file-to-file transcoding. In recursive mode every output
// keeps the relative path of its input plus Suffix.
type Conversion struct {
	Name   string
	Suffix string
	Fn     func([]byte) ([]byte, error)
	// FileFn, when set, reads the input itself and replaces Fn.
	FileFn func(path string) ([]byte, error)
}

var (
	HMGToPNG     = Conversion{Name: "hmg2png", Fn: hmg.ToPNG}
	HMGToBMP     = Conversion{Name: "hmg2bmp", Fn: hmg.ToBMP}
	PNGToHMG     = Conversion{Name: "png2hmg", FileFn: hmg.EncodeFile}
	JSONToPacked = Conversion{Name: "json2msg", Suffix: eastward.PackedSuffix, Fn: EncodePacked}
)

// Convert applies c to the file in and writes out. With recursive set, in
// and out are directories and every file under in is converted; files that
// fail are logged and counted.
func Convert(c Conversion, in, out string, recursive bool) (BatchResult, error) {
	var res BatchResult
	if !recursive {
		if err := convertFile(c, in, out); err != nil {
			return res, err
		}
		res.Done++
		return res, nil
	}

	files, err := listFiles(in)
	if err != nil {
		return res, fmt.Errorf("list %s: %w", in, err)
	}
	progress := newProgress(len(files), "Converting "+c.Name, "files")
	for _, rel := range files {
		src := filepath.Join(in, filepath.FromSlash(rel))
		dst := filepath.Join(out, filepath.FromSlash(rel)) + c.Suffix
		if err := convertFile(c, src, dst); err != nil {
			res.Failed++
			log.Error().Err(err).Str("file", src).Msg("failed to convert")
			_ = progress.Add(1)
			continue
		}
		log.Debug().Str("in", src).Str("out", dst).Msg("converted")
		res.Done++
		_ = progress.Add(1)
	}
	_ = progress.Finish()

	log.Info().
		Str("conversion", c.Name).
		Int("converted", res.Done).
		Int("failed", res.Failed).
		Msg("Conversion finished")
	return res, nil
}

func convertFile(c Conversion, src, dst string) error {
	var (
		conv []byte
		err  error
	)
	if c.FileFn != nil {
		conv, err = c.FileFn(src)
	} else {
		var data []byte
		if data, err = os.ReadFile(src); err != nil {
			return err
		}
		conv, err = c.Fn(data)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.Name, src, err)
	}
	return writeOutput(dst, conv)
}

// EncodePacked turns a JSON document into the packed form the game loads in
// place of it. Integral numbers are stored as integers and map keys are
// sorted.
func EncodePacked(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(jsonc.ToJSON(data), &v); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	enc.UseCompactFloats(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
