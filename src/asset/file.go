package asset

import (
	"github.com/rs/zerolog/log"

	"github.com/VriskaSerket51/eastward-go/src/eastward"
)

// RawFile is an asset copied to its output unchanged.
type RawFile struct {
	Source string
	Data   []byte
}

// rawFileLoader reads the first object file present among keys.
func rawFileLoader(keys ...string) eastward.LoaderFunc {
	return func(g *eastward.Graph, n *eastward.Node) (eastward.Asset, error) {
		for _, k := range keys {
			src := n.ObjectFile(k)
			if src == "" {
				continue
			}
			data, err := g.LoadFile(src)
			if err != nil {
				return nil, err
			}
			if data == nil {
				log.Debug().Str("path", n.Path).Str("source", src).Msg("object file missing")
				return nil, nil
			}
			return &RawFile{Source: src, Data: data}, nil
		}
		return nil, nil
	}
}

func (f *RawFile) Save(dst string) error {
	return writeBytes(dst, f.Data)
}
