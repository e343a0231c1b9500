package asset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/VriskaSerket51/eastward-go/src/eastward"
)

// writeJSON writes v as indented JSON, creating parent directories.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeBytes(path, data)
}

func writeBytes(path string, data []byte) error {
	if err := eastward.EnsureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
