package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/vmihailenco/msgpack/v5"
)

func TestJSON2MsgCommandRecursive(t *testing.T) {
	preserveGlobals(t)
	resetViper(t)
	buf := captureLogs(t)

	tmp := t.TempDir()
	in := filepath.Join(tmp, "in")
	if err := ensureDir(in); err != nil {
		t.Fatalf("ensureDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(in, "scene_index.json"), []byte(`{"groups": ["a"]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := filepath.Join(tmp, "out")
	viper.Set("in", in)
	viper.Set("out", out)
	viper.Set("recursive", true)

	if err := json2msgCmd.RunE(json2msgCmd, nil); err != nil {
		t.Fatalf("json2msg: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "scene_index.json.packed"))
	if err != nil {
		t.Fatalf("read packed: %v", err)
	}
	var doc struct {
		Groups []string `msgpack:"groups"`
	}
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(doc.Groups) != 1 || doc.Groups[0] != "a" {
		t.Fatalf("groups = %v", doc.Groups)
	}

	logs := buf.String()
	if !strings.Contains(logs, "Eastward json2msg running") || !strings.Contains(logs, "Eastward json2msg finished") {
		t.Fatalf("expected json2msg logs, got %q", logs)
	}
}

func TestConvertCommandSingleFileFails(t *testing.T) {
	preserveGlobals(t)
	resetViper(t)
	captureLogs(t)

	tmp := t.TempDir()
	viper.Set("in", filepath.Join(tmp, "missing.hmg"))
	viper.Set("out", filepath.Join(tmp, "missing.png"))

	if err := hmg2pngCmd.RunE(hmg2pngCmd, nil); err == nil {
		t.Fatalf("hmg2png succeeded without input")
	}
}

func TestConvertCommandsAreRegistered(t *testing.T) {
	for _, name := range []string{"hmg2png", "hmg2bmp", "png2hmg", "json2msg", "extract", "unzip", "zip", "inject", "types"} {
		c, _, err := rootCmd.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Fatalf("command %s not registered: %v", name, err)
		}
	}
}
