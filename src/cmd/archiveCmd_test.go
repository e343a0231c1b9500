package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestZipUnzipAndInjectCommands(t *testing.T) {
	preserveGlobals(t)
	resetViper(t)
	buf := captureLogs(t)

	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	if err := ensureDir(filepath.Join(src, "sub")); err != nil {
		t.Fatalf("ensureDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	packed := filepath.Join(tmp, "pack.g")
	viper.Set("root", src)
	viper.Set("out", packed)
	if err := zipCmd.RunE(zipCmd, nil); err != nil {
		t.Fatalf("zip: %v", err)
	}

	patch := filepath.Join(tmp, "patch")
	if err := ensureDir(patch); err != nil {
		t.Fatalf("ensureDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(patch, "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	patched := filepath.Join(tmp, "patched.g")
	viper.Set("root", patch)
	viper.Set("in", packed)
	viper.Set("out", patched)
	if err := injectCmd.RunE(injectCmd, nil); err != nil {
		t.Fatalf("inject: %v", err)
	}

	unpacked := filepath.Join(tmp, "unpacked")
	viper.Set("out", unpacked)
	if err := unzipCmd.RunE(unzipCmd, []string{patched}); err != nil {
		t.Fatalf("unzip: %v", err)
	}
	for rel, want := range map[string]string{"sub/a.txt": "a", "b.txt": "b"} {
		data, err := os.ReadFile(filepath.Join(unpacked, "patched", filepath.FromSlash(rel)))
		if err != nil || string(data) != want {
			t.Fatalf("%s = %q, %v; want %q", rel, data, err, want)
		}
	}

	logs := buf.String()
	for _, msg := range []string{"Eastward zip finished", "Eastward inject finished", "Eastward unzip finished"} {
		if !strings.Contains(logs, msg) {
			t.Fatalf("expected %q in logs, got %q", msg, logs)
		}
	}
}

func TestUnzipCommandRequiresFiles(t *testing.T) {
	preserveGlobals(t)
	resetViper(t)

	viper.Set("out", t.TempDir())
	if err := unzipCmd.RunE(unzipCmd, nil); err == nil {
		t.Fatalf("unzip without files succeeded")
	}
}

func TestInjectCommandRequiresInput(t *testing.T) {
	preserveGlobals(t)
	resetViper(t)

	viper.Set("root", t.TempDir())
	viper.Set("out", filepath.Join(t.TempDir(), "x.g"))
	if err := injectCmd.RunE(injectCmd, nil); err == nil || !strings.Contains(err.Error(), "--in") {
		t.Fatalf("inject err = %v, want missing --in", err)
	}
}
