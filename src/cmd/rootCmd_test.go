package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/VriskaSerket51/eastward-go/src/app"
)

func preserveGlobals(t *testing.T) {
	t.Helper()
	origRoot := GameRoot
	origOutput := OutputPath
	origInput := InputPath
	origRecursive := Recursive
	origCfgFile := cfgFile
	origDebug := debugMode
	origHuman := humanReadableLogs
	origLogger := log.Logger
	origLevel := zerolog.GlobalLevel()

	t.Cleanup(func() {
		GameRoot = origRoot
		OutputPath = origOutput
		InputPath = origInput
		Recursive = origRecursive
		cfgFile = origCfgFile
		debugMode = origDebug
		humanReadableLogs = origHuman
		log.Logger = origLogger
		zerolog.SetGlobalLevel(origLevel)
	})
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	log.Logger = zerolog.New(buf).With().Timestamp().Logger()
	return buf
}

func TestDefaultGameRootMatchesRuntime(t *testing.T) {
	var want string
	switch runtime.GOOS {
	case "darwin":
		want = app.ExpandPath("~/Library/Application Support/Steam/steamapps/common/Eastward")
	case "windows":
		want = `C:\Program Files (x86)\Steam\steamapps\common\Eastward`
	case "linux":
		want = app.ExpandPath("~/.local/share/Steam/steamapps/common/Eastward")
	default:
		want = "."
	}
	if got := defaultGameRoot(); got != want {
		t.Fatalf("defaultGameRoot() = %q, want %q", got, want)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	if got, want := defaultOutputPath(), app.ExpandPath("./output"); got != want {
		t.Fatalf("defaultOutputPath() = %q, want %q", got, want)
	}
}

func TestInitPathsFromViperOverridesGlobals(t *testing.T) {
	preserveGlobals(t)
	resetViper(t)

	GameRoot = "before-root"
	OutputPath = "before-output"
	InputPath = "before-input"

	tempDir := t.TempDir()
	root := filepath.Join(tempDir, "game")
	out := filepath.Join(tempDir, "output")
	in := filepath.Join(tempDir, "input")

	viper.Set("root", root)
	viper.Set("out", out)
	viper.Set("in", in)

	initPathsFromViper()

	if GameRoot != app.ExpandPath(root) {
		t.Fatalf("GameRoot = %q, want %q", GameRoot, app.ExpandPath(root))
	}
	if OutputPath != app.ExpandPath(out) {
		t.Fatalf("OutputPath = %q, want %q", OutputPath, app.ExpandPath(out))
	}
	if InputPath != app.ExpandPath(in) {
		t.Fatalf("InputPath = %q, want %q", InputPath, app.ExpandPath(in))
	}
}

func TestInitPathsFromViperKeepsExistingWhenUnset(t *testing.T) {
	preserveGlobals(t)
	resetViper(t)

	GameRoot = "keep-root"
	OutputPath = "keep-output"

	initPathsFromViper()

	if GameRoot != "keep-root" {
		t.Fatalf("GameRoot changed to %q", GameRoot)
	}
	if OutputPath != "keep-output" {
		t.Fatalf("OutputPath changed to %q", OutputPath)
	}
}

func TestRequirePath(t *testing.T) {
	resetViper(t)

	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	if _, err := requirePath("in"); err == nil || !strings.Contains(err.Error(), "--in") {
		t.Fatalf("requirePath(in) err = %v, want required option error", err)
	}

	viper.Set("in", "~/files")
	got, err := requirePath("in")
	if err != nil {
		t.Fatalf("requirePath: %v", err)
	}
	if want := filepath.Join(homeDir, "files"); got != want {
		t.Fatalf("requirePath(in) = %q, want %q", got, want)
	}
}

func TestInitDebugModeRespectsViperAndFlag(t *testing.T) {
	preserveGlobals(t)
	resetViper(t)

	viper.Set("debug", false)
	debugMode = false
	initDebugMode()
	if lvl := zerolog.GlobalLevel(); lvl != zerolog.InfoLevel {
		t.Fatalf("Global level = %v, want %v", lvl, zerolog.InfoLevel)
	}

	viper.Set("debug", true)
	initDebugMode()
	if lvl := zerolog.GlobalLevel(); lvl != zerolog.DebugLevel {
		t.Fatalf("Global level = %v, want %v when viper debug true", lvl, zerolog.DebugLevel)
	}

	viper.Set("debug", false)
	debugMode = true
	initDebugMode()
	if lvl := zerolog.GlobalLevel(); lvl != zerolog.DebugLevel {
		t.Fatalf("Global level = %v, want %v when flag debug true", lvl, zerolog.DebugLevel)
	}
}

func TestInitHumanOutputSwitchesLogger(t *testing.T) {
	preserveGlobals(t)
	resetViper(t)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()

	origStderr := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = origStderr })

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	log.Info().Msg("json before")

	humanReadableLogs = true
	initHumanOutput()

	log.Info().Msg("human after")

	_ = w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read logs: %v", err)
	}
	logs := string(data)
	if !strings.Contains(logs, "\"message\":\"json before\"") {
		t.Fatalf("expected JSON log before switch, got %q", logs)
	}
	if !strings.Contains(logs, "human after") {
		t.Fatalf("expected human log after switch, got %q", logs)
	}
	if strings.Contains(logs, "\"message\":\"human after\"") {
		t.Fatalf("expected console output for human log, got %q", logs)
	}
}

func TestTypesCommandListsAssetTypes(t *testing.T) {
	buf := &bytes.Buffer{}
	typesCmd.SetOut(buf)
	t.Cleanup(func() { typesCmd.SetOut(nil) })

	typesCmd.Run(typesCmd, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	for _, want := range []string{"msprite", "sq_script", "texture"} {
		found := false
		for _, l := range lines {
			if l == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("types output %q lacks %s", buf.String(), want)
		}
	}
}
