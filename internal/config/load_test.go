package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse_JSONWithComments(t *testing.T) {
	data := []byte(`{
		// framing
		"prefix": "AT+",
		"sufix": "\r\n",
		"init": "RESET",
		"commands": ["PING", "STATUS",],
		"macro": {
			"led_on": {"commands": ["GPIO1=1"]},
			"blink": {"commands": ["GPIO1=1", "GPIO1=0"], "code": "./react.sh"},
		},
		"remote": {"broker": "10.0.0.2", "publish": "dev/tx", "subscribe": "dev/rx"}
	}`)

	cfg, err := Parse("term.json", data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Prefix != "AT+" || cfg.Suffix != "\r\n" || cfg.Init != "RESET" {
		t.Errorf("framing = %q %q %q", cfg.Prefix, cfg.Suffix, cfg.Init)
	}
	if !reflect.DeepEqual(cfg.Commands, []string{"PING", "STATUS"}) {
		t.Errorf("Commands = %v", cfg.Commands)
	}
	if got := cfg.MacroNames(); !reflect.DeepEqual(got, []string{"blink", "led_on"}) {
		t.Errorf("MacroNames() = %v", got)
	}
	blink, ok := cfg.Macro("blink")
	if !ok || blink.Code != "./react.sh" || len(blink.Commands) != 2 {
		t.Errorf("Macro(blink) = %+v, %v", blink, ok)
	}
	if !cfg.HasRemote() || cfg.Remote.Publish != "dev/tx" || cfg.Remote.Subscribe != "dev/rx" {
		t.Errorf("Remote = %+v", cfg.Remote)
	}
	if got := string(cfg.Frame("PING")); got != "AT+PING\r\n" {
		t.Errorf("Frame() = %q", got)
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`prefix: ""
sufix: "\n"
init: ""
commands:
  - help
macro:
  boot:
    commands: [reset, help]
`)

	cfg, err := Parse("term.yaml", data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Prefix != "" || cfg.Suffix != "\n" {
		t.Errorf("framing = %q %q", cfg.Prefix, cfg.Suffix)
	}
	if cfg.HasRemote() {
		t.Error("expected no remote block")
	}
	if m, ok := cfg.Macro("boot"); !ok || len(m.Commands) != 2 {
		t.Errorf("Macro(boot) = %+v, %v", m, ok)
	}
}

func TestParse_MissingKeys(t *testing.T) {
	_, err := Parse("term.json", []byte(`{"prefix": "", "commands": []}`))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{`missing required key "sufix"`, `missing required key "init"`}
	if !reflect.DeepEqual(verr.Problems, want) {
		t.Errorf("Problems = %v, want %v", verr.Problems, want)
	}
	if !strings.Contains(err.Error(), "term.json") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestParse_InvalidMacroAndRemote(t *testing.T) {
	data := []byte(`{"prefix": "", "sufix": "", "init": "", "commands": [],
		"macro": {"empty": {"commands": []}},
		"remote": {"broker": "b"}}`)

	_, err := Parse("term.json", data)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 3 {
		t.Errorf("expected 3 problems, got %v", verr.Problems)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("term.json", []byte(`{"prefix": `))

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Format != "JSON" {
		t.Errorf("Format = %q, want JSON", perr.Format)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteExample_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "term.json")

	if err := WriteExample(path); err != nil {
		t.Fatalf("WriteExample() error = %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Init != "RESET" || len(cfg.Macros) != 2 {
		t.Errorf("unexpected example config: %+v", cfg)
	}

	if err := WriteExample(path); err == nil {
		t.Error("expected WriteExample to refuse overwriting")
	}
}

func TestResolve(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", xdg)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	inDir := filepath.Join(dir, "bench.json")
	if err := os.WriteFile(inDir, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve("bench.json")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != inDir {
		t.Errorf("Resolve() = %q, want %q", got, inDir)
	}

	if _, err := Resolve("missing.json"); err == nil {
		t.Error("expected error for a file found nowhere")
	}
}
