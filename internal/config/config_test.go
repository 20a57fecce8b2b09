package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"github.com/dshills/imagenode/internal/config/watcher"
)

type mapFS map[string]string

func (m mapFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(s), nil
}

func TestDefaultsValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v", err)
	}
	if cfg.Element.SettleDelay != 200*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 200ms", cfg.Element.SettleDelay)
	}
	if cfg.Element.CommandPriority != "low" {
		t.Errorf("CommandPriority = %q, want low", cfg.Element.CommandPriority)
	}
}

func TestLoadLayers(t *testing.T) {
	fsys := mapFS{"/etc/imagenode.toml": `
[element]
settleDelay = "500ms"

[renderer]
cellWidth = 10
focusColor = "#00ff00"
`}
	env := []string{
		"IMAGENODE_RENDERER_CELL_WIDTH=12",
		"IMAGENODE_LOG_LEVEL=debug",
		"HOME=/root",
	}

	cfg, err := Load("/etc/imagenode.toml", WithFS(fsys), WithEnviron(env))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Element.SettleDelay != 500*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 500ms", cfg.Element.SettleDelay)
	}
	if cfg.Renderer.CellWidth != 12 {
		t.Errorf("CellWidth = %d, want 12", cfg.Renderer.CellWidth)
	}
	if cfg.Renderer.CellHeight != 16 {
		t.Errorf("CellHeight = %d, want 16", cfg.Renderer.CellHeight)
	}
	if cfg.Renderer.FocusColor != "#00ff00" {
		t.Errorf("FocusColor = %q, want #00ff00", cfg.Renderer.FocusColor)
	}
	if cfg.Renderer.BorderColor != "#5c6370" {
		t.Errorf("BorderColor = %q, want default", cfg.Renderer.BorderColor)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Path != "/etc/imagenode.toml" {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLoadYAML(t *testing.T) {
	fsys := mapFS{"/c.yaml": `
element:
  commandPriority: high
loadgate:
  cacheCapacity: 16
  fetchTimeout: 5s
  baseDir: /srv/images
`}
	cfg, err := Load("/c.yaml", WithFS(fsys), WithEnviron(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Element.CommandPriority != "high" {
		t.Errorf("CommandPriority = %q, want high", cfg.Element.CommandPriority)
	}
	if cfg.Loadgate.CacheCapacity != 16 {
		t.Errorf("CacheCapacity = %d, want 16", cfg.Loadgate.CacheCapacity)
	}
	if cfg.Loadgate.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.Loadgate.FetchTimeout)
	}
	if cfg.Loadgate.BaseDir != "/srv/images" {
		t.Errorf("BaseDir = %q", cfg.Loadgate.BaseDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nope.toml", WithFS(mapFS{}), WithEnviron(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Defaults()
	want.Path = "/nope.toml"
	if *cfg != want {
		t.Errorf("Load = %+v, want %+v", *cfg, want)
	}
}

func TestLoadEnvZeroCapacity(t *testing.T) {
	fsys := mapFS{"/c.toml": "[loadgate]\ncacheCapacity = 5\n"}
	cfg, err := Load("/c.toml", WithFS(fsys), WithEnviron([]string{"IMAGENODE_LOADGATE_CACHE_CAPACITY=0"}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Loadgate.CacheCapacity != 0 {
		t.Errorf("CacheCapacity = %d, want 0", cfg.Loadgate.CacheCapacity)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("/c.ini", WithFS(mapFS{}), WithEnviron(nil)); err == nil {
		t.Error("Load(.ini) should fail")
	}
}

func TestLoadParseError(t *testing.T) {
	fsys := mapFS{"/bad.toml": "[element\nsettleDelay = 1"}
	_, err := Load("/bad.toml", WithFS(fsys), WithEnviron(nil))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load error = %v, want *ParseError", err)
	}
	if pe.Path != "/bad.toml" {
		t.Errorf("ParseError.Path = %q", pe.Path)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	fsys := mapFS{"/c.toml": `
[element]
commandPriority = "urgent"

[renderer]
cellWidth = 0
focusColor = "blue"
`}
	_, err := Load("/c.toml", WithFS(fsys), WithEnviron(nil))
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Load error = %v, want ErrValidationFailed", err)
	}
	if n := len(multierr.Errors(err)); n != 3 {
		t.Errorf("got %d validation errors, want 3: %v", n, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative settle", func(c *Config) { c.Element.SettleDelay = -time.Second }, "element.settleDelay"},
		{"negative capacity", func(c *Config) { c.Loadgate.CacheCapacity = -1 }, "loadgate.cacheCapacity"},
		{"zero timeout", func(c *Config) { c.Loadgate.FetchTimeout = 0 }, "loadgate.fetchTimeout"},
		{"zero max bytes", func(c *Config) { c.Loadgate.MaxBytes = 0 }, "loadgate.maxBytes"},
		{"zero cell height", func(c *Config) { c.Renderer.CellHeight = 0 }, "renderer.cellHeight"},
		{"bad drag color", func(c *Config) { c.Renderer.DragColor = "#zzz" }, "renderer.dragColor"},
		{"zero scroll lines", func(c *Config) { c.Input.ScrollLines = 0 }, "input.scrollLines"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if ve.Path != tt.path {
				t.Errorf("ValidationError.Path = %q, want %q", ve.Path, tt.path)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestManagerReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[element]\nsettleDelay = \"300ms\"\n")

	m, err := NewManager(path, zaptest.NewLogger(t), WithEnviron(nil))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if got := m.Current().Element.SettleDelay; got != 300*time.Millisecond {
		t.Fatalf("SettleDelay = %v, want 300ms", got)
	}

	var got []*Config
	m.OnReload(func(cfg *Config) { got = append(got, cfg) })

	writeFile(t, path, "[element]\nsettleDelay = \"1s\"\n")
	if err := m.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(got) != 1 || got[0].Element.SettleDelay != time.Second {
		t.Fatalf("listener got %v, want one config with 1s", got)
	}

	writeFile(t, path, "[renderer]\ncellWidth = -1\n")
	if err := m.Reload(); err == nil {
		t.Fatal("Reload of invalid config should fail")
	}
	if m.Current().Element.SettleDelay != time.Second {
		t.Errorf("invalid reload replaced the active config")
	}
	if len(got) != 1 {
		t.Errorf("listener called %d times, want 1", len(got))
	}
}

func TestManagerWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[input]\nscrollLines = 3\n")

	m, err := NewManager(path, zaptest.NewLogger(t), WithEnviron(nil))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	reloaded := make(chan *Config, 16)
	m.OnReload(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	if err := m.Watch(watcher.WithDebounce(10 * time.Millisecond)); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	writeFile(t, path, "[input]\nscrollLines = 7\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Input.ScrollLines == 7 {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}

func TestManagerClosed(t *testing.T) {
	m, err := NewManager("", nil, WithEnviron(nil))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := m.Watch(); !errors.Is(err, ErrClosed) {
		t.Errorf("Watch after Close = %v, want ErrClosed", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	want := Defaults()
	want.Element.SettleDelay = 750 * time.Millisecond
	want.Loadgate.BaseDir = "/srv/images"
	want.Renderer.ShowStatus = false
	want.Logging.Level = "debug"

	for _, format := range []string{"toml", "yaml"} {
		var buf strings.Builder
		if err := want.Encode(&buf, format); err != nil {
			t.Fatalf("Encode(%s): %v", format, err)
		}
		path := "/etc/imagenode." + format
		got, err := Load(path, WithFS(mapFS{path: buf.String()}), WithEnviron(nil))
		if err != nil {
			t.Fatalf("Load(%s): %v\n%s", format, err, buf.String())
		}
		got.Path = ""
		if diff := cmp.Diff(want, *got); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", format, diff)
		}
	}

	cfg := Defaults()
	if err := cfg.Encode(&strings.Builder{}, "ini"); err == nil {
		t.Error("Encode(ini) succeeded")
	}
}
