package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func getByPath(data map[string]any, path string) (any, bool) {
	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
[element]
settleDelay = "150ms"
commandPriority = "low"

[loadgate]
cacheCapacity = 64
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if val, _ := getByPath(config, "element.settleDelay"); val != "150ms" {
		t.Errorf("element.settleDelay = %v, want 150ms", val)
	}
	if val, _ := getByPath(config, "loadgate.cacheCapacity"); val != int64(64) {
		t.Errorf("loadgate.cacheCapacity = %v (%T), want 64", val, val)
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.yaml", `
renderer:
  cellWidth: 10
  focusColor: "#112233"
logging:
  level: debug
`)

	config, err := NewYAMLLoaderWithFS(memfs, "/config.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if val, _ := getByPath(config, "renderer.cellWidth"); val != 10 {
		t.Errorf("renderer.cellWidth = %v (%T), want 10", val, val)
	}
	if val, _ := getByPath(config, "logging.level"); val != "debug" {
		t.Errorf("logging.level = %v, want debug", val)
	}
}

func TestFileLoader_MissingFile(t *testing.T) {
	for _, path := range []string{"/missing.toml", "/missing.yml"} {
		l, err := NewFileLoaderWithFS(NewMemFS(), path)
		if err != nil {
			t.Fatalf("NewFileLoaderWithFS(%q) error = %v", path, err)
		}
		config, err := l.Load()
		if err != nil || config != nil {
			t.Errorf("Load(%q) = %v, %v; want nil, nil", path, config, err)
		}
	}
}

func TestFileLoader_Format(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.toml", FormatTOML, false},
		{"a.TOML", FormatTOML, false},
		{"a.yaml", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.json", "", true},
		{"a", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatOf(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := NewFileLoader("config.ini"); err == nil {
		t.Error("NewFileLoader should reject unknown extensions")
	}
}

func TestParseErrors(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[element\nsettleDelay = 1\n")
	memfs.AddFile("/bad.yaml", "renderer:\n  cellWidth: [1,\n")

	for _, path := range []string{"/bad.toml", "/bad.yaml"} {
		l, _ := NewFileLoaderWithFS(memfs, path)
		_, err := l.Load()
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Load(%q) error = %v, want *ParseError", path, err)
		}
		if perr.Path != path {
			t.Errorf("ParseError.Path = %q, want %q", perr.Path, path)
		}
		if perr.Line == 0 {
			t.Errorf("ParseError.Line not set for %s: %v", path, perr)
		}
		if errors.Unwrap(perr) == nil {
			t.Error("ParseError should wrap the decoder error")
		}
	}
}

func TestLoadFromReader(t *testing.T) {
	tl := NewTOMLLoader("")
	config, err := tl.LoadFromReader(strings.NewReader("[logging]\nformat = \"json\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if val, _ := getByPath(config, "logging.format"); val != "json" {
		t.Errorf("logging.format = %v", val)
	}

	yl := NewYAMLLoader("")
	if _, err := yl.LoadFromReader(strings.NewReader(":\n  - [")); err == nil {
		t.Error("expected YAML parse error")
	}
}

func TestParseErrorMessage(t *testing.T) {
	tests := []struct {
		err  *ParseError
		want string
	}{
		{&ParseError{Path: "a", Message: "m"}, "parse error in a: m"},
		{&ParseError{Path: "a", Line: 3, Message: "m"}, "parse error in a at line 3: m"},
		{&ParseError{Path: "a", Line: 3, Column: 2, Message: "m"}, "parse error in a at line 3, column 2: m"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"element": map[string]any{"settleDelay": "200ms", "commandPriority": "low"},
		"keep":    1,
	}
	src := map[string]any{
		"element": map[string]any{"settleDelay": "50ms"},
		"logging": map[string]any{"level": "warn"},
	}
	got := DeepMerge(dst, src)

	if val, _ := getByPath(got, "element.settleDelay"); val != "50ms" {
		t.Errorf("element.settleDelay = %v, want 50ms", val)
	}
	if val, _ := getByPath(got, "element.commandPriority"); val != "low" {
		t.Errorf("element.commandPriority = %v, want low", val)
	}
	if val, _ := getByPath(got, "logging.level"); val != "warn" {
		t.Errorf("logging.level = %v, want warn", val)
	}
	if got["keep"] != 1 {
		t.Error("unrelated key lost")
	}
	if DeepMerge(nil, nil) == nil {
		t.Error("DeepMerge(nil, nil) should return an empty map")
	}
}

func TestEnvLoader_Load(t *testing.T) {
	environ := []string{
		"IMAGENODE_LOG_LEVEL=debug",
		"IMAGENODE_LOADGATE_CACHE_CAPACITY=0",
		"IMAGENODE_ELEMENT_SETTLE_DELAY=250ms",
		"IMAGENODE_RENDERER_SHOW_STATUS=off",
		"IMAGENODE_BASE_DIR=/srv/img",
		"OTHER_VAR=1",
		"IMAGENODE_MALFORMED",
	}
	config, err := NewEnvLoaderWithEnviron(DefaultEnvPrefix, environ).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"logging.level", "debug"},
		{"loadgate.cacheCapacity", int64(0)},
		{"element.settleDelay", "250ms"},
		{"renderer.showStatus", false},
		{"loadgate.baseDir", "/srv/img"},
	}
	for _, tt := range tests {
		if val, ok := getByPath(config, tt.path); !ok || val != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, val, val, tt.want)
		}
	}
	if _, ok := config["other"]; ok {
		t.Error("unprefixed variable was loaded")
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	tests := []struct {
		env  string
		want string
	}{
		{"IMAGENODE_LOGGING", "logging"},
		{"IMAGENODE_LOGGING_LEVEL", "logging.level"},
		{"IMAGENODE_RENDERER_CELL_WIDTH", "renderer.cellWidth"},
		{"IMAGENODE_LOADGATE_MAX_PIXELS", "loadgate.maxPixels"},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	l := NewEnvLoaderWithEnviron("IMAGENODE_", []string{"IMAGENODE_CELLS=12"})
	l.AddMapping("IMAGENODE_CELLS", "renderer.cellWidth")
	config, _ := l.Load()
	if val, _ := getByPath(config, "renderer.cellWidth"); val != int64(12) {
		t.Errorf("renderer.cellWidth = %v, want 12", val)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"Off", false},
		{"42", int64(42)},
		{"1.5", 1.5},
		{"1.2.3", "1.2.3"},
		{"200ms", "200ms"},
		{"#3d8bfd", "#3d8bfd"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}
