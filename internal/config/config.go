package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dshills/imagenode/internal/config/loader"
	"github.com/dshills/imagenode/internal/config/watcher"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = loader.DefaultEnvPrefix

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Element: ElementConfig{
			SettleDelay:     200 * time.Millisecond,
			CommandPriority: "low",
		},
		Loadgate: LoadgateConfig{
			CacheCapacity: 0,
			FetchTimeout:  30 * time.Second,
			MaxBytes:      32 << 20,
			MaxPixels:     8192,
		},
		Renderer: RendererConfig{
			CellWidth:   8,
			CellHeight:  16,
			BorderColor: "#5c6370",
			FocusColor:  "#3d8bfd",
			DragColor:   "#f5a623",
			ErrorColor:  "#e06c75",
			ShowStatus:  true,
		},
		Input: InputConfig{
			DragThreshold: 2,
			ScrollLines:   3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "imagenode", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "imagenode", "config.toml")
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	fs      loader.FileSystem
	environ []string
	useEnv  bool
}

// WithFS reads configuration files through fsys.
func WithFS(fsys loader.FileSystem) LoadOption {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnviron replaces the process environment. A nil slice disables the
// environment layer.
func WithEnviron(environ []string) LoadOption {
	return func(o *loadOptions) {
		o.environ = environ
		o.useEnv = environ != nil
	}
}

// Load builds a Config from defaults, the file at path and the environment.
// An empty path or a missing file skips the file layer.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{fs: loader.DefaultFS(), environ: os.Environ(), useEnv: true}
	for _, opt := range opts {
		opt(&o)
	}

	overrides := map[string]any{}
	if path != "" {
		fl, err := loader.NewFileLoaderWithFS(o.fs, path)
		if err != nil {
			return nil, err
		}
		data, err := fl.Load()
		if err != nil {
			return nil, err
		}
		overrides = loader.DeepMerge(overrides, data)
	}
	if o.useEnv {
		env, err := loader.NewEnvLoaderWithEnviron(EnvPrefix, o.environ).Load()
		if err != nil {
			return nil, err
		}
		overrides = loader.DeepMerge(overrides, env)
	}

	cfg := Defaults()
	if err := cfg.apply(overrides); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// apply decodes a merged settings map onto c. Keys absent from the map keep
// their current values.
func (c *Config) apply(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	data, err := yaml.Marshal(overrides)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Encode writes c as a settings file in format ("toml" or "yaml"). Keys
// match those accepted by Load.
func (c *Config) Encode(w io.Writer, format string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		_, err = w.Write(data)
		return err
	case "toml":
		var settings map[string]any
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return err
		}
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(settings)
	default:
		return fmt.Errorf("encode: unsupported format %q", format)
	}
}

var priorities = map[string]bool{
	"editor": true, "low": true, "normal": true, "high": true, "critical": true,
}

// Validate checks every setting and returns all failures combined.
func (c *Config) Validate() error {
	var errs error
	fail := func(path, msg string, v any) {
		errs = multierr.Append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if c.Element.SettleDelay < 0 {
		fail("element.settleDelay", "must not be negative", c.Element.SettleDelay)
	}
	if !priorities[strings.ToLower(c.Element.CommandPriority)] {
		fail("element.commandPriority", "unknown priority", c.Element.CommandPriority)
	}

	if c.Loadgate.CacheCapacity < 0 {
		fail("loadgate.cacheCapacity", "must not be negative", c.Loadgate.CacheCapacity)
	}
	if c.Loadgate.FetchTimeout <= 0 {
		fail("loadgate.fetchTimeout", "must be positive", c.Loadgate.FetchTimeout)
	}
	if c.Loadgate.MaxBytes <= 0 {
		fail("loadgate.maxBytes", "must be positive", c.Loadgate.MaxBytes)
	}
	if c.Loadgate.MaxPixels <= 0 {
		fail("loadgate.maxPixels", "must be positive", c.Loadgate.MaxPixels)
	}

	if c.Renderer.CellWidth <= 0 {
		fail("renderer.cellWidth", "must be positive", c.Renderer.CellWidth)
	}
	if c.Renderer.CellHeight <= 0 {
		fail("renderer.cellHeight", "must be positive", c.Renderer.CellHeight)
	}
	for path, v := range map[string]string{
		"renderer.borderColor": c.Renderer.BorderColor,
		"renderer.focusColor":  c.Renderer.FocusColor,
		"renderer.dragColor":   c.Renderer.DragColor,
		"renderer.errorColor":  c.Renderer.ErrorColor,
	} {
		if _, err := colorful.Hex(v); err != nil {
			fail(path, "invalid color", v)
		}
	}

	if c.Input.DragThreshold < 0 {
		fail("input.dragThreshold", "must not be negative", c.Input.DragThreshold)
	}
	if c.Input.ScrollLines <= 0 {
		fail("input.scrollLines", "must be positive", c.Input.ScrollLines)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		fail("logging.level", "unknown level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		fail("logging.format", "unknown format", c.Logging.Format)
	}
	return errs
}

// ReloadFunc receives a newly loaded configuration.
type ReloadFunc func(cfg *Config)

// Manager holds the active configuration and reloads it when its file
// changes.
type Manager struct {
	mu        sync.RWMutex
	path      string
	opts      []LoadOption
	current   *Config
	listeners []ReloadFunc
	watcher   *watcher.Watcher
	log       *zap.Logger
	closed    bool
}

// NewManager loads path and returns a manager for it.
func NewManager(path string, log *zap.Logger, opts ...LoadOption) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := Load(path, opts...)
	if err != nil {
		return nil, err
	}
	return &Manager{
		path:    path,
		opts:    opts,
		current: cfg,
		log:     log,
	}, nil
}

// SetLogger replaces the logger used for reload and watch messages.
func (m *Manager) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = log
}

func (m *Manager) logger() *zap.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.log
}

// Current returns the active configuration.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnReload registers fn to receive each successfully reloaded configuration.
func (m *Manager) OnReload(fn ReloadFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Watch starts watching the configuration file. It is a no-op without a
// path.
func (m *Manager) Watch(opts ...watcher.Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.path == "" || m.watcher != nil {
		return nil
	}

	opts = append([]watcher.Option{watcher.WithLogger(m.log)}, opts...)
	w, err := watcher.New(opts...)
	if err != nil {
		return err
	}
	if err := w.Watch(m.path); err != nil {
		return multierr.Append(err, w.Close())
	}
	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove {
			m.logger().Warn("config file removed", zap.String("path", ev.Path))
			return
		}
		_ = m.Reload()
	})
	w.Start()
	m.watcher = w
	return nil
}

// Reload reloads the configuration file. On failure the previous
// configuration stays active.
func (m *Manager) Reload() error {
	cfg, err := Load(m.path, m.opts...)
	if err != nil {
		m.logger().Warn("config reload failed", zap.String("path", m.path), zap.Error(err))
		return err
	}

	m.mu.Lock()
	m.current = cfg
	listeners := make([]ReloadFunc, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.logger().Info("config reloaded", zap.String("path", m.path))
	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// Close stops watching.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}
