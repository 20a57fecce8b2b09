package config

import "time"

// Config is the full imagenode configuration.
type Config struct {
	Element  ElementConfig  `yaml:"element"`
	Loadgate LoadgateConfig `yaml:"loadgate"`
	Renderer RendererConfig `yaml:"renderer"`
	Input    InputConfig    `yaml:"input"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Path is the file the configuration was loaded from, if any.
	Path string `yaml:"-"`
}

// ElementConfig configures image elements.
type ElementConfig struct {
	// SettleDelay is how long the resizing flag stays set after a resize
	// commits.
	SettleDelay time.Duration `yaml:"settleDelay"`

	// CommandPriority is the priority element command handlers register at
	// ("editor", "low", "normal", "high", "critical").
	CommandPriority string `yaml:"commandPriority"`
}

// LoadgateConfig configures image loading.
type LoadgateConfig struct {
	// CacheCapacity bounds the image cache. Zero means unbounded.
	CacheCapacity int `yaml:"cacheCapacity"`

	// FetchTimeout bounds a single fetch.
	FetchTimeout time.Duration `yaml:"fetchTimeout"`

	// MaxBytes bounds the encoded size of an image.
	MaxBytes int64 `yaml:"maxBytes"`

	// MaxPixels bounds each decoded dimension.
	MaxPixels int `yaml:"maxPixels"`

	// BaseDir resolves relative file sources.
	BaseDir string `yaml:"baseDir"`
}

// RendererConfig configures terminal drawing.
type RendererConfig struct {
	// CellWidth and CellHeight are the pixels per terminal cell.
	CellWidth  int `yaml:"cellWidth"`
	CellHeight int `yaml:"cellHeight"`

	// Frame colors as "#rrggbb".
	BorderColor string `yaml:"borderColor"`
	FocusColor  string `yaml:"focusColor"`
	DragColor   string `yaml:"dragColor"`
	ErrorColor  string `yaml:"errorColor"`

	// ShowStatus shows the status line.
	ShowStatus bool `yaml:"showStatus"`
}

// InputConfig configures pointer handling.
type InputConfig struct {
	// DragThreshold is the distance in cells before a press becomes a drag.
	DragThreshold int `yaml:"dragThreshold"`

	// ScrollLines is the number of rows per wheel tick.
	ScrollLines int `yaml:"scrollLines"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "console" or "json".
	Format string `yaml:"format"`

	// File is the log file path. Empty logs to stderr.
	File string `yaml:"file"`
}
