package editor

import "go.uber.org/zap"

// Option configures an Editor.
type Option func(*config)

type config struct {
	logger        *zap.Logger
	taskQueueSize int
	defaults      bool
}

func defaultConfig() config {
	return config{
		logger:        zap.NewNop(),
		taskQueueSize: 256,
		defaults:      true,
	}
}

// WithLogger sets the editor logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithTaskQueueSize sets the capacity of the posted-task queue.
func WithTaskQueueSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.taskQueueSize = size
		}
	}
}

// WithoutDefaults disables the built-in fallback handlers.
func WithoutDefaults() Option {
	return func(c *config) {
		c.defaults = false
	}
}
