package app

import (
	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/config"
	"github.com/dshills/imagenode/internal/input/mouse"
	"github.com/dshills/imagenode/internal/renderer"
	"github.com/dshills/imagenode/internal/renderer/core"
)

// queueReload hands a reloaded configuration to the event loop. It runs on
// the watcher goroutine; only the newest pending configuration is kept.
func (app *Application) queueReload(cfg *config.Config) {
	for {
		select {
		case app.reloads <- cfg:
			return
		default:
		}
		select {
		case <-app.reloads:
		default:
		}
	}
}

// applyConfig applies the runtime-adjustable settings of cfg. Gate limits
// and the log format need a restart.
func (app *Application) applyConfig(cfg *config.Config) {
	app.cfg = cfg
	app.metrics.RecordReload()

	if app.opts.LevelSetter != nil {
		if err := app.opts.LevelSetter.Apply(cfg.Logging); err != nil {
			app.log.Warn("log level not applied", zap.Error(err))
		}
	}
	for _, el := range app.elements {
		el.Resize().SetDelay(cfg.Element.SettleDelay)
	}
	if r := app.Renderer(); r != nil {
		r.SetOptions(rendererOptions(cfg.Renderer, app.log))
	}
	app.mouse.SetConfig(mouseConfig(cfg.Input))
	app.log.Info("configuration applied",
		zap.Duration("settleDelay", cfg.Element.SettleDelay),
		zap.String("logLevel", cfg.Logging.Level))
}

// rendererOptions converts renderer settings. Invalid colors keep their
// defaults.
func rendererOptions(rc config.RendererConfig, log *zap.Logger) renderer.Options {
	opts := renderer.DefaultOptions()
	opts.CellWidth = rc.CellWidth
	opts.CellHeight = rc.CellHeight
	opts.ShowStatus = rc.ShowStatus

	colors := []struct {
		name string
		in   string
		out  *core.Color
	}{
		{"borderColor", rc.BorderColor, &opts.BorderColor},
		{"focusColor", rc.FocusColor, &opts.FocusColor},
		{"dragColor", rc.DragColor, &opts.DragColor},
		{"errorColor", rc.ErrorColor, &opts.ErrorColor},
	}
	for _, c := range colors {
		if c.in == "" {
			continue
		}
		col, err := core.ParseColor(c.in)
		if err != nil {
			log.Warn("invalid color", zap.String("setting", c.name), zap.Error(err))
			continue
		}
		*c.out = col
	}
	return opts
}

func mouseConfig(ic config.InputConfig) mouse.Config {
	mc := mouse.DefaultConfig()
	mc.DragThreshold = ic.DragThreshold
	if ic.ScrollLines > 0 {
		mc.ScrollLines = ic.ScrollLines
	}
	return mc
}
