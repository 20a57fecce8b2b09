package app

import (
	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/config"
	"github.com/dshills/imagenode/internal/editor"
	"github.com/dshills/imagenode/internal/input/mouse"
	"github.com/dshills/imagenode/internal/loadgate"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		initOrder: make([]string, 0, 4),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", b.initConfig},
		{"gate", b.initGate},
		{"editor", b.initEditor},
		{"elements", b.initElements},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			b.cleanup()
			return err
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

// initConfig settles configuration and logging.
func (b *bootstrapper) initConfig() error {
	app := b.app
	if app.opts.Document == nil {
		return &InitError{Component: "document", Err: ErrNoDocument}
	}
	app.doc = app.opts.Document

	app.log = app.opts.Logger
	if app.log == nil {
		app.log = zap.NewNop()
	}

	switch {
	case app.opts.Config != nil:
		app.cfg = app.opts.Config
	case app.opts.ConfigManager != nil:
		app.cfg = app.opts.ConfigManager.Current()
	default:
		cfg := config.Defaults()
		app.cfg = &cfg
	}
	if err := app.cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}

	if m := app.opts.ConfigManager; m != nil {
		m.OnReload(app.queueReload)
	}
	app.mouse = mouse.NewHandler(mouseConfig(app.cfg.Input))
	return nil
}

// initGate creates the image load gate and its session cache.
func (b *bootstrapper) initGate() error {
	app := b.app
	app.gate = NewGate(app.cfg.Loadgate, app.doc, app.opts.Fetcher, app.log)
	return nil
}

// NewGate builds a load gate from lc. A nil fetcher reads sources relative
// to lc.BaseDir, or to the directory of doc when that is empty.
func NewGate(lc config.LoadgateConfig, doc *Document, fetcher loadgate.Fetcher, log *zap.Logger) *loadgate.Gate {
	if fetcher == nil {
		baseDir := lc.BaseDir
		if baseDir == "" && doc != nil {
			baseDir = doc.Dir()
		}
		fetcher = &loadgate.DefaultFetcher{
			BaseDir:   baseDir,
			MaxBytes:  lc.MaxBytes,
			MaxPixels: lc.MaxPixels,
		}
	}
	return loadgate.New(fetcher,
		loadgate.WithLogger(log.Named("loadgate")),
		loadgate.WithCache(loadgate.NewCache(lc.CacheCapacity)),
		loadgate.WithFetchTimeout(lc.FetchTimeout),
	)
}

// initEditor creates the editor over the document tree.
func (b *bootstrapper) initEditor() error {
	app := b.app
	app.editor = editor.New(app.doc.Tree(), editor.WithLogger(app.log.Named("editor")))
	app.lastVersion = app.doc.Tree().Version()
	app.unlisten = app.editor.RegisterUpdateListener(app.onUpdate)
	return nil
}

// initElements mounts an element for every image node.
func (b *bootstrapper) initElements() error {
	b.app.syncElements()
	return nil
}

// cleanup releases initialized components in reverse order.
// Called when bootstrap fails partway through.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

// cleanupComponent cleans up a single component.
func (b *bootstrapper) cleanupComponent(component string) {
	app := b.app
	switch component {
	case "elements":
		for key, el := range app.elements {
			el.Unmount()
			delete(app.elements, key)
		}
	case "editor":
		if app.unlisten != nil {
			app.unlisten()
			app.unlisten = nil
		}
		app.editor.Close()
	case "gate":
		if err := app.gate.Close(); err != nil {
			app.log.Warn("closing gate", zap.Error(err))
		}
	}
}
