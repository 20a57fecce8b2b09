// Package app wires the image editor together: configuration, logging, the
// editor and its document, the load gate, one image element per image node,
// the terminal renderer and the event loop that feeds them.
//
// Everything except the backend poller and the config watcher runs on the
// goroutine that calls Run. Asynchronous work re-enters through the
// editor's task queue.
package app

import (
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/config"
	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/editor"
	"github.com/dshills/imagenode/internal/imageelem"
	"github.com/dshills/imagenode/internal/input/mouse"
	"github.com/dshills/imagenode/internal/loadgate"
	"github.com/dshills/imagenode/internal/renderer"
	"github.com/dshills/imagenode/internal/renderer/backend"
	"github.com/dshills/imagenode/internal/resizer"
)

// LevelSetter applies logging settings at runtime.
type LevelSetter interface {
	Apply(cfg config.LoggingConfig) error
}

// Options configures the application.
type Options struct {
	// Document is the document to edit. Required.
	Document *Document

	// Config is the initial configuration. Nil uses config.Defaults.
	Config *config.Config

	// ConfigManager delivers configuration reloads. Optional.
	ConfigManager *config.Manager

	// Logger is the application logger. Nil disables logging.
	Logger *zap.Logger

	// LevelSetter receives logging settings on reload. Optional.
	LevelSetter LevelSetter

	// Fetcher loads images. Nil builds a loadgate.DefaultFetcher from the
	// configuration.
	Fetcher loadgate.Fetcher

	// Clock drives element settle timers. Nil uses the system clock.
	Clock imageelem.Clock
}

// Application is the central coordinator for all components.
type Application struct {
	mu sync.RWMutex

	opts Options
	cfg  *config.Config
	log  *zap.Logger

	doc         *Document
	editor      *editor.Editor
	gate        *loadgate.Gate
	elements    map[document.NodeKey]*imageelem.Element
	unlisten    func()
	lastVersion uint64

	backend  backend.Backend
	renderer *renderer.Renderer

	mouse   *mouse.Handler
	buttons backend.ButtonMask
	resize  *resizer.Resizer
	message string

	reloads chan *config.Config
	metrics *Metrics

	running  atomic.Bool
	done     chan struct{}
	quitOnce sync.Once
	closed   bool
}

// New creates an application for opts.Document.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:     opts,
		elements: make(map[document.NodeKey]*imageelem.Element),
		reloads:  make(chan *config.Config, 1),
		metrics:  NewMetrics(),
		done:     make(chan struct{}),
	}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// SetBackend sets the terminal backend and creates the renderer for it.
// Must be called before Run.
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	app.renderer = renderer.New(b, rendererOptions(app.cfg.Renderer, app.log))
	return nil
}

// Run initializes the backend and runs the event loop until quit.
func (app *Application) Run() error {
	if app.backend == nil {
		return ErrNoBackend
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()

	app.log.Info("session started",
		zap.String("document", app.doc.Name),
		zap.Int("images", len(app.elements)))
	return app.eventLoop()
}

// Shutdown asks the event loop to exit. It is safe to call from any
// goroutine and more than once.
func (app *Application) Shutdown() {
	app.quitOnce.Do(func() { close(app.done) })
}

// Close releases every component. Call it after Run returns.
func (app *Application) Close() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.closed {
		return nil
	}
	app.closed = true
	app.Shutdown()

	if app.unlisten != nil {
		app.unlisten()
		app.unlisten = nil
	}
	for key, el := range app.elements {
		el.Unmount()
		delete(app.elements, key)
	}
	app.editor.Close()

	var err error
	err = multierr.Append(err, app.gate.Close())
	app.log.Debug("session closed")
	return err
}

// IsRunning returns true while Run is executing.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Document returns the open document.
func (app *Application) Document() *Document {
	return app.doc
}

// Editor returns the editor.
func (app *Application) Editor() *editor.Editor {
	return app.editor
}

// Gate returns the image load gate.
func (app *Application) Gate() *loadgate.Gate {
	return app.gate
}

// Renderer returns the renderer, or nil before SetBackend.
func (app *Application) Renderer() *renderer.Renderer {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.renderer
}

// Element returns the element of the image node key.
func (app *Application) Element(key document.NodeKey) (*imageelem.Element, bool) {
	el, ok := app.elements[key]
	return el, ok
}

// Metrics returns the session metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
