package app

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/renderer/backend"
)

// eventLoop is the main application loop. It owns every UI object; the
// backend is polled on a separate goroutine.
func (app *Application) eventLoop() error {
	events := make(chan backend.Event, 64)
	go app.pollEvents(events)

	app.render()
	for {
		select {
		case <-app.done:
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := app.safeHandle(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}

		case fn := <-app.editor.Tasks():
			fn()

		case cfg := <-app.reloads:
			app.applyConfig(cfg)
		}
		app.render()
	}
}

// pollEvents forwards backend events until the backend closes or the loop
// exits.
func (app *Application) pollEvents(out chan<- backend.Event) {
	defer close(out)
	for {
		ev := app.backend.PollEvent()
		switch ev.Type {
		case backend.EventClosed:
			return
		case backend.EventNone:
			continue
		}
		select {
		case out <- ev:
		case <-app.done:
			return
		}
	}
}

// safeHandle handles ev and turns a handler panic into an error.
func (app *Application) safeHandle(ev backend.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
			app.log.Error("event handler panicked", zap.Any("panic", r))
		}
	}()
	return app.handleBackendEvent(ev)
}

// render draws the current frame.
func (app *Application) render() {
	r := app.Renderer()
	if r == nil {
		return
	}
	start := time.Now()
	r.SetStatus(app.statusLine())
	r.Render(app.blocks())
	app.metrics.RecordRender(time.Since(start))
}

// statusLine summarizes the document, selection and load state.
func (app *Application) statusLine() string {
	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(app.doc.Name)
	if app.doc.IsModified() {
		b.WriteString(" [+]")
	}
	fmt.Fprintf(&b, "  sel:%s", app.editor.Selection())

	ready := 0
	for _, el := range app.elements {
		if v := el.Render(); v.Image != nil {
			ready++
		}
	}
	fmt.Fprintf(&b, "  images:%d/%d", ready, len(app.elements))

	if app.resize != nil && app.resize.Active() {
		w, h := app.resize.Size()
		if h > 0 {
			fmt.Fprintf(&b, "  resize:%dx%d", w, h)
		} else {
			fmt.Fprintf(&b, "  resize:%dx-", w)
		}
	}
	if app.message != "" {
		b.WriteString("  ")
		b.WriteString(app.message)
	}
	return b.String()
}
