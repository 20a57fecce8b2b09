package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/editor"
	"github.com/dshills/imagenode/internal/input"
	"github.com/dshills/imagenode/internal/input/mouse"
	"github.com/dshills/imagenode/internal/renderer/backend"
	"github.com/dshills/imagenode/internal/resizer"
	"github.com/dshills/imagenode/internal/selection"
)

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	app.metrics.RecordEvent()
	switch ev.Type {
	case backend.EventKey:
		return app.handleKeyEvent(ev)
	case backend.EventMouse:
		app.handleMouseEvent(ev)
	case backend.EventInterrupt:
		if fn, ok := ev.Data.(func()); ok {
			fn()
		}
	}
	return nil
}

// handleKeyEvent processes keyboard input events.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	mods := convertMods(ev.Mod)
	app.message = ""
	switch ev.Key {
	case backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyRune:
		if ev.Rune == 'q' {
			return ErrQuit
		}
	case backend.KeyCtrlS:
		app.save()
	case backend.KeyDelete:
		app.dispatchKey(editor.CommandDeleteKey, input.KeyDelete, mods)
	case backend.KeyBackspace:
		app.dispatchKey(editor.CommandBackspaceKey, input.KeyBackspace, mods)
	case backend.KeyEscape:
		if app.resize != nil && app.resize.Active() {
			return nil
		}
		if selection.Kind(app.editor.Selection()) != selection.VariantNone {
			app.editor.Update(func(tx *editor.Txn) { tx.ClearSelection() }, "escape")
		}
	}
	return nil
}

func (app *Application) dispatchKey(kind editor.CommandKind, code input.KeyCode, mods input.Modifiers) {
	ev := &input.KeyEvent{Key: code, Modifiers: mods}
	handled := app.editor.Dispatch(kind, ev)
	app.metrics.RecordCommand(handled)
	app.log.Debug("key dispatched",
		zap.Stringer("command", kind),
		zap.Bool("handled", handled),
		zap.Bool("defaultPrevented", ev.DefaultPrevented()))
}

func (app *Application) save() {
	if err := app.doc.Save(); err != nil {
		app.log.Warn("save failed", zap.Error(err))
		app.message = err.Error()
		return
	}
	app.log.Info("document saved", zap.String("path", app.doc.Path))
	app.message = "saved"
}

var heldButtons = []struct {
	mask   backend.ButtonMask
	button mouse.Button
}{
	{backend.ButtonPrimary, mouse.ButtonLeft},
	{backend.ButtonSecondary, mouse.ButtonRight},
	{backend.ButtonMiddle, mouse.ButtonMiddle},
}

var wheelButtons = []struct {
	mask   backend.ButtonMask
	button mouse.Button
}{
	{backend.WheelUp, mouse.ButtonScrollUp},
	{backend.WheelDown, mouse.ButtonScrollDown},
	{backend.WheelLeft, mouse.ButtonScrollLeft},
	{backend.WheelRight, mouse.ButtonScrollRight},
}

// handleMouseEvent turns button-mask transitions into raw mouse events and
// feeds them through the gesture handler.
func (app *Application) handleMouseEvent(ev backend.Event) {
	r := app.Renderer()
	if r == nil {
		return
	}
	base := mouse.Event{
		Position:  input.Position{X: ev.MouseX, Y: ev.MouseY},
		Modifiers: convertMods(ev.Mod),
		Target:    r.HitTest(ev.MouseX, ev.MouseY),
		Timestamp: time.Now(),
	}

	var raw []mouse.Event
	for _, w := range wheelButtons {
		if ev.Buttons.Has(w.mask) {
			e := base
			e.Action, e.Button = mouse.ActionPress, w.button
			raw = append(raw, e)
		}
	}

	var held backend.ButtonMask
	for _, hb := range heldButtons {
		held |= ev.Buttons & hb.mask
	}
	changed := false
	for _, hb := range heldButtons {
		if app.buttons.Has(hb.mask) && !held.Has(hb.mask) {
			e := base
			e.Action, e.Button = mouse.ActionRelease, hb.button
			raw = append(raw, e)
			changed = true
		}
	}
	for _, hb := range heldButtons {
		if held.Has(hb.mask) && !app.buttons.Has(hb.mask) {
			e := base
			e.Action, e.Button = mouse.ActionPress, hb.button
			raw = append(raw, e)
			changed = true
		}
	}
	if !changed && held != 0 {
		e := base
		e.Action = mouse.ActionDrag
		raw = append(raw, e)
	}
	app.buttons = held

	for _, e := range raw {
		for _, out := range app.mouse.Handle(e) {
			app.handleGesture(out)
		}
	}
}

// handleGesture routes one gesture output to the editor, the resizer or the
// renderer.
func (app *Application) handleGesture(out mouse.Output) {
	switch out.Kind {
	case mouse.OutputClick:
		handled := app.editor.Dispatch(editor.CommandClick, out.ClickEvent())
		app.metrics.RecordCommand(handled)

	case mouse.OutputDragStart:
		ev := out.DragEvent()
		handled := app.editor.Dispatch(editor.CommandDragStart, ev)
		app.metrics.RecordCommand(handled)
		app.log.Debug("drag start",
			zap.Stringer("target", out.Target),
			zap.Bool("handled", handled),
			zap.Bool("defaultPrevented", ev.DefaultPrevented()))

	case mouse.OutputResizeBegin:
		app.beginResize(out)

	case mouse.OutputResizeMove:
		if app.resize != nil {
			app.resize.Move(out.Position)
		}

	case mouse.OutputResizeEnd:
		if app.resize == nil {
			return
		}
		if err := app.resize.End(out.Position); err != nil {
			app.log.Warn("resize failed", zap.Error(err))
		} else {
			app.metrics.RecordResize()
		}
		app.resize = nil

	case mouse.OutputScroll:
		if r := app.Renderer(); r != nil && out.Scroll != nil {
			r.Scroll(out.Scroll.Delta())
		}
	}
}

// beginResize starts a resizer on the element owning the pressed handle.
func (app *Application) beginResize(out mouse.Output) {
	el, ok := app.elements[out.Target.Key]
	if !ok || !el.Props().Resizable {
		return
	}
	r := app.Renderer()
	box, ok := r.Box(out.Target.Key)
	if !ok {
		return
	}

	startH := box.PixelHeight
	if el.Props().Height.IsInherit() {
		startH = 0
	}
	opts := r.Options()
	app.resize = resizer.New(el,
		resizer.WithScale(opts.CellWidth, opts.CellHeight),
		resizer.WithLogger(app.log.Named("resizer")))
	app.resize.Begin(out.Gesture, out.Start, box.PixelWidth, startH)
}

func convertMods(m backend.ModMask) input.Modifiers {
	var mods input.Modifiers
	if m.Has(backend.ModShift) {
		mods |= input.ModShift
	}
	if m.Has(backend.ModCtrl) {
		mods |= input.ModCtrl
	}
	if m.Has(backend.ModAlt) {
		mods |= input.ModAlt
	}
	if m.Has(backend.ModMeta) {
		mods |= input.ModMeta
	}
	return mods
}
