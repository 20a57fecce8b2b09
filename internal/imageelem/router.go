package imageelem

import (
	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/editor"
	"github.com/dshills/imagenode/internal/input"
	"github.com/dshills/imagenode/internal/selection"
)

// CommandRouter routes editor commands for one image node.
type CommandRouter struct {
	key      document.NodeKey
	bridge   *SelectionBridge
	resize   *ResizeController
	priority editor.Priority
	log      *zap.Logger

	active *editor.Editor
}

// NewCommandRouter creates a router for the node behind bridge.
func NewCommandRouter(bridge *SelectionBridge, resize *ResizeController, priority editor.Priority, log *zap.Logger) *CommandRouter {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandRouter{
		key:      bridge.Key(),
		bridge:   bridge,
		resize:   resize,
		priority: priority,
		log:      log,
	}
}

// Register binds all five handlers and returns one function that removes
// all of them together.
func (r *CommandRouter) Register(ed *editor.Editor) func() {
	r.active = ed
	return ed.RegisterGroup(
		editor.Registration{Kind: editor.CommandClick, Handler: r.onClick, Priority: r.priority},
		editor.Registration{Kind: editor.CommandDeleteKey, Handler: r.onDelete, Priority: r.priority},
		editor.Registration{Kind: editor.CommandBackspaceKey, Handler: r.onDelete, Priority: r.priority},
		editor.Registration{Kind: editor.CommandDragStart, Handler: r.onDragStart, Priority: r.priority},
		editor.Registration{Kind: editor.CommandSelectionChange, Handler: r.onSelectionChange, Priority: r.priority},
	)
}

// ActiveEditor returns the editor that last dispatched a selection change.
func (r *CommandRouter) ActiveEditor() *editor.Editor {
	return r.active
}

// onClick selects the node on a primary click on its image. Any click while
// a resize is active or settling is consumed without effect.
func (r *CommandRouter) onClick(payload any, ed *editor.Editor) bool {
	click, ok := payload.(*input.ClickEvent)
	if !ok {
		return false
	}
	if r.resize.SuppressClick(click.Gesture) {
		r.log.Debug("click suppressed by resize",
			zap.String("key", string(r.key)),
			zap.Stringer("state", r.resize.State()))
		return true
	}
	if !click.IsPrimary() || !click.Target.Is(input.SurfaceImage, r.key) {
		return false
	}
	if !document.IsImageNode(ed.GetNodeByKey(r.key)) {
		return false
	}

	if click.ShiftKey() {
		r.bridge.Select(SelectToggle)
	} else {
		r.bridge.Select(SelectExclusive)
	}
	return true
}

// onDelete removes the selected node. It never stops propagation.
func (r *CommandRouter) onDelete(payload any, ed *editor.Editor) bool {
	ev, ok := payload.(*input.KeyEvent)
	if !ok {
		return false
	}
	if !r.bridge.IsSelected() || selection.Kind(ed.Selection()) != selection.VariantNode {
		return false
	}
	if !document.IsImageNode(ed.GetNodeByKey(r.key)) {
		return false
	}

	ev.PreventDefault()
	ed.Update(func(tx *editor.Txn) {
		tx.RemoveNode(r.key)
	}, "delete")
	r.log.Debug("image removed", zap.String("key", string(r.key)), zap.Stringer("by", ev.Key))
	return false
}

// onDragStart blocks native drags of the image.
func (r *CommandRouter) onDragStart(payload any, _ *editor.Editor) bool {
	drag, ok := payload.(*input.DragEvent)
	if !ok || !drag.Target.Is(input.SurfaceImage, r.key) {
		return false
	}
	drag.PreventDefault()
	return true
}

func (r *CommandRouter) onSelectionChange(_ any, ed *editor.Editor) bool {
	r.active = ed
	return false
}
