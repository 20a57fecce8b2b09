package editor

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/input"
	"github.com/dshills/imagenode/internal/selection"
)

// UpdateEvent is delivered to update listeners after each transaction.
type UpdateEvent struct {
	// Selection is the selection after the transaction.
	Selection selection.State
	// PrevSelection is the selection before the transaction.
	PrevSelection selection.State
	// TreeVersion is the document version after the transaction.
	TreeVersion uint64
	// Tags are the tags attached to the transaction.
	Tags []string
}

// SelectionChange is the payload of CommandSelectionChange.
type SelectionChange struct {
	Prev selection.State
	Next selection.State
}

// UpdateListener receives the latest state after each transaction.
type UpdateListener func(ev UpdateEvent)

type listenerEntry struct {
	fn      UpdateListener
	removed bool
}

// Editor owns a document tree, its global selection, and command dispatch.
//
// Editor is not safe for concurrent use except for Post, RegisterCommand and
// RegisterGroup. All other methods must run on the goroutine that drains
// Tasks.
type Editor struct {
	id    string
	log   *zap.Logger
	tree  *document.Tree
	sel   selection.State
	cmds  *registry
	tasks chan func()

	listeners []*listenerEntry

	// Transaction state
	depth    int
	txPrev   selection.State
	txVer    uint64
	txTags   []string
	defaults func()
}

// New creates an editor over tree. A nil tree creates an empty document.
func New(tree *document.Tree, opts ...Option) *Editor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if tree == nil {
		tree = document.NewTree()
	}

	ed := &Editor{
		id:    uuid.New().String(),
		log:   cfg.logger,
		tree:  tree,
		sel:   selection.None{},
		cmds:  newRegistry(),
		tasks: make(chan func(), cfg.taskQueueSize),
	}
	if cfg.defaults {
		ed.defaults = ed.registerDefaults()
	}
	return ed
}

// ID returns the editor's unique identifier.
func (ed *Editor) ID() string {
	return ed.id
}

// Logger returns the editor's logger.
func (ed *Editor) Logger() *zap.Logger {
	return ed.log
}

// Selection returns the current global selection. It is never nil.
func (ed *Editor) Selection() selection.State {
	return ed.sel
}

// GetNodeByKey returns the node with key, or nil.
func (ed *Editor) GetNodeByKey(key document.NodeKey) document.Node {
	return ed.tree.GetNodeByKey(key)
}

// Tree returns the document tree. Mutate it only inside Update.
func (ed *Editor) Tree() *document.Tree {
	return ed.tree
}

// RegisterCommand binds handler to kind at priority.
// The returned function unregisters it; calling it more than once is safe.
func (ed *Editor) RegisterCommand(kind CommandKind, handler Handler, priority Priority) func() {
	return ed.cmds.register(Registration{Kind: kind, Handler: handler, Priority: priority})
}

// RegisterGroup binds several handlers at once. The returned function
// removes all of them in one step; no dispatch observes a partial removal.
func (ed *Editor) RegisterGroup(regs ...Registration) func() {
	return ed.cmds.register(regs...)
}

// HandlerCount returns the number of handlers bound to kind.
func (ed *Editor) HandlerCount(kind CommandKind) int {
	return ed.cmds.count(kind)
}

// Dispatch runs the handlers for kind from highest to lowest priority and
// stops at the first that returns true. It returns whether any handler did.
func (ed *Editor) Dispatch(kind CommandKind, payload any) bool {
	for _, e := range ed.cmds.snapshot(kind) {
		// A handler earlier in this dispatch may have unregistered later ones.
		if e.removed.Load() {
			continue
		}
		if e.handler(payload, ed) {
			ed.log.Debug("command handled",
				zap.Stringer("command", kind),
				zap.Stringer("priority", e.priority))
			return true
		}
	}
	return false
}

// RegisterUpdateListener adds a listener called after every transaction.
func (ed *Editor) RegisterUpdateListener(fn UpdateListener) func() {
	if fn == nil {
		return func() {}
	}
	le := &listenerEntry{fn: fn}
	ed.listeners = append(ed.listeners, le)
	return func() {
		if le.removed {
			return
		}
		le.removed = true
		for i, existing := range ed.listeners {
			if existing == le {
				ed.listeners = append(ed.listeners[:i:i], ed.listeners[i+1:]...)
				break
			}
		}
	}
}

// Update runs fn as a transaction. Nested calls join the outer transaction.
// After the outermost transaction, update listeners receive the new state
// and, if the selection changed, CommandSelectionChange is dispatched.
func (ed *Editor) Update(fn func(tx *Txn), tags ...string) {
	if ed.depth == 0 {
		ed.txPrev = ed.sel
		ed.txVer = ed.tree.Version()
		ed.txTags = nil
	}
	ed.txTags = append(ed.txTags, tags...)
	ed.depth++
	func() {
		defer func() { ed.depth-- }()
		fn(&Txn{ed: ed})
	}()
	if ed.depth > 0 {
		return
	}
	ed.commit()
}

// commit notifies listeners about the finished transaction.
func (ed *Editor) commit() {
	prev := ed.txPrev
	next := ed.sel
	selChanged := !next.Equal(prev)
	treeChanged := ed.tree.Version() != ed.txVer
	if !selChanged && !treeChanged {
		return
	}

	ev := UpdateEvent{
		Selection:     next,
		PrevSelection: prev,
		TreeVersion:   ed.tree.Version(),
		Tags:          ed.txTags,
	}
	ed.log.Debug("editor update",
		zap.Stringer("selection", next),
		zap.Uint64("version", ev.TreeVersion),
		zap.Bool("selectionChanged", selChanged))

	listeners := make([]*listenerEntry, len(ed.listeners))
	copy(listeners, ed.listeners)
	for _, le := range listeners {
		if le.removed {
			continue
		}
		le.fn(ev)
	}

	if selChanged {
		ed.Dispatch(CommandSelectionChange, SelectionChange{Prev: prev, Next: next})
	}
}

// Post schedules fn to run on the editor goroutine. It never blocks; if the
// queue is full, fn runs on a helper goroutine that waits for space.
func (ed *Editor) Post(fn func()) {
	select {
	case ed.tasks <- fn:
	default:
		go func() { ed.tasks <- fn }()
	}
}

// Tasks returns the queue of posted work for the host loop.
func (ed *Editor) Tasks() <-chan func() {
	return ed.tasks
}

// RunPending runs queued tasks until the queue is empty and returns how
// many ran.
func (ed *Editor) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-ed.tasks:
			fn()
			n++
		default:
			return n
		}
	}
}

// Close removes the built-in handlers.
func (ed *Editor) Close() {
	if ed.defaults != nil {
		ed.defaults()
		ed.defaults = nil
	}
}

// registerDefaults installs the fallback handlers that run when no node
// component consumes a command.
func (ed *Editor) registerDefaults() func() {
	return ed.RegisterGroup(
		Registration{
			Kind:     CommandClick,
			Priority: PriorityEditor,
			Handler: func(payload any, ed *Editor) bool {
				click, ok := payload.(*input.ClickEvent)
				if !ok || !click.IsPrimary() {
					return false
				}
				if selection.Kind(ed.Selection()) == selection.VariantNode {
					ed.Update(func(tx *Txn) { tx.ClearSelection() }, "deselect-all")
				}
				return false
			},
		},
	)
}
