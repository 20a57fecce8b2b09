package editor

import (
	"sort"
	"sync"
	"sync/atomic"
)

// CommandKind identifies a dispatchable command.
type CommandKind uint8

const (
	// CommandClick is a completed pointer click. Payload: *input.ClickEvent.
	CommandClick CommandKind = iota
	// CommandDeleteKey is the forward-delete key. Payload: *input.KeyEvent.
	CommandDeleteKey
	// CommandBackspaceKey is the backspace key. Payload: *input.KeyEvent.
	CommandBackspaceKey
	// CommandDragStart is the start of a native drag. Payload: *input.DragEvent.
	CommandDragStart
	// CommandSelectionChange fires after the selection changes. Payload: SelectionChange.
	CommandSelectionChange
)

// String returns the command name.
func (k CommandKind) String() string {
	switch k {
	case CommandClick:
		return "click"
	case CommandDeleteKey:
		return "delete-key"
	case CommandBackspaceKey:
		return "backspace-key"
	case CommandDragStart:
		return "drag-start"
	case CommandSelectionChange:
		return "selection-change"
	default:
		return "unknown"
	}
}

// Priority determines handler order. Higher values run first.
type Priority int

const (
	// PriorityEditor is reserved for the editor's built-in fallbacks.
	PriorityEditor Priority = iota
	// PriorityLow is for node components.
	PriorityLow
	// PriorityNormal is the default for plugins.
	PriorityNormal
	// PriorityHigh is for handlers that must preempt plugins.
	PriorityHigh
	// PriorityCritical runs before everything else.
	PriorityCritical
)

// String returns the priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityEditor:
		return "editor"
	case p == PriorityLow:
		return "low"
	case p == PriorityNormal:
		return "normal"
	case p == PriorityHigh:
		return "high"
	default:
		return "critical"
	}
}

// ParsePriority parses a priority name. Unknown names yield PriorityLow.
func ParsePriority(s string) Priority {
	switch s {
	case "editor":
		return PriorityEditor
	case "normal":
		return PriorityNormal
	case "high":
		return PriorityHigh
	case "critical":
		return PriorityCritical
	default:
		return PriorityLow
	}
}

// Handler processes a command payload.
// It returns true if the command was handled; dispatch stops at the first
// handler that returns true.
type Handler func(payload any, ed *Editor) bool

// Registration describes one command binding.
type Registration struct {
	Kind     CommandKind
	Handler  Handler
	Priority Priority
}

// entry is a registered handler.
type entry struct {
	kind     CommandKind
	handler  Handler
	priority Priority
	seq      uint64
	removed  atomic.Bool
}

// registry maps command kinds to handlers sorted by priority.
type registry struct {
	mu       sync.RWMutex
	handlers map[CommandKind][]*entry
	seq      uint64
}

func newRegistry() *registry {
	return &registry{handlers: make(map[CommandKind][]*entry)}
}

// register adds all registrations under one lock and returns a single
// function that removes all of them under one lock.
func (r *registry) register(regs ...Registration) func() {
	r.mu.Lock()
	entries := make([]*entry, 0, len(regs))
	for _, reg := range regs {
		if reg.Handler == nil {
			continue
		}
		r.seq++
		e := &entry{kind: reg.Kind, handler: reg.Handler, priority: reg.Priority, seq: r.seq}
		list := append(r.handlers[reg.Kind], e)

		// Sort by priority (descending), then registration order
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].priority != list[j].priority {
				return list[i].priority > list[j].priority
			}
			return list[i].seq < list[j].seq
		})
		r.handlers[reg.Kind] = list
		entries = append(entries, e)
	}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.unregister(entries)
		})
	}
}

func (r *registry) unregister(entries []*entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		e.removed.Store(true)
		list := r.handlers[e.kind]
		for i, existing := range list {
			if existing == e {
				r.handlers[e.kind] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(r.handlers[e.kind]) == 0 {
			delete(r.handlers, e.kind)
		}
	}
}

// snapshot returns the handlers for kind in dispatch order.
func (r *registry) snapshot(kind CommandKind) []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.handlers[kind]
	out := make([]*entry, len(list))
	copy(out, list)
	return out
}

// count returns the number of handlers registered for kind.
func (r *registry) count(kind CommandKind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[kind])
}

// MergeUnregister combines teardown functions into one that runs each of
// them once, in reverse order.
func MergeUnregister(fns ...func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(fns) - 1; i >= 0; i-- {
				if fns[i] != nil {
					fns[i]()
				}
			}
		})
	}
}
