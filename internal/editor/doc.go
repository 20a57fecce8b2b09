// Package editor provides the command dispatch and transaction engine that
// node components plug into.
//
// # Commands
//
// Components bind handlers to command kinds at a priority:
//
//	unregister := ed.RegisterCommand(editor.CommandClick, onClick, editor.PriorityLow)
//	defer unregister()
//
// Dispatch runs handlers from highest to lowest priority, in registration
// order within a priority, and stops at the first handler that returns true.
// RegisterGroup binds several handlers at once and returns one function that
// removes them all under a single lock, so a component is either fully bound
// or fully unbound.
//
// The editor installs one fallback at PriorityEditor: a primary click nobody
// handled clears a node selection.
//
// # Transactions
//
// All mutations of the document and the global selection go through Update:
//
//	ed.Update(func(tx *editor.Txn) {
//	    tx.SetSelection(selection.Only(key))
//	})
//
// Nested Update calls join the outer transaction. When the outermost
// transaction ends, update listeners receive the latest selection, and
// CommandSelectionChange is dispatched if the selection changed.
//
// # Threading
//
// The editor is owned by one goroutine (the UI goroutine). Work arriving
// from timers or fetches is handed over with Post and executed when the host
// drains Tasks (or calls RunPending in tests).
package editor
