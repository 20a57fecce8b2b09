// Package loadgate gates rendering on asynchronous image availability.
//
// A Gate owns one Cache and one Fetcher. Ensure reports the tri-state status
// of a source without blocking:
//
//	res := gate.Ensure("a.png")
//	switch res.Status {
//	case loadgate.StatusReady:   // draw res.Image
//	case loadgate.StatusPending: // draw nothing and wait for a subscription
//	case loadgate.StatusFailed:  // draw a placeholder for res.Err
//	}
//
// Subscribe delivers the terminal result of a source exactly once. The
// returned cancel function guarantees the callback is never invoked after it
// returns, so components can tear down safely while a fetch is in flight.
//
// At most one fetch runs per source. Ensure, Subscribe and Wait all join the
// same flight.
//
// # Cache lifetime
//
// A Cache with capacity 0 never evicts: once a source is ready it stays ready
// for the life of the gate. A positive capacity enables least recently used
// eviction for long sessions with many images.
//
// # Failures
//
// A failed fetch resolves to StatusFailed and is remembered. There is no
// automatic retry; call Forget or Reset to allow another attempt.
package loadgate
