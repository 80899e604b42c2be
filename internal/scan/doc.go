// Package scan orchestrates a recognition pass over a captured page.
//
// An Orchestrator owns a single background worker, so at most one pass runs
// at a time. Starting a pass disables the scan trigger; the trigger is
// re-enabled exactly once when the pass completes, whether it succeeded or
// failed. A Process call made while the trigger is disabled is refused with
// ErrBusy. A running pass cannot be cancelled.
//
// Every mutation of the Presenter (image, overlays, text, trigger) is posted
// through a Dispatcher, normally a UIQueue, so the presentation state is only
// ever touched from one goroutine. Recognition itself never runs there.
//
// Completion is delivered twice: to the Presenter (text and overlay boxes)
// and as a Result on the channel returned by Process, which carries the
// error for failed passes. Failures are logged and leave the view without
// partial results.
package scan
