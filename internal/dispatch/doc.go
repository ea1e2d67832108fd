// Package dispatch delivers events to the hooks registered for them.
//
// A Dispatcher owns a FIFO queue and processes it from a single goroutine.
// Each dequeued event is stamped with the next value of a logical Clock and
// fanned out to the matching hooks:
//
//   - hooks fire in registration order
//   - an owned hook fires once per live instance of its class, in roster order
//   - an event with a Target reaches only hooks owned by the target's class,
//     and fires them for that instance alone
//   - an owner-less hook fires once with a nil self
//
// Handler errors are logged and processing continues with the next hook.
// Retrying would make a replayed journal diverge from the original run.
//
// Handlers run to completion one at a time. Interleaving of long-running
// scripts is left to the caller.
package dispatch
