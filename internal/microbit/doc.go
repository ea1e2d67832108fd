// Package microbit talks to a BBC micro:bit through an abstract Transport.
//
// Every exchange is an operation name plus an ordered list of string
// arguments, answered by an ordered list of strings. Reading a device
// variable sends "var" with the variable name; commands send their own
// operation names and expect an empty reply.
//
// Arguments are validated before anything is sent. Transport failures are
// returned exactly as the transport produced them: this layer never wraps,
// swallows or retries them.
//
// Device reads are never cached. Each property access is a fresh round
// trip.
package microbit
