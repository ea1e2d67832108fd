// Package value provides the sealed value types used for sprite user state
// and for decoded device readings.
//
// This package imports nothing internal. Actors, the device codec and the
// journal all build on it.
//
// Key design constraints:
//   - Values are trees: Copy never shares a List or Record with its input
//   - Record iteration goes through SortedKeys for deterministic output
//   - Canonical JSON (MarshalCanonical) NFC-normalizes every string
//   - Floats must be finite to be serialized
package value
