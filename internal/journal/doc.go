// Package journal records pytch runs in SQLite.
//
// A run is one execution of a project: every event the dispatcher
// processed, every hook firing it caused, and every micro:bit round trip.
// Rows are append-only and keyed by logical sequence numbers, so two runs
// of the same scenario produce identical journals apart from the run ID.
//
// Database configuration:
//   - WAL mode for reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package journal
