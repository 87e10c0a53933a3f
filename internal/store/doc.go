// Package store provides SQLite-backed storage for pulse traces.
//
// The store is an append-only log with:
//   - Runs: one row per recorded simulation, with the network structure
//   - Presses: per-press High/Low tallies
//   - Pulses: every delivered pulse, stamped with press and seq
//
// The log is write-only from the simulator's point of view: nothing read
// back from the store is ever used as simulator state.
//
// # Ordering
//
// All ordering uses seq INTEGER (the engine's logical clock), NEVER
// timestamps. Queries always include ORDER BY seq ASC (or press ASC), so
// reading the same run twice gives identical results.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Open(":memory:") gives a private database that disappears on Close.
package store
