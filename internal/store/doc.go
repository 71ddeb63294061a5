// Package store provides the storage collaborators of the experience ledger.
//
// Two implementations of ledger.Storage are available:
//   - SQLite: durable, file-backed, keeps every saved version (snapshots)
//   - Memory: map-backed, for tests and ephemeral use
//
// # Snapshots
//
// The SQLite store never updates or deletes. Save appends a snapshot row
// holding the complete value for a key; Load returns the newest snapshot by
// seq. History lists earlier versions and Restore re-appends one of them as the
// newest, so a restore is itself undoable.
//
// Snapshot ids are UUIDv7, which sort by creation time. All ordering still
// uses the seq column.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
