// Package store provides the SQLite-backed page manifest.
//
// Every build records the content hash of each page it produced. Comparing a
// build with the previous one classifies pages as added, changed, unchanged
// or removed, which is what a deploy step needs to decide what to upload and
// what to redirect.
//
// # Ordering
//
//   - Builds are numbered by seq, a logical counter that starts at 1.
//     Timestamps are never used for ordering.
//   - Page listings are ordered by slug (COLLATE BINARY) so output is
//     identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
