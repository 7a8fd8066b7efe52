// Package history keeps an append-only SQLite log of compile calls.
//
// Each record carries a time-sortable UUIDv7 id and a content hash of
// (table, expression, strategy), so identical compiled predicates can be
// found regardless of how their filter text was written.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - a single open connection (SQLite has one writer)
//
// Listing is ordered by the insertion sequence, newest first.
package history
