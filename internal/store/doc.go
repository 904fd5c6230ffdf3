// Package store persists books, articles, and sentences in SQLite.
//
// The store is the single source of truth for alignment state. Sentences are
// totally ordered by (paragraph_index, sentence_index) within an article, and
// every operation that reads or writes timing data follows that ordering.
// Timestamp and part-assignment writes are batched into transactions so a
// failed write never leaves an article half-updated.
//
// Schema changes require bumping schemaVersion in schema.go and updating
// schema.sql; the store refuses to open a database with a mismatched version.
package store
