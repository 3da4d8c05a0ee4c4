// Package store persists tasks in a single SQLite database file.
//
// The schema is versioned: Open applies any pending additive
// migrations before returning, and refuses to start on a migration
// failure. Writes are serialized through one connection so the alarm
// monitor and the request surface never race each other.
package store
