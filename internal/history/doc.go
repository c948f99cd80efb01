// Package history keeps a SQLite log of pipeline runs so the HTTP surface
// can report past outcomes. It uses the pure-Go modernc.org/sqlite driver
// through sqlx.
package history
