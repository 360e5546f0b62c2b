// Package history keeps a local record of submissions this tool has
// submitted, killed, or inspected, backed by a SQLite database.
package history
