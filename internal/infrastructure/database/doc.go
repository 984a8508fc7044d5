// Package database manages the node's local SQLite database.
//
// The database holds the connection-event log (see internal/history).
// WAL mode and a busy timeout are configured through the connection
// string; schema changes are applied by versioned migrations tracked in
// the schema_migrations table.
package database
