// Package history records connection-state transitions in SQLite.
//
// Every time the connection manager moves between states the daemon
// writes an event here. The log answers the operational question "when
// did this node lose the broker, and with what error" without needing
// the node to have been online for log shipping at the time.
//
// The package depends on the connection_events table created by the
// database package's migrations.
package history
