// Package conn manages the network association and broker session that
// every PlantLink node depends on.
//
// This package owns:
//   - The connect / check-connection / reconnect / end state machine
//   - Bounded-retry network association with a fixed backoff
//   - The shared vocabulary of connection states and broker error codes
//
// # Architecture
//
// The Manager composes two externally supplied capabilities: a
// NetworkAssociator (how the node joins the network) and a BrokerSession
// (how it talks to the MQTT broker). Real implementations live in
// internal/netassoc and internal/infrastructure/mqtt; tests substitute
// fakes. Reconnection policy lives here, not in the capabilities: the
// broker session must not retry on its own.
//
// Network failures and broker failures are independent failure domains.
// The network branch runs a bounded retry loop (Config.RetryLimit
// attempts, 0 means unlimited, 5 s fixed backoff); the broker branch
// makes exactly one reconnect attempt per check. A failed broker attempt
// tears down the network association so the next check starts from a
// clean slate.
//
// # Execution Model
//
// The Manager is built for a single cooperative control loop: the caller
// invokes CheckConnection and Poll on a periodic cadence and publishes
// in between. All operations are serialised behind one mutex so a
// multi-goroutine caller cannot interleave state transitions, but no
// concurrency is introduced internally. Retry backoff blocks the calling
// goroutine via the injectable Clock; there is no mid-retry cancellation.
//
// # Usage
//
//	mgr := conn.New(cfg, associator, session)
//	if state := mgr.Begin(); state != conn.StateConnected {
//	    log.Error("uplink failed", "state", state, "broker_error", mgr.BrokerError())
//	}
//	for range ticker.C {
//	    mgr.CheckConnection()
//	    mgr.Poll()
//	}
package conn
