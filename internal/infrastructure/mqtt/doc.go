// Package mqtt implements the broker-session capability on top of
// paho.mqtt.golang.
//
// The Session satisfies conn.BrokerSession: one connect attempt per
// Connect call, outbound messages assembled with BeginMessage/Write/
// EndMessage, and broker failures reported as conn.BrokerErrorCode
// values.
//
// Reconnection policy deliberately does NOT live here. The paho options
// are built with auto-reconnect and connect-retry disabled so that
// conn.Manager remains the only component making reconnection decisions;
// a session that silently healed itself would desynchronise the
// manager's state machine.
//
// # Security Considerations
//
//   - TLS (ssl:// scheme, TLS 1.2 minimum) is enabled per config.
//   - Credentials are passed per connect attempt, never stored here.
//
// # Usage
//
//	session := mqtt.NewSession(mqtt.SessionConfig{ClientID: "greenA", QoS: 1})
//	mgr := conn.NewOwned(cfg, associator, session)
package mqtt
