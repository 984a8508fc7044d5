package conn

import "time"

// Credentials are optional broker authentication credentials.
type Credentials struct {
	Username string
	Password string
}

// NetworkAssociator is the network-association capability the Manager
// drives. Implementations join (and leave) the layer below the broker
// session: a Wi-Fi network, or reachability of an OS-managed link.
//
// Implementations must not retry internally; the Manager owns retry
// policy. See internal/netassoc for the real implementations.
type NetworkAssociator interface {
	// Associate makes exactly one attempt to join the named network.
	// secret may be empty for open networks.
	Associate(identity, secret string) error

	// Disassociate tears down the association. Must be safe to call when
	// not associated.
	Disassociate()

	// Up reports the live association status.
	Up() bool
}

// BrokerSession is the broker-session capability the Manager owns (or
// borrows). A session carries at most one in-flight outbound message,
// assembled with BeginMessage/Write/EndMessage.
//
// Implementations must not reconnect on their own; the Manager owns
// reconnection. See internal/infrastructure/mqtt for the real session.
type BrokerSession interface {
	// Connect makes exactly one connect attempt. creds may be nil for
	// anonymous brokers. On failure the cause must be retrievable via
	// LastError until the next attempt.
	Connect(host string, port int, creds *Credentials) error

	// Alive reports the live session status.
	Alive() bool

	// BeginMessage starts an outbound message on the given topic.
	BeginMessage(topic string, retained bool) error

	// Write appends payload bytes to the in-flight message.
	Write(p []byte) (int, error)

	// EndMessage completes and transmits the in-flight message.
	EndMessage() error

	// Poll drives keepalive and incoming-message processing. Called
	// frequently by the owning control loop.
	Poll()

	// Disconnect gracefully stops the session's broker connection. The
	// session may be reconnected afterwards.
	Disconnect()

	// Close releases the session entirely. Only the party that owns the
	// session may call it.
	Close()

	// LastError returns the code of the most recent broker-layer failure.
	LastError() BrokerErrorCode
}

// Clock abstracts the blocking sleeps inside retry loops so tests can
// simulate elapsed retries without wall-clock delays.
type Clock interface {
	Sleep(d time.Duration)
}

// realClock sleeps on the wall clock.
type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Logger is the narrow logging interface the Manager writes through.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}
