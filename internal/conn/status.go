package conn

// State describes the connection lifecycle of a Manager.
//
// A Manager starts at StateNotStarted, moves to StateConnected on a
// successful Begin, and thereafter moves only among the live states
// (Connected, NoNetwork, NoBroker, NetworkTimeout, BrokerError) through
// CheckConnection, until End resets it to StateNotStarted.
type State int

const (
	// StateNotStarted means Begin has never succeeded (or End was called).
	StateNotStarted State = iota

	// StateConnected means both the network association and the broker
	// session are up.
	StateConnected

	// StateNoNetwork means the network association is down.
	StateNoNetwork

	// StateNoBroker means the network is up but the broker session is dead.
	StateNoBroker

	// StateConfigMissing means Begin was called without a network identity
	// or broker host. Fatal: the caller must fix the configuration.
	StateConfigMissing

	// StateNetworkTimeout means the bounded association retry loop was
	// exhausted. Recoverable: the caller may retry later.
	StateNetworkTimeout

	// StateBrokerError means a broker connect attempt failed. The cause is
	// retrievable via Manager.BrokerError.
	StateBrokerError
)

// String returns a short lowercase name suitable for logs and storage.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateConnected:
		return "connected"
	case StateNoNetwork:
		return "no_network"
	case StateNoBroker:
		return "no_broker"
	case StateConfigMissing:
		return "config_missing"
	case StateNetworkTimeout:
		return "network_timeout"
	case StateBrokerError:
		return "broker_error"
	default:
		return "unknown"
	}
}

// BrokerErrorCode is the last error reported by the broker session.
//
// It is cached by the Manager when a broker connect attempt fails and
// retained until overwritten, independently of State, so a caller can
// inspect why a BrokerError occurred after the fact.
//
// The code space mirrors the MQTT CONNACK return codes (1-5) plus two
// client-side conditions (-1 timeout, -2 refused/transport failure), the
// same range the original sensor-node fleets report.
type BrokerErrorCode int

const (
	BrokerErrRefused            BrokerErrorCode = -2
	BrokerErrTimeout            BrokerErrorCode = -1
	BrokerErrNone               BrokerErrorCode = 0
	BrokerErrProtocolVersion    BrokerErrorCode = 1
	BrokerErrIdentifierRejected BrokerErrorCode = 2
	BrokerErrServerUnavailable  BrokerErrorCode = 3
	BrokerErrBadCredentials     BrokerErrorCode = 4
	BrokerErrNotAuthorized      BrokerErrorCode = 5
)

// String returns a short lowercase name suitable for logs and storage.
func (c BrokerErrorCode) String() string {
	switch c {
	case BrokerErrRefused:
		return "connection_refused"
	case BrokerErrTimeout:
		return "connection_timeout"
	case BrokerErrNone:
		return "none"
	case BrokerErrProtocolVersion:
		return "unacceptable_protocol_version"
	case BrokerErrIdentifierRejected:
		return "identifier_rejected"
	case BrokerErrServerUnavailable:
		return "server_unavailable"
	case BrokerErrBadCredentials:
		return "bad_credentials"
	case BrokerErrNotAuthorized:
		return "not_authorized"
	default:
		return "unknown"
	}
}
