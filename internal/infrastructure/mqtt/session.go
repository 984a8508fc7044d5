package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/plantlink/plantlink-core/internal/conn"
)

// Session adapts a paho MQTT client to the conn.BrokerSession contract.
//
// A Session carries at most one in-flight outbound message at a time,
// matching the cooperative single-loop execution model of the core. The
// embedded paho client runs its own network goroutines for keepalive, so
// Poll is a contract no-op here.
//
// Thread Safety:
//   - All methods serialise behind one mutex. The Session is intended to
//     be driven by a single control loop through conn.Manager.
type Session struct {
	mu sync.Mutex

	cfg    SessionConfig
	client pahomqtt.Client

	pending *pendingMessage
	lastErr conn.BrokerErrorCode

	logger Logger
}

// Logger is the narrow logging interface the session writes through.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// pendingMessage is the message being assembled between BeginMessage and
// EndMessage.
type pendingMessage struct {
	topic    string
	retained bool
	payload  []byte
}

// NewSession creates a disconnected session. Connect must be called
// (normally by conn.Manager) before any message operations.
func NewSession(cfg SessionConfig) *Session {
	return &Session{cfg: cfg.withDefaults()}
}

// SetLogger sets an optional logger for transmission warnings.
func (s *Session) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// Connect makes exactly one connect attempt against the broker.
//
// Each call builds a fresh paho client: host, port, and credentials may
// all have changed since the previous attempt, and a stale client would
// carry the old values. On failure the mapped broker error code is
// cached for LastError.
func (s *Session) Connect(host string, port int, creds *conn.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop any previous connection before dialling again.
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(disconnectQuiesce)
	}

	opts := buildClientOptions(s.cfg, host, port, creds)
	client := pahomqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		s.lastErr = conn.BrokerErrTimeout
		return fmt.Errorf("%w: timeout after %v", ErrConnectFailed, s.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		s.lastErr = errorCode(err)
		return fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}

	s.client = client
	s.lastErr = conn.BrokerErrNone
	return nil
}

// Alive reports whether the underlying client holds a live connection.
func (s *Session) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil && s.client.IsConnected()
}

// BeginMessage starts assembling an outbound message for the topic.
func (s *Session) BeginMessage(topic string, retained bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if topic == "" {
		return ErrInvalidTopic
	}
	if s.pending != nil {
		return fmt.Errorf("%w: message on %q still open", ErrMessageInFlight, s.pending.topic)
	}
	s.pending = &pendingMessage{topic: topic, retained: retained}
	return nil
}

// Write appends payload bytes to the in-flight message.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return 0, ErrNoMessage
	}
	s.pending.payload = append(s.pending.payload, p...)
	return len(p), nil
}

// EndMessage transmits the in-flight message. The pending message is
// cleared whether or not transmission succeeds; a failed message is not
// retried here.
func (s *Session) EndMessage() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.pending
	s.pending = nil
	if msg == nil {
		return ErrNoMessage
	}
	if s.client == nil || !s.client.IsConnected() {
		return ErrNotConnected
	}

	token := s.client.Publish(msg.topic, byte(s.cfg.QoS), msg.retained, msg.payload)
	if !token.WaitTimeout(s.cfg.PublishTimeout) {
		s.lastErr = conn.BrokerErrTimeout
		return fmt.Errorf("%w: timeout on %q after %v", ErrPublishFailed, msg.topic, s.cfg.PublishTimeout)
	}
	if err := token.Error(); err != nil {
		s.lastErr = errorCode(err)
		if s.logger != nil {
			s.logger.Warn("publish failed", "topic", msg.topic, "error", err)
		}
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Poll satisfies the session contract. The paho client performs
// keepalive and inbound processing on its own goroutines, so there is
// nothing to pump here.
func (s *Session) Poll() {}

// Disconnect gracefully stops the broker connection. The session may be
// reconnected afterwards.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(disconnectQuiesce)
	}
	s.pending = nil
}

// Close releases the session entirely. Only the owning conn.Manager (or
// the caller that lent the session out) may call it.
func (s *Session) Close() {
	s.Disconnect()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
}

// LastError returns the code of the most recent broker-layer failure.
func (s *Session) LastError() conn.BrokerErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
