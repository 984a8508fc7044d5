package publish

import (
	"fmt"

	"github.com/plantlink/plantlink-core/internal/conn"
)

// SessionProvider loans out the active broker session. Implemented by
// conn.Manager. The second return value is false while the connection is
// inactive, in which case publishing silently does nothing.
type SessionProvider interface {
	ActiveSession() (conn.BrokerSession, bool)
}

// Publisher serializes documents onto broker channels through a session
// borrowed per call from a SessionProvider.
type Publisher struct {
	sessions SessionProvider
}

// NewPublisher creates a Publisher backed by the given provider.
func NewPublisher(sessions SessionProvider) *Publisher {
	return &Publisher{sessions: sessions}
}

// PublishTelemetry serializes a telemetry document and publishes it to
// the given channel as a non-retained message.
//
// Publishing while the connection is inactive is a silent no-op (nil
// error): the core tolerates caller-sequencing mistakes rather than
// escalating them.
func (p *Publisher) PublishTelemetry(doc *Document, topic string) error {
	return p.publish(doc, topic, false)
}

// PublishDeviceConfig builds the canonical discovery document for the
// descriptor and publishes it to the descriptor's configuration channel
// as a retained message, so late-joining discovery consumers still
// receive the last-known configuration.
//
// No-op when the connection is inactive.
func (p *Publisher) PublishDeviceConfig(desc DeviceDescriptor) error {
	return p.publish(desc.document(), desc.ConfigTopic, true)
}

// publish runs the shared serialize-and-transmit path.
func (p *Publisher) publish(doc *Document, topic string, retained bool) error {
	session, active := p.sessions.ActiveSession()
	if !active {
		return nil
	}
	if topic == "" {
		return ErrEmptyTopic
	}

	payload, err := doc.Encode()
	if err != nil {
		return err
	}

	if err := session.BeginMessage(topic, retained); err != nil {
		return fmt.Errorf("%w: begin on %q: %w", ErrPublishFailed, topic, err)
	}
	if _, err := session.Write(payload); err != nil {
		return fmt.Errorf("%w: write on %q: %w", ErrPublishFailed, topic, err)
	}
	if err := session.EndMessage(); err != nil {
		return fmt.Errorf("%w: end on %q: %w", ErrPublishFailed, topic, err)
	}
	return nil
}
