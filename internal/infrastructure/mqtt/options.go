package mqtt

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"
	"github.com/google/uuid"

	"github.com/plantlink/plantlink-core/internal/conn"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for one connect attempt.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// disconnectQuiesce is the time allowed for pending operations on disconnect.
	disconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// SessionConfig controls how the session dials and publishes. The broker
// address is not part of it: host, port, and credentials arrive with
// each Connect call so that configuration changes take effect on the
// next attempt.
type SessionConfig struct {
	// ClientID identifies this node to the broker. When empty a random
	// "plantlink-" ID is generated once per session.
	ClientID string

	// TLS dials with ssl:// and TLS 1.2+.
	TLS bool

	// QoS is the quality-of-service level for published messages (0-2).
	QoS int

	// ConnectTimeout bounds one connect attempt. Zero means the default.
	ConnectTimeout time.Duration

	// PublishTimeout bounds one publish acknowledgment. Zero means the default.
	PublishTimeout time.Duration
}

// withDefaults fills zero values.
func (c SessionConfig) withDefaults() SessionConfig {
	if c.ClientID == "" {
		c.ClientID = "plantlink-" + uuid.NewString()[:8]
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = defaultPublishTimeout
	}
	return c
}

// buildClientOptions creates paho options for one connect attempt.
//
// Auto-reconnect and connect-retry are disabled on purpose: reconnection
// is conn.Manager's job, and a self-healing client would report Alive
// while the manager believes the session is down.
func buildClientOptions(cfg SessionConfig, host string, port int, creds *conn.Credentials) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, host, port))

	opts.SetClientID(cfg.ClientID)

	if creds != nil {
		opts.SetUsername(creds.Username)
		opts.SetPassword(creds.Password)
	}

	opts.SetCleanSession(true)

	// One attempt per Connect call.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// errorCode maps a paho connect/publish error onto the shared broker
// error code vocabulary. Unrecognised transport failures map to the
// generic refused code.
func errorCode(err error) conn.BrokerErrorCode {
	switch {
	case errors.Is(err, packets.ErrorRefusedBadProtocolVersion):
		return conn.BrokerErrProtocolVersion
	case errors.Is(err, packets.ErrorRefusedIDRejected):
		return conn.BrokerErrIdentifierRejected
	case errors.Is(err, packets.ErrorRefusedServerUnavailable):
		return conn.BrokerErrServerUnavailable
	case errors.Is(err, packets.ErrorRefusedBadUsernameOrPassword):
		return conn.BrokerErrBadCredentials
	case errors.Is(err, packets.ErrorRefusedNotAuthorised):
		return conn.BrokerErrNotAuthorized
	default:
		return conn.BrokerErrRefused
	}
}
